package symtab

import (
	"runtime"
	"sync"
)

// Storage owns the backing allocation for one encoded name, sized exactly to
// the header plus payload. It deliberately carries no pointer back to the
// table that minted it: at fleet scale one pointer per live name is real
// memory. The price is an explicit protocol: Free(table) must be called
// before the storage becomes unreachable, or the symbols it references can
// never be reclaimed.
//
// With the leak check armed (see EnableLeakCheck), a Storage collected
// without a prior Free trips the leak handler.
type Storage struct {
	bytes []byte
}

func newStorage(bytes []byte) *Storage {
	s := &Storage{bytes: bytes}
	armLeakCheck(s, func(*Storage) { reportLeak("symtab: Storage dropped without Free") })

	return s
}

// Name returns a handle borrowing this storage's bytes. The handle is valid
// only while the storage is live and not yet freed.
func (s *Storage) Name() Name {
	return NewName(s.bytes)
}

// Free returns the symbol references held by this storage to the table.
// The storage is unusable afterwards; freeing twice panics.
func (s *Storage) Free(t *Table) {
	if s.bytes == nil {
		panic("symtab: double free of Storage")
	}

	t.Free(s.Name())
	disarmLeakCheck(s)
	s.bytes = nil
}

// ManagedStorage bundles a Storage with the table that minted it so a single
// Close releases the symbols. It costs one extra pointer per instance, so it
// suits tests, scoped temporaries, and call sites outside the hot name
// registry; bulk containers should hold plain Storage and one shared table
// reference instead.
type ManagedStorage struct {
	storage *Storage
	table   *Table
}

// NewManagedStorage encodes name in t and wraps the result for release via
// Close.
func NewManagedStorage(name string, t *Table) (*ManagedStorage, error) {
	storage, err := t.Encode(name)
	if err != nil {
		return nil, err
	}

	return &ManagedStorage{storage: storage, table: t}, nil
}

// Name returns a handle borrowing the underlying storage.
func (m *ManagedStorage) Name() Name {
	return m.storage.Name()
}

// Table returns the table the name was encoded in.
func (m *ManagedStorage) Table() *Table {
	return m.table
}

// Close releases the symbol references. Close must be called exactly once.
func (m *ManagedStorage) Close() error {
	m.storage.Free(m.table)

	return nil
}

// The leak check is a debug aid: when armed, owning containers register a
// finalizer that fires if they are collected without Free. Finalizers only
// run at GC, so this catches leaks probabilistically in long-running debug
// processes and deterministically in tests that force collection.
var leakCheck struct {
	mu      sync.Mutex
	enabled bool
	handler func(msg string)
}

// EnableLeakCheck arms leak detection for storages and lists created after
// the call. handler receives a diagnostic message for each leaked owner; a
// nil handler panics on leak.
func EnableLeakCheck(handler func(msg string)) {
	leakCheck.mu.Lock()
	defer leakCheck.mu.Unlock()

	leakCheck.enabled = true
	leakCheck.handler = handler
}

// DisableLeakCheck turns leak detection off for subsequently created owners.
func DisableLeakCheck() {
	leakCheck.mu.Lock()
	defer leakCheck.mu.Unlock()

	leakCheck.enabled = false
	leakCheck.handler = nil
}

func armLeakCheck[T any](owner *T, onLeak func(*T)) {
	leakCheck.mu.Lock()
	enabled := leakCheck.enabled
	leakCheck.mu.Unlock()

	if enabled {
		runtime.SetFinalizer(owner, onLeak)
	}
}

func disarmLeakCheck[T any](owner *T) {
	runtime.SetFinalizer(owner, nil)
}

func reportLeak(msg string) {
	leakCheck.mu.Lock()
	handler := leakCheck.handler
	leakCheck.mu.Unlock()

	if handler == nil {
		panic(msg)
	}

	handler(msg)
}
