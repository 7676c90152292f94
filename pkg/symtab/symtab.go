// Package symtab provides a symbol-interning table specialized for
// hierarchical, period-delimited metric names (e.g. "cluster.upstream_cx.total").
//
// Large deployments hold tens of thousands of distinct names, yet the set of
// distinct "."-separated tokens is typically under a few hundred. The table
// maps each token to a small integer Symbol and encodes a full name as a
// variable-length byte stream of symbols, so a fleet-wide registry of names
// fits in a fraction of the memory the raw strings would need. Symbols are
// reference-counted and reclaimed when the last name containing them is freed.
//
// Storage for an encoded name is owned by the caller and must be returned to
// the table with Free before it becomes unreachable. This explicit discipline
// saves a table back-pointer per name; ManagedStorage trades that pointer back
// for ergonomics.
package symtab

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	// sizeEncodingBytes is the byte width of the length header preceding an
	// encoded name's payload.
	sizeEncodingBytes = 2

	// MaxDataSize is the maximum payload size of a single encoded name.
	// The two-byte little-endian length header cannot represent more.
	MaxDataSize = 1<<(8*sizeEncodingBytes) - 1

	// firstValidSymbol is the first symbol handed out. Symbol 0 is reserved
	// and never minted.
	firstValidSymbol Symbol = 1
)

// Symbol is the 32-bit identifier a token string is interned to.
//
// Symbols are recycled: after the last name containing a token is freed, its
// symbol returns to a free pool and may later identify a different token.
// Callers that need stable identity must keep a Storage alive.
type Symbol = uint32

// sharedSymbol pairs a token's symbol with the number of live encoded names
// that contain it.
type sharedSymbol struct {
	symbol   Symbol
	refCount uint32
}

// Table interns "."-separated tokens of metric names into Symbols and
// encodes full names as packed symbol streams.
//
// All methods are safe for concurrent use; every operation that touches the
// intern maps holds a single exclusive mutex for its duration. Operations
// that only inspect caller-owned encoded bytes (Name.Hash, Name.Equal) never
// touch the table and take no lock.
type Table struct {
	mu sync.Mutex

	// encodeMap keys share backing data with decodeMap values, so each
	// token's characters are stored once.
	encodeMap map[string]*sharedSymbol
	decodeMap map[Symbol]string

	// pool holds recycled symbols, reused LIFO to keep the live symbol
	// space dense.
	pool []Symbol

	// monotonicCounter advances only when the pool is empty.
	monotonicCounter Symbol
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		encodeMap:        make(map[string]*sharedSymbol),
		decodeMap:        make(map[Symbol]string),
		monotonicCounter: firstValidSymbol,
	}
}

// Encode interns every "."-separated token of name and returns owning
// storage for the packed encoding. The empty string encodes to a zero-length
// payload; "." encodes to two zero-length tokens.
//
// Returns ErrNameTooLong if the encoded payload would exceed MaxDataSize,
// in which case no ref counts are committed.
//
// The caller must release the returned storage with Storage.Free before
// dropping it.
func (t *Table) Encode(name string) (*Storage, error) {
	var enc Encoding

	t.mu.Lock()

	symbols := t.addTokens(name, &enc)
	if enc.DataBytesRequired() > MaxDataSize {
		// Roll back: nothing new may survive a failed encode.
		t.freeSymbols(symbols)
		t.mu.Unlock()

		return nil, fmt.Errorf("%w: %d byte payload for %q", ErrNameTooLong, enc.DataBytesRequired(), truncateForError(name))
	}
	t.mu.Unlock()

	bytes := make([]byte, enc.BytesRequired())
	enc.MoveTo(bytes)

	return newStorage(bytes), nil
}

// Dup obtains new backing storage for an already-encoded name, bumping the
// ref count of every symbol it contains. Used to record a borrowed Name held
// in a temporary into a longer-lived container.
func (t *Table) Dup(src Name) *Storage {
	bytes := make([]byte, src.Size())
	src.CopyTo(bytes)
	t.IncRefCount(src)

	return newStorage(bytes)
}

// Join concatenates the symbol streams of the given names, in order, into a
// single new encoded name. Zero-length names contribute nothing. Every symbol
// embedded in the result gains one reference.
//
// Returns ErrNameTooLong if the combined payload exceeds MaxDataSize.
func (t *Table) Join(names []Name) (*Storage, error) {
	total := 0
	for _, n := range names {
		total += n.DataSize()
	}

	if total > MaxDataSize {
		return nil, fmt.Errorf("%w: joined payload is %d bytes", ErrNameTooLong, total)
	}

	bytes := make([]byte, sizeEncodingBytes+total)
	p := writeLengthReturningNext(total, bytes)

	for _, n := range names {
		p = p[copy(p, n.Data()):]
	}

	storage := newStorage(bytes)
	t.IncRefCount(storage.Name())

	return storage, nil
}

// Free decrements the ref count of every symbol in name, reclaiming any that
// reach zero. Panics if name contains a symbol the table does not know, or
// one whose ref count is already zero: either means the registry of names is
// corrupt and continuing would silently mis-report.
func (t *Table) Free(name Name) {
	symbols := decodeSymbols(name.Data())

	t.mu.Lock()
	defer t.mu.Unlock()

	t.freeSymbols(symbols)
}

// IncRefCount adds one reference to every symbol in name. Used when a second
// owning container takes a copy of the encoded bytes.
func (t *Table) IncRefCount(name Name) {
	symbols := decodeSymbols(name.Data())

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range symbols {
		token, ok := t.decodeMap[s]
		if !ok {
			panic(fmt.Sprintf("symtab: inc ref count of unknown symbol %d", s))
		}

		t.encodeMap[token].refCount++
	}
}

// String decodes name back into its period-delimited form. Panics on a
// truncated stream or an unknown symbol.
func (t *Table) String(name Name) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.decodeToString(decodeSymbols(name.Data()))
}

// WithString invokes f with the decoded form of name. Equivalent to
// f(t.String(name)) without requiring the caller to retain the string.
func (t *Table) WithString(name Name, f func(string)) {
	f(t.String(name))
}

// LessThan reports whether a sorts before b in lexical order of their
// decoded token strings. This is not the byte order of the encoded symbols:
// symbols are minted in arrival order, so raw bytes sort meaninglessly.
// On a common token prefix the shorter name sorts first.
func (t *Table) LessThan(a, b Name) bool {
	as := decodeSymbols(a.Data())
	bs := decodeSymbols(b.Data())

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < len(as) && i < len(bs); i++ {
		ta := t.fromSymbol(as[i])
		tb := t.fromSymbol(bs[i])

		if ta != tb {
			return ta < tb
		}
	}

	return len(as) < len(bs)
}

// NumSymbols returns the number of live interned tokens.
func (t *Table) NumSymbols() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.decodeMap)
}

// PopulateList encodes each of names and packs them into list in order.
// At most MaxListSize names fit; more returns ErrListTooLong. Panics if the
// list was already populated.
func (t *Table) PopulateList(names []string, list *List) error {
	if list.Populated() {
		panic("symtab: list already populated")
	}

	if len(names) > MaxListSize {
		return fmt.Errorf("%w: %d names", ErrListTooLong, len(names))
	}

	encodings := make([]Encoding, len(names))
	total := 1 // Element count byte.

	t.mu.Lock()

	for i, name := range names {
		t.addTokens(name, &encodings[i])

		if encodings[i].DataBytesRequired() > MaxDataSize {
			for j := 0; j <= i; j++ {
				t.freeSymbols(decodeSymbols(encodings[j].vec))
			}
			t.mu.Unlock()

			return fmt.Errorf("%w: element %d of list", ErrNameTooLong, i)
		}

		total += encodings[i].BytesRequired()
	}
	t.mu.Unlock()

	bytes := make([]byte, total)
	bytes[0] = byte(len(names))

	p := bytes[1:]
	for i := range encodings {
		p = p[encodings[i].MoveTo(p):]
	}

	list.attach(bytes)

	return nil
}

// SymbolInfo describes one live token for diagnostics.
type SymbolInfo struct {
	Token    string
	Symbol   Symbol
	RefCount uint32
}

// Snapshot returns the live tokens sorted by token string. Diagnostic only:
// the result is already stale when it returns.
func (t *Table) Snapshot() []SymbolInfo {
	t.mu.Lock()

	infos := make([]SymbolInfo, 0, len(t.encodeMap))
	for token, shared := range t.encodeMap {
		infos = append(infos, SymbolInfo{Token: token, Symbol: shared.symbol, RefCount: shared.refCount})
	}
	t.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Token < infos[j].Token })

	return infos
}

// addTokens splits name on "." and appends the symbol of each token to enc,
// interning tokens seen for the first time. Returns the symbols added.
// Caller must hold t.mu.
func (t *Table) addTokens(name string, enc *Encoding) []Symbol {
	if name == "" {
		return nil
	}

	tokens := strings.Split(name, ".")
	symbols := make([]Symbol, 0, len(tokens))

	for _, token := range tokens {
		s := t.toSymbol(token)
		enc.AddSymbol(s)
		symbols = append(symbols, s)
	}

	return symbols
}

// toSymbol finds or mints the symbol for one token, bumping its ref count.
// Caller must hold t.mu.
func (t *Table) toSymbol(token string) Symbol {
	shared, ok := t.encodeMap[token]
	if ok {
		shared.refCount++

		return shared.symbol
	}

	var s Symbol
	if n := len(t.pool); n > 0 {
		s = t.pool[n-1]
		t.pool = t.pool[:n-1]
	} else {
		s = t.monotonicCounter
		t.monotonicCounter++
	}

	// Store the token once; the encode key shares the decode value's bytes.
	t.decodeMap[s] = token
	t.encodeMap[token] = &sharedSymbol{symbol: s, refCount: 1}

	return s
}

// fromSymbol returns the token for a live symbol. Caller must hold t.mu.
func (t *Table) fromSymbol(s Symbol) string {
	token, ok := t.decodeMap[s]
	if !ok {
		panic(fmt.Sprintf("symtab: decode of unknown symbol %d", s))
	}

	return token
}

// freeSymbols drops one reference from each of symbols, reclaiming any that
// hit zero. Caller must hold t.mu.
func (t *Table) freeSymbols(symbols []Symbol) {
	for _, s := range symbols {
		token, ok := t.decodeMap[s]
		if !ok {
			panic(fmt.Sprintf("symtab: free of unknown symbol %d", s))
		}

		shared := t.encodeMap[token]
		if shared.refCount == 0 {
			panic(fmt.Sprintf("symtab: ref count underflow for token %q (symbol %d)", token, s))
		}

		shared.refCount--
		if shared.refCount == 0 {
			delete(t.encodeMap, token)
			delete(t.decodeMap, s)
			t.pool = append(t.pool, s)
		}
	}
}

// decodeToString resolves symbols to tokens and joins them with ".".
// Caller must hold t.mu.
func (t *Table) decodeToString(symbols []Symbol) string {
	if len(symbols) == 0 {
		return ""
	}

	tokens := make([]string, len(symbols))
	for i, s := range symbols {
		tokens[i] = t.fromSymbol(s)
	}

	return strings.Join(tokens, ".")
}

// errorNameLimit bounds how much of an oversized name is echoed in errors.
const errorNameLimit = 64

func truncateForError(name string) string {
	if len(name) <= errorNameLimit {
		return name
	}

	return name[:errorNameLimit] + "..."
}
