package symtab_test

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

func TestStorage_DoubleFreePanics(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	storage := encodeOrFail(t, table, "freed.twice")
	storage.Free(table)

	assert.Panics(t, func() { storage.Free(table) })
}

func TestManagedStorage_Close(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	managed, err := symtab.NewManagedStorage("managed.name", table)
	require.NoError(t, err)

	assert.Equal(t, "managed.name", table.String(managed.Name()))
	assert.Same(t, table, managed.Table())
	require.Equal(t, 2, table.NumSymbols())

	require.NoError(t, managed.Close())
	assert.Zero(t, table.NumSymbols())
}

func TestManagedStorage_EncodeError(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	_, err := symtab.NewManagedStorage(tooLongName(), table)
	require.ErrorIs(t, err, symtab.ErrNameTooLong)

	assert.Zero(t, table.NumSymbols())
}

func tooLongName() string {
	b := make([]byte, 0, 2*(symtab.MaxDataSize+1))
	for range symtab.MaxDataSize + 1 {
		b = append(b, 's', '.')
	}

	return string(b[:len(b)-1])
}

// Not parallel: the leak check is package-global state, and the test relies
// on being the only creator of never-freed storage while it is armed.
func TestStorage_LeakCheck(t *testing.T) { //nolint:paralleltest
	var leaks atomic.Int32

	symtab.EnableLeakCheck(func(string) { leaks.Add(1) })
	defer symtab.DisableLeakCheck()

	table := symtab.New()

	// Drop a storage without freeing it.
	func() {
		_ = encodeOrFail(t, table, "cluster.upstream_cx.total")
	}()

	require.Eventually(t, func() bool {
		runtime.GC()

		return leaks.Load() >= 1
	}, 5*time.Second, 10*time.Millisecond, "collected storage should report a leak")
}

// Not parallel: see TestStorage_LeakCheck.
func TestStorage_LeakCheckSilentAfterFree(t *testing.T) { //nolint:paralleltest
	var leaks atomic.Int32

	symtab.EnableLeakCheck(func(string) { leaks.Add(1) })
	defer symtab.DisableLeakCheck()

	table := symtab.New()

	func() {
		storage := encodeOrFail(t, table, "released.in.time")
		storage.Free(table)
	}()

	for range 3 {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Zero(t, leaks.Load())
}
