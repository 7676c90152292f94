package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

func TestStorageSet_InsertAndFind(t *testing.T) {
	t.Parallel()

	table := symtab.New()
	set := symtab.NewStorageSet()

	total := encodeOrFail(t, table, "cluster.cx.total")
	active := encodeOrFail(t, table, "cluster.cx.active")

	_, inserted := set.Insert(total)
	require.True(t, inserted)
	_, inserted = set.Insert(active)
	require.True(t, inserted)
	assert.Equal(t, 2, set.Size())

	// Lookup by a borrowed handle from an independent encode: no owned
	// temporary is materialized by the set.
	probe := encodeOrFail(t, table, "cluster.cx.total")

	found, ok := set.Find(probe.Name())
	require.True(t, ok)
	assert.Same(t, total, found)

	missing := encodeOrFail(t, table, "cluster.cx.missing")

	_, ok = set.Find(missing.Name())
	assert.False(t, ok)

	probe.Free(table)
	missing.Free(table)
	set.Free(table)
	assert.Zero(t, table.NumSymbols())
}

func TestStorageSet_DuplicateInsert(t *testing.T) {
	t.Parallel()

	table := symtab.New()
	set := symtab.NewStorageSet()

	first := encodeOrFail(t, table, "dup.name")
	second := encodeOrFail(t, table, "dup.name")

	_, inserted := set.Insert(first)
	require.True(t, inserted)

	existing, inserted := set.Insert(second)
	assert.False(t, inserted)
	assert.Same(t, first, existing)
	assert.Equal(t, 1, set.Size())

	// The rejected storage is still owned by the caller.
	second.Free(table)
	set.Free(table)
	assert.Zero(t, table.NumSymbols())
}

func TestStorageSet_FreeEmptiesSet(t *testing.T) {
	t.Parallel()

	table := symtab.New()
	set := symtab.NewStorageSet()

	for _, name := range []string{"a.b", "a.c", "d"} {
		_, inserted := set.Insert(encodeOrFail(t, table, name))
		require.True(t, inserted)
	}

	require.Equal(t, 4, table.NumSymbols())

	set.Free(table)

	assert.Zero(t, set.Size())
	assert.Zero(t, table.NumSymbols())
}
