package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

func TestName_Sizes(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	storage := encodeOrFail(t, table, "a.b.c")
	name := storage.Name()

	// Three fresh symbols fit in one varint byte each.
	assert.Equal(t, 3, name.DataSize())
	assert.Equal(t, 5, name.Size())
	assert.Len(t, name.Data(), 3)

	storage.Free(table)
}

func TestName_Empty(t *testing.T) {
	t.Parallel()

	var zero symtab.Name

	assert.True(t, zero.Empty())
	assert.Zero(t, zero.DataSize())
	assert.Nil(t, zero.Data())

	table := symtab.New()
	storage := encodeOrFail(t, table, "")

	// An encoded empty string has storage, just no payload.
	assert.False(t, storage.Name().Empty())
	assert.Zero(t, storage.Name().DataSize())

	storage.Free(table)
}

func TestName_HashAndEqual(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	one := encodeOrFail(t, table, "same.name")
	two := encodeOrFail(t, table, "same.name")
	other := encodeOrFail(t, table, "other.name")

	assert.True(t, one.Name().Equal(two.Name()))
	assert.Equal(t, one.Name().Hash(), two.Name().Hash())

	assert.False(t, one.Name().Equal(other.Name()))
	assert.NotEqual(t, one.Name().Hash(), other.Name().Hash())

	for _, s := range []*symtab.Storage{one, two, other} {
		s.Free(table)
	}
}

func TestName_CopyTo(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	storage := encodeOrFail(t, table, "copy.me")
	name := storage.Name()

	dst := make([]byte, name.Size())
	name.CopyTo(dst)

	copied := symtab.NewName(dst)
	require.True(t, name.Equal(copied))

	// The copy's bytes are independent, but the symbol references are not:
	// a second owner needs IncRefCount (or Table.Dup) to hold them.
	table.IncRefCount(copied)
	storage.Free(table)

	assert.Equal(t, "copy.me", table.String(copied))

	table.Free(copied)
	assert.Zero(t, table.NumSymbols())
}
