package symtab

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// Name is a borrowed view of one encoded name: a two-byte little-endian
// length header followed by the symbol payload. It does not own the bytes
// and does not keep them alive; the owner of the backing Storage (or List)
// must outlive every Name that references it.
//
// Name is a trivially-copyable handle. Hash and Equal operate on the raw
// encoded bytes and never touch the symbol table, so they are lock-free.
type Name struct {
	sizeAndData []byte
}

// NewName wraps raw size-prefixed bytes. The caller guarantees the slice
// holds a complete encoded name.
func NewName(sizeAndData []byte) Name {
	return Name{sizeAndData: sizeAndData}
}

// Empty reports whether the handle references no storage at all. Note that
// an encoded empty string is not Empty: it has a header and a zero-length
// payload.
func (n Name) Empty() bool {
	return n.sizeAndData == nil
}

// DataSize returns the payload size in bytes, excluding the length header.
func (n Name) DataSize() int {
	if n.sizeAndData == nil {
		return 0
	}

	return int(n.sizeAndData[0]) | int(n.sizeAndData[1])<<8
}

// Size returns the total encoded size, including the length header.
func (n Name) Size() int {
	return n.DataSize() + sizeEncodingBytes
}

// Data returns the symbol payload, without the length header.
func (n Name) Data() []byte {
	if n.sizeAndData == nil {
		return nil
	}

	return n.sizeAndData[sizeEncodingBytes:n.Size()]
}

// Hash returns a 64-bit hash of the payload bytes. Two Names encoding the
// same token sequence hash equal; the hash differs from that of the decoded
// string form.
func (n Name) Hash() uint64 {
	return xxhash.Sum64(n.Data())
}

// Equal reports byte-wise equality of the two payloads.
func (n Name) Equal(o Name) bool {
	return bytes.Equal(n.Data(), o.Data())
}

// CopyTo copies the full encoding, header included, into dst. dst must hold
// at least Size bytes.
func (n Name) CopyTo(dst []byte) {
	copy(dst, n.sizeAndData[:n.Size()])
}
