package symtab

// StorageSet is a hash set of Storage that supports lookup by a borrowed
// Name without materializing a temporary Storage. Entries are bucketed by
// Name.Hash with byte-wise equality resolving collisions, so the borrowed
// and owned forms hash and compare identically.
//
// Like its elements, the set holds symbol references: Free(table) must be
// called before dropping a non-empty set.
type StorageSet struct {
	buckets map[uint64][]*Storage
	size    int
}

// NewStorageSet creates an empty set.
func NewStorageSet() *StorageSet {
	return &StorageSet{buckets: make(map[uint64][]*Storage)}
}

// Insert adds storage to the set. If an equal name is already present the
// set is unchanged and Insert returns the existing entry and false; the
// caller still owns (and must free) the rejected storage.
func (ss *StorageSet) Insert(storage *Storage) (*Storage, bool) {
	name := storage.Name()
	h := name.Hash()

	for _, existing := range ss.buckets[h] {
		if existing.Name().Equal(name) {
			return existing, false
		}
	}

	ss.buckets[h] = append(ss.buckets[h], storage)
	ss.size++

	return storage, true
}

// Find looks up the storage whose name equals the borrowed handle.
func (ss *StorageSet) Find(name Name) (*Storage, bool) {
	for _, existing := range ss.buckets[name.Hash()] {
		if existing.Name().Equal(name) {
			return existing, true
		}
	}

	return nil, false
}

// Size returns the number of entries.
func (ss *StorageSet) Size() int {
	return ss.size
}

// Free releases every contained storage back to the table and empties the
// set.
func (ss *StorageSet) Free(t *Table) {
	for _, bucket := range ss.buckets {
		for _, storage := range bucket {
			storage.Free(t)
		}
	}

	ss.buckets = make(map[uint64][]*Storage)
	ss.size = 0
}
