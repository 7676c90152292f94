package symtab

// MaxListSize is the maximum number of names one List can hold: the element
// count is stored in a single leading byte.
const MaxListSize = 255

// List packs several encoded names into one contiguous allocation, so a
// group of related names (a metric's tags, say) costs a single header and
// allocation instead of one per name. The layout is
//
//	[count] [sz_lo][sz_hi][payload] [sz_lo][sz_hi][payload] ...
//
// There is no random access; elements are visited in order via Iterate.
//
// A List is filled exactly once by Table.PopulateList and, like Storage,
// must be released with Free(table) before it becomes unreachable.
type List struct {
	storage []byte
}

// Populated reports whether the list has been filled.
func (l *List) Populated() bool {
	return l.storage != nil
}

// Len returns the number of names in the list.
func (l *List) Len() int {
	if l.storage == nil {
		return 0
	}

	return int(l.storage[0])
}

// Iterate calls f for each name in order. f returns true to continue, false
// to stop early. The yielded Names borrow the list's storage and must not
// outlive it.
func (l *List) Iterate(f func(Name) bool) {
	if l.storage == nil {
		return
	}

	p := l.storage[1:]
	for range l.Len() {
		n := NewName(p)
		if !f(n) {
			return
		}

		p = p[n.Size():]
	}
}

// Strings decodes every element through t. Convenience for diagnostics and
// tests.
func (l *List) Strings(t *Table) []string {
	out := make([]string, 0, l.Len())
	l.Iterate(func(n Name) bool {
		out = append(out, t.String(n))

		return true
	})

	return out
}

// Free returns the symbol references of every element to the table and
// empties the list. Freeing an unpopulated list is a no-op.
func (l *List) Free(t *Table) {
	l.Iterate(func(n Name) bool {
		t.Free(n)

		return true
	})

	disarmLeakCheck(l)
	l.storage = nil
}

// attach adopts the packed storage produced by Table.PopulateList.
func (l *List) attach(bytes []byte) {
	l.storage = bytes
	armLeakCheck(l, func(*List) { reportLeak("symtab: List dropped without Free") })
}
