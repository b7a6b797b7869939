package ftlsim

// unmappedBlock is the sentinel block index stored for a sub-unit that has
// been recorded but never physically written (see writeInternal's handling
// of the "empty mapping entry" case in the original page-mapping engine).
const unmappedBlock = ^uint32(0)

// mappingEntry is one (block, page) pointer for a single I/O sub-unit of a
// logical page.
type mappingEntry struct {
	block uint32
	page  uint32
}

func (m mappingEntry) mapped() bool { return m.block != unmappedBlock }

// MappingTable maps a logical page number to a fixed-length vector of
// (block, page) pairs, one per I/O sub-unit. Absent keys mean "unmapped".
type MappingTable struct {
	subUnitsPerPage int
	entries         map[uint64][]mappingEntry
}

// NewMappingTable creates an empty table for the given sub-unit geometry.
func NewMappingTable(subUnitsPerPage int) *MappingTable {
	return &MappingTable{
		subUnitsPerPage: subUnitsPerPage,
		entries:         make(map[uint64][]mappingEntry),
	}
}

// Get returns the mapping vector for lpn and whether it exists at all.
func (t *MappingTable) Get(lpn uint64) ([]mappingEntry, bool) {
	e, ok := t.entries[lpn]
	return e, ok
}

// Ensure returns the mapping vector for lpn, creating an all-unmapped entry
// if none exists yet.
func (t *MappingTable) Ensure(lpn uint64) []mappingEntry {
	e, ok := t.entries[lpn]
	if !ok {
		e = make([]mappingEntry, t.subUnitsPerPage)
		for i := range e {
			e[i] = mappingEntry{block: unmappedBlock}
		}
		t.entries[lpn] = e
	}
	return e
}

// Upsert points sub-unit subUnitIdx of lpn at (block, page).
func (t *MappingTable) Upsert(lpn uint64, subUnitIdx int, block, page uint32) {
	e := t.Ensure(lpn)
	e[subUnitIdx] = mappingEntry{block: block, page: page}
}

// Erase removes the entire mapping for lpn.
func (t *MappingTable) Erase(lpn uint64) {
	delete(t.entries, lpn)
}

// RangeErase removes mappings for count consecutive LPNs starting at
// startLPN, invalidating the referenced sub-unit in blocks along the way so
// the mapping-validity invariant holds afterward, and returns the set of
// distinct block indices touched (used by Format to scope its restricted
// full GC).
func (t *MappingTable) RangeErase(startLPN uint64, count uint64, blocks map[uint32]*Block) map[uint32]struct{} {
	touched := make(map[uint32]struct{})

	for lpn := startLPN; lpn < startLPN+count; lpn++ {
		e, ok := t.entries[lpn]
		if !ok {
			continue
		}
		for i, m := range e {
			if !m.mapped() {
				continue
			}
			touched[m.block] = struct{}{}
			if blk, ok := blocks[m.block]; ok {
				blk.Invalidate(m.page, i)
			}
		}
		delete(t.entries, lpn)
	}

	return touched
}

// Len returns the number of mapped LPNs.
func (t *MappingTable) Len() int { return len(t.entries) }
