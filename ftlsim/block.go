package ftlsim

// subUnit is one addressable slice of a page. A logical page may be split
// into several sub-units when a write only touches part of it.
type subUnit struct {
	lpn   uint64
	valid bool
}

// Block is one physical erase block. Pages are numbered 0..pagesPerBlock-1,
// each page holding subUnitsPerPage sub-units. A page can only be written
// once per erase cycle, in cursor order.
type Block struct {
	index uint32

	pages           [][]subUnit
	nextWritePage   uint32
	validCount      uint32
	eraseCount      uint64
	lastAccessedAt  uint64
	lastWrittenAt   uint64
}

// NewBlock allocates a Block with the given geometry, all pages unwritten.
func NewBlock(index uint32, pagesPerBlock, subUnitsPerPage int) *Block {
	pages := make([][]subUnit, pagesPerBlock)
	for i := range pages {
		pages[i] = make([]subUnit, subUnitsPerPage)
	}

	return &Block{
		index: index,
		pages: pages,
	}
}

// Index returns the block's stable index within the device.
func (b *Block) Index() uint32 { return b.index }

// Sealed reports whether the block's write cursor has reached the last
// page — a sealed block is eligible as a GC victim.
func (b *Block) Sealed() bool { return int(b.nextWritePage) >= len(b.pages) }

// Write marks the given (page, sub-unit) valid and records the LPN. The
// caller must ensure page == the block's current write cursor for that
// sub-unit; writing out of cursor order is an invariant violation since the
// underlying NAND page can only be programmed once per erase cycle.
func (b *Block) Write(page uint32, subUnitIdx int, lpn uint64, now uint64) {
	if page != b.nextWritePage {
		panicInvariant("block %d: write to page %d, expected cursor %d", b.index, page, b.nextWritePage)
	}

	su := &b.pages[page][subUnitIdx]
	if !su.valid {
		b.validCount++
	}
	su.valid = true
	su.lpn = lpn
	b.lastWrittenAt = now
	b.lastAccessedAt = now

	if b.subUnitsFullyWritten(page) {
		b.nextWritePage++
	}
}

func (b *Block) subUnitsFullyWritten(page uint32) bool {
	for _, su := range b.pages[page] {
		if !su.valid {
			return false
		}
	}
	return true
}

// Read updates the block's last-accessed time. Validity is asserted by the
// caller (the mapping table only ever points at valid sub-units).
func (b *Block) Read(_ uint32, _ int, now uint64) {
	b.lastAccessedAt = now
}

// Invalidate clears a sub-unit's valid bit, keeping the recorded LPN around
// so GC can still reconstruct it before the physical page is reused.
func (b *Block) Invalidate(page uint32, subUnitIdx int) {
	su := &b.pages[page][subUnitIdx]
	if su.valid {
		su.valid = false
		b.validCount--
	}
}

// PageInfo returns the full sub-unit vector for a page (LPNs and validity),
// regardless of whether any individual sub-unit is currently valid.
func (b *Block) PageInfo(page uint32) (lpns []uint64, valid []bool) {
	su := b.pages[page]
	lpns = make([]uint64, len(su))
	valid = make([]bool, len(su))
	for i, s := range su {
		lpns[i] = s.lpn
		valid[i] = s.valid
	}
	return lpns, valid
}

// Erase resets all page state, clears the write cursor and increments the
// erase count. It fails with an invariant violation if any sub-unit is
// still valid — the engine must always copy valid data out before erasing.
func (b *Block) Erase() {
	if b.validCount != 0 {
		panicInvariant("block %d: erase attempted with %d valid pages remaining", b.index, b.validCount)
	}

	for i := range b.pages {
		for j := range b.pages[i] {
			b.pages[i][j] = subUnit{}
		}
	}
	b.nextWritePage = 0
	b.eraseCount++
}

// ValidPageCount returns the number of currently-valid sub-units.
func (b *Block) ValidPageCount() uint32 { return b.validCount }

// DirtyPageCount returns the number of written-but-invalidated sub-units.
func (b *Block) DirtyPageCount() uint32 {
	written := uint32(0)
	for _, page := range b.pages[:b.nextWritePage] {
		written += uint32(len(page))
	}
	return written - b.validCount
}

// NextWritePageIndex returns the block's current write cursor.
func (b *Block) NextWritePageIndex() uint32 { return b.nextWritePage }

// LastAccessedTime returns the tick of the most recent read or write.
func (b *Block) LastAccessedTime() uint64 { return b.lastAccessedAt }

// EraseCount returns how many times the block has been erased.
func (b *Block) EraseCount() uint64 { return b.eraseCount }

// PagesPerBlock returns the block's page geometry.
func (b *Block) PagesPerBlock() int { return len(b.pages) }
