package ftlsim

import "container/list"

// FreeBlockPool is an ordered sequence of free blocks awaiting allocation,
// kept non-decreasing by erase count so that the youngest (lowest-erase)
// blocks come out first — the simulator's only wear-leveling mechanism.
type FreeBlockPool struct {
	l *list.List
}

// NewFreeBlockPool returns an empty pool.
func NewFreeBlockPool() *FreeBlockPool {
	return &FreeBlockPool{l: list.New()}
}

// Seed inserts blocks in the order given, without re-sorting — used at
// device initialization when every block starts at erase count zero.
func (p *FreeBlockPool) Seed(blocks []*Block) {
	for _, b := range blocks {
		p.l.PushBack(b)
	}
}

// Len returns the number of free blocks.
func (p *FreeBlockPool) Len() int { return p.l.Len() }

// Take removes and returns the first block whose index modulo the number
// of parallel streams equals streamIdx, falling back to the very first
// free block if no such block exists.
func (p *FreeBlockPool) Take(streamIdx uint32, numStreams uint32) *Block {
	if p.l.Len() == 0 {
		panicInvariant("free block pool exhausted")
	}

	var fallback *list.Element
	for e := p.l.Front(); e != nil; e = e.Next() {
		blk := e.Value.(*Block)
		if fallback == nil {
			fallback = e
		}
		if blk.Index()%numStreams == streamIdx {
			p.l.Remove(e)
			return blk
		}
	}

	blk := fallback.Value.(*Block)
	p.l.Remove(fallback)
	return blk
}

// Return performs ordered insertion by erase count: it scans backward from
// the tail and inserts just after the first block whose erase count is
// less than or equal to the returning block's, keeping the list sorted in
// a single deterministic pass.
func (p *FreeBlockPool) Return(b *Block) {
	for e := p.l.Back(); e != nil; e = e.Prev() {
		if e.Value.(*Block).EraseCount() <= b.EraseCount() {
			p.l.InsertAfter(b, e)
			return
		}
	}
	p.l.PushFront(b)
}

// NonDecreasingByEraseCount reports whether the pool currently satisfies
// its sort invariant — used by property tests, not by the hot path.
func (p *FreeBlockPool) NonDecreasingByEraseCount() bool {
	prev := uint64(0)
	for e := p.l.Front(); e != nil; e = e.Next() {
		cur := e.Value.(*Block).EraseCount()
		if cur < prev {
			return false
		}
		prev = cur
	}
	return true
}
