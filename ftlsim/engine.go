package ftlsim

import "github.com/rs/xid"

// IORequest describes one logical I/O: the logical page number and a
// bitmap of which sub-units it touches.
type IORequest struct {
	LPN         uint64
	SubUnitMask uint64
}

// dramMappingEntryBytes is the size of one LPN's mapping-table entry,
// charged against the DRAM cost model whenever the engine fetches or
// updates it (spec §4.10: "DRAM (consumed)... contents unused", modeled
// here as the opaque cost of touching the entry that lives in DRAM).
const dramMappingEntryBytes = 8

// writeStream tracks one of the engine's P parallel allocation streams:
// the block currently being written and which sub-units of its current
// page have already been claimed by an in-flight write.
type writeStream struct {
	block       *Block
	claimedMask uint64
}

// PageMappingEngine orchestrates Read/Write/Trim/Format over a page-
// mapped flash device: mapping table lookups/updates, PAL sub-requests,
// victim selection and on-demand GC, delegating the when/how-much GC
// decision to a pluggable GcPolicy. Grounded in full on
// original_source/simplessd/ftl/page_mapping.cc.
type PageMappingEngine struct {
	RunID string

	cfg *Config

	blocks   map[uint32]*Block
	freePool *FreeBlockPool
	table    *MappingTable
	victims  *VictimSelector
	policy   GcPolicy

	pal  PAL
	dram DRAM
	cpu  CPULatencyModel

	streams     []writeStream
	streamIdx   uint32
	reclaimMore bool

	stats engineStats
}

type engineStats struct {
	gcCount          uint64
	reclaimedBlocks  uint64
	superpageCopies  uint64
	pageCopies       uint64
}

// NewEngine constructs a PageMappingEngine over cfg's geometry, with all
// blocks starting free (device initialization). policy must already be
// constructed against the same Config's GC parameters.
func NewEngine(cfg *Config, pal PAL, dram DRAM, cpu CPULatencyModel, policy GcPolicy, numStreams uint32) *PageMappingEngine {
	cfg.Validate()

	blocks := make(map[uint32]*Block, cfg.TotalPhysicalBlocks)
	seed := make([]*Block, 0, cfg.TotalPhysicalBlocks)
	for i := 0; i < cfg.TotalPhysicalBlocks; i++ {
		b := NewBlock(uint32(i), cfg.PagesPerBlock, cfg.SubUnitsPerPage)
		blocks[b.Index()] = b
		seed = append(seed, b)
	}

	pool := NewFreeBlockPool()
	pool.Seed(seed)

	if numStreams == 0 {
		numStreams = 1
	}

	e := &PageMappingEngine{
		RunID:     xid.New().String(),
		cfg:       cfg,
		blocks:    blocks,
		freePool:  pool,
		table:     NewMappingTable(cfg.SubUnitsPerPage),
		victims:   NewVictimSelector(cfg.EvictPolicy, cfg.DChoiceParam, cfg.RNGSeed),
		policy:    policy,
		pal:       pal,
		dram:      dram,
		cpu:       cpu,
		streams:   make([]writeStream, numStreams),
	}

	for i := range e.streams {
		e.streams[i].block = pool.Take(uint32(i), numStreams)
	}

	return e
}

// FreeBlocks returns the number of blocks currently in the free pool.
func (e *PageMappingEngine) FreeBlocks() uint32 { return uint32(e.freePool.Len()) }

// Read implements spec §4.10's read algorithm: for each requested sub-unit,
// look up the mapping, issue a PAL read if it exists (missing mappings
// return silently with no PAL traffic), advance tick by CPU latency,
// record the response time, and resolve any pending RL update.
func (e *PageMappingEngine) Read(req IORequest, tick *uint64) {
	start := *tick

	e.dram.Read(dramMappingEntryBytes, tick)

	if entries, ok := e.table.Get(req.LPN); ok {
		beginAt := *tick
		for i, m := range entries {
			if !bitSet(req.SubUnitMask, i) || !m.mapped() {
				continue
			}
			blk, ok := e.blocks[m.block]
			if !ok {
				panicInvariant("read: mapping references missing block %d", m.block)
			}
			palTick := beginAt
			e.pal.Read(m.block, m.page, req.SubUnitMask, &palTick)
			blk.Read(m.page, i, palTick)
			*tick = palTick
		}
	}

	e.cpu.AddReadLatency(tick)
	end := *tick

	e.policy.OnResponse(end - start)

	if rt, ok := e.policy.(ReadTriggerer); ok {
		if rt.ShouldTriggerOnRead(e.FreeBlocks(), *tick) {
			e.runGC(false, tick)
		}
	}
}

// Write implements spec §4.10's write algorithm: invalidate prior
// mappings, allocate the current write-block, write each touched
// sub-unit, advance tick, record metrics, and finally run the
// policy-driven (or reclaim-forced) GC decision.
func (e *PageMappingEngine) Write(req IORequest, tick *uint64) {
	start := *tick

	entries := e.table.Ensure(req.LPN)
	for i, m := range entries {
		if !bitSet(req.SubUnitMask, i) {
			continue
		}
		if m.mapped() {
			if blk, ok := e.blocks[m.block]; ok {
				blk.Invalidate(m.page, i)
			}
		}
	}

	stream := e.currentStream(req.SubUnitMask)
	blk := stream.block
	page := blk.NextWritePageIndex()

	for i := range entries {
		if !bitSet(req.SubUnitMask, i) {
			continue
		}
		blk.Write(page, i, req.LPN, *tick)
		e.pal.Write(blk.Index(), page, req.SubUnitMask, tick)
		e.table.Upsert(req.LPN, i, blk.Index(), page)
	}

	e.dram.Write(dramMappingEntryBytes, tick)

	e.cpu.AddWriteLatency(tick)
	end := *tick

	e.policy.OnResponse(end - start)

	e.maybeRunGC(tick)
}

func (e *PageMappingEngine) maybeRunGC(tick *uint64) {
	trigger := e.policy.ShouldTrigger(e.FreeBlocks(), *tick)
	if !trigger.Fire && !e.reclaimMore {
		return
	}

	e.runGC(trigger.Intensive, tick)
}

func (e *PageMappingEngine) runGC(intensive bool, tick *uint64) {
	switch p := e.policy.(type) {
	case *LazyRtgcPolicy:
		budget := p.Action(e.FreeBlocks())
		copied := e.partialGC(nil, uint64(budget), tick)
		p.RecordGCInvocation(uint64(copied), 0)
	case *RlAggressivePolicy:
		var action uint32
		if intensive {
			action = p.MaxGCAction()
		} else {
			action = p.Action(e.FreeBlocks())
		}
		copied := e.partialGC(nil, uint64(action), tick)
		p.RecordGCInvocation(uint64(copied), 0)
	case *RlIntensivePolicy:
		action := p.Action(e.FreeBlocks())
		copied := e.partialGC(nil, uint64(action), tick)
		p.RecordGCInvocation(uint64(copied), 0)
	case *RlBaselinePolicy:
		action := p.Action(e.FreeBlocks())
		copied := e.partialGC(nil, uint64(action), tick)
		p.RecordGCInvocation(uint64(copied), 0)
	default:
		victims := e.selectVictims(nil)
		copied := e.fullGC(victims, tick)
		e.policy.RecordGCInvocation(uint64(copied), uint64(copied))
	}

	e.reclaimMore = false
}

// Trim implements spec §4.10: invalidate every sub-unit of the LPN and
// remove the mapping entirely. No GC is triggered.
func (e *PageMappingEngine) Trim(lpn uint64) {
	entries, ok := e.table.Get(lpn)
	if !ok {
		return
	}
	for i, m := range entries {
		if !m.mapped() {
			continue
		}
		if blk, ok := e.blocks[m.block]; ok {
			blk.Invalidate(m.page, i)
		}
	}
	e.table.Erase(lpn)
}

// Format implements spec §4.10: trim every LPN in [startLPN,
// startLPN+count), collect the distinct blocks that were touched, then run
// a full GC restricted to just those blocks.
func (e *PageMappingEngine) Format(startLPN, count uint64, tick *uint64) {
	touched := e.table.RangeErase(startLPN, count, e.blocks)
	if len(touched) == 0 {
		return
	}

	victims := make([]uint32, 0, len(touched))
	for idx := range touched {
		victims = append(victims, idx)
	}

	copied := e.fullGC(victims, tick)
	e.policy.RecordGCInvocation(uint64(copied), uint64(copied))
}

func (e *PageMappingEngine) selectVictims(provided []uint32) []uint32 {
	if len(provided) > 0 {
		return provided
	}

	n := e.reclaimCount()
	return e.victims.Select(e.blocks, n, e.lastTick())
}

func (e *PageMappingEngine) reclaimCount() int {
	n := e.cfg.GCReclaimBlocks
	if e.cfg.GCMode == GCModeUpToRatio {
		n = int(float64(e.cfg.TotalPhysicalBlocks)*e.cfg.GCReclaimThreshold) - int(e.FreeBlocks())
		if n < 0 {
			n = 0
		}
	}
	if e.reclaimMore {
		n += len(e.streams)
	}
	return n
}

func (e *PageMappingEngine) lastTick() uint64 {
	return e.streams[0].block.LastAccessedTime()
}

// partialGC implements spec §4.10's bounded-copy algorithm: operate only
// on the first victim, copy up to budget valid pages out of it, erase it
// if it ends up empty, and return the number of pages actually copied.
func (e *PageMappingEngine) partialGC(provided []uint32, budget uint64, tick *uint64) uint64 {
	if budget == 0 {
		return 0
	}

	e.stats.gcCount++

	victims := e.selectVictims(provided)
	if len(victims) == 0 {
		return 0
	}

	v := e.blocks[victims[0]]
	if v.ValidPageCount() == 0 {
		e.eraseBlock(v, tick)
		return 0
	}

	var copied uint64
	for page := uint32(0); page < uint32(v.PagesPerBlock()) && copied < budget; page++ {
		lpns, valid := v.PageInfo(page)
		if !anyValid(valid) {
			continue
		}
		e.copyPage(v, page, lpns, valid, tick)
		copied++
	}

	if v.ValidPageCount() == 0 {
		e.eraseBlock(v, tick)
	}

	e.stats.pageCopies += copied
	return copied
}

// fullGC implements DefaultPolicy's unbounded bulk reclaim: loop over
// every victim, copying out every valid page, with no per-call budget.
func (e *PageMappingEngine) fullGC(victims []uint32, tick *uint64) uint64 {
	victims = e.selectVictims(victims)
	e.stats.gcCount++

	var totalCopied uint64
	for _, idx := range victims {
		v := e.blocks[idx]
		if v.ValidPageCount() == 0 {
			e.eraseBlock(v, tick)
			continue
		}

		for page := uint32(0); page < uint32(v.PagesPerBlock()); page++ {
			lpns, valid := v.PageInfo(page)
			if !anyValid(valid) {
				continue
			}
			e.copyPage(v, page, lpns, valid, tick)
			totalCopied++
		}

		if v.ValidPageCount() == 0 {
			e.eraseBlock(v, tick)
		}
	}

	e.stats.pageCopies += totalCopied
	e.stats.superpageCopies += totalCopied
	return totalCopied
}

func (e *PageMappingEngine) copyPage(v *Block, page uint32, lpns []uint64, valid []bool, tick *uint64) {
	mask := maskFromValid(valid)

	stream := e.currentStream(mask)
	newBlock := stream.block
	newPage := newBlock.NextWritePageIndex()

	e.pal.Read(v.Index(), page, mask, tick)
	e.pal.Write(newBlock.Index(), newPage, mask, tick)

	for i, ok := range valid {
		if !ok {
			continue
		}
		newBlock.Write(newPage, i, lpns[i], *tick)
		e.table.Upsert(lpns[i], i, newBlock.Index(), newPage)
		v.Invalidate(page, i)
	}
}

func (e *PageMappingEngine) eraseBlock(v *Block, tick *uint64) {
	e.pal.Erase(v.Index(), tick)
	v.Erase()
	e.policy.RecordBlockErase()
	e.stats.reclaimedBlocks++

	if v.EraseCount() < e.cfg.BadBlockThreshold {
		e.freePool.Return(v)
	}
	// else: block is permanently retired, never returned to the pool.
}

// currentStream returns the write stream for the incoming sub-unit mask,
// advancing the round-robin stream cursor when the requested sub-units
// collide with the current stream's claimed bitmap, and pulling a fresh
// block (raising reclaimMore) when the current stream's block is sealed.
func (e *PageMappingEngine) currentStream(mask uint64) *writeStream {
	s := &e.streams[e.streamIdx]

	if s.claimedMask&mask != 0 {
		e.streamIdx = (e.streamIdx + 1) % uint32(len(e.streams))
		s = &e.streams[e.streamIdx]
		s.claimedMask = 0
	}

	if s.block.Sealed() {
		s.block = e.freePool.Take(e.streamIdx, uint32(len(e.streams)))
		s.claimedMask = 0
		e.reclaimMore = true
	}

	s.claimedMask |= mask
	return s
}

// Stats exposes the outer-simulator-facing counters from spec §6:
// gc.count, gc.reclaimed_blocks, gc.superpage_copies, gc.page_copies, and
// the device-wide wear-leveling factor.
func (e *PageMappingEngine) Stats() (gcCount, reclaimedBlocks, superpageCopies, pageCopies uint64, wearLeveling float64) {
	return e.stats.gcCount, e.stats.reclaimedBlocks, e.stats.superpageCopies, e.stats.pageCopies, e.WearLevelingFactor()
}

// WearLevelingFactor computes (sum e_i)^2 / (B * sum e_i^2) over every
// used block (active + free), returning -1 when the sum of squares is
// zero (spec §6).
func (e *PageMappingEngine) WearLevelingFactor() float64 {
	var sum, sumSquares float64

	for _, b := range e.blocks {
		ec := float64(b.EraseCount())
		sum += ec
		sumSquares += ec * ec
	}

	if sumSquares == 0 {
		return -1
	}
	return (sum * sum) / (float64(e.cfg.TotalPhysicalBlocks) * sumSquares)
}

func bitSet(mask uint64, i int) bool { return mask&(1<<uint(i)) != 0 }

func anyValid(valid []bool) bool {
	for _, v := range valid {
		if v {
			return true
		}
	}
	return false
}

func maskFromValid(valid []bool) uint64 {
	var mask uint64
	for i, v := range valid {
		if v {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
