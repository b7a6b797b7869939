package main

import (
	"fmt"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// simulate drives engine through ops, advancing a single shared tick. It
// returns nothing; callers read the final stats from engine. Shared by run
// and replay.
func simulate(engine *ftlsim.PageMappingEngine, ops []op) {
	var tick uint64
	for _, o := range ops {
		switch o.kind {
		case opRead:
			engine.Read(ftlsim.IORequest{LPN: o.lpn, SubUnitMask: o.mask}, &tick)
		case opWrite:
			engine.Write(ftlsim.IORequest{LPN: o.lpn, SubUnitMask: o.mask}, &tick)
		case opTrim:
			engine.Trim(o.lpn)
		case opFormat:
			engine.Format(o.lpn, o.rangeCount, &tick)
		}
	}
}

func printSummary(verb string, engine *ftlsim.PageMappingEngine, label string) {
	gcCount, reclaimed, superpage, pageCopies, wearLeveling := engine.Stats()
	fmt.Printf("%s %s: policy=%s gc.count=%d gc.reclaimed_blocks=%d gc.superpage_copies=%d gc.page_copies=%d wear_leveling=%.6f\n",
		verb, engine.RunID, label, gcCount, reclaimed, superpage, pageCopies, wearLeveling)
}

func defaultTimingModel() (*fixedLatencyPAL, *fixedLatencyDRAM, *fixedCPULatency) {
	return newFixedLatencyPAL(25_000, 200_000, 1_500_000), newFixedLatencyDRAM(1), newFixedCPULatency(500, 700)
}
