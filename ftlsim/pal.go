package ftlsim

// PAL is the NAND physical-abstraction-layer timing model, consumed but not
// implemented here (spec §1: "the NAND physical abstraction layer... that
// models per-plane read/program/erase timing" is an external collaborator).
// Each call advances *tick by a device-modeled amount; failure is not
// modeled. Engine tests drive it through the hand-written recordingPAL
// fake in pal_mock_test.go.
type PAL interface {
	Read(block, page uint32, subUnitMask uint64, tick *uint64)
	Write(block, page uint32, subUnitMask uint64, tick *uint64)
	Erase(block uint32, tick *uint64)
}

// DRAM is the DRAM-access cost model, also an external collaborator per
// spec §1. Contents are unused; only the opaque latency advance matters.
type DRAM interface {
	Read(nbytes int, tick *uint64)
	Write(nbytes int, tick *uint64)
}

// CPULatencyModel advances tick by the outer simulator's modeled CPU
// overhead for one logical I/O. The engine calls it once per Read/Write
// after the PAL work completes (spec §4.10 steps 3/4).
type CPULatencyModel interface {
	AddReadLatency(tick *uint64)
	AddWriteLatency(tick *uint64)
}
