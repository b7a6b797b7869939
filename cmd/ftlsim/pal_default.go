package main

// fixedLatencyPAL is a minimal, deterministic NAND timing model for the CLI:
// every PAL operation advances tick by a fixed per-kind latency. Grounded on
// the teacher's fixed-latency connection idiom (a constant-delay stand-in
// for a detailed timing model), adapted here to the PAL/DRAM/CPU interfaces
// ftlsim.PageMappingEngine consumes rather than to a connection.
type fixedLatencyPAL struct {
	readLatency  uint64
	writeLatency uint64
	eraseLatency uint64
}

func newFixedLatencyPAL(readNs, writeNs, eraseNs uint64) *fixedLatencyPAL {
	return &fixedLatencyPAL{readLatency: readNs, writeLatency: writeNs, eraseLatency: eraseNs}
}

func (p *fixedLatencyPAL) Read(_, _ uint32, _ uint64, tick *uint64)  { *tick += p.readLatency }
func (p *fixedLatencyPAL) Write(_, _ uint32, _ uint64, tick *uint64) { *tick += p.writeLatency }
func (p *fixedLatencyPAL) Erase(_ uint32, tick *uint64)              { *tick += p.eraseLatency }

// fixedLatencyDRAM is the DRAM-side counterpart: a flat per-byte latency.
type fixedLatencyDRAM struct {
	nsPerByte uint64
}

func newFixedLatencyDRAM(nsPerByte uint64) *fixedLatencyDRAM {
	return &fixedLatencyDRAM{nsPerByte: nsPerByte}
}

func (d *fixedLatencyDRAM) Read(nbytes int, tick *uint64)  { *tick += uint64(nbytes) * d.nsPerByte }
func (d *fixedLatencyDRAM) Write(nbytes int, tick *uint64) { *tick += uint64(nbytes) * d.nsPerByte }

// fixedCPULatency models the outer simulator's per-I/O CPU overhead as a
// flat constant, split between read and write completion paths.
type fixedCPULatency struct {
	readNs  uint64
	writeNs uint64
}

func newFixedCPULatency(readNs, writeNs uint64) *fixedCPULatency {
	return &fixedCPULatency{readNs: readNs, writeNs: writeNs}
}

func (c *fixedCPULatency) AddReadLatency(tick *uint64)  { *tick += c.readNs }
func (c *fixedCPULatency) AddWriteLatency(tick *uint64) { *tick += c.writeNs }
