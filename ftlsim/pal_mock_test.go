package ftlsim_test

// recordingPAL is a scripted fake for ftlsim.PAL: every call advances tick
// by a fixed per-operation cost and bumps that operation's call counter, so
// tests can assert both timing and call counts without a generated mock.
type recordingPAL struct {
	readNs, writeNs, eraseNs uint64
	reads, writes, erases    int
}

func newRecordingPAL() *recordingPAL {
	return &recordingPAL{readNs: 100, writeNs: 200, eraseNs: 1000}
}

func (p *recordingPAL) Read(_, _ uint32, _ uint64, tick *uint64) {
	p.reads++
	*tick += p.readNs
}

func (p *recordingPAL) Write(_, _ uint32, _ uint64, tick *uint64) {
	p.writes++
	*tick += p.writeNs
}

func (p *recordingPAL) Erase(_ uint32, tick *uint64) {
	p.erases++
	*tick += p.eraseNs
}

// recordingDRAM is a scripted fake for ftlsim.DRAM.
type recordingDRAM struct {
	nsPerByte uint64
}

func newRecordingDRAM() *recordingDRAM { return &recordingDRAM{nsPerByte: 1} }

func (d *recordingDRAM) Read(nbytes int, tick *uint64)  { *tick += uint64(nbytes) * d.nsPerByte }
func (d *recordingDRAM) Write(nbytes int, tick *uint64) { *tick += uint64(nbytes) * d.nsPerByte }

// recordingCPU is a scripted fake for ftlsim.CPULatencyModel.
type recordingCPU struct {
	readNs, writeNs uint64
}

func newRecordingCPU() *recordingCPU { return &recordingCPU{readNs: 50, writeNs: 50} }

func (c *recordingCPU) AddReadLatency(tick *uint64)  { *tick += c.readNs }
func (c *recordingCPU) AddWriteLatency(tick *uint64) { *tick += c.writeNs }
