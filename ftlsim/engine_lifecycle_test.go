package ftlsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// smallDeviceConfig builds a 6-block, 4-page, single-sub-unit device — small
// enough that write-stream rotation and GC triggering can be hand-traced.
func smallDeviceConfig() *ftlsim.Config {
	cfg := ftlsim.NewConfig()
	cfg.TotalPhysicalBlocks = 6
	cfg.PagesPerBlock = 4
	cfg.SubUnitsPerPage = 1
	cfg.GCMode = ftlsim.GCModeFixedN
	cfg.GCReclaimBlocks = 1
	return cfg
}

var _ = Describe("PageMappingEngine", func() {
	var (
		pal   *recordingPAL
		dram  *recordingDRAM
		cpu   *recordingCPU
		tick  uint64
	)

	BeforeEach(func() {
		pal = newRecordingPAL()
		dram = newRecordingDRAM()
		cpu = newRecordingCPU()
		tick = 0
	})

	Describe("cold sequential fill with DefaultPolicy", func() {
		It("reclaims sealed blocks each time the write stream rolls onto a fresh block", func() {
			cfg := smallDeviceConfig()
			metrics := ftlsim.NewMetricsCollector("default", "", 100, false)
			policy := ftlsim.NewDefaultPolicy(0.5, uint32(cfg.TotalPhysicalBlocks), metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			Expect(engine.FreeBlocks()).To(Equal(uint32(5)))

			for lpn := uint64(0); lpn < 13; lpn++ {
				engine.Write(ftlsim.IORequest{LPN: lpn, SubUnitMask: 1}, &tick)
			}

			gcCount, reclaimedBlocks, superpageCopies, pageCopies, wearLeveling := engine.Stats()
			Expect(gcCount).To(Equal(uint64(3)))
			Expect(reclaimedBlocks).To(Equal(uint64(5)))
			Expect(superpageCopies).To(Equal(uint64(20)))
			Expect(pageCopies).To(Equal(uint64(20)))
			Expect(engine.FreeBlocks()).To(Equal(uint32(2)))
			Expect(wearLeveling).To(BeNumerically(">", -1))
		})
	})

	Describe("LazyRtgcPolicy", func() {
		It("bounds a single GC pass to its configured page-copy budget", func() {
			cfg := smallDeviceConfig()
			metrics := ftlsim.NewMetricsCollector("lazyrtgc", "", 100, false)
			policy := ftlsim.NewLazyRtgcPolicy(2, 2, metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			for lpn := uint64(0); lpn < 13; lpn++ {
				engine.Write(ftlsim.IORequest{LPN: lpn, SubUnitMask: 1}, &tick)
			}

			gcCount, _, _, pageCopies, _ := engine.Stats()
			Expect(gcCount).To(Equal(uint64(5)))
			Expect(pageCopies).To(Equal(uint64(10)))

			snap := policy.Metrics().Snapshot()
			Expect(snap.TotalPageCopies).To(Equal(uint64(10)))
			Expect(snap.ValidPageCopies).To(Equal(uint64(0)))
		})
	})

	Describe("Trim", func() {
		It("removes the mapping and generates no further PAL traffic on read", func() {
			cfg := smallDeviceConfig()
			metrics := ftlsim.NewMetricsCollector("default", "", 100, false)
			policy := ftlsim.NewDefaultPolicy(0.9, uint32(cfg.TotalPhysicalBlocks), metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			engine.Write(ftlsim.IORequest{LPN: 5, SubUnitMask: 1}, &tick)
			engine.Trim(5)

			readsBefore := pal.reads
			engine.Read(ftlsim.IORequest{LPN: 5, SubUnitMask: 1}, &tick)

			Expect(pal.reads).To(Equal(readsBefore))
		})
	})

	Describe("Format", func() {
		It("erases every mapping in the range and re-establishes the block-validity invariant", func() {
			cfg := smallDeviceConfig()
			metrics := ftlsim.NewMetricsCollector("default", "", 100, false)
			policy := ftlsim.NewDefaultPolicy(0.9, uint32(cfg.TotalPhysicalBlocks), metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			for lpn := uint64(0); lpn < 4; lpn++ {
				engine.Write(ftlsim.IORequest{LPN: lpn, SubUnitMask: 1}, &tick)
			}

			engine.Format(0, 4, &tick)

			readsBefore := pal.reads
			for lpn := uint64(0); lpn < 4; lpn++ {
				engine.Read(ftlsim.IORequest{LPN: lpn, SubUnitMask: 1}, &tick)
			}
			Expect(pal.reads).To(Equal(readsBefore))
		})
	})

	Describe("wear leveling", func() {
		It("returns -1 before any block has been erased, and a value in (0,1] once erases have happened", func() {
			cfg := smallDeviceConfig()
			metrics := ftlsim.NewMetricsCollector("default", "", 100, false)
			policy := ftlsim.NewDefaultPolicy(0.5, uint32(cfg.TotalPhysicalBlocks), metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			Expect(engine.WearLevelingFactor()).To(Equal(-1.0))

			for lpn := uint64(0); lpn < 13; lpn++ {
				engine.Write(ftlsim.IORequest{LPN: lpn, SubUnitMask: 1}, &tick)
			}

			wl := engine.WearLevelingFactor()
			Expect(wl).To(BeNumerically(">", 0))
			Expect(wl).To(BeNumerically("<=", 1))
		})
	})
})
