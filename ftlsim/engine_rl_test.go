package ftlsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ftlsim/ftlsim"
)

var _ = Describe("PageMappingEngine with RL policies", func() {
	var (
		pal  *recordingPAL
		dram *recordingDRAM
		cpu  *recordingCPU
		tick uint64
	)

	BeforeEach(func() {
		pal = newRecordingPAL()
		dram = newRecordingDRAM()
		cpu = newRecordingCPU()
		tick = 0
	})

	Describe("RlBaselinePolicy", func() {
		It("decays epsilon toward the floor as writes accumulate", func() {
			cfg := ftlsim.NewConfig()
			cfg.TotalPhysicalBlocks = 40
			cfg.PagesPerBlock = 4
			cfg.SubUnitsPerPage = 1

			metrics := ftlsim.NewMetricsCollector("rlbaseline", "", 1000, false)
			params := ftlsim.RlBaselineParams{
				Alpha: 0.3, Gamma: 0.8, Epsilon: 1.0,
				NumActions: 10, TgcThreshold: 35, TigcThreshold: 2,
				MaxPageCopies: 10, IntensiveCopies: 7, RNGSeed: 1,
			}
			policy := ftlsim.NewRlBaselinePolicy(params, metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			initialEpsilon := policy.QTable().Epsilon()

			// 100 distinct LPNs, overwritten in turn, keep the valid data
			// within the device's 160 physical pages.
			for lpn := uint64(0); lpn < 400; lpn++ {
				tick += 1000
				engine.Write(ftlsim.IORequest{LPN: lpn % 100, SubUnitMask: 1}, &tick)
			}

			Expect(policy.QTable().Epsilon()).To(BeNumerically("<", initialEpsilon))
			Expect(policy.QTable().Epsilon()).To(BeNumerically(">=", float32(0.01)))
		})
	})

	Describe("RlAggressivePolicy read-triggered GC", func() {
		It("fires an extra GC pass on a read after a sufficiently idle gap", func() {
			cfg := ftlsim.NewConfig()
			cfg.TotalPhysicalBlocks = 6
			cfg.PagesPerBlock = 4
			cfg.SubUnitsPerPage = 1

			metrics := ftlsim.NewMetricsCollector("rlaggressive", "", 1000, false)
			params := ftlsim.RlAggressiveParams{
				RlBaselineParams: ftlsim.RlBaselineParams{
					Alpha: 0.3, Gamma: 0.8, Epsilon: 1.0,
					NumActions: 10, TgcThreshold: 10, TigcThreshold: 1,
					MaxPageCopies: 10, IntensiveCopies: 7, RNGSeed: 1,
				},
				TAGCThreshold:           20,
				MaxGCOps:                2,
				ReadTriggeredGCEnabled:  true,
				EarlyGCInvalidThreshold: 0.6,
			}
			policy := ftlsim.NewRlAggressivePolicy(params, metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			engine.Write(ftlsim.IORequest{LPN: 0, SubUnitMask: 1}, &tick)
			gcCountAfterWrite, _, _, _, _ := engine.Stats()

			tick += 200_000 // long idle gap: DiscretizeCurrInterval bins this well above 2.
			engine.Read(ftlsim.IORequest{LPN: 999, SubUnitMask: 1}, &tick)

			gcCountAfterRead, _, _, _, _ := engine.Stats()
			snap := policy.Metrics().Snapshot()

			Expect(snap.ReadTriggeredGC).To(Equal(uint64(1)))
			Expect(gcCountAfterRead).To(BeNumerically(">", gcCountAfterWrite))
		})

		It("never fires read-triggered GC when the feature is disabled", func() {
			cfg := ftlsim.NewConfig()
			cfg.TotalPhysicalBlocks = 6
			cfg.PagesPerBlock = 4
			cfg.SubUnitsPerPage = 1

			metrics := ftlsim.NewMetricsCollector("rlaggressive", "", 1000, false)
			params := ftlsim.RlAggressiveParams{
				RlBaselineParams: ftlsim.RlBaselineParams{
					Alpha: 0.3, Gamma: 0.8, Epsilon: 1.0,
					NumActions: 10, TgcThreshold: 10, TigcThreshold: 1,
					MaxPageCopies: 10, IntensiveCopies: 7, RNGSeed: 1,
				},
				TAGCThreshold:           20,
				MaxGCOps:                2,
				ReadTriggeredGCEnabled:  false,
				EarlyGCInvalidThreshold: 0.6,
			}
			policy := ftlsim.NewRlAggressivePolicy(params, metrics)
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, 1)

			engine.Write(ftlsim.IORequest{LPN: 0, SubUnitMask: 1}, &tick)
			tick += 200_000
			engine.Read(ftlsim.IORequest{LPN: 999, SubUnitMask: 1}, &tick)

			Expect(policy.Metrics().Snapshot().ReadTriggeredGC).To(Equal(uint64(0)))
		})
	})
})
