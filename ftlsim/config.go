package ftlsim

import (
	"fmt"
	"strconv"
)

// GCMode selects how VictimSelector.n is computed.
type GCMode int

// Recognized GCMode values.
const (
	GCModeFixedN GCMode = iota
	GCModeUpToRatio
)

// FillingMode names a device-warmup fill/invalidate pattern. Like FillRatio
// and InvalidPageRatio it is only carried in Config: neither the engine nor
// cmd/ftlsim performs a warm-up fill, and Validate checks only that the two
// ratios lie in [0,1].
type FillingMode int

// Recognized FillingMode values.
const (
	FillSeqSeqInv FillingMode = iota
	FillSeqRandInv
	FillRandRandInv
)

// GCPolicyKind selects which GcPolicy implementation the engine runs.
type GCPolicyKind int

// Recognized GCPolicyKind values.
const (
	GCPolicyDefault GCPolicyKind = iota
	GCPolicyLazyRTGC
	GCPolicyRLBaseline
	GCPolicyRLIntensive
	GCPolicyRLAggressive
)

// Config is a typed, enumerated option registry mirroring the original
// device's key/id config surface. Fields are exported for convenience but
// should be constructed via NewConfig then mutated before Validate is
// called — Validate is where the fatal (ConfigInvalid) checks in spec §6
// live, the same place the teacher's cache Builder runs its late,
// build-time validation.
type Config struct {
	MappingMode string // always "page" in this simulator

	TotalPhysicalBlocks int
	PagesPerBlock        int
	SubUnitsPerPage      int

	OverProvisioningRatio float64
	GCThresholdRatio      float64
	BadBlockThreshold     uint64

	FillingMode      FillingMode
	FillRatio        float64
	InvalidPageRatio float64

	GCMode             GCMode
	GCReclaimBlocks    int
	GCReclaimThreshold float64

	EvictPolicy         EvictPolicy
	DChoiceParam        int
	EnableRandomIOTweak bool

	GCPolicy GCPolicyKind

	LazyRTGCThreshold      uint32
	LazyRTGCMaxPageCopies  uint32
	LazyRTGCMetricsEnable  bool

	RLGCTgcThreshold    uint32
	RLGCTigcThreshold   uint32
	RLGCMaxPageCopies   uint32
	RLGCLearningRate    float32
	RLGCDiscountFactor  float32
	RLGCInitEpsilon     float32
	RLGCNumActions      uint32
	RLGCDebugEnable     bool
	RLGCIntensiveCopies uint32

	RLAggTAGCThreshold      uint32
	RLAggMaxGCOps           uint32
	RLAggReadTriggeredGC    bool
	RLAggDebugEnable        bool
	RLAggMetricsEnable      bool
	RLAggEarlyGCInvalidThreshold float32

	RNGSeed int64
}

// gcPolicyNames/evictPolicyNames/gcModeNames give the canonical lowercase
// spelling SetFromString/ReadString accept for the three enum-valued keys,
// matching cmd/ftlsim's own policyLabel names.
var gcPolicyNames = map[string]GCPolicyKind{
	"default":       GCPolicyDefault,
	"lazy_rtgc":     GCPolicyLazyRTGC,
	"rl_baseline":   GCPolicyRLBaseline,
	"rl_intensive":  GCPolicyRLIntensive,
	"rl_aggressive": GCPolicyRLAggressive,
}

var evictPolicyNames = map[string]EvictPolicy{
	"greedy":       EvictGreedy,
	"cost_benefit": EvictCostBenefit,
	"random":       EvictRandom,
	"dchoice":      EvictDChoice,
}

var gcModeNames = map[string]GCMode{
	"fixed_n":     GCModeFixedN,
	"up_to_ratio": GCModeUpToRatio,
}

// NewConfig returns a Config populated with the original device's
// documented defaults (ftl/config.cc's Config::Config()).
func NewConfig() *Config {
	return &Config{
		MappingMode: "page",

		TotalPhysicalBlocks: 1024,
		PagesPerBlock:       64,
		SubUnitsPerPage:     1,

		OverProvisioningRatio: 0.25,
		GCThresholdRatio:      0.05,
		BadBlockThreshold:     100000,

		FillingMode:      FillSeqSeqInv,
		FillRatio:        1.0,
		InvalidPageRatio: 0.0,

		GCMode:             GCModeFixedN,
		GCReclaimBlocks:    1,
		GCReclaimThreshold: 0.1,

		EvictPolicy:         EvictGreedy,
		DChoiceParam:        3,
		EnableRandomIOTweak: true,

		GCPolicy: GCPolicyDefault,

		LazyRTGCThreshold:     10,
		LazyRTGCMaxPageCopies: 3,
		LazyRTGCMetricsEnable: true,

		RLGCTgcThreshold:    10,
		RLGCTigcThreshold:   5,
		RLGCMaxPageCopies:   10,
		RLGCLearningRate:    0.3,
		RLGCDiscountFactor:  0.8,
		RLGCInitEpsilon:     0.8,
		RLGCNumActions:      10,
		RLGCIntensiveCopies: 7,

		RLAggTAGCThreshold:           100,
		RLAggMaxGCOps:                2,
		RLAggReadTriggeredGC:         true,
		RLAggMetricsEnable:           true,
		RLAggEarlyGCInvalidThreshold: 0.6,

		RNGSeed: 1,
	}
}

// Validate runs the five fatal checks from spec §6, panicking with a
// ConfigError on failure. It must be called once, after any field
// overrides, before the config is handed to NewEngine.
func (c *Config) Validate() {
	if c.GCMode == GCModeFixedN && c.GCReclaimBlocks == 0 {
		panicConfigInvalid("GCReclaimBlocks", "must be > 0 under fixed-n GC mode")
	}
	if c.GCMode == GCModeUpToRatio && c.GCReclaimThreshold < c.GCThresholdRatio {
		panicConfigInvalid("GCReclaimThreshold", "must be >= GCThresholdRatio under up-to-ratio GC mode")
	}
	if c.FillRatio < 0 || c.FillRatio > 1 {
		panicConfigInvalid("FillRatio", "must be in [0,1]")
	}
	if c.InvalidPageRatio < 0 || c.InvalidPageRatio > 1 {
		panicConfigInvalid("InvalidPageRatio", "must be in [0,1]")
	}
	if c.RLGCInitEpsilon <= 0 || c.RLGCInitEpsilon > 1 {
		panicConfigInvalid("RLGCInitEpsilon", "must be in (0,1]")
	}
}

// ReadUint, ReadFloat, ReadBool and ReadString look a value up by its
// string key name, for parity with the enumerated-id accessor style the
// original device uses (Config::readUint/readFloat/readBoolean(idx));
// callers inside this module use the typed struct fields directly.
// cmd/ftlsim's .env override loader writes through SetFromString instead.
func (c *Config) ReadUint(key string) (uint64, bool) {
	switch key {
	case "EraseThreshold":
		return c.BadBlockThreshold, true
	case "GCReclaimBlocks":
		return uint64(c.GCReclaimBlocks), true
	case "RLGCTgcThreshold":
		return uint64(c.RLGCTgcThreshold), true
	case "RLGCTigcThreshold":
		return uint64(c.RLGCTigcThreshold), true
	case "RLGCMaxPageCopies":
		return uint64(c.RLGCMaxPageCopies), true
	case "RLGCNumActions":
		return uint64(c.RLGCNumActions), true
	case "RLAggressiveTAGCThreshold":
		return uint64(c.RLAggTAGCThreshold), true
	case "RLAggressiveMaxGCOps":
		return uint64(c.RLAggMaxGCOps), true
	case "DChoiceParam":
		return uint64(c.DChoiceParam), true
	case "LazyRTGCThreshold":
		return uint64(c.LazyRTGCThreshold), true
	case "LazyRTGCMaxPageCopies":
		return uint64(c.LazyRTGCMaxPageCopies), true
	case "RLGCIntensiveCopies":
		return uint64(c.RLGCIntensiveCopies), true
	default:
		return 0, false
	}
}

// ReadString looks up a name-valued enum config key (GCPolicy, EvictPolicy,
// GCMode), returning its canonical lowercase spelling.
func (c *Config) ReadString(key string) (string, bool) {
	switch key {
	case "GCPolicy":
		for name, v := range gcPolicyNames {
			if v == c.GCPolicy {
				return name, true
			}
		}
	case "EvictPolicy":
		for name, v := range evictPolicyNames {
			if v == c.EvictPolicy {
				return name, true
			}
		}
	case "GCMode":
		for name, v := range gcModeNames {
			if v == c.GCMode {
				return name, true
			}
		}
	}
	return "", false
}

// ReadFloat looks up a float-valued config key by name.
func (c *Config) ReadFloat(key string) (float64, bool) {
	switch key {
	case "OverProvisioningRatio":
		return c.OverProvisioningRatio, true
	case "GCThreshold":
		return c.GCThresholdRatio, true
	case "FillRatio":
		return c.FillRatio, true
	case "InvalidPageRatio":
		return c.InvalidPageRatio, true
	case "GCReclaimThreshold":
		return c.GCReclaimThreshold, true
	case "RLGCLearningRate":
		return float64(c.RLGCLearningRate), true
	case "RLGCDiscountFactor":
		return float64(c.RLGCDiscountFactor), true
	case "RLGCInitEpsilon":
		return float64(c.RLGCInitEpsilon), true
	default:
		return 0, false
	}
}

// ReadBool looks up a boolean-valued config key by name.
func (c *Config) ReadBool(key string) (bool, bool) {
	switch key {
	case "EnableRandomIOTweak":
		return c.EnableRandomIOTweak, true
	case "LazyRTGCMetricsEnable":
		return c.LazyRTGCMetricsEnable, true
	case "RLGCDebugEnable":
		return c.RLGCDebugEnable, true
	case "RLAggressiveReadTriggeredGC":
		return c.RLAggReadTriggeredGC, true
	case "RLAggressiveDebugEnable":
		return c.RLAggDebugEnable, true
	case "RLAggressiveMetricsEnable":
		return c.RLAggMetricsEnable, true
	default:
		return false, false
	}
}

// SetFromString parses value against key's known type (uint, float, bool,
// or a GCPolicy/EvictPolicy/GCMode name) and assigns it. The bool result
// reports whether key is recognized: an unrecognized key returns false, and
// a recognized key whose value fails to parse returns true with a non-nil
// error, leaving the field unchanged. This is the write-side counterpart to
// ReadUint/ReadFloat/ReadBool/ReadString that cmd/ftlsim's .env override
// loader uses.
func (c *Config) SetFromString(key, value string) (bool, error) {
	switch key {
	case "EraseThreshold", "GCReclaimBlocks", "RLGCTgcThreshold", "RLGCTigcThreshold",
		"RLGCMaxPageCopies", "RLGCNumActions", "RLAggressiveTAGCThreshold", "RLAggressiveMaxGCOps",
		"DChoiceParam", "LazyRTGCThreshold", "LazyRTGCMaxPageCopies", "RLGCIntensiveCopies":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return true, err
		}
		c.setUint(key, v)
		return true, nil

	case "OverProvisioningRatio", "GCThreshold", "FillRatio", "InvalidPageRatio",
		"GCReclaimThreshold", "RLGCLearningRate", "RLGCDiscountFactor", "RLGCInitEpsilon":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, err
		}
		c.setFloat(key, v)
		return true, nil

	case "EnableRandomIOTweak", "LazyRTGCMetricsEnable", "RLGCDebugEnable",
		"RLAggressiveReadTriggeredGC", "RLAggressiveDebugEnable", "RLAggressiveMetricsEnable":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return true, err
		}
		c.setBool(key, v)
		return true, nil

	case "GCPolicy":
		v, ok := gcPolicyNames[value]
		if !ok {
			return true, fmt.Errorf("unrecognized GCPolicy value %q", value)
		}
		c.GCPolicy = v
		return true, nil

	case "EvictPolicy":
		v, ok := evictPolicyNames[value]
		if !ok {
			return true, fmt.Errorf("unrecognized EvictPolicy value %q", value)
		}
		c.EvictPolicy = v
		return true, nil

	case "GCMode":
		v, ok := gcModeNames[value]
		if !ok {
			return true, fmt.Errorf("unrecognized GCMode value %q", value)
		}
		c.GCMode = v
		return true, nil

	default:
		return false, nil
	}
}

func (c *Config) setUint(key string, v uint64) {
	switch key {
	case "EraseThreshold":
		c.BadBlockThreshold = v
	case "GCReclaimBlocks":
		c.GCReclaimBlocks = int(v)
	case "RLGCTgcThreshold":
		c.RLGCTgcThreshold = uint32(v)
	case "RLGCTigcThreshold":
		c.RLGCTigcThreshold = uint32(v)
	case "RLGCMaxPageCopies":
		c.RLGCMaxPageCopies = uint32(v)
	case "RLGCNumActions":
		c.RLGCNumActions = uint32(v)
	case "RLAggressiveTAGCThreshold":
		c.RLAggTAGCThreshold = uint32(v)
	case "RLAggressiveMaxGCOps":
		c.RLAggMaxGCOps = uint32(v)
	case "DChoiceParam":
		c.DChoiceParam = int(v)
	case "LazyRTGCThreshold":
		c.LazyRTGCThreshold = uint32(v)
	case "LazyRTGCMaxPageCopies":
		c.LazyRTGCMaxPageCopies = uint32(v)
	case "RLGCIntensiveCopies":
		c.RLGCIntensiveCopies = uint32(v)
	}
}

func (c *Config) setFloat(key string, v float64) {
	switch key {
	case "OverProvisioningRatio":
		c.OverProvisioningRatio = v
	case "GCThreshold":
		c.GCThresholdRatio = v
	case "FillRatio":
		c.FillRatio = v
	case "InvalidPageRatio":
		c.InvalidPageRatio = v
	case "GCReclaimThreshold":
		c.GCReclaimThreshold = v
	case "RLGCLearningRate":
		c.RLGCLearningRate = float32(v)
	case "RLGCDiscountFactor":
		c.RLGCDiscountFactor = float32(v)
	case "RLGCInitEpsilon":
		c.RLGCInitEpsilon = float32(v)
	}
}

func (c *Config) setBool(key string, v bool) {
	switch key {
	case "EnableRandomIOTweak":
		c.EnableRandomIOTweak = v
	case "LazyRTGCMetricsEnable":
		c.LazyRTGCMetricsEnable = v
	case "RLGCDebugEnable":
		c.RLGCDebugEnable = v
	case "RLAggressiveReadTriggeredGC":
		c.RLAggReadTriggeredGC = v
	case "RLAggressiveDebugEnable":
		c.RLAggDebugEnable = v
	case "RLAggressiveMetricsEnable":
		c.RLAggMetricsEnable = v
	}
}
