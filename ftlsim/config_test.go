package ftlsim_test

import (
	"testing"

	"github.com/sarchlab/ftlsim/ftlsim"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := ftlsim.NewConfig()

	assert.Equal(t, "page", cfg.MappingMode)
	assert.Equal(t, 1024, cfg.TotalPhysicalBlocks)
	assert.Equal(t, ftlsim.GCModeFixedN, cfg.GCMode)
	assert.Equal(t, ftlsim.GCPolicyDefault, cfg.GCPolicy)
	assert.Equal(t, ftlsim.EvictGreedy, cfg.EvictPolicy)

	assert.NotPanics(t, cfg.Validate)
}

func TestConfigValidatePanicsOnZeroReclaimBlocksUnderFixedN(t *testing.T) {
	cfg := ftlsim.NewConfig()
	cfg.GCMode = ftlsim.GCModeFixedN
	cfg.GCReclaimBlocks = 0

	assert.Panics(t, cfg.Validate)
}

func TestConfigValidatePanicsOnReclaimThresholdBelowGCThresholdUnderRatioMode(t *testing.T) {
	cfg := ftlsim.NewConfig()
	cfg.GCMode = ftlsim.GCModeUpToRatio
	cfg.GCThresholdRatio = 0.2
	cfg.GCReclaimThreshold = 0.1

	assert.Panics(t, cfg.Validate)
}

func TestConfigValidatePanicsOnFillRatioOutOfRange(t *testing.T) {
	cfg := ftlsim.NewConfig()
	cfg.FillRatio = 1.5

	assert.Panics(t, cfg.Validate)
}

func TestConfigValidatePanicsOnInvalidPageRatioOutOfRange(t *testing.T) {
	cfg := ftlsim.NewConfig()
	cfg.InvalidPageRatio = -0.1

	assert.Panics(t, cfg.Validate)
}

func TestConfigReadUintKnownAndUnknownKeys(t *testing.T) {
	cfg := ftlsim.NewConfig()

	v, ok := cfg.ReadUint("RLGCTgcThreshold")
	assert.True(t, ok)
	assert.Equal(t, uint64(10), v)

	_, ok = cfg.ReadUint("NotAKey")
	assert.False(t, ok)
}

func TestConfigReadFloatKnownAndUnknownKeys(t *testing.T) {
	cfg := ftlsim.NewConfig()

	v, ok := cfg.ReadFloat("RLGCInitEpsilon")
	assert.True(t, ok)
	assert.Equal(t, float64(float32(0.8)), v)

	_, ok = cfg.ReadFloat("NotAKey")
	assert.False(t, ok)
}

func TestConfigReadBoolKnownAndUnknownKeys(t *testing.T) {
	cfg := ftlsim.NewConfig()

	v, ok := cfg.ReadBool("RLAggressiveReadTriggeredGC")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = cfg.ReadBool("NotAKey")
	assert.False(t, ok)
}

func TestConfigSetFromStringRoundTripsUint(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("RLGCMaxPageCopies", "42")
	assert.True(t, recognized)
	assert.NoError(t, err)

	v, ok := cfg.ReadUint("RLGCMaxPageCopies")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)
}

func TestConfigSetFromStringRoundTripsFloat(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("RLGCLearningRate", "0.5")
	assert.True(t, recognized)
	assert.NoError(t, err)

	v, ok := cfg.ReadFloat("RLGCLearningRate")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestConfigSetFromStringRoundTripsBool(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("RLGCDebugEnable", "true")
	assert.True(t, recognized)
	assert.NoError(t, err)

	v, ok := cfg.ReadBool("RLGCDebugEnable")
	assert.True(t, ok)
	assert.True(t, v)
}

func TestConfigValidatePanicsOnInitEpsilonOutOfRange(t *testing.T) {
	cfg := ftlsim.NewConfig()
	cfg.RLGCInitEpsilon = 0

	assert.Panics(t, cfg.Validate)
}

func TestConfigSetFromStringRoundTripsGCPolicy(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("GCPolicy", "rl_aggressive")
	assert.True(t, recognized)
	assert.NoError(t, err)
	assert.Equal(t, ftlsim.GCPolicyRLAggressive, cfg.GCPolicy)

	v, ok := cfg.ReadString("GCPolicy")
	assert.True(t, ok)
	assert.Equal(t, "rl_aggressive", v)
}

func TestConfigSetFromStringRoundTripsEvictPolicyAndGCMode(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("EvictPolicy", "dchoice")
	assert.True(t, recognized)
	assert.NoError(t, err)
	assert.Equal(t, ftlsim.EvictDChoice, cfg.EvictPolicy)

	recognized, err = cfg.SetFromString("GCMode", "up_to_ratio")
	assert.True(t, recognized)
	assert.NoError(t, err)
	assert.Equal(t, ftlsim.GCModeUpToRatio, cfg.GCMode)
}

func TestConfigSetFromStringUnrecognizedEnumValue(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("GCPolicy", "not_a_policy")
	assert.True(t, recognized)
	assert.Error(t, err)
}

func TestConfigSetFromStringUnrecognizedKey(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("NotAKey", "1")
	assert.False(t, recognized)
	assert.NoError(t, err)
}

func TestConfigSetFromStringParseFailureStillRecognized(t *testing.T) {
	cfg := ftlsim.NewConfig()

	recognized, err := cfg.SetFromString("RLGCMaxPageCopies", "not-a-number")
	assert.True(t, recognized)
	assert.Error(t, err)
}
