package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/comfortloop/internal/domain/types"
)

// vitalsRange bounds one scenario's heart rate, HRV and SpO2.
type vitalsRange struct {
	hrMin, hrMax     float64
	hrvMin, hrvMax   float64
	spo2Min, spo2Max float64
}

var scenarios = map[string]vitalsRange{
	// elevated heart rate, suppressed HRV
	ScenarioWarm: {hrMin: 125, hrMax: 140, hrvMin: 20, hrvMax: 40, spo2Min: 96, spo2Max: 99},
	// resting heart rate, high HRV
	ScenarioCool: {hrMin: 45, hrMax: 52, hrvMin: 120, hrvMax: 150, spo2Min: 92, spo2Max: 95},
}

// Generate creates n samples with unique sample ids.
func Generate(n int, scenario string, profile *Profile, seed uint64) ([]types.HealthSample, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample count must not be negative: %d", n)
	}
	if _, ok := scenarios[scenario]; !ok && scenario != ScenarioMixed {
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]types.HealthSample, n)
	for i := range out {
		vr, ok := scenarios[scenario]
		if !ok {
			vr = pickMixed(rng)
		}
		out[i] = sample(rng, vr, profile)
	}
	return out, nil
}

func pickMixed(rng *rand.Rand) vitalsRange {
	switch rng.IntN(3) {
	case 0:
		return scenarios[ScenarioWarm]
	case 1:
		return scenarios[ScenarioCool]
	default:
		return vitalsRange{hrMin: 65, hrMax: 85, hrvMin: 40, hrvMax: 70, spo2Min: 96, spo2Max: 99}
	}
}

func sample(rng *rand.Rand, vr vitalsRange, profile *Profile) types.HealthSample {
	s := types.HealthSample{
		SampleID:         uuid.NewString(),
		HeartRate:        ptr(between(rng, vr.hrMin, vr.hrMax)),
		HRV:              ptr(between(rng, vr.hrvMin, vr.hrvMax)),
		OxygenSaturation: ptr(between(rng, vr.spo2Min, vr.spo2Max)),
	}
	if profile != nil {
		gender := 1.0
		if profile.Female {
			gender = 0
		}
		s.Age, s.BMI, s.Gender = ptr(profile.Age), ptr(profile.BMI), &gender
	}
	return s
}

// between returns a value in [lo, hi] with one decimal, the precision wearables report.
func between(rng *rand.Rand, lo, hi float64) float64 {
	v := lo + rng.Float64()*(hi-lo)
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 { return &v }
