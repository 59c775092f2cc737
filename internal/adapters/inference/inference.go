// Package inference predicts skin temperature from wearable vitals.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Feature names understood by LinearModel.
const (
	FeatureBMI               = "bmi"
	FeatureOxygenSaturation  = "mean_sa02"
	FeatureHRV               = "HRV_SDNN"
	FeatureHeartRate         = "hr_mean"
	FeatureAge               = "age"
	FeatureGenderMale        = "gender_m"
	FeatureHRVHeartRateRatio = "hrv_hr_ratio"
	FeatureBMIHeartRate      = "bmi_hr_interaction"
	FeatureAgeBMI            = "age_bmi_interaction"
	FeatureAgeHRVRatio       = "age_hrv_ratio"
)

// Features is one wearable sample plus the user profile.
type Features struct {
	HeartRate        float64
	HRV              float64
	OxygenSaturation float64
	BMI              float64
	Age              float64
	Gender           model.Gender
}

// Validate rejects samples no wearable would report.
func (f Features) Validate() error {
	for _, v := range []float64{f.HeartRate, f.HRV, f.OxygenSaturation, f.BMI, f.Age} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %+v", ErrInvalidFeatures, f)
		}
	}
	return nil
}

// Vector expands the sample into named model inputs, including the derived ratios
// and interactions.
func (f Features) Vector() map[string]float64 {
	v := map[string]float64{
		FeatureBMI:              f.BMI,
		FeatureOxygenSaturation: f.OxygenSaturation,
		FeatureHRV:              f.HRV,
		FeatureHeartRate:        f.HeartRate,
		FeatureAge:              f.Age,
		FeatureGenderMale:       0,
		FeatureBMIHeartRate:     f.BMI * f.HeartRate,
		FeatureAgeBMI:           f.Age * f.BMI,
	}
	if f.Gender == model.Male {
		v[FeatureGenderMale] = 1
	}
	if f.HeartRate > 0 {
		v[FeatureHRVHeartRateRatio] = f.HRV / f.HeartRate
	}
	if f.HRV > 0 {
		v[FeatureAgeHRVRatio] = f.Age / (f.HRV + 1)
	}
	return v
}

// Predictor produces a skin temperature estimate in degrees Celsius.
type Predictor interface {
	Predict(ctx context.Context, f Features) (float64, error)
	Name() string
}

// LinearModel is a linear regression over the feature vector.
type LinearModel struct {
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	// Version is informational and reported by the health endpoint.
	Version string `json:"version,omitempty"`
}

// LoadLinearModel reads a JSON model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: %s has no coefficients", ErrInvalidModel, path)
	}
	return &m, nil
}

func (m *LinearModel) Name() string {
	if m.Version == "" {
		return "linear"
	}
	return "linear-" + m.Version
}

// Predict returns intercept + sum(coefficient*feature). Coefficients for unknown
// features are ignored; features without a coefficient contribute nothing.
func (m *LinearModel) Predict(ctx context.Context, f Features) (float64, error) {
	if m == nil || len(m.Coefficients) == 0 {
		return 0, ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	vec := f.Vector()
	out := m.Intercept
	for name, coef := range m.Coefficients {
		out += coef * vec[name]
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("%w: non-finite prediction", ErrInvalidFeatures)
	}
	return math.Round(out*100) / 100, nil
}

// SampleModel returns a small model that keeps predictions in the normal
// skin temperature band for typical resting vitals.
func SampleModel() *LinearModel {
	return &LinearModel{
		Coefficients: map[string]float64{
			FeatureHeartRate:        0.012,
			FeatureHRV:              -0.004,
			FeatureOxygenSaturation: 0.02,
			FeatureBMI:              0.03,
			FeatureAge:              -0.005,
			FeatureGenderMale:       -0.3,
		},
		Intercept: 31.9,
		Version:   "sample",
	}
}

// WriteSampleModel writes SampleModel to path, creating parent directories.
func WriteSampleModel(path string) error {
	data, err := json.MarshalIndent(SampleModel(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode sample model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sample model: %w", err)
	}
	return nil
}
