// Package comfort derives the room comfort range from an occupant profile.
package comfort

import (
	"math"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Base band before profile adjustments.
const (
	BaseMin = 19.0
	BaseMax = 21.0
)

// Resolve returns the comfort band for a profile. The band is always BaseMax-BaseMin wide;
// every adjustment shifts both bounds by the same amount. Bounds are rounded to one decimal.
func Resolve(p model.Profile) model.ComfortRange {
	shift := genderShift(p.Gender) + ageShift(p.Age) + bmiShift(p.BMI)
	return model.ComfortRange{
		MinTemp: round1(BaseMin + shift),
		MaxTemp: round1(BaseMax + shift),
	}
}

func genderShift(g model.Gender) float64 {
	if g == model.Female {
		return 1.0
	}
	return 0
}

func ageShift(age float64) float64 {
	switch {
	case age >= 60 && age < 70:
		return 0.5
	case age >= 70 && age <= 80:
		return 1.0
	default:
		return 0
	}
}

func bmiShift(bmi float64) float64 {
	switch {
	case bmi < 18.5:
		return 1.0
	case bmi < 25:
		return 0
	case bmi < 30:
		return -0.5
	default:
		return -1.0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
