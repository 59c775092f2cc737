// Package feedback classifies skin-temperature estimates and reduces recent labels by majority vote.
package feedback

import "github.com/okian/comfortloop/internal/domain/model"

// Default thresholds in degrees Celsius.
const (
	DefaultColdThreshold = 34.5
	DefaultHotThreshold  = 35.6
)

// Thresholds bound the comfortable band. Both bounds classify as GOOD.
type Thresholds struct {
	Cold float64
	Hot  float64
}

// DefaultThresholds returns the standard comfortable band.
func DefaultThresholds() Thresholds {
	return Thresholds{Cold: DefaultColdThreshold, Hot: DefaultHotThreshold}
}

// Classify maps a predicted skin temperature to a comfort label.
func (th Thresholds) Classify(t float64) model.Classification {
	switch {
	case t < th.Cold:
		return model.Cold
	case t > th.Hot:
		return model.Hot
	default:
		return model.Good
	}
}

// Classify uses the default thresholds.
func Classify(t float64) model.Classification {
	return DefaultThresholds().Classify(t)
}

// Majority returns the label held by strictly more entries than any other.
// When no label leads (for three records: one of each), it returns GOOD.
// Callers are expected to pass a full window; an empty input yields GOOD.
func Majority(labels []model.Classification) model.Classification {
	counts := make(map[model.Classification]int, len(model.Classifications))
	for _, l := range labels {
		counts[l]++
	}

	best, bestCount, tied := model.Good, -1, false
	for _, l := range model.Classifications {
		switch c := counts[l]; {
		case c > bestCount:
			best, bestCount, tied = l, c, false
		case c == bestCount:
			tied = true
		}
	}
	if tied || bestCount <= 0 {
		return model.Good
	}
	return best
}
