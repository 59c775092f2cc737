// Package simulate drives a running comfortloop service with synthetic wearable samples.
package simulate

import (
	"time"

	"github.com/okian/comfortloop/internal/domain/types"
)

// Scenarios bias the generated vitals toward one comfort classification.
const (
	ScenarioWarm  = "warm"
	ScenarioCool  = "cool"
	ScenarioMixed = "mixed"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Samples  int           // Number of samples to generate
	Workers  int           // Number of concurrent submitters; ignored when Interval is set
	Interval time.Duration // Delay between samples; zero submits as fast as the workers allow
	Timeout  time.Duration // HTTP request timeout
	Scenario string        // warm, cool or mixed
	Seed     uint64        // Random seed; zero picks one from the clock
	Profile  *Profile      // Occupant attributes sent with every sample when set
	Tick     bool          // Request one synchronous control cycle after submitting
}

// Profile is the occupant the samples are attributed to.
type Profile struct {
	Age    float64
	BMI    float64
	Female bool
}

// Stats holds run statistics.
type Stats struct {
	Generated       int
	Submitted       int
	Successful      int
	Duplicate       int
	Failed          int
	Classifications map[string]int
	Cycle           *types.CycleReport
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = "http://localhost:8000"
	}
	if out.Samples <= 0 {
		out.Samples = 3
	}
	if out.Workers <= 0 || out.Interval > 0 {
		out.Workers = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.Scenario == "" {
		out.Scenario = ScenarioMixed
	}
	if out.Seed == 0 {
		out.Seed = uint64(time.Now().UnixNano())
	}
	return out
}
