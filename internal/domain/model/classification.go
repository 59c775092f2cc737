// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Classification is the discrete comfort signal derived from a skin-temperature estimate.
type Classification uint8

// Classification values. The zero value is not a valid label.
const (
	ClassificationUnknown Classification = iota
	Good
	Hot
	Cold
)

// Classifications lists every valid label.
var Classifications = []Classification{Hot, Cold, Good} //nolint:gochecknoglobals // read-only enum listing

// String returns the canonical upper-case name.
func (c Classification) String() string {
	switch c {
	case Good:
		return "GOOD"
	case Hot:
		return "HOT"
	case Cold:
		return "COLD"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c is one of HOT, COLD or GOOD.
func (c Classification) Valid() bool {
	return c == Good || c == Hot || c == Cold
}

// ParseClassification accepts the canonical names and the single-letter codes H, C and G.
func ParseClassification(s string) (Classification, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GOOD", "G":
		return Good, nil
	case "HOT", "H":
		return Hot, nil
	case "COLD", "C":
		return Cold, nil
	}
	return ClassificationUnknown, fmt.Errorf("%w: %q", ErrUnknownClassification, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClassification, c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Classification) UnmarshalText(b []byte) error {
	v, err := ParseClassification(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
