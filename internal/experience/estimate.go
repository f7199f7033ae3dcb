package experience

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the shape of an Estimate.
type Kind int

const (
	// Unspecified means the job description states no requirement.
	Unspecified Kind = iota
	// Minimum is a single lower bound such as "5+ years".
	Minimum
	// Range is an explicit "3-5 years" requirement.
	Range
)

func (k Kind) String() string {
	switch k {
	case Minimum:
		return "minimum"
	case Range:
		return "range"
	default:
		return "unspecified"
	}
}

// Estimate is the years-of-experience requirement parsed from a job
// description. Use Kind to branch; the bounds are only meaningful for the
// matching kind.
type Estimate struct {
	kind Kind
	low  float64
	high float64
}

// None returns an unspecified requirement.
func None() Estimate { return Estimate{} }

// AtLeast returns a Minimum requirement.
func AtLeast(years float64) Estimate {
	if years <= 0 {
		return None()
	}
	return Estimate{kind: Minimum, low: years}
}

// Between returns a Range requirement. Swapped bounds are reordered.
func Between(low, high float64) Estimate {
	if low > high {
		low, high = high, low
	}
	if high <= 0 {
		return None()
	}
	return Estimate{kind: Range, low: low, high: high}
}

func (e Estimate) Kind() Kind { return e.kind }

// Min returns the lower bound for Minimum and Range, zero otherwise.
func (e Estimate) Min() float64 { return e.low }

// Bounds returns the range bounds. For Minimum both values equal the minimum.
func (e Estimate) Bounds() (float64, float64) {
	switch e.kind {
	case Range:
		return e.low, e.high
	case Minimum:
		return e.low, e.low
	default:
		return 0, 0
	}
}

func (e Estimate) IsZero() bool { return e.kind == Unspecified }

func (e Estimate) String() string {
	switch e.kind {
	case Range:
		return fmt.Sprintf("(%s, %s)", formatYears(e.low), formatYears(e.high))
	case Minimum:
		return formatYears(e.low)
	default:
		return "0.0"
	}
}

// MarshalJSON encodes Unspecified as 0, Minimum as a number and Range as a
// two element array.
func (e Estimate) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case Range:
		return json.Marshal([2]float64{e.low, e.high})
	case Minimum:
		return json.Marshal(e.low)
	default:
		return []byte("0"), nil
	}
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (e *Estimate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("experience range must have 2 values, got %d", len(pair))
		}
		*e = Between(pair[0], pair[1])
		return nil
	}

	var single float64
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("decode experience estimate: %w", err)
	}
	*e = AtLeast(single)
	return nil
}

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
