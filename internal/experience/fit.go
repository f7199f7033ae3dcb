package experience

import "math"

// FitScore rates resume tenure against the job requirement on a 0-100
// scale. The breakpoints are policy constants kept stable for score
// compatibility.
func FitScore(resumeYears float64, jd Estimate) float64 {
	if jd.IsZero() {
		return 100
	}
	if resumeYears <= 0 {
		return 50
	}

	switch jd.Kind() {
	case Range:
		low, high := jd.Bounds()
		switch {
		case resumeYears >= low && resumeYears <= high:
			return 100
		case resumeYears < low:
			return shortfallInRange(low - resumeYears)
		default:
			return surplusOverRange(resumeYears - high)
		}
	case Minimum:
		floor := jd.Min()
		if resumeYears >= floor {
			return surplusOverMinimum(resumeYears - floor)
		}
		return shortfallFromMinimum(floor - resumeYears)
	}
	return 100
}

func shortfallInRange(d float64) float64 {
	switch {
	case d <= 1:
		return 90
	case d <= 2:
		return 75
	default:
		return math.Max(40, 100-15*d)
	}
}

func surplusOverRange(d float64) float64 {
	switch {
	case d <= 2:
		return 95
	case d <= 5:
		return 85
	default:
		return math.Max(60, 100-5*d)
	}
}

func surplusOverMinimum(d float64) float64 {
	switch {
	case d <= 2:
		return 100
	case d <= 5:
		return 90
	default:
		return math.Max(70, 100-4*d)
	}
}

func shortfallFromMinimum(d float64) float64 {
	switch {
	case d <= 1:
		return 85
	case d <= 2:
		return 70
	default:
		return math.Max(30, 100-20*d)
	}
}
