package calc

import (
	"fmt"
	"math"
)

// ExceedanceModel identifies how a predicted (mean, sigma) pair maps to a
// probability of exceeding a ground-motion level.
type ExceedanceModel string

const (
	// ExceedanceNone applies no distribution truncation.
	ExceedanceNone ExceedanceModel = "NONE"
	// ExceedanceTruncUpperOnly truncates the upper tail of the distribution
	// at mean + n*sigma and renormalizes below it.
	ExceedanceTruncUpperOnly ExceedanceModel = "TRUNCATION_UPPER_ONLY"
)

// ParseExceedanceModel converts an identifier string to an ExceedanceModel.
func ParseExceedanceModel(s string) (ExceedanceModel, error) {
	switch ExceedanceModel(s) {
	case ExceedanceNone, ExceedanceTruncUpperOnly:
		return ExceedanceModel(s), nil
	}
	return "", fmt.Errorf("unknown exceedance model %q", s)
}

// Probability returns P(motion > level) for a prediction with the given
// natural-log mean and sigma, truncated at n sigma per the model. lnLevel is
// the natural log of the ground-motion level of interest.
func (m ExceedanceModel) Probability(mean, sigma, n, lnLevel float64) float64 {
	if sigma <= 0 {
		if lnLevel < mean {
			return 1
		}
		return 0
	}
	z := (lnLevel - mean) / sigma
	switch m {
	case ExceedanceTruncUpperOnly:
		if z >= n {
			return 0
		}
		pTrunc := ccdf(n)
		return clampProb((ccdf(z) - pTrunc) / (1 - pTrunc))
	default:
		return ccdf(z)
	}
}

// ccdf is the standard normal complementary CDF.
func ccdf(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
