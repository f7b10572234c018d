package calc

import (
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/data"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// Config is the immutable calculation configuration: the intensity measure
// types requested, the exceedance model and its truncation level, and the
// ground-motion level discretization per type. All curves of one calculation
// derive from the template curves held here, so aggregation stays strictly
// point-wise.
type Config struct {
	imts       []gmm.Imt
	exceedance ExceedanceModel
	truncation float64
	templates  map[gmm.Imt]*data.XySequence
}

// NewConfig validates and assembles a Config. Every requested type must have
// a level discretization, each with positive, strictly increasing levels.
func NewConfig(
	imts []gmm.Imt,
	exceedance ExceedanceModel,
	truncation float64,
	levels map[gmm.Imt][]float64,
) (*Config, error) {
	if len(imts) == 0 {
		return nil, fmt.Errorf("no intensity measure types requested")
	}
	if _, err := ParseExceedanceModel(string(exceedance)); err != nil {
		return nil, err
	}
	if truncation < 0 {
		return nil, fmt.Errorf("truncation level %g is negative", truncation)
	}
	seen := make(map[gmm.Imt]bool, len(imts))
	templates := make(map[gmm.Imt]*data.XySequence, len(imts))
	for _, imt := range imts {
		if _, err := gmm.ParseImt(string(imt)); err != nil {
			return nil, err
		}
		if seen[imt] {
			return nil, fmt.Errorf("duplicate intensity measure type %s", imt)
		}
		seen[imt] = true
		xs, ok := levels[imt]
		if !ok {
			return nil, fmt.Errorf("no ground-motion levels for %s", imt)
		}
		if len(xs) > 0 && xs[0] <= 0 {
			return nil, fmt.Errorf("%s levels must be positive, got %g", imt, xs[0])
		}
		template, err := data.New(xs)
		if err != nil {
			return nil, fmt.Errorf("%s levels: %w", imt, err)
		}
		templates[imt] = template
	}
	owned := make([]gmm.Imt, len(imts))
	copy(owned, imts)
	return &Config{
		imts:       owned,
		exceedance: exceedance,
		truncation: truncation,
		templates:  templates,
	}, nil
}

// Imts returns the requested intensity measure types in request order.
func (c *Config) Imts() []gmm.Imt {
	out := make([]gmm.Imt, len(c.imts))
	copy(out, c.imts)
	return out
}

// Exceedance returns the configured exceedance model.
func (c *Config) Exceedance() ExceedanceModel { return c.exceedance }

// Truncation returns the truncation level in units of sigma.
func (c *Config) Truncation() float64 { return c.truncation }

// ModelCurves returns fresh zero-valued curves over the configured level
// discretizations, one per requested type. Every curve a calculation touches
// starts from these copies.
func (c *Config) ModelCurves() map[gmm.Imt]*data.XySequence {
	out := make(map[gmm.Imt]*data.XySequence, len(c.templates))
	for imt, template := range c.templates {
		out[imt] = template.Copy()
	}
	return out
}
