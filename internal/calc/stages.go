package calc

import (
	"context"
	"fmt"
	"math"

	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/data"
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// hazardInput pairs one rupture's collaborator parameterization with its
// annual occurrence rate.
type hazardInput struct {
	in   gmm.Input
	rate float64
}

// inputList is the input-stage product for one source set or member fault.
type inputList []hazardInput

// newInputs flattens in-range sources into collaborator inputs.
func newInputs(sources []model.Source, site Site) inputList {
	var out inputList
	for _, src := range sources {
		d := geo.Distance(site.Loc, src.Location())
		for _, r := range src.Ruptures() {
			out = append(out, hazardInput{
				in:   gmm.Input{Mag: r.Mag, Distance: d, Rake: r.Rake, Vs30: site.Vs30},
				rate: r.Rate,
			})
		}
	}
	return out
}

// groundMotions holds collaborator outputs for one input list, indexed
// sgms[imt][input][model], with the weighted models the columns refer to.
type groundMotions struct {
	models []gmm.WeightedModel
	sgms   map[gmm.Imt][][]gmm.ScalarGroundMotion
}

// newGroundMotions invokes the collaborator for every input, requested type
// and weighted model. The first collaborator error aborts the stage.
func newGroundMotions(inputs inputList, set *gmm.Set, imts []gmm.Imt) (*groundMotions, error) {
	models := set.Models()
	sgms := make(map[gmm.Imt][][]gmm.ScalarGroundMotion, len(imts))
	for _, imt := range imts {
		rows := make([][]gmm.ScalarGroundMotion, len(inputs))
		for i, hi := range inputs {
			row := make([]gmm.ScalarGroundMotion, len(models))
			for j, wm := range models {
				sgm, err := wm.Model.Calc(imt, hi.in)
				if err != nil {
					return nil, fmt.Errorf("ground motion model %s (%s): %w", wm.Model.Name(), imt, err)
				}
				row[j] = sgm
			}
			rows[i] = row
		}
		sgms[imt] = rows
	}
	return &groundMotions{models: models, sgms: sgms}, nil
}

// modelWeightedExceedance is the gmm-weighted probability of exceeding
// lnLevel given one input's predictions across the weighted models.
func modelWeightedExceedance(
	models []gmm.WeightedModel,
	row []gmm.ScalarGroundMotion,
	cfg *Config,
	lnLevel float64,
) float64 {
	p := 0.0
	for j, wm := range models {
		sgm := row[j]
		p += wm.Weight * cfg.exceedance.Probability(sgm.Mean, sgm.Sigma, cfg.truncation, lnLevel)
	}
	return p
}

// newCurves converts ground motions into per-type annual rate-of-exceedance
// curves, summed across the set's ruptures.
func newCurves(inputs inputList, gm *groundMotions, cfg *Config) map[gmm.Imt]*data.XySequence {
	curves := cfg.ModelCurves()
	for imt, curve := range curves {
		rows := gm.sgms[imt]
		for k := 0; k < curve.Len(); k++ {
			lnLevel := math.Log(curve.X(k))
			sum := 0.0
			for i, hi := range inputs {
				sum += hi.rate * modelWeightedExceedance(gm.models, rows[i], cfg, lnLevel)
			}
			curve.SetY(k, sum)
		}
	}
	return curves
}

// stage names one unit of work in a source set's chain.
type stage struct {
	name string
	run  pool.Task
}

// chain is the per-variant stage sequence over private mutable state.
type chain interface {
	stages() []stage
}

// defaultChain is the standard four-stage chain used by fault, grid and slab
// source sets. Its state is private to one calculation; stages communicate
// only through it, in strict order.
type defaultChain struct {
	set  model.SourceSet
	cfg  *Config
	site Site

	inputs inputList
	gms    *groundMotions
	curves map[gmm.Imt]*data.XySequence
	out    **HazardCurveSet
}

func (c *defaultChain) toInputs(ctx context.Context) error {
	c.inputs = newInputs(c.set.LocationIterable(c.site.Loc), c.site)
	if len(c.inputs) == 0 {
		// True absence: downstream stages pass through and the set
		// contributes no curve at all.
		ctxlog.FromContext(ctx).Debug("No sources in range.", "set", c.set.Name())
	}
	return nil
}

func (c *defaultChain) toGroundMotions(ctx context.Context) error {
	if len(c.inputs) == 0 {
		return nil
	}
	gms, err := newGroundMotions(c.inputs, c.set.GroundMotionModels(), c.cfg.Imts())
	if err != nil {
		return fmt.Errorf("source set %q: %w", c.set.Name(), err)
	}
	c.gms = gms
	return nil
}

func (c *defaultChain) toCurves(ctx context.Context) error {
	if c.gms == nil {
		return nil
	}
	c.curves = newCurves(c.inputs, c.gms, c.cfg)
	return nil
}

func (c *defaultChain) toCurveSet(ctx context.Context) error {
	if c.curves == nil {
		return nil
	}
	*c.out = &HazardCurveSet{
		SetName: c.set.Name(),
		SetType: c.set.Type(),
		Weight:  c.set.Weight(),
		Curves:  c.curves,
	}
	return nil
}

func (c *defaultChain) stages() []stage {
	return []stage{
		{"inputs", c.toInputs},
		{"groundMotions", c.toGroundMotions},
		{"curves", c.toCurves},
		{"curveSet", c.toCurveSet},
	}
}

// systemChain handles fault-network sets. Input assembly works; the later
// stages have no defined contract, so any in-range input surfaces an explicit
// unsupported error instead of a silently incomplete curve.
type systemChain struct {
	set  *model.SystemSourceSet
	site Site

	inputs inputList
}

func (c *systemChain) toInputs(ctx context.Context) error {
	c.inputs = newInputs(c.set.LocationIterable(c.site.Loc), c.site)
	return nil
}

func (c *systemChain) toGroundMotions(ctx context.Context) error {
	if len(c.inputs) == 0 {
		return nil
	}
	return fmt.Errorf(
		"source set %q: ground-motion and curve stages for system sources are not supported",
		c.set.Name())
}

func (c *systemChain) stages() []stage {
	return []stage{
		{"inputs", c.toInputs},
		{"groundMotions", c.toGroundMotions},
	}
}
