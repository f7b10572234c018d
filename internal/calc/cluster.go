package calc

import (
	"context"
	"fmt"
	"math"

	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/data"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
)

// clusterInput groups the member-fault inputs of one in-range cluster. A
// cluster passes the distance filter as a whole; every member fault is then
// carried into the joint computation, in or out of range.
type clusterInput struct {
	name   string
	rate   float64
	faults []inputList
}

// clusterGroundMotions pairs a cluster's inputs with its per-fault
// collaborator outputs, parallel to clusterInput.faults.
type clusterGroundMotions struct {
	input  clusterInput
	faults []*groundMotions
}

// clusterChain is the stage chain for cluster source sets. It differs from
// the default chain at the ground-motion and curve stages: member faults of
// one cluster are not independent, so their exceedances are combined jointly
// per cluster before the set's curve is accumulated.
type clusterChain struct {
	set  *model.ClusterSourceSet
	cfg  *Config
	site Site

	inputs []clusterInput
	gms    []clusterGroundMotions
	curves map[gmm.Imt]*data.XySequence
	out    **HazardCurveSet
}

func (c *clusterChain) toInputs(ctx context.Context) error {
	for _, src := range c.set.LocationIterable(c.site.Loc) {
		cs, ok := src.(*model.ClusterSource)
		if !ok {
			return fmt.Errorf("source set %q: unexpected source %T", c.set.Name(), src)
		}
		ci := clusterInput{name: cs.Name(), rate: cs.Rate()}
		for _, f := range cs.Faults() {
			ci.faults = append(ci.faults, newInputs([]model.Source{f}, c.site))
		}
		c.inputs = append(c.inputs, ci)
	}
	if len(c.inputs) == 0 {
		ctxlog.FromContext(ctx).Debug("No clusters in range.", "set", c.set.Name())
	}
	return nil
}

func (c *clusterChain) toGroundMotions(ctx context.Context) error {
	if len(c.inputs) == 0 {
		return nil
	}
	set := c.set.GroundMotionModels()
	imts := c.cfg.Imts()
	for _, ci := range c.inputs {
		cgm := clusterGroundMotions{input: ci}
		for _, fl := range ci.faults {
			gms, err := newGroundMotions(fl, set, imts)
			if err != nil {
				return fmt.Errorf("source set %q cluster %q: %w", c.set.Name(), ci.name, err)
			}
			cgm.faults = append(cgm.faults, gms)
		}
		c.gms = append(c.gms, cgm)
	}
	return nil
}

func (c *clusterChain) toCurves(ctx context.Context) error {
	if c.gms == nil {
		return nil
	}
	curves := c.cfg.ModelCurves()
	for imt, curve := range curves {
		for k := 0; k < curve.Len(); k++ {
			lnLevel := math.Log(curve.X(k))
			sum := 0.0
			for _, cgm := range c.gms {
				// Joint exceedance across correlated member faults:
				// 1 - prod(1 - P_fault), scaled by the sequence rate.
				joint := 1.0
				for fi, fgm := range cgm.faults {
					fp := faultExceedance(cgm.input.faults[fi], fgm, imt, c.cfg, lnLevel)
					joint *= 1 - fp
				}
				sum += cgm.input.rate * (1 - joint)
			}
			curve.SetY(k, sum)
		}
	}
	c.curves = curves
	return nil
}

func (c *clusterChain) toCurveSet(ctx context.Context) error {
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

func (c *clusterChain) stages() []stage {
	return []stage{
		{"inputs", c.toInputs},
		{"groundMotions", c.toGroundMotions},
		{"curves", c.toCurves},
		{"curveSet", c.toCurveSet},
	}
}

// faultExceedance is one member fault's probability of exceeding lnLevel
// given that its cluster sequence occurs: a rate-weighted average over the
// fault's scenario ruptures of the gmm-weighted exceedance.
func faultExceedance(
	inputs inputList,
	gm *groundMotions,
	imt gmm.Imt,
	cfg *Config,
	lnLevel float64,
) float64 {
	totalRate := 0.0
	for _, hi := range inputs {
		totalRate += hi.rate
	}
	if totalRate == 0 {
		return 0
	}
	rows := gm.sgms[imt]
	p := 0.0
	for i, hi := range inputs {
		p += (hi.rate / totalRate) * modelWeightedExceedance(gm.models, rows[i], cfg, lnLevel)
	}
	return p
}
