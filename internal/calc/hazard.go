// Package calc implements the asynchronous multi-stage hazard calculation
// pipeline: per source set, inputs are distance-filtered, ground motions are
// obtained from the external collaborator, exceedance curves are computed and
// paired with the set's weight, and all contributing curve sets are summed
// into one result per intensity measure type. Stage chains run as a
// dependency graph on the shared worker pool.
package calc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/dag"
	"github.com/pmpowers-usgs/nshmp-sha/internal/data"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// HazardCurveSet is the per-source-set calculation product, retained on the
// Result for breakdown and export.
type HazardCurveSet struct {
	SetName string
	SetType model.SourceType
	Weight  float64
	Curves  map[gmm.Imt]*data.XySequence
}

// Result is the aggregate hazard for one site: per intensity measure type,
// the weighted sum over contributing source sets, plus the retained curve
// sets in model order. A Result is complete or does not exist; the pipeline
// never yields a partial one.
type Result struct {
	Site      Site
	Total     map[gmm.Imt]*data.XySequence
	CurveSets []*HazardCurveSet
}

// chainFor selects the stage chain for a source set by variant. Cluster and
// system sets carry their own chains; every other variant shares the default.
func chainFor(ss model.SourceSet, cfg *Config, site Site, out **HazardCurveSet) chain {
	switch s := ss.(type) {
	case *model.ClusterSourceSet:
		return &clusterChain{set: s, cfg: cfg, site: site, out: out}
	case *model.SystemSourceSet:
		return &systemChain{set: s, site: site}
	default:
		return &defaultChain{set: ss, cfg: cfg, site: site, out: out}
	}
}

// HazardCurve computes the hazard at site, blocking until every source set's
// stage chain and the final aggregation complete, or until any chain fails.
// On failure no Result is returned; concurrent calculations for other sites
// are unaffected.
func HazardCurve(
	ctx context.Context,
	m *model.HazardModel,
	cfg *Config,
	site Site,
	p *pool.Pool,
) (*Result, error) {
	if m == nil || cfg == nil || p == nil {
		return nil, fmt.Errorf("hazard calculation requires a model, config and pool")
	}

	calcID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("calc", calcID, "site", site.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Hazard calculation started.", "model", m.Name(), "sets", m.Size())

	g := dag.New()

	// collect has one slot per source set; a nil slot after the run means the
	// set contributed nothing (all sources out of range, or an empty set).
	collect := make([]*HazardCurveSet, m.Size())
	tails := make([]string, 0, m.Size())
	for i, ss := range m.Sets() {
		c := chainFor(ss, cfg, site, &collect[i])
		prev := ""
		for _, st := range c.stages() {
			id := fmt.Sprintf("%d.%s.%s", i, st.name, ss.Name())
			if _, err := g.AddNode(id, st.run); err != nil {
				return nil, fmt.Errorf("building stage graph: %w", err)
			}
			if prev != "" {
				if err := g.AddEdge(prev, id); err != nil {
					return nil, fmt.Errorf("building stage graph: %w", err)
				}
			}
			prev = id
		}
		tails = append(tails, prev)
	}

	result := &Result{Site: site}
	toHazardResult := func(ctx context.Context) error {
		total := cfg.ModelCurves()
		for _, cs := range collect {
			if cs == nil {
				continue
			}
			result.CurveSets = append(result.CurveSets, cs)
			for imt, curve := range cs.Curves {
				if err := total[imt].AddScaled(curve, cs.Weight); err != nil {
					return fmt.Errorf("aggregating %q (%s): %w", cs.SetName, imt, err)
				}
			}
		}
		result.Total = total
		return nil
	}
	if _, err := g.AddNode("result", toHazardResult); err != nil {
		return nil, fmt.Errorf("building stage graph: %w", err)
	}
	for _, tail := range tails {
		if err := g.AddEdge(tail, "result"); err != nil {
			return nil, fmt.Errorf("building stage graph: %w", err)
		}
	}

	if err := g.Run(ctx, p); err != nil {
		logger.Error("Hazard calculation failed.", "error", err)
		return nil, fmt.Errorf("hazard calculation for site %q: %w", site.Name, err)
	}

	logger.Info("Hazard calculation complete.", "contributingSets", len(result.CurveSets))
	return result, nil
}
