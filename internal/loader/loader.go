// Package loader parses hazard model documents written in HCL into a built
// HazardModel and calculation Config. Documents declare a config block and
// any number of source_set blocks; ground-motion model implementations are
// supplied by the caller and referenced by name.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/pmpowers-usgs/nshmp-sha/internal/calc"
	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
)

type modelDoc struct {
	Name   string         `hcl:"name"`
	Config configDoc      `hcl:"config,block"`
	Sets   []sourceSetDoc `hcl:"source_set,block"`
}

type configDoc struct {
	Imts            []string  `hcl:"imts"`
	ExceedanceModel string    `hcl:"exceedance_model"`
	TruncationLevel float64   `hcl:"truncation_level"`
	Levels          cty.Value `hcl:"levels"`
}

type sourceSetDoc struct {
	Type     string      `hcl:"type,label"`
	Name     string      `hcl:"name,label"`
	Weight   float64     `hcl:"weight"`
	Scaling  string      `hcl:"scaling"`
	Gmms     gmmSetDoc   `hcl:"gmms,block"`
	Sources  []sourceDoc `hcl:"source,block"`
	Sections []sourceDoc `hcl:"section,block"`
}

type gmmSetDoc struct {
	MaxDistance float64       `hcl:"max_distance"`
	Models      []gmmModelDoc `hcl:"model,block"`
}

type gmmModelDoc struct {
	Name   string  `hcl:"name,label"`
	Weight float64 `hcl:"weight"`
}

// sourceDoc covers all source flavors: fault/grid/slab sources carry a
// location and rupture blocks; cluster sources carry a sequence rate and
// nested fault blocks.
type sourceDoc struct {
	Name     string       `hcl:"name,label"`
	Location []float64    `hcl:"location,optional"`
	Rate     *float64     `hcl:"rate,optional"`
	Ruptures []ruptureDoc `hcl:"rupture,block"`
	Faults   []sourceDoc  `hcl:"fault,block"`
}

type ruptureDoc struct {
	Mag  float64 `hcl:"mag"`
	Rate float64 `hcl:"rate"`
	Rake float64 `hcl:"rake,optional"`
}

// Load parses the hazard model document at path. The models map supplies the
// ground-motion model implementations the document references by name.
func Load(
	ctx context.Context,
	path string,
	models map[string]gmm.GroundMotionModel,
) (*model.HazardModel, *calc.Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading model document: %w", err)
	}
	return Parse(ctx, path, src, models)
}

// Parse decodes a hazard model document from src. The filename is used in
// diagnostics only.
func Parse(
	ctx context.Context,
	filename string,
	src []byte,
	models map[string]gmm.GroundMotionModel,
) (*model.HazardModel, *calc.Config, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}

	var doc modelDoc
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, nil, fmt.Errorf("decoding %s: %w", filename, diags)
	}

	cfg, err := buildConfig(&doc.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	mb := model.NewHazardModelBuilder().Name(doc.Name)
	for _, sd := range doc.Sets {
		ss, err := buildSourceSet(&sd, models)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: source_set %q: %w", filename, sd.Name, err)
		}
		mb.SourceSet(ss)
	}
	m, err := mb.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debug("Model document loaded.", "model", m.Name(), "sets", m.Size())
	return m, cfg, nil
}

func buildConfig(cd *configDoc) (*calc.Config, error) {
	imts := make([]gmm.Imt, 0, len(cd.Imts))
	for _, s := range cd.Imts {
		imt, err := gmm.ParseImt(s)
		if err != nil {
			return nil, err
		}
		imts = append(imts, imt)
	}
	exceedance, err := calc.ParseExceedanceModel(cd.ExceedanceModel)
	if err != nil {
		return nil, err
	}
	levels, err := decodeLevels(cd.Levels)
	if err != nil {
		return nil, err
	}
	return calc.NewConfig(imts, exceedance, cd.TruncationLevel, levels)
}

// decodeLevels converts the `levels` object attribute into per-type level
// slices.
func decodeLevels(v cty.Value) (map[gmm.Imt][]float64, error) {
	if v.IsNull() || !v.CanIterateElements() {
		return nil, fmt.Errorf("levels must map intensity measure types to level lists")
	}
	out := make(map[gmm.Imt][]float64)
	for it := v.ElementIterator(); it.Next(); {
		key, val := it.Element()
		if key.Type() != cty.String {
			return nil, fmt.Errorf("levels keys must be strings")
		}
		imt, err := gmm.ParseImt(key.AsString())
		if err != nil {
			return nil, err
		}
		if val.IsNull() || !val.CanIterateElements() {
			return nil, fmt.Errorf("levels for %s must be a list of numbers", imt)
		}
		var xs []float64
		for li := val.ElementIterator(); li.Next(); {
			_, lv := li.Element()
			if lv.Type() != cty.Number {
				return nil, fmt.Errorf("levels for %s must be numbers", imt)
			}
			f, _ := lv.AsBigFloat().Float64()
			xs = append(xs, f)
		}
		out[imt] = xs
	}
	return out, nil
}

func buildGmmSet(gd *gmmSetDoc, models map[string]gmm.GroundMotionModel) (*gmm.Set, error) {
	b := gmm.NewSetBuilder().MaxDistance(gd.MaxDistance)
	for _, md := range gd.Models {
		m, ok := models[md.Name]
		if !ok {
			return nil, fmt.Errorf("unknown ground motion model %q", md.Name)
		}
		b.Model(m, md.Weight)
	}
	return b.Build()
}

func buildSourceSet(
	sd *sourceSetDoc,
	models map[string]gmm.GroundMotionModel,
) (model.SourceSet, error) {
	gmms, err := buildGmmSet(&sd.Gmms, models)
	if err != nil {
		return nil, err
	}
	scaling, err := model.ParseScalingRelation(sd.Scaling)
	if err != nil {
		return nil, err
	}

	switch sd.Type {
	case "fault":
		b := model.NewFaultSourceSetBuilder().
			Name(sd.Name).Weight(sd.Weight).ScalingRelation(scaling).Gmms(gmms)
		for _, src := range sd.Sources {
			fs, err := buildFaultSource(&src)
			if err != nil {
				return nil, err
			}
			b.Source(fs)
		}
		return b.Build()

	case "grid", "slab":
		b := model.NewGridSourceSetBuilder().
			Name(sd.Name).Weight(sd.Weight).ScalingRelation(scaling).Gmms(gmms)
		for _, src := range sd.Sources {
			ps, err := buildPointSource(&src)
			if err != nil {
				return nil, err
			}
			b.Source(ps)
		}
		grid, err := b.Build()
		if err != nil {
			return nil, err
		}
		if sd.Type == "slab" {
			return model.NewSlabSourceSet(grid)
		}
		return grid, nil

	case "cluster":
		b := model.NewClusterSourceSetBuilder().
			Name(sd.Name).Weight(sd.Weight).ScalingRelation(scaling).Gmms(gmms)
		for _, src := range sd.Sources {
			cs, err := buildClusterSource(&src)
			if err != nil {
				return nil, err
			}
			b.Source(cs)
		}
		return b.Build()

	case "system":
		b := model.NewSystemSourceSetBuilder().
			Name(sd.Name).Weight(sd.Weight).ScalingRelation(scaling).Gmms(gmms)
		for _, src := range sd.Sections {
			fs, err := buildFaultSource(&src)
			if err != nil {
				return nil, err
			}
			b.Section(fs)
		}
		return b.Build()
	}
	return nil, fmt.Errorf("unknown source set type %q", sd.Type)
}

func buildLocation(coords []float64) (geo.Location, error) {
	switch len(coords) {
	case 2:
		return geo.NewLocation(coords[0], coords[1])
	case 3:
		return geo.NewLocationWithDepth(coords[0], coords[1], coords[2])
	}
	return geo.Location{}, fmt.Errorf("location needs [lat, lon] or [lat, lon, depth], got %d values", len(coords))
}

func buildRuptures(docs []ruptureDoc) []model.Rupture {
	out := make([]model.Rupture, len(docs))
	for i, rd := range docs {
		out[i] = model.Rupture{Mag: rd.Mag, Rate: rd.Rate, Rake: rd.Rake}
	}
	return out
}

func buildFaultSource(src *sourceDoc) (*model.FaultSource, error) {
	loc, err := buildLocation(src.Location)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}
	fs, err := model.NewFaultSource(src.Name, loc, buildRuptures(src.Ruptures))
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func buildPointSource(src *sourceDoc) (*model.PointSource, error) {
	loc, err := buildLocation(src.Location)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}
	return model.NewPointSource(loc, buildRuptures(src.Ruptures))
}

func buildClusterSource(src *sourceDoc) (*model.ClusterSource, error) {
	if src.Rate == nil {
		return nil, fmt.Errorf("cluster source %q: rate not set", src.Name)
	}
	faults := make([]*model.FaultSource, 0, len(src.Faults))
	for _, fd := range src.Faults {
		fs, err := buildFaultSource(&fd)
		if err != nil {
			return nil, fmt.Errorf("cluster source %q: %w", src.Name, err)
		}
		faults = append(faults, fs)
	}
	return model.NewClusterSource(src.Name, *src.Rate, faults)
}
