package model

import (
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// GridSourceSet is an ordered collection of gridded point sources.
type GridSourceSet struct {
	baseSourceSet
	sources []*PointSource
}

func (s *GridSourceSet) Type() SourceType { return GridType }
func (s *GridSourceSet) Size() int        { return len(s.sources) }

func (s *GridSourceSet) Sources() []Source {
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = src
	}
	return out
}

func (s *GridSourceSet) DistanceFilter(loc geo.Location, dist float64) func(Source) bool {
	return distanceFilter(loc, dist)
}

func (s *GridSourceSet) LocationIterable(loc geo.Location) []Source {
	return filterSources(s.Sources(), s.DistanceFilter(loc, s.gmms.MaxDistance()))
}

// GridSourceSetBuilder accumulates a GridSourceSet across chained calls.
type GridSourceSetBuilder struct {
	state   builderState
	sources []*PointSource
}

// NewGridSourceSetBuilder creates an empty GridSourceSetBuilder.
func NewGridSourceSetBuilder() *GridSourceSetBuilder {
	return &GridSourceSetBuilder{state: builderState{id: "GridSourceSet.Builder"}}
}

func (b *GridSourceSetBuilder) Name(name string) *GridSourceSetBuilder {
	b.state.setName(name)
	return b
}

func (b *GridSourceSetBuilder) Weight(weight float64) *GridSourceSetBuilder {
	b.state.setWeight(weight)
	return b
}

func (b *GridSourceSetBuilder) ScalingRelation(sr ScalingRelation) *GridSourceSetBuilder {
	b.state.setScaling(sr)
	return b
}

func (b *GridSourceSetBuilder) Gmms(set *gmm.Set) *GridSourceSetBuilder {
	b.state.setGmms(set)
	return b
}

// Source appends a grid cell source.
func (b *GridSourceSetBuilder) Source(src *PointSource) *GridSourceSetBuilder {
	if b.state.used() {
		return b
	}
	if src == nil {
		b.state.fail("%s: source is nil", b.state.id)
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

// Build validates the accumulated state and produces the set, consuming the
// builder.
func (b *GridSourceSetBuilder) Build() (*GridSourceSet, error) {
	if err := b.state.validate(); err != nil {
		return nil, err
	}
	sources := make([]*PointSource, len(b.sources))
	copy(sources, b.sources)
	return &GridSourceSet{baseSourceSet: b.state.base(), sources: sources}, nil
}
