package model

import (
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// FaultSourceSet is an ordered collection of discrete fault sources.
type FaultSourceSet struct {
	baseSourceSet
	sources []*FaultSource
}

func (s *FaultSourceSet) Type() SourceType { return FaultType }
func (s *FaultSourceSet) Size() int        { return len(s.sources) }

func (s *FaultSourceSet) Sources() []Source {
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = src
	}
	return out
}

func (s *FaultSourceSet) DistanceFilter(loc geo.Location, dist float64) func(Source) bool {
	return distanceFilter(loc, dist)
}

func (s *FaultSourceSet) LocationIterable(loc geo.Location) []Source {
	return filterSources(s.Sources(), s.DistanceFilter(loc, s.gmms.MaxDistance()))
}

// FaultSourceSetBuilder accumulates a FaultSourceSet across chained calls.
type FaultSourceSetBuilder struct {
	state   builderState
	sources []*FaultSource
}

// NewFaultSourceSetBuilder creates an empty FaultSourceSetBuilder.
func NewFaultSourceSetBuilder() *FaultSourceSetBuilder {
	return &FaultSourceSetBuilder{state: builderState{id: "FaultSourceSet.Builder"}}
}

func (b *FaultSourceSetBuilder) Name(name string) *FaultSourceSetBuilder {
	b.state.setName(name)
	return b
}

func (b *FaultSourceSetBuilder) Weight(weight float64) *FaultSourceSetBuilder {
	b.state.setWeight(weight)
	return b
}

func (b *FaultSourceSetBuilder) ScalingRelation(sr ScalingRelation) *FaultSourceSetBuilder {
	b.state.setScaling(sr)
	return b
}

func (b *FaultSourceSetBuilder) Gmms(set *gmm.Set) *FaultSourceSetBuilder {
	b.state.setGmms(set)
	return b
}

// Source appends a fault source. An empty set is legal; it builds and is
// skipped during calculation.
func (b *FaultSourceSetBuilder) Source(src *FaultSource) *FaultSourceSetBuilder {
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
func (b *FaultSourceSetBuilder) Build() (*FaultSourceSet, error) {
	if err := b.state.validate(); err != nil {
		return nil, err
	}
	sources := make([]*FaultSource, len(b.sources))
	copy(sources, b.sources)
	return &FaultSourceSet{baseSourceSet: b.state.base(), sources: sources}, nil
}
