package model

import (
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// SystemSourceSet is a fault-network (system) collection: fault sections that
// participate in many multi-section ruptures. Only input assembly is defined
// for this variant; the ground-motion and curve stages have no contract yet
// and the calculation layer surfaces an explicit unsupported error rather
// than producing an incomplete curve.
type SystemSourceSet struct {
	baseSourceSet
	sections []*FaultSource
}

func (s *SystemSourceSet) Type() SourceType { return SystemType }
func (s *SystemSourceSet) Size() int        { return len(s.sections) }

func (s *SystemSourceSet) Sources() []Source {
	out := make([]Source, len(s.sections))
	for i, src := range s.sections {
		out[i] = src
	}
	return out
}

func (s *SystemSourceSet) DistanceFilter(loc geo.Location, dist float64) func(Source) bool {
	return distanceFilter(loc, dist)
}

func (s *SystemSourceSet) LocationIterable(loc geo.Location) []Source {
	return filterSources(s.Sources(), s.DistanceFilter(loc, s.gmms.MaxDistance()))
}

// SystemSourceSetBuilder accumulates a SystemSourceSet across chained calls.
type SystemSourceSetBuilder struct {
	state    builderState
	sections []*FaultSource
}

// NewSystemSourceSetBuilder creates an empty SystemSourceSetBuilder.
func NewSystemSourceSetBuilder() *SystemSourceSetBuilder {
	return &SystemSourceSetBuilder{state: builderState{id: "SystemSourceSet.Builder"}}
}

func (b *SystemSourceSetBuilder) Name(name string) *SystemSourceSetBuilder {
	b.state.setName(name)
	return b
}

func (b *SystemSourceSetBuilder) Weight(weight float64) *SystemSourceSetBuilder {
	b.state.setWeight(weight)
	return b
}

func (b *SystemSourceSetBuilder) ScalingRelation(sr ScalingRelation) *SystemSourceSetBuilder {
	b.state.setScaling(sr)
	return b
}

func (b *SystemSourceSetBuilder) Gmms(set *gmm.Set) *SystemSourceSetBuilder {
	b.state.setGmms(set)
	return b
}

// Section appends a fault section to the network.
func (b *SystemSourceSetBuilder) Section(src *FaultSource) *SystemSourceSetBuilder {
	if b.state.used() {
		return b
	}
	if src == nil {
		b.state.fail("%s: section is nil", b.state.id)
		return b
	}
	b.sections = append(b.sections, src)
	return b
}

// Build validates the accumulated state and produces the set, consuming the
// builder.
func (b *SystemSourceSetBuilder) Build() (*SystemSourceSet, error) {
	if err := b.state.validate(); err != nil {
		return nil, err
	}
	sections := make([]*FaultSource, len(b.sections))
	copy(sections, b.sections)
	return &SystemSourceSet{baseSourceSet: b.state.base(), sections: sections}, nil
}
