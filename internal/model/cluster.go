package model

import (
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// ClusterSourceSet is an ordered collection of cluster sources: groups of
// correlated faults that rupture as one sequence. Its distance filter admits
// a cluster when any member fault lies within range, and in-range clusters
// are evaluated jointly downstream, never fault by fault.
type ClusterSourceSet struct {
	baseSourceSet
	sources []*ClusterSource
}

func (s *ClusterSourceSet) Type() SourceType { return ClusterType }
func (s *ClusterSourceSet) Size() int        { return len(s.sources) }

func (s *ClusterSourceSet) Sources() []Source {
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = src
	}
	return out
}

// Clusters returns the typed cluster sources in declaration order.
func (s *ClusterSourceSet) Clusters() []*ClusterSource {
	out := make([]*ClusterSource, len(s.sources))
	copy(out, s.sources)
	return out
}

// DistanceFilter admits a cluster iff any member fault passes the standard
// fault filter for the same location and distance.
func (s *ClusterSourceSet) DistanceFilter(loc geo.Location, dist float64) func(Source) bool {
	faultFilter := distanceFilter(loc, dist)
	return func(src Source) bool {
		cs, ok := src.(*ClusterSource)
		if !ok {
			return false
		}
		for _, f := range cs.Faults() {
			if faultFilter(f) {
				return true
			}
		}
		return false
	}
}

func (s *ClusterSourceSet) LocationIterable(loc geo.Location) []Source {
	return filterSources(s.Sources(), s.DistanceFilter(loc, s.gmms.MaxDistance()))
}

// ClusterSourceSetBuilder accumulates a ClusterSourceSet across chained calls.
type ClusterSourceSetBuilder struct {
	state   builderState
	sources []*ClusterSource
}

// NewClusterSourceSetBuilder creates an empty ClusterSourceSetBuilder.
func NewClusterSourceSetBuilder() *ClusterSourceSetBuilder {
	return &ClusterSourceSetBuilder{state: builderState{id: "ClusterSourceSet.Builder"}}
}

func (b *ClusterSourceSetBuilder) Name(name string) *ClusterSourceSetBuilder {
	b.state.setName(name)
	return b
}

func (b *ClusterSourceSetBuilder) Weight(weight float64) *ClusterSourceSetBuilder {
	b.state.setWeight(weight)
	return b
}

func (b *ClusterSourceSetBuilder) ScalingRelation(sr ScalingRelation) *ClusterSourceSetBuilder {
	b.state.setScaling(sr)
	return b
}

func (b *ClusterSourceSetBuilder) Gmms(set *gmm.Set) *ClusterSourceSetBuilder {
	b.state.setGmms(set)
	return b
}

// Source appends a cluster source.
func (b *ClusterSourceSetBuilder) Source(src *ClusterSource) *ClusterSourceSetBuilder {
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
func (b *ClusterSourceSetBuilder) Build() (*ClusterSourceSet, error) {
	if err := b.state.validate(); err != nil {
		return nil, err
	}
	sources := make([]*ClusterSource, len(b.sources))
	copy(sources, b.sources)
	return &ClusterSourceSet{baseSourceSet: b.state.base(), sources: sources}, nil
}
