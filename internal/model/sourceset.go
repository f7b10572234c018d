package model

import (
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// SourceType identifies the variant of a source collection.
type SourceType string

const (
	FaultType   SourceType = "FAULT"
	GridType    SourceType = "GRID"
	SlabType    SourceType = "SLAB"
	ClusterType SourceType = "CLUSTER"
	SystemType  SourceType = "SYSTEM"
)

// ParseSourceType converts an identifier string to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(s) {
	case FaultType, GridType, SlabType, ClusterType, SystemType:
		return SourceType(s), nil
	}
	return "", fmt.Errorf("unknown source type %q", s)
}

// ScalingRelation identifies the magnitude-scaling relation attached to a
// source set. Currently carried for reference only; rupture rates arrive
// pre-scaled in the model document.
type ScalingRelation string

const (
	ScalingWC94     ScalingRelation = "WC_94"
	ScalingGeoMat   ScalingRelation = "GEOMAT"
	ScalingPeerNGA  ScalingRelation = "PEER_NGA"
	ScalingNSHMP_CA ScalingRelation = "NSHMP_CA"
)

// ParseScalingRelation converts an identifier string to a ScalingRelation.
func ParseScalingRelation(s string) (ScalingRelation, error) {
	switch ScalingRelation(s) {
	case ScalingWC94, ScalingGeoMat, ScalingPeerNGA, ScalingNSHMP_CA:
		return ScalingRelation(s), nil
	}
	return "", fmt.Errorf("unknown scaling relation %q", s)
}

// SourceSet is the common contract of all source collections: an immutable,
// named, weighted, ordered group of sources of one variant, carrying the
// ground-motion model set used to evaluate its ruptures.
type SourceSet interface {
	Name() string
	// Weight is the set's logic-tree branch weight in [0, 1]. Whether weights
	// sum to one across branches is the model author's convention; it is not
	// enforced here.
	Weight() float64
	Type() SourceType
	Size() int
	Sources() []Source
	GroundMotionModels() *gmm.Set
	// DistanceFilter returns a predicate selecting sources within dist km of
	// loc. Variants override the selection semantics, not the signature.
	DistanceFilter(loc geo.Location, dist float64) func(Source) bool
	// LocationIterable returns the sources passing the distance filter at the
	// gmm set's maximum usable distance, preserving declaration order.
	LocationIterable(loc geo.Location) []Source
}

// baseSourceSet carries the fields and behavior every variant shares.
type baseSourceSet struct {
	name    string
	weight  float64
	scaling ScalingRelation
	gmms    *gmm.Set
}

func (s *baseSourceSet) Name() string    { return s.name }
func (s *baseSourceSet) Weight() float64 { return s.weight }

func (s *baseSourceSet) ScalingRelation() ScalingRelation { return s.scaling }
func (s *baseSourceSet) GroundMotionModels() *gmm.Set     { return s.gmms }

// distanceFilter is the standard predicate: the source's representative
// location lies within dist km of loc.
func distanceFilter(loc geo.Location, dist float64) func(Source) bool {
	return func(s Source) bool {
		return geo.Distance(loc, s.Location()) <= dist
	}
}

// filterSources applies pred to sources, preserving order.
func filterSources(sources []Source, pred func(Source) bool) []Source {
	var out []Source
	for _, s := range sources {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}
