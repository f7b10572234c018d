// Package model holds the immutable seismic source data model: sources and
// their ruptures, the SourceSet variants composing a hazard model, their
// single-use builders, and the HazardModel container itself. Everything here
// is built once at model-load time and shared read-only across concurrent
// calculations.
package model

import (
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
)

// Rupture is a single fault-slip event: magnitude, annual occurrence rate
// and rake angle (style of faulting).
type Rupture struct {
	Mag  float64
	Rate float64
	Rake float64
}

// Source is a rupture-generating seismic feature.
type Source interface {
	Name() string
	Location() geo.Location
	Ruptures() []Rupture
}

// FaultSource is a discrete fault represented by a characteristic surface
// position and one or more scenario ruptures.
type FaultSource struct {
	name     string
	loc      geo.Location
	ruptures []Rupture
}

// NewFaultSource creates a fault source. The name must be non-empty and at
// least one rupture is required.
func NewFaultSource(name string, loc geo.Location, ruptures []Rupture) (*FaultSource, error) {
	if name == "" {
		return nil, fmt.Errorf("fault source name not set")
	}
	if len(ruptures) == 0 {
		return nil, fmt.Errorf("fault source %q has no ruptures", name)
	}
	owned := make([]Rupture, len(ruptures))
	copy(owned, ruptures)
	return &FaultSource{name: name, loc: loc, ruptures: owned}, nil
}

func (s *FaultSource) Name() string           { return s.name }
func (s *FaultSource) Location() geo.Location { return s.loc }

// Ruptures returns the scenario ruptures in declaration order.
func (s *FaultSource) Ruptures() []Rupture {
	out := make([]Rupture, len(s.ruptures))
	copy(out, s.ruptures)
	return out
}

// PointSource is one cell of a gridded seismicity model.
type PointSource struct {
	name     string
	loc      geo.Location
	ruptures []Rupture
}

// NewPointSource creates a grid cell source at loc. The name is derived from
// the cell position.
func NewPointSource(loc geo.Location, ruptures []Rupture) (*PointSource, error) {
	if len(ruptures) == 0 {
		return nil, fmt.Errorf("point source at %s has no ruptures", loc)
	}
	owned := make([]Rupture, len(ruptures))
	copy(owned, ruptures)
	name := fmt.Sprintf("grid [%.3f, %.3f]", loc.Lat(), loc.Lon())
	return &PointSource{name: name, loc: loc, ruptures: owned}, nil
}

func (s *PointSource) Name() string           { return s.name }
func (s *PointSource) Location() geo.Location { return s.loc }

func (s *PointSource) Ruptures() []Rupture {
	out := make([]Rupture, len(s.ruptures))
	copy(out, s.ruptures)
	return out
}

// ClusterSource is a rated group of correlated fault sources that rupture as
// one sequence. Member faults are never treated independently; the cluster
// contributes jointly during ground-motion and curve computation.
type ClusterSource struct {
	name   string
	rate   float64
	faults []*FaultSource
}

// NewClusterSource creates a cluster with the given sequence rate and member
// faults. At least one member fault is required.
func NewClusterSource(name string, rate float64, faults []*FaultSource) (*ClusterSource, error) {
	if name == "" {
		return nil, fmt.Errorf("cluster source name not set")
	}
	if rate <= 0 {
		return nil, fmt.Errorf("cluster source %q rate %g not positive", name, rate)
	}
	if len(faults) == 0 {
		return nil, fmt.Errorf("cluster source %q has no member faults", name)
	}
	owned := make([]*FaultSource, len(faults))
	for i, f := range faults {
		if f == nil {
			return nil, fmt.Errorf("cluster source %q member fault %d is nil", name, i)
		}
		owned[i] = f
	}
	return &ClusterSource{name: name, rate: rate, faults: owned}, nil
}

func (s *ClusterSource) Name() string { return s.name }

// Rate returns the annual occurrence rate of the cluster sequence.
func (s *ClusterSource) Rate() float64 { return s.rate }

// Faults returns the member faults in declaration order.
func (s *ClusterSource) Faults() []*FaultSource {
	out := make([]*FaultSource, len(s.faults))
	copy(out, s.faults)
	return out
}

// Location returns the first member fault's position. Cluster distance
// filtering inspects member faults directly, not this value.
func (s *ClusterSource) Location() geo.Location {
	return s.faults[0].Location()
}

// Ruptures returns the concatenated member-fault ruptures. Present to satisfy
// the Source contract; the joint cluster computation walks Faults instead.
func (s *ClusterSource) Ruptures() []Rupture {
	var out []Rupture
	for _, f := range s.faults {
		out = append(out, f.Ruptures()...)
	}
	return out
}
