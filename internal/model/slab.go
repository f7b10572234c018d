package model

import (
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// SlabSourceSet decorates a GridSourceSet representing intraslab seismicity.
// It owns its delegate and forwards every query to it except the reported
// variant tag, which classifies the set as SLAB.
type SlabSourceSet struct {
	delegate *GridSourceSet
}

// NewSlabSourceSet wraps the given grid computation as a slab source set.
func NewSlabSourceSet(delegate *GridSourceSet) (*SlabSourceSet, error) {
	if delegate == nil {
		return nil, fmt.Errorf("SlabSourceSet: delegate is nil")
	}
	return &SlabSourceSet{delegate: delegate}, nil
}

func (s *SlabSourceSet) Type() SourceType { return SlabType }

func (s *SlabSourceSet) Name() string                 { return s.delegate.Name() }
func (s *SlabSourceSet) Weight() float64              { return s.delegate.Weight() }
func (s *SlabSourceSet) Size() int                    { return s.delegate.Size() }
func (s *SlabSourceSet) Sources() []Source            { return s.delegate.Sources() }
func (s *SlabSourceSet) GroundMotionModels() *gmm.Set { return s.delegate.GroundMotionModels() }

func (s *SlabSourceSet) DistanceFilter(loc geo.Location, dist float64) func(Source) bool {
	return s.delegate.DistanceFilter(loc, dist)
}

func (s *SlabSourceSet) LocationIterable(loc geo.Location) []Source {
	return s.delegate.LocationIterable(loc)
}
