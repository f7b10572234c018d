package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *GridSourceSet {
	t.Helper()
	ps, err := NewPointSource(testLoc(t, 47.5, -122.3),
		[]Rupture{{Mag: 7.0, Rate: 0.0005}})
	require.NoError(t, err)

	grid, err := NewGridSourceSetBuilder().
		Name("Puget Lowland").
		Weight(0.8).
		ScalingRelation(ScalingGeoMat).
		Gmms(testGmms(t, 200)).
		Source(ps).
		Build()
	require.NoError(t, err)
	return grid
}

func TestSlabSourceSetDelegation(t *testing.T) {
	grid := testGrid(t)
	slab, err := NewSlabSourceSet(grid)
	require.NoError(t, err)

	// Only the variant tag differs from the delegate.
	assert.Equal(t, SlabType, slab.Type())
	assert.NotEqual(t, grid.Type(), slab.Type())

	assert.Equal(t, grid.Name(), slab.Name())
	assert.Equal(t, grid.Weight(), slab.Weight())
	assert.Equal(t, grid.Size(), slab.Size())
	assert.Same(t, grid.GroundMotionModels(), slab.GroundMotionModels())

	site := testLoc(t, 47.6, -122.3)
	assert.Equal(t, grid.LocationIterable(site), slab.LocationIterable(site))
}

func TestSlabSourceSetNilDelegate(t *testing.T) {
	_, err := NewSlabSourceSet(nil)
	assert.ErrorContains(t, err, "delegate is nil")
}
