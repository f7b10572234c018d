package calc

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// fakeGmm is a constant-prediction stand-in for the external collaborator.
type fakeGmm struct {
	name  string
	mean  float64
	sigma float64
	err   error
}

func (g *fakeGmm) Name() string { return g.name }

func (g *fakeGmm) Calc(imt gmm.Imt, in gmm.Input) (gmm.ScalarGroundMotion, error) {
	if g.err != nil {
		return gmm.ScalarGroundMotion{}, g.err
	}
	return gmm.ScalarGroundMotion{Mean: g.mean, Sigma: g.sigma}, nil
}

func gmmSet(t *testing.T, g gmm.GroundMotionModel) *gmm.Set {
	t.Helper()
	set, err := gmm.NewSetBuilder().Model(g, 1).MaxDistance(300).Build()
	require.NoError(t, err)
	return set
}

func location(t *testing.T, lat, lon float64) geo.Location {
	t.Helper()
	loc, err := geo.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func faultSet(
	t *testing.T,
	name string,
	weight float64,
	loc geo.Location,
	gmms *gmm.Set,
) *model.FaultSourceSet {
	t.Helper()
	fs, err := model.NewFaultSource(name+" fault", loc,
		[]model.Rupture{{Mag: 6.8, Rate: 0.002, Rake: -90}})
	require.NoError(t, err)

	set, err := model.NewFaultSourceSetBuilder().
		Name(name).Weight(weight).
		ScalingRelation(model.ScalingWC94).
		Gmms(gmms).
		Source(fs).
		Build()
	require.NoError(t, err)
	return set
}

func hazardModel(t *testing.T, sets ...model.SourceSet) *model.HazardModel {
	t.Helper()
	b := model.NewHazardModelBuilder().Name("test model")
	for _, s := range sets {
		b.SourceSet(s)
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func pgaConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfig([]gmm.Imt{gmm.PGA}, ExceedanceTruncUpperOnly, 3,
		map[gmm.Imt][]float64{gmm.PGA: {0.01, 0.1, 1.0}})
	require.NoError(t, err)
	return cfg
}

func TestHazardCurveWeightedAggregation(t *testing.T) {
	p := pool.New(4)
	defer p.Close()
	ctx := context.Background()

	siteLoc := location(t, 40.75, -111.9)
	site, err := NewSite("SLC", siteLoc, 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	setA := faultSet(t, "A", 0.4, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "GA", mean: math.Log(0.15), sigma: 0.6}))
	setB := faultSet(t, "B", 0.6, location(t, 40.9, -112.0),
		gmmSet(t, &fakeGmm{name: "GB", mean: math.Log(0.08), sigma: 0.5}))

	combined, err := HazardCurve(ctx, hazardModel(t, setA, setB), cfg, site, p)
	require.NoError(t, err)
	require.Len(t, combined.CurveSets, 2)

	onlyA, err := HazardCurve(ctx, hazardModel(t, setA), cfg, site, p)
	require.NoError(t, err)
	onlyB, err := HazardCurve(ctx, hazardModel(t, setB), cfg, site, p)
	require.NoError(t, err)

	// Aggregation is a point-wise weighted sum, so the combined total equals
	// the sum of the independently computed totals.
	total := combined.Total[gmm.PGA]
	for i := 0; i < total.Len(); i++ {
		want := onlyA.Total[gmm.PGA].Y(i) + onlyB.Total[gmm.PGA].Y(i)
		assert.InDelta(t, want, total.Y(i), 1e-12)
	}

	// Per-set breakdown carries weights, not weighted curves.
	assert.Equal(t, 0.4, combined.CurveSets[0].Weight)
	assert.Equal(t, "A", combined.CurveSets[0].SetName)
}

func TestHazardCurveAllOutOfRange(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	site, err := NewSite("remote", location(t, -45.0, 170.0), 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	setA := faultSet(t, "A", 0.4, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "GA", mean: -2, sigma: 0.6}))
	setB := faultSet(t, "B", 0.6, location(t, 40.9, -112.0),
		gmmSet(t, &fakeGmm{name: "GB", mean: -2, sigma: 0.6}))

	result, err := HazardCurve(context.Background(), hazardModel(t, setA, setB), cfg, site, p)
	require.NoError(t, err)

	// No set contributed: true absence, and an identically zero total.
	assert.Empty(t, result.CurveSets)
	for i := 0; i < result.Total[gmm.PGA].Len(); i++ {
		assert.Equal(t, 0.0, result.Total[gmm.PGA].Y(i))
	}
}

func TestHazardCurveEmptySetSkipped(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	siteLoc := location(t, 40.75, -111.9)
	site, err := NewSite("SLC", siteLoc, 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	empty, err := model.NewFaultSourceSetBuilder().
		Name("empty").Weight(0.5).
		ScalingRelation(model.ScalingWC94).
		Gmms(gmmSet(t, &fakeGmm{name: "G", mean: -2, sigma: 0.6})).
		Build()
	require.NoError(t, err)

	contributing := faultSet(t, "A", 0.5, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "GA", mean: -2, sigma: 0.6}))

	result, err := HazardCurve(context.Background(),
		hazardModel(t, empty, contributing), cfg, site, p)
	require.NoError(t, err)

	require.Len(t, result.CurveSets, 1)
	assert.Equal(t, "A", result.CurveSets[0].SetName)
}

func TestHazardCurveFailureIsAtomic(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	siteLoc := location(t, 40.75, -111.9)
	site, err := NewSite("SLC", siteLoc, 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	collabErr := errors.New("gmm table lookup failed")
	good := faultSet(t, "good", 0.5, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "G", mean: -2, sigma: 0.6}))
	bad := faultSet(t, "bad", 0.5, location(t, 40.9, -112.0),
		gmmSet(t, &fakeGmm{name: "B", err: collabErr}))

	result, err := HazardCurve(context.Background(), hazardModel(t, good, bad), cfg, site, p)
	assert.Nil(t, result, "no partial result on failure")
	require.Error(t, err)
	assert.ErrorIs(t, err, collabErr)
	assert.ErrorContains(t, err, `source set "bad"`)
}

func TestHazardCurveSystemSourcesUnsupported(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	siteLoc := location(t, 40.75, -111.9)
	site, err := NewSite("SLC", siteLoc, 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	g := gmmSet(t, &fakeGmm{name: "G", mean: -2, sigma: 0.6})
	section, err := model.NewFaultSource("section 1", location(t, 40.5, -111.8),
		[]model.Rupture{{Mag: 7.2, Rate: 0.0001}})
	require.NoError(t, err)

	t.Run("in-range sections surface an explicit error", func(t *testing.T) {
		system, err := model.NewSystemSourceSetBuilder().
			Name("network").Weight(1).
			ScalingRelation(model.ScalingWC94).
			Gmms(g).
			Section(section).
			Build()
		require.NoError(t, err)

		result, err := HazardCurve(context.Background(), hazardModel(t, system), cfg, site, p)
		assert.Nil(t, result)
		assert.ErrorContains(t, err, "not supported")
	})

	t.Run("out-of-range network contributes nothing without error", func(t *testing.T) {
		system, err := model.NewSystemSourceSetBuilder().
			Name("network").Weight(1).
			ScalingRelation(model.ScalingWC94).
			Gmms(g).
			Section(section).
			Build()
		require.NoError(t, err)

		remote, err := NewSite("remote", location(t, -45.0, 170.0), 760)
		require.NoError(t, err)

		result, err := HazardCurve(context.Background(), hazardModel(t, system), cfg, remote, p)
		require.NoError(t, err)
		assert.Empty(t, result.CurveSets)
	})
}

func TestHazardCurveSlabSetParticipates(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	siteLoc := location(t, 47.6, -122.3)
	site, err := NewSite("Seattle", siteLoc, 600)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	ps, err := model.NewPointSource(location(t, 47.5, -122.2),
		[]model.Rupture{{Mag: 7.0, Rate: 0.0005}})
	require.NoError(t, err)
	grid, err := model.NewGridSourceSetBuilder().
		Name("slab").Weight(1).
		ScalingRelation(model.ScalingGeoMat).
		Gmms(gmmSet(t, &fakeGmm{name: "G", mean: -2, sigma: 0.6})).
		Source(ps).
		Build()
	require.NoError(t, err)
	slab, err := model.NewSlabSourceSet(grid)
	require.NoError(t, err)

	result, err := HazardCurve(context.Background(), hazardModel(t, slab), cfg, site, p)
	require.NoError(t, err)
	require.Len(t, result.CurveSets, 1)
	assert.Equal(t, model.SlabType, result.CurveSets[0].SetType)
	assert.Greater(t, result.Total[gmm.PGA].Y(0), 0.0)
}

func TestHazardCurveClusterJoint(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	siteLoc := location(t, 36.6, -89.6)
	site, err := NewSite("NM", siteLoc, 760)
	require.NoError(t, err)
	cfg := pgaConfig(t)

	// Two correlated faults with distinct predictions, one rupture each.
	gA := &fakeGmm{name: "GA", mean: math.Log(0.12), sigma: 0.6}
	set, err := gmm.NewSetBuilder().Model(gA, 1).MaxDistance(300).Build()
	require.NoError(t, err)

	f1, err := model.NewFaultSource("north", location(t, 36.5, -89.5),
		[]model.Rupture{{Mag: 7.5, Rate: 1}})
	require.NoError(t, err)
	f2, err := model.NewFaultSource("south", location(t, 36.3, -89.5),
		[]model.Rupture{{Mag: 7.3, Rate: 1}})
	require.NoError(t, err)

	const clusterRate = 0.0002
	cluster, err := model.NewClusterSource("NM sequence", clusterRate,
		[]*model.FaultSource{f1, f2})
	require.NoError(t, err)

	clusterSet, err := model.NewClusterSourceSetBuilder().
		Name("New Madrid").Weight(1).
		ScalingRelation(model.ScalingWC94).
		Gmms(set).
		Source(cluster).
		Build()
	require.NoError(t, err)

	result, err := HazardCurve(context.Background(), hazardModel(t, clusterSet), cfg, site, p)
	require.NoError(t, err)

	// With one rupture per fault and identical predictions, the joint
	// exceedance is 1 - (1-p)^2 scaled by the sequence rate.
	curve := result.Total[gmm.PGA]
	for i := 0; i < curve.Len(); i++ {
		lnLevel := math.Log(curve.X(i))
		pf := cfg.Exceedance().Probability(math.Log(0.12), 0.6, 3, lnLevel)
		want := clusterRate * (1 - (1-pf)*(1-pf))
		assert.InDelta(t, want, curve.Y(i), 1e-12, "level %g", curve.X(i))
	}
}

func TestCurvesMultiSite(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	cfg := pgaConfig(t)
	set := faultSet(t, "A", 1, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "G", mean: -2, sigma: 0.6}))
	m := hazardModel(t, set)

	near, err := NewSite("near", location(t, 40.75, -111.9), 760)
	require.NoError(t, err)
	far, err := NewSite("far", location(t, -45.0, 170.0), 760)
	require.NoError(t, err)

	results, err := Curves(context.Background(), m, cfg, []Site{near, far}, p)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "near", results[0].Site.Name)
	assert.Greater(t, results[0].Total[gmm.PGA].Y(0), 0.0)
	assert.Equal(t, 0.0, results[1].Total[gmm.PGA].Y(0))
}

func TestCurvesBatchFailsAsUnit(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	cfg := pgaConfig(t)
	collabErr := errors.New("bad table")
	set := faultSet(t, "A", 1, location(t, 40.5, -111.8),
		gmmSet(t, &fakeGmm{name: "G", err: collabErr}))
	m := hazardModel(t, set)

	near, err := NewSite("near", location(t, 40.75, -111.9), 760)
	require.NoError(t, err)

	results, err := Curves(context.Background(), m, cfg, []Site{near}, p)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, collabErr)
}
