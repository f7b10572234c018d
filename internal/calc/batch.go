package calc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pmpowers-usgs/nshmp-sha/internal/model"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// Curves runs one independent hazard calculation per site on the shared
// pool, returning results in site order. The batch fails as a unit on the
// first site failure; individual calculations already in flight run to
// completion but their results are discarded.
func Curves(
	ctx context.Context,
	m *model.HazardModel,
	cfg *Config,
	sites []Site,
	p *pool.Pool,
) ([]*Result, error) {
	results := make([]*Result, len(sites))
	eg, ctx := errgroup.WithContext(ctx)
	for i, site := range sites {
		eg.Go(func() error {
			r, err := HazardCurve(ctx, m, cfg, site, p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
