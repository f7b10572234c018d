package calc

import (
	"fmt"

	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
)

// Site is a location of interest with its site-response parameterization.
type Site struct {
	Name string
	Loc  geo.Location
	Vs30 float64
}

// NewSite creates a validated Site. An empty name defaults to "Unnamed".
func NewSite(name string, loc geo.Location, vs30 float64) (Site, error) {
	if vs30 <= 0 {
		return Site{}, fmt.Errorf("site %q vs30 %g not positive", name, vs30)
	}
	if name == "" {
		name = "Unnamed"
	}
	return Site{Name: name, Loc: loc, Vs30: vs30}, nil
}
