// Package gmm defines the contract of the external ground-motion model
// collaborator consumed by the hazard pipeline, together with the weighted
// model sets attached to source collections. No numeric attenuation models
// live here; implementations are supplied by the caller.
package gmm

import "fmt"

// Imt is an intensity measure type identifier.
type Imt string

// The intensity measure types recognized by the calculation layer.
const (
	PGA   Imt = "PGA"    // peak ground acceleration
	PGV   Imt = "PGV"    // peak ground velocity
	SA0P2 Imt = "SA0P2"  // 0.2 s spectral acceleration
	SA1P0 Imt = "SA1P0"  // 1.0 s spectral acceleration
	SA2P0 Imt = "SA2P0"  // 2.0 s spectral acceleration
)

// ParseImt converts an identifier string to an Imt.
func ParseImt(s string) (Imt, error) {
	switch Imt(s) {
	case PGA, PGV, SA0P2, SA1P0, SA2P0:
		return Imt(s), nil
	}
	return "", fmt.Errorf("unknown intensity measure type %q", s)
}

// ScalarGroundMotion is a predicted mean and standard deviation in natural
// log units of the intensity measure.
type ScalarGroundMotion struct {
	Mean  float64
	Sigma float64
}

// Input is the flattened rupture-site parameterization passed to a model.
type Input struct {
	// Mag is the rupture moment magnitude.
	Mag float64
	// Distance is the horizontal source-to-site distance in kilometers.
	Distance float64
	// Rake is the rupture rake angle in degrees.
	Rake float64
	// Vs30 is the site's average shear-wave velocity in the upper 30 m.
	Vs30 float64
}

// GroundMotionModel predicts ground motion for a rupture-site pair. Errors
// returned here propagate as computation errors and fail the calculation the
// input belongs to.
type GroundMotionModel interface {
	Name() string
	Calc(imt Imt, in Input) (ScalarGroundMotion, error)
}
