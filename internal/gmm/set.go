package gmm

import "fmt"

// WeightedModel pairs a ground-motion model with its logic-tree weight.
type WeightedModel struct {
	Model  GroundMotionModel
	Weight float64
}

// Set is the weighted ground-motion model group attached to one source set,
// with the maximum distance at which the group is considered usable. A Set is
// immutable once built and shared read-only across calculations.
type Set struct {
	models      []WeightedModel
	maxDistance float64
}

// Models returns the weighted models in declaration order.
func (s *Set) Models() []WeightedModel {
	out := make([]WeightedModel, len(s.models))
	copy(out, s.models)
	return out
}

// MaxDistance returns the maximum usable source-to-site distance in km.
func (s *Set) MaxDistance() float64 {
	return s.maxDistance
}

// Size returns the number of models in the set.
func (s *Set) Size() int {
	return len(s.models)
}

// SetBuilder accumulates the fields of a Set across chained calls. Build may
// only be called once; the builder records the first invalid call and reports
// it when Build runs.
type SetBuilder struct {
	built       bool
	err         error
	models      []WeightedModel
	maxDistance *float64
}

// NewSetBuilder creates an empty SetBuilder.
func NewSetBuilder() *SetBuilder {
	return &SetBuilder{}
}

func (b *SetBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// Model adds a weighted ground-motion model to the set under construction.
func (b *SetBuilder) Model(m GroundMotionModel, weight float64) *SetBuilder {
	if b.built {
		b.fail("gmm.SetBuilder: builder already used")
		return b
	}
	if m == nil {
		b.fail("gmm.SetBuilder: nil model")
		return b
	}
	if weight < 0 || weight > 1 {
		b.fail("gmm.SetBuilder: model %q weight %g outside [0, 1]", m.Name(), weight)
		return b
	}
	b.models = append(b.models, WeightedModel{Model: m, Weight: weight})
	return b
}

// MaxDistance sets the maximum usable source-to-site distance in km.
func (b *SetBuilder) MaxDistance(km float64) *SetBuilder {
	if b.built {
		b.fail("gmm.SetBuilder: builder already used")
		return b
	}
	if km <= 0 {
		b.fail("gmm.SetBuilder: max distance %g not positive", km)
		return b
	}
	b.maxDistance = &km
	return b
}

// Build validates the accumulated state and produces the Set. The builder is
// consumed; any further use fails.
func (b *SetBuilder) Build() (*Set, error) {
	if b.built {
		return nil, fmt.Errorf("gmm.SetBuilder: builder already used")
	}
	if b.err != nil {
		return nil, b.err
	}
	if len(b.models) == 0 {
		return nil, fmt.Errorf("gmm.SetBuilder: no models set")
	}
	if b.maxDistance == nil {
		return nil, fmt.Errorf("gmm.SetBuilder: max distance not set")
	}
	b.built = true
	models := make([]WeightedModel, len(b.models))
	copy(models, b.models)
	return &Set{models: models, maxDistance: *b.maxDistance}, nil
}
