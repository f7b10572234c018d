package model

import "fmt"

// HazardModel is the named, ordered, immutable collection of source sets
// composing one hazard calculation. Built once at load time and shared
// read-only across arbitrarily many concurrent site calculations.
type HazardModel struct {
	name string
	sets []SourceSet
}

func (m *HazardModel) Name() string { return m.name }
func (m *HazardModel) Size() int    { return len(m.sets) }

// Sets returns the source sets in model order.
func (m *HazardModel) Sets() []SourceSet {
	out := make([]SourceSet, len(m.sets))
	copy(out, m.sets)
	return out
}

// HazardModelBuilder accumulates a HazardModel across chained calls. Like the
// source set builders it is consumed by a successful Build.
type HazardModelBuilder struct {
	built bool
	err   error
	name  string
	sets  []SourceSet
}

// NewHazardModelBuilder creates an empty HazardModelBuilder.
func NewHazardModelBuilder() *HazardModelBuilder {
	return &HazardModelBuilder{}
}

func (b *HazardModelBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// Name sets the model name.
func (b *HazardModelBuilder) Name(name string) *HazardModelBuilder {
	if b.built {
		b.fail("HazardModel.Builder: builder already used")
		return b
	}
	if name == "" {
		b.fail("HazardModel.Builder: name is empty")
		return b
	}
	b.name = name
	return b
}

// SourceSet appends a source set in model order.
func (b *HazardModelBuilder) SourceSet(ss SourceSet) *HazardModelBuilder {
	if b.built {
		b.fail("HazardModel.Builder: builder already used")
		return b
	}
	if ss == nil {
		b.fail("HazardModel.Builder: source set is nil")
		return b
	}
	b.sets = append(b.sets, ss)
	return b
}

// Build validates the accumulated state and produces the model, consuming the
// builder. A model with zero source sets is legal; it yields identically zero
// hazard.
func (b *HazardModelBuilder) Build() (*HazardModel, error) {
	if b.built {
		return nil, fmt.Errorf("HazardModel.Builder: builder already used")
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, fmt.Errorf("HazardModel.Builder: name not set")
	}
	b.built = true
	sets := make([]SourceSet, len(b.sets))
	copy(sets, b.sets)
	return &HazardModel{name: b.name, sets: sets}, nil
}
