package model

import (
	"fmt"
	"strings"

	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
)

// builderState implements the single-use builder bookkeeping shared by every
// SourceSet variant builder. Setters record the first invalid call; validate
// reports it, or the first missing required field, when build runs. A builder
// is consumed by a successful build and fails explicitly on any later use.
type builderState struct {
	id    string
	built bool
	err   error

	name    string
	weight  *float64
	scaling *ScalingRelation
	gmms    *gmm.Set
}

func (b *builderState) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// used reports (and records) misuse of a consumed builder.
func (b *builderState) used() bool {
	if b.built {
		b.fail("%s: builder already used", b.id)
	}
	return b.built
}

func (b *builderState) setName(name string) {
	if b.used() {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		b.fail("%s: name is empty", b.id)
		return
	}
	b.name = name
}

func (b *builderState) setWeight(weight float64) {
	if b.used() {
		return
	}
	if weight < 0 || weight > 1 {
		b.fail("%s: weight %g outside [0, 1]", b.id, weight)
		return
	}
	b.weight = &weight
}

func (b *builderState) setScaling(sr ScalingRelation) {
	if b.used() {
		return
	}
	if _, err := ParseScalingRelation(string(sr)); err != nil {
		b.fail("%s: %v", b.id, err)
		return
	}
	b.scaling = &sr
}

func (b *builderState) setGmms(set *gmm.Set) {
	if b.used() {
		return
	}
	if set == nil {
		b.fail("%s: ground motion models are nil", b.id)
		return
	}
	b.gmms = set
}

// validate checks the accumulated state, naming the first missing field, and
// consumes the builder on success.
func (b *builderState) validate() error {
	if b.built {
		return fmt.Errorf("%s: builder already used", b.id)
	}
	if b.err != nil {
		return b.err
	}
	if b.name == "" {
		return fmt.Errorf("%s: name not set", b.id)
	}
	if b.weight == nil {
		return fmt.Errorf("%s: weight not set", b.id)
	}
	if b.scaling == nil {
		return fmt.Errorf("%s: scaling relation not set", b.id)
	}
	if b.gmms == nil {
		return fmt.Errorf("%s: ground motion models not set", b.id)
	}
	b.built = true
	return nil
}

// base assembles the shared fields after a successful validate.
func (b *builderState) base() baseSourceSet {
	return baseSourceSet{
		name:    b.name,
		weight:  *b.weight,
		scaling: *b.scaling,
		gmms:    b.gmms,
	}
}
