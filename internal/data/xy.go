// Package data provides the numeric sequence container backing hazard curves.
package data

import (
	"fmt"
	"math"
	"strings"
)

// XySequence is an ordered sequence of (x, y) pairs. The x discretization is
// fixed at construction and shared structurally by copies; every sequence
// participating in one aggregation must have been derived from the same
// discretization so combination is strictly point-wise.
type XySequence struct {
	xs []float64
	ys []float64
}

// New creates a sequence over the supplied x values with all y values zero.
// The x values must be finite and strictly increasing.
func New(xs []float64) (*XySequence, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("empty x values")
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("non-finite x value at index %d", i)
		}
		if i > 0 && x <= xs[i-1] {
			return nil, fmt.Errorf("x values not strictly increasing at index %d", i)
		}
	}
	owned := make([]float64, len(xs))
	copy(owned, xs)
	return &XySequence{xs: owned, ys: make([]float64, len(xs))}, nil
}

// NewWithValues creates a sequence over xs with the supplied y values.
func NewWithValues(xs, ys []float64) (*XySequence, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y lengths differ: %d != %d", len(xs), len(ys))
	}
	s, err := New(xs)
	if err != nil {
		return nil, err
	}
	copy(s.ys, ys)
	return s, nil
}

// Copy returns a sequence sharing this sequence's x discretization with an
// independent copy of the y values.
func (s *XySequence) Copy() *XySequence {
	ys := make([]float64, len(s.ys))
	copy(ys, s.ys)
	return &XySequence{xs: s.xs, ys: ys}
}

// Len returns the number of points.
func (s *XySequence) Len() int {
	return len(s.xs)
}

// X returns the x value at index i.
func (s *XySequence) X(i int) float64 {
	return s.xs[i]
}

// Y returns the y value at index i.
func (s *XySequence) Y(i int) float64 {
	return s.ys[i]
}

// SetY sets the y value at index i.
func (s *XySequence) SetY(i int, y float64) {
	s.ys[i] = y
}

// Xs returns a copy of the x values.
func (s *XySequence) Xs() []float64 {
	out := make([]float64, len(s.xs))
	copy(out, s.xs)
	return out
}

// Ys returns a copy of the y values.
func (s *XySequence) Ys() []float64 {
	out := make([]float64, len(s.ys))
	copy(out, s.ys)
	return out
}

// Add adds the other sequence point-wise into this one.
func (s *XySequence) Add(other *XySequence) error {
	return s.AddScaled(other, 1)
}

// AddScaled adds scale times the other sequence point-wise into this one.
// The two sequences must share an identical x discretization.
func (s *XySequence) AddScaled(other *XySequence, scale float64) error {
	if err := s.checkShape(other); err != nil {
		return err
	}
	for i := range s.ys {
		s.ys[i] += scale * other.ys[i]
	}
	return nil
}

// checkShape verifies the other sequence shares this discretization. The
// common case is structural sharing via Copy, checked by slice identity.
func (s *XySequence) checkShape(other *XySequence) error {
	if other == nil {
		return fmt.Errorf("nil sequence")
	}
	if len(s.xs) != len(other.xs) {
		return fmt.Errorf("sequence lengths differ: %d != %d", len(s.xs), len(other.xs))
	}
	if &s.xs[0] == &other.xs[0] {
		return nil
	}
	for i := range s.xs {
		if s.xs[i] != other.xs[i] {
			return fmt.Errorf("x discretizations differ at index %d: %g != %g", i, s.xs[i], other.xs[i])
		}
	}
	return nil
}

// String renders the sequence as two aligned rows of x and y values.
func (s *XySequence) String() string {
	var b strings.Builder
	b.WriteString("xs:")
	for _, x := range s.xs {
		fmt.Fprintf(&b, " %.4g", x)
	}
	b.WriteString("\nys:")
	for _, y := range s.ys {
		fmt.Fprintf(&b, " %.4g", y)
	}
	return b.String()
}
