package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedReproducesSameStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uniform(), b.Uniform())
		assert.Equal(t, a.Exponential(), b.Exponential())
	}
}

func TestUniformStaysInUnitRange(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		u := s.Uniform()
		assert.GreaterOrEqual(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
}

type fixedSource struct{ u []float64 }

func (f *fixedSource) Uniform() float64 {
	v := f.u[0]
	f.u = f.u[1:]
	return v
}
func (f *fixedSource) Exponential() float64 { return 0 }

func TestStdNormalClampsZeroUniform(t *testing.T) {
	src := &fixedSource{u: []float64{0, 0.5}}
	assert.NotPanics(t, func() { StdNormal(src) })
}
