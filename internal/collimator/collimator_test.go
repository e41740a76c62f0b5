package collimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCylindricalReportsItsOwnBounds(t *testing.T) {
	c := Cylindrical{Radius: 10, MinZ: -5, MaxZ: 5}
	assert.Equal(t, 10.0, c.OuterRadius())
	minZ, maxZ := c.AxialRange()
	assert.Equal(t, -5.0, minZ)
	assert.Equal(t, 5.0, maxZ)
	assert.Equal(t, 0.0, c.XOriginShift())
}

func TestSlatCarriesAnXOriginShift(t *testing.T) {
	s := Slat{Radius: 20, MinZ: -8, MaxZ: 8, XOffset: 1.25}
	assert.Equal(t, 20.0, s.OuterRadius())
	assert.Equal(t, 1.25, s.XOriginShift())
}
