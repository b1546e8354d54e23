package navigation

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestGeoPointSwapsXYIntoLngLat(t *testing.T) {
	p := Pose{Position: r3.Vector{X: -122.4, Y: 37.8}}
	gp := GeoPoint(p)
	test.That(t, gp.Lat(), test.ShouldEqual, 37.8)
	test.That(t, gp.Lng(), test.ShouldEqual, -122.4)
}
