package navigation

import geo "github.com/kellydunn/golang-geo"

// GeoPoint converts a pose's planar position into a lat/lng point for
// deployments that report the current goal/robot position geographically
// rather than in a purely local frame, mirroring
// services/navigation/navigation.go's use of github.com/kellydunn/golang-geo
// for Service.GetLocation/AddWaypoint. Position.X/Y are treated as lng/lat
// offsets in degrees from the frame's local origin; callers that need a true
// geodetic projection should transform the pose before calling this.
func GeoPoint(p Pose) *geo.Point {
	return geo.NewPoint(p.Position.Y, p.Position.X)
}
