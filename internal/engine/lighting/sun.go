// Package lighting provides the directional light used to shade models.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default light. The direction points from the surface towards the light.
var (
	DefaultDirection = mgl32.Vec3{1, 10, -1}
	DefaultColor     = mgl32.Vec3{0.8, 0.8, 0.8}
)

// DefaultAmbient is the fraction of the base colour applied without light.
const DefaultAmbient = 0.2

// Sun is a directional light with a base surface colour.
type Sun struct {
	Direction mgl32.Vec3 // normalized
	Color     mgl32.Vec3
	Ambient   float32
}

// DefaultSun returns the light the viewer starts with.
func DefaultSun() Sun {
	return Sun{
		Direction: DefaultDirection.Normalize(),
		Color:     DefaultColor,
		Ambient:   DefaultAmbient,
	}
}

// NewSun creates a light from longitude/latitude angles in degrees.
func NewSun(longitude, latitude float32) Sun {
	s := DefaultSun()
	s.Direction = SunDirection(longitude, latitude)
	return s
}

// SunDirection converts longitude/latitude angles to a light direction.
// Longitude is rotation around the Y axis (0-360), latitude is elevation
// from the horizon (-90 to 90). The result is normalized.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	return mgl32.Vec3{
		float32(math.Cos(latRad) * math.Sin(lonRad)),
		float32(math.Sin(latRad)),
		float32(math.Cos(latRad) * math.Cos(lonRad)),
	}
}

// Angles returns the longitude and latitude of the light direction in
// degrees, the inverse of SunDirection.
func (s Sun) Angles() (longitude, latitude float32) {
	d := s.Direction.Normalize()
	lat := math.Asin(float64(mgl32.Clamp(d[1], -1, 1)))
	lon := math.Atan2(float64(d[0]), float64(d[2]))
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return float32(lon * 180 / math.Pi), float32(lat * 180 / math.Pi)
}

// Material packs the base colour and ambient factor into one vector.
func (s Sun) Material() mgl32.Vec4 {
	return s.Color.Vec4(s.Ambient)
}
