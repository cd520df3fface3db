// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Controller is a camera driven by scroll and drag input.
type Controller interface {
	View() mgl32.Mat4
	Eye() mgl32.Vec3
	Zoom(delta float32)
	Drag(dx, dy float32)
	Reset()
}

// Orbit camera defaults.
const (
	DefaultRadius          = 5.0
	DefaultMinRadius       = 0.0001
	DefaultMaxRadius       = 100.0
	DefaultZoomStep        = 0.5
	DefaultDragSensitivity = 0.01

	// PitchLimit keeps the camera off the poles where the Y-up look-at
	// degenerates.
	PitchLimit = math.Pi/2 - 0.01
)

var worldUp = mgl32.Vec3{0, 1, 0}

// OrbitCamera orbits a target point on a sphere.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Position mgl32.Vec3

	// Spherical coordinates
	Radius float32
	Yaw    float32 // radians around Y
	Pitch  float32 // radians, clamped to ±PitchLimit

	// Constraints
	MinRadius float32
	MaxRadius float32

	// Sensitivity
	ZoomStep        float32
	DragSensitivity float32

	view mgl32.Mat4
}

// NewOrbitCamera creates an orbit camera looking at the origin.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinRadius:       DefaultMinRadius,
		MaxRadius:       DefaultMaxRadius,
		ZoomStep:        DefaultZoomStep,
		DragSensitivity: DefaultDragSensitivity,
	}
	c.Reset()
	return c
}

// Reset restores the initial radius and angles.
func (c *OrbitCamera) Reset() {
	c.Target = mgl32.Vec3{}
	c.Radius = DefaultRadius
	c.Yaw = 0
	c.Pitch = 0
	c.Update()
}

// Update clamps pitch and recomputes the position and view matrix.
func (c *OrbitCamera) Update() {
	c.Pitch = mgl32.Clamp(c.Pitch, -PitchLimit, PitchLimit)

	sinP, cosP := math.Sincos(float64(c.Pitch))
	sinY, cosY := math.Sincos(float64(c.Yaw))
	offset := mgl32.Vec3{
		float32(cosP * sinY),
		float32(sinP),
		float32(cosP * cosY),
	}.Mul(c.Radius)

	c.Position = c.Target.Add(offset)
	c.view = mgl32.LookAtV(c.Position, c.Target, worldUp)
}

// View returns the current view matrix.
func (c *OrbitCamera) View() mgl32.Mat4 { return c.view }

// Eye returns the camera position.
func (c *OrbitCamera) Eye() mgl32.Vec3 { return c.Position }

// Zoom moves the camera along its radius by delta scroll steps.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Radius = mgl32.Clamp(c.Radius+delta*c.ZoomStep, c.MinRadius, c.MaxRadius)
	c.Update()
}

// Drag rotates the camera by a mouse delta in pixels.
func (c *OrbitCamera) Drag(dx, dy float32) {
	c.Yaw += dx * c.DragSensitivity
	c.Pitch += dy * c.DragSensitivity
	c.Update()
}
