package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Arcball camera defaults.
const (
	DefaultArcballDistance = 5.0
	MinArcballDistance     = 0.1
	MaxArcballDistance     = 20.0

	// Degrees of rotation per pixel of drag.
	arcballDegreesPerPixel = 0.25
	// Distance factor change per scroll step.
	arcballZoomStep = 0.1
)

// ArcballCamera rotates freely around a target using a quaternion.
type ArcballCamera struct {
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Distance float32
	Rotation mgl32.Quat

	eye  mgl32.Vec3
	view mgl32.Mat4
}

// NewArcballCamera creates an arcball camera at the default distance.
func NewArcballCamera() *ArcballCamera {
	c := &ArcballCamera{}
	c.Reset()
	return c
}

// Reset restores identity rotation and the default distance.
func (c *ArcballCamera) Reset() {
	c.Target = mgl32.Vec3{}
	c.Up = worldUp
	c.Distance = DefaultArcballDistance
	c.Rotation = mgl32.QuatIdent()
	c.update()
}

func (c *ArcballCamera) update() {
	offset := c.Rotation.Rotate(mgl32.Vec3{0, 0, c.Distance})
	c.eye = c.Target.Add(offset)
	c.view = mgl32.LookAtV(c.eye, c.Target, c.Up)
}

// Rotate applies a rotation of angleDeg degrees about axis. A zero axis is
// ignored.
func (c *ArcballCamera) Rotate(angleDeg float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(angleDeg), axis.Normalize())
	c.Rotation = c.Rotation.Mul(q).Normalize()
	c.update()
}

// ZoomBy multiplies the distance by factor, clamped to the arcball range.
func (c *ArcballCamera) ZoomBy(factor float32) {
	c.Distance = mgl32.Clamp(c.Distance*factor, MinArcballDistance, MaxArcballDistance)
	c.update()
}

// Zoom converts scroll steps into a distance factor.
func (c *ArcballCamera) Zoom(delta float32) {
	c.ZoomBy(1 + delta*arcballZoomStep)
}

// Drag rotates perpendicular to the drag direction.
func (c *ArcballCamera) Drag(dx, dy float32) {
	dir := mgl32.Vec2{dx, dy}
	if dir.Len() == 0 {
		return
	}
	c.Rotate(-dir.Len()*arcballDegreesPerPixel, mgl32.Vec3{dy, dx, 0})
}

// View returns the current view matrix.
func (c *ArcballCamera) View() mgl32.Mat4 { return c.view }

// Eye returns the camera position.
func (c *ArcballCamera) Eye() mgl32.Vec3 { return c.eye }
