// Package debug provides debug visualization utilities.
package debug

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/shaders"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxColor is the colour of the bounds overlay.
var BBoxColor = mgl32.Vec3{0.95, 0.8, 0.2}

// BBoxWireframeVertices creates line vertices for a wireframe box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func BBoxWireframeVertices(lo, hi mgl32.Vec3) []float32 {
	minX, minY, minZ := lo[0], lo[1], lo[2]
	maxX, maxY, maxZ := hi[0], hi[1], hi[2]
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// PadBounds grows a box by padding on every side, swapping inverted axes first.
func PadBounds(lo, hi mgl32.Vec3, padding float32) (mgl32.Vec3, mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
		lo[i] -= padding
		hi[i] += padding
	}
	return lo, hi
}

// BoundsOverlay draws a wireframe box with the line shader.
type BoundsOverlay struct {
	dev     gfx.Device
	vao     uint32
	vbo     uint32
	cbo     uint32
	program uint32
	visible bool

	locProj, locView, locModel int32
}

// NewBoundsOverlay allocates the overlay buffers. It starts hidden.
func NewBoundsOverlay(dev gfx.Device) (*BoundsOverlay, error) {
	o := &BoundsOverlay{dev: dev}
	if err := o.init(); err != nil {
		o.Destroy()
		return nil, err
	}
	return o, nil
}

func (o *BoundsOverlay) init() error {
	colors := make([]float32, 0, BBoxWireframeVertexCount*3)
	for i := 0; i < BBoxWireframeVertexCount; i++ {
		colors = append(colors, BBoxColor[:]...)
	}
	positions := BBoxWireframeVertices(mgl32.Vec3{}, mgl32.Vec3{})

	var err error
	if o.vao, err = o.dev.CreateVertexArray(); err != nil {
		return fmt.Errorf("bbox vertex array: %w", err)
	}
	if o.vbo, err = o.dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(positions)); err != nil {
		return fmt.Errorf("bbox position buffer: %w", err)
	}
	if err = o.dev.SetAttribute(o.vbo, gfx.Attribute{Index: 0, Size: 3, Type: gfx.Float}); err != nil {
		return fmt.Errorf("bbox position attribute: %w", err)
	}
	if o.cbo, err = o.dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(colors)); err != nil {
		return fmt.Errorf("bbox color buffer: %w", err)
	}
	if err = o.dev.SetAttribute(o.cbo, gfx.Attribute{Index: 1, Size: 3, Type: gfx.Float}); err != nil {
		return fmt.Errorf("bbox color attribute: %w", err)
	}
	if o.program, err = o.dev.CreateProgram(shaders.Lines); err != nil {
		return fmt.Errorf("bbox program: %w", err)
	}
	o.locProj = o.dev.UniformLocation(o.program, "uProj")
	o.locView = o.dev.UniformLocation(o.program, "uView")
	o.locModel = o.dev.UniformLocation(o.program, "uModel")
	o.dev.BindVertexArray(0)
	return nil
}

// SetBounds uploads a new box and shows the overlay.
func (o *BoundsOverlay) SetBounds(lo, hi mgl32.Vec3) error {
	if err := o.dev.UpdateBuffer(o.vbo, gfx.ArrayBuffer, gfx.Float32Bytes(BBoxWireframeVertices(lo, hi))); err != nil {
		return fmt.Errorf("bbox update: %w", err)
	}
	o.visible = true
	return nil
}

// Clear hides the overlay until the next SetBounds.
func (o *BoundsOverlay) Clear() { o.visible = false }

// Visible reports whether a box is set.
func (o *BoundsOverlay) Visible() bool { return o.visible }

// Render draws the box transformed by model.
func (o *BoundsOverlay) Render(proj, view, model mgl32.Mat4) {
	if o == nil || !o.visible || o.program == 0 {
		return
	}
	o.dev.UseProgram(o.program)
	o.dev.SetUniformMat4(o.locProj, proj)
	o.dev.SetUniformMat4(o.locView, view)
	o.dev.SetUniformMat4(o.locModel, model)
	o.dev.BindVertexArray(o.vao)
	o.dev.DrawArrays(gfx.Lines, 0, BBoxWireframeVertexCount)
	o.dev.BindVertexArray(0)
	o.dev.UseProgram(0)
}

// Destroy releases the overlay's GPU resources.
func (o *BoundsOverlay) Destroy() {
	if o == nil {
		return
	}
	o.dev.DeleteBuffer(o.vbo)
	o.dev.DeleteBuffer(o.cbo)
	o.dev.DeleteVertexArray(o.vao)
	o.dev.DeleteProgram(o.program)
	o.vao, o.vbo, o.cbo, o.program = 0, 0, 0, 0
	o.visible = false
}
