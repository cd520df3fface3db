// Package grid draws the ground reference grid.
package grid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/shaders"
)

// Line colours.
var (
	ColorXAxis = mgl32.Vec3{0.7, 0.1, 0.1}
	ColorZAxis = mgl32.Vec3{0.1, 0.1, 0.7}
	ColorLine  = mgl32.Vec3{0.4, 0.4, 0.4}
)

// Config describes the grid layout.
type Config struct {
	Size      int     // world units covered on X and Z, centered on the origin
	Spacing   float32 // distance between lines
	LineWidth float32
	Y         float32 // height of the grid plane
}

// DefaultConfig returns a 10×10 grid with half-unit spacing.
func DefaultConfig() Config {
	return Config{Size: 10, Spacing: 0.5, LineWidth: 1, Y: 0}
}

// LinesPerAxis returns how many lines run along each axis.
func LinesPerAxis(size int, spacing float32) int {
	if size <= 0 || spacing <= 0 {
		return 0
	}
	return int(float32(size)/spacing) + 1
}

// BuildLines generates GL_LINES vertices for a grid. For each offset i in
// [-size/2, size/2] it emits a line parallel to X at z=i and one parallel to
// Z at x=i. The lines through the origin are coloured red (X) and blue (Z).
func BuildLines(size int, spacing float32, y float32) (positions, colors []float32) {
	n := LinesPerAxis(size, spacing)
	if n == 0 {
		return nil, nil
	}
	half := float32(size) / 2

	positions = make([]float32, 0, n*4*3)
	colors = make([]float32, 0, n*4*3)
	for k := 0; k < n; k++ {
		i := -half + float32(k)*spacing

		positions = append(positions,
			-half, y, i, half, y, i, // along X
			i, y, -half, i, y, half, // along Z
		)

		xColor, zColor := ColorLine, ColorLine
		if math.Abs(float64(i)) < float64(spacing)*1e-3 {
			xColor, zColor = ColorXAxis, ColorZAxis
		}
		colors = append(colors, xColor[:]...)
		colors = append(colors, xColor[:]...)
		colors = append(colors, zColor[:]...)
		colors = append(colors, zColor[:]...)
	}
	return positions, colors
}

// Grid is the GPU side of the reference grid.
type Grid struct {
	dev         gfx.Device
	cfg         Config
	vao         uint32
	vbo         uint32
	cbo         uint32
	program     uint32
	vertexCount int32

	locProj, locView, locModel int32
}

// New builds the grid lines and uploads them.
func New(dev gfx.Device, cfg Config) (*Grid, error) {
	g := &Grid{dev: dev, cfg: cfg}
	if err := g.build(); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}

func (g *Grid) build() error {
	positions, colors := BuildLines(g.cfg.Size, g.cfg.Spacing, g.cfg.Y)
	g.vertexCount = int32(len(positions) / 3)

	var err error
	if g.vao, err = g.dev.CreateVertexArray(); err != nil {
		return fmt.Errorf("grid vertex array: %w", err)
	}
	if g.vbo, err = g.dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(positions)); err != nil {
		return fmt.Errorf("grid position buffer: %w", err)
	}
	if err = g.dev.SetAttribute(g.vbo, gfx.Attribute{Index: 0, Size: 3, Type: gfx.Float}); err != nil {
		return fmt.Errorf("grid position attribute: %w", err)
	}
	if g.cbo, err = g.dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(colors)); err != nil {
		return fmt.Errorf("grid color buffer: %w", err)
	}
	if err = g.dev.SetAttribute(g.cbo, gfx.Attribute{Index: 1, Size: 3, Type: gfx.Float}); err != nil {
		return fmt.Errorf("grid color attribute: %w", err)
	}
	if g.program, err = g.dev.CreateProgram(shaders.Lines); err != nil {
		return fmt.Errorf("grid program: %w", err)
	}
	g.locProj = g.dev.UniformLocation(g.program, "uProj")
	g.locView = g.dev.UniformLocation(g.program, "uView")
	g.locModel = g.dev.UniformLocation(g.program, "uModel")
	g.dev.BindVertexArray(0)
	return nil
}

// Config returns the layout the grid was built with.
func (g *Grid) Config() Config { return g.cfg }

// VertexCount returns the number of line vertices drawn.
func (g *Grid) VertexCount() int32 { return g.vertexCount }

// Render draws the grid lines.
func (g *Grid) Render(proj, view mgl32.Mat4) {
	if g == nil || g.program == 0 || g.vertexCount == 0 {
		return
	}
	g.dev.UseProgram(g.program)
	g.dev.SetUniformMat4(g.locProj, proj)
	g.dev.SetUniformMat4(g.locView, view)
	g.dev.SetUniformMat4(g.locModel, mgl32.Ident4())
	g.dev.LineWidth(g.cfg.LineWidth)
	g.dev.BindVertexArray(g.vao)
	g.dev.DrawArrays(gfx.Lines, 0, g.vertexCount)
	g.dev.BindVertexArray(0)
	g.dev.UseProgram(0)
}

// Destroy releases the grid's GPU resources.
func (g *Grid) Destroy() {
	if g == nil {
		return
	}
	g.dev.DeleteBuffer(g.vbo)
	g.dev.DeleteBuffer(g.cbo)
	g.dev.DeleteVertexArray(g.vao)
	g.dev.DeleteProgram(g.program)
	g.vao, g.vbo, g.cbo, g.program = 0, 0, 0, 0
}
