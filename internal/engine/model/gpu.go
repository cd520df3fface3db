// Package model uploads parsed meshes to the GPU and draws them.
package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/lighting"
	"github.com/Faultbox/fmv/internal/logger"
	"github.com/Faultbox/fmv/pkg/mesh"
)

// ErrNoArena is returned when Upload is given no arena.
var ErrNoArena = errors.New("model: nil mesh arena")

// Vertex attribute locations shared with the model shaders.
const (
	attribPosition = 0
	attribNormal   = 1
	attribTexCoord = 2
)

// Pipeline is the shader variant a mesh is drawn with.
type Pipeline int

// Pipelines.
const (
	PipelineFlat Pipeline = iota // positions only, derivative face normals
	PipelineLit                  // per-vertex normals and texture coordinates
)

// String returns the pipeline name.
func (p Pipeline) String() string {
	switch p {
	case PipelineFlat:
		return "flat"
	case PipelineLit:
		return "lit"
	default:
		return fmt.Sprintf("Pipeline(%d)", int(p))
	}
}

// UploadOptions controls pipeline selection and shading.
type UploadOptions struct {
	// ForceSimpleShader always selects the flat pipeline.
	ForceSimpleShader bool
	// Light shades the mesh. A zero direction means lighting.DefaultSun.
	Light lighting.Sun
}

// DefaultUploadOptions returns the default options (flat pipeline forced).
func DefaultUploadOptions() UploadOptions {
	return UploadOptions{ForceSimpleShader: true, Light: lighting.DefaultSun()}
}

// Stats summarizes an uploaded mesh for display.
type Stats struct {
	Positions int
	Triangles int
	SizeMB    float64
	Pipeline  Pipeline
}

// GPUMesh is a mesh resident in graphics memory. A zero GPUMesh is invalid
// and draws nothing.
type GPUMesh struct {
	VAO            uint32
	PositionBuffer uint32
	NormalBuffer   uint32
	TexCoordBuffer uint32
	IndexBuffer    uint32
	Program        uint32
	Pipeline       Pipeline

	// Scalar counts, as stored in the arena.
	VertexCount   int
	IndexCount    int
	NormalCount   int
	TexCoordCount int

	Bounds mesh.Bounds
	Model  mgl32.Mat4
	Light  lighting.Sun

	dev gfx.Device
	loc uniforms
}

type uniforms struct {
	proj, view, model, modelMin, modelMax int32
	lightDir, material                    int32
}

// SelectPipeline picks the pipeline for an arena. The lit pipeline needs
// one normal and one texture coordinate per position.
func SelectPipeline(a *mesh.Arena, opts UploadOptions) Pipeline {
	if opts.ForceSimpleShader {
		return PipelineFlat
	}
	positions := a.Positions()
	if positions == 0 {
		return PipelineFlat
	}
	if a.NormalCount() != positions*3 || a.TexCoordCount() != positions*2 {
		return PipelineFlat
	}
	return PipelineLit
}

// Upload copies the arena into GPU buffers and builds the selected pipeline.
// The arena is not modified. On any device error everything created so far
// is released and a zero GPUMesh is returned with the error.
func Upload(dev gfx.Device, a *mesh.Arena, opts UploadOptions) (*GPUMesh, error) {
	if a == nil {
		return &GPUMesh{}, ErrNoArena
	}

	light := opts.Light
	if light.Direction.Len() == 0 {
		light = lighting.DefaultSun()
	}

	g := &GPUMesh{
		dev:           dev,
		Light:         light,
		Pipeline:      SelectPipeline(a, opts),
		VertexCount:   a.VertexCount(),
		IndexCount:    a.IndexCount(),
		NormalCount:   a.NormalCount(),
		TexCoordCount: a.TexCoordCount(),
		Bounds:        mesh.ComputeBounds(a),
		Model:         mgl32.Ident4(),
	}

	if err := g.upload(a); err != nil {
		g.Destroy()
		return &GPUMesh{}, err
	}

	logger.Info("uploaded model",
		zap.Int("vertices", a.Positions()),
		zap.Int("triangles", a.Triangles()),
		zap.Stringer("pipeline", g.Pipeline),
		zap.Float64("size_mb", mesh.ApproximateSizeMB(a)),
	)
	return g, nil
}

func (g *GPUMesh) upload(a *mesh.Arena) error {
	dev := g.dev
	var err error

	if g.VAO, err = dev.CreateVertexArray(); err != nil {
		return fmt.Errorf("vertex array: %w", err)
	}

	if g.PositionBuffer, err = dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float64Bytes(a.Vertices)); err != nil {
		return fmt.Errorf("position buffer: %w", err)
	}
	if err = dev.SetAttribute(g.PositionBuffer, gfx.Attribute{Index: attribPosition, Size: 3, Type: gfx.Double}); err != nil {
		return fmt.Errorf("position attribute: %w", err)
	}

	if a.NormalCount() > 0 {
		if g.NormalBuffer, err = dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(a.Normals)); err != nil {
			return fmt.Errorf("normal buffer: %w", err)
		}
	}
	if a.TexCoordCount() > 0 {
		if g.TexCoordBuffer, err = dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(a.TexCoords)); err != nil {
			return fmt.Errorf("texcoord buffer: %w", err)
		}
	}

	if g.Pipeline == PipelineLit {
		if err = dev.SetAttribute(g.NormalBuffer, gfx.Attribute{Index: attribNormal, Size: 3, Type: gfx.Float}); err != nil {
			return fmt.Errorf("normal attribute: %w", err)
		}
		if err = dev.SetAttribute(g.TexCoordBuffer, gfx.Attribute{Index: attribTexCoord, Size: 2, Type: gfx.Float}); err != nil {
			return fmt.Errorf("texcoord attribute: %w", err)
		}
	}

	if g.IndexBuffer, err = dev.CreateBuffer(gfx.ElementArrayBuffer, gfx.Uint32Bytes(a.Indices)); err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}

	if g.Program, err = dev.CreateProgram(programFor(g.Pipeline)); err != nil {
		return fmt.Errorf("%s program: %w", g.Pipeline, err)
	}
	g.loc = uniforms{
		proj:     dev.UniformLocation(g.Program, "uProj"),
		view:     dev.UniformLocation(g.Program, "uView"),
		model:    dev.UniformLocation(g.Program, "uModel"),
		modelMin: dev.UniformLocation(g.Program, "uModelMin"),
		modelMax: dev.UniformLocation(g.Program, "uModelMax"),
		lightDir: dev.UniformLocation(g.Program, "uLightDir"),
		material: dev.UniformLocation(g.Program, "uMaterial"),
	}

	dev.BindVertexArray(0)
	return nil
}

// Valid reports whether the mesh holds a complete set of GPU resources.
func (g *GPUMesh) Valid() bool {
	return g != nil && g.VAO != 0 && g.PositionBuffer != 0 && g.IndexBuffer != 0 && g.Program != 0
}

// Render draws the mesh with the given projection and view. Invalid or
// empty meshes draw nothing.
func (g *GPUMesh) Render(proj, view mgl32.Mat4) {
	if !g.Valid() || g.IndexCount == 0 {
		return
	}
	lo, hi := g.boundsUniforms()

	g.dev.UseProgram(g.Program)
	g.dev.BindVertexArray(g.VAO)
	g.dev.SetUniformMat4(g.loc.proj, proj)
	g.dev.SetUniformMat4(g.loc.view, view)
	g.dev.SetUniformMat4(g.loc.model, g.Model)
	g.dev.SetUniformVec3(g.loc.modelMin, lo)
	g.dev.SetUniformVec3(g.loc.modelMax, hi)
	g.dev.SetUniformVec3(g.loc.lightDir, g.Light.Direction)
	g.dev.SetUniformVec4(g.loc.material, g.Light.Material())
	g.dev.DrawElements(gfx.Triangles, int32(g.IndexCount))
	g.dev.BindVertexArray(0)
	g.dev.UseProgram(0)
}

func (g *GPUMesh) boundsUniforms() (mgl32.Vec3, mgl32.Vec3) {
	b := g.Bounds
	return mgl32.Vec3{float32(b.Min[0]), float32(b.Min[1]), float32(b.Min[2])},
		mgl32.Vec3{float32(b.Max[0]), float32(b.Max[1]), float32(b.Max[2])}
}

// NormalizedBounds returns the mesh bounds after the shader normalization:
// centered on the origin with the largest half-axis equal to 1.
func (g *GPUMesh) NormalizedBounds() (lo, hi mgl32.Vec3) {
	return NormalizeBounds(g.Bounds)
}

// NormalizeBounds applies the model normalization to b. Degenerate boxes keep
// their size; empty boxes map to the origin.
func NormalizeBounds(b mesh.Bounds) (lo, hi mgl32.Vec3) {
	if !b.Valid() {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	center := b.Center()
	scale := b.MaxHalfExtent()
	if scale <= 0 {
		scale = 1
	}
	for i := 0; i < 3; i++ {
		lo[i] = float32((b.Min[i] - center[i]) / scale)
		hi[i] = float32((b.Max[i] - center[i]) / scale)
	}
	return lo, hi
}

// Stats returns display counts for the mesh.
func (g *GPUMesh) Stats() Stats {
	return Stats{
		Positions: g.VertexCount / 3,
		Triangles: g.IndexCount / 3,
		SizeMB:    mesh.SizeMB(g.VertexCount, g.IndexCount, g.NormalCount, g.TexCoordCount),
		Pipeline:  g.Pipeline,
	}
}

// Destroy releases every created resource. It is safe to call more than once
// and on a zero GPUMesh.
func (g *GPUMesh) Destroy() {
	if g == nil || g.dev == nil {
		return
	}
	dev := g.dev
	if g.IndexBuffer != 0 {
		dev.DeleteBuffer(g.IndexBuffer)
	}
	if g.NormalBuffer != 0 {
		dev.DeleteBuffer(g.NormalBuffer)
	}
	if g.PositionBuffer != 0 {
		dev.DeleteBuffer(g.PositionBuffer)
	}
	if g.TexCoordBuffer != 0 {
		dev.DeleteBuffer(g.TexCoordBuffer)
	}
	if g.VAO != 0 {
		dev.DeleteVertexArray(g.VAO)
	}
	if g.Program != 0 {
		dev.DeleteProgram(g.Program)
	}
	g.VAO, g.PositionBuffer, g.NormalBuffer, g.TexCoordBuffer, g.IndexBuffer, g.Program = 0, 0, 0, 0, 0, 0
}
