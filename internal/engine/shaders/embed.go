// Package shaders provides the embedded GLSL programs of the viewer.
package shaders

import (
	_ "embed"

	"github.com/Faultbox/fmv/internal/engine/shader"
)

//go:embed model_flat.vert
var modelFlatVert string

//go:embed model_flat.frag
var modelFlatFrag string

//go:embed model_lit.vert
var modelLitVert string

//go:embed model_lit.frag
var modelLitFrag string

//go:embed lines.vert
var linesVert string

//go:embed lines.frag
var linesFrag string

//go:embed hud.vert
var hudVert string

//go:embed hud.frag
var hudFrag string

// ModelFlat draws a mesh from positions only, shading faces from
// screen-space derivatives.
var ModelFlat = shader.Sources{Name: "model-flat", Vertex: modelFlatVert, Fragment: modelFlatFrag}

// ModelLit draws a mesh with per-vertex normals and texture coordinates.
var ModelLit = shader.Sources{Name: "model-lit", Vertex: modelLitVert, Fragment: modelLitFrag}

// Lines draws coloured line lists (grid, bounding box).
var Lines = shader.Sources{Name: "lines", Vertex: linesVert, Fragment: linesFrag}

// HUD draws a textured screen-space quad.
var HUD = shader.Sources{Name: "hud", Vertex: hudVert, Fragment: hudFrag}

// All lists every program for validation.
func All() []shader.Sources {
	return []shader.Sources{ModelFlat, ModelLit, Lines, HUD}
}
