package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bytes per stored scalar.
const (
	vertexScalarSize   = 8 // float64
	normalScalarSize   = 4 // float32
	texCoordScalarSize = 4 // float32
	indexScalarSize    = 4 // uint32
)

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyBounds returns the sentinel box (+Inf min, -Inf max) used when a mesh
// has no positions. It is not a valid degenerate box.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// Valid reports whether the box encloses at least one point.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns half the size of the box on each axis.
func (b Bounds) Extent() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// MaxHalfExtent returns the largest half-size over the three axes.
func (b Bounds) MaxHalfExtent() float64 {
	e := b.Extent()
	return math.Max(math.Max(e[0], e[1]), e[2])
}

// Contains reports whether p lies inside the box, inclusive.
func (b Bounds) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ComputeBounds scans all positions of the arena. An arena without positions
// yields EmptyBounds.
func ComputeBounds(a *Arena) Bounds {
	b := EmptyBounds()
	v := a.Vertices
	for i := 0; i+2 < len(v); i += 3 {
		for axis := 0; axis < 3; axis++ {
			c := v[i+axis]
			if c < b.Min[axis] {
				b.Min[axis] = c
			}
			if c > b.Max[axis] {
				b.Max[axis] = c
			}
		}
	}
	return b
}

// ApproximateSizeMB returns the arena's memory footprint in megabytes.
// It is informational; capacity is enforced on raw counts.
func ApproximateSizeMB(a *Arena) float64 {
	return SizeMB(a.VertexCount(), a.IndexCount(), a.NormalCount(), a.TexCoordCount())
}

// SizeMB computes the footprint of the given scalar counts in megabytes.
func SizeMB(vertices, indices, normals, texCoords int) float64 {
	bytes := vertices*vertexScalarSize +
		indices*indexScalarSize +
		normals*normalScalarSize +
		texCoords*texCoordScalarSize
	return float64(bytes) / (1024 * 1024)
}
