// Package mesh provides the bounded geometry arena that OBJ parsing fills
// and GPU upload consumes, plus bounds and sizing helpers over it.
package mesh

import (
	"errors"
	"fmt"
)

// Default arena limits.
const (
	DefaultMaxVertices = 1_000_000
	DefaultMaxIndices  = 1_000_000
)

// ErrCapacityExceeded is returned when an append would overrun the arena.
var ErrCapacityExceeded = errors.New("mesh arena capacity exceeded")

// Limits bounds how much geometry a single arena may hold.
type Limits struct {
	MaxVertices int // logical positions (each 3 scalars)
	MaxIndices  int // index scalars (each face uses 3)
}

// DefaultLimits returns the default arena limits.
func DefaultLimits() Limits {
	return Limits{
		MaxVertices: DefaultMaxVertices,
		MaxIndices:  DefaultMaxIndices,
	}
}

// normalized replaces non-positive limits with defaults.
func (l Limits) normalized() Limits {
	if l.MaxVertices <= 0 {
		l.MaxVertices = DefaultMaxVertices
	}
	if l.MaxIndices <= 0 {
		l.MaxIndices = DefaultMaxIndices
	}
	return l
}

// Arena holds the raw geometry of one mesh before upload.
// All counts are scalar counts: VertexCount is 3 × positions.
type Arena struct {
	limits Limits

	Vertices  []float64
	Normals   []float32
	TexCoords []float32
	Indices   []uint32
}

// NewArena allocates an arena with storage reserved for the given limits.
func NewArena(limits Limits) *Arena {
	limits = limits.normalized()
	return &Arena{
		limits:    limits,
		Vertices:  make([]float64, 0, limits.MaxVertices*3),
		Normals:   make([]float32, 0, limits.MaxVertices*3),
		TexCoords: make([]float32, 0, limits.MaxVertices*2),
		Indices:   make([]uint32, 0, limits.MaxIndices),
	}
}

// Limits returns the arena's capacity limits.
func (a *Arena) Limits() Limits {
	return a.limits
}

// VertexCount returns the number of position scalars written.
func (a *Arena) VertexCount() int { return len(a.Vertices) }

// NormalCount returns the number of normal scalars written.
func (a *Arena) NormalCount() int { return len(a.Normals) }

// TexCoordCount returns the number of texture coordinate scalars written.
func (a *Arena) TexCoordCount() int { return len(a.TexCoords) }

// IndexCount returns the number of index scalars written.
func (a *Arena) IndexCount() int { return len(a.Indices) }

// Positions returns the number of logical vertex positions.
func (a *Arena) Positions() int { return len(a.Vertices) / 3 }

// Triangles returns the number of complete index triples.
func (a *Arena) Triangles() int { return len(a.Indices) / 3 }

// VerticesFull reports whether no further position can be stored.
func (a *Arena) VerticesFull() bool {
	return len(a.Vertices) >= a.limits.MaxVertices*3
}

// IndicesFull reports whether no further index can be stored.
func (a *Arena) IndicesFull() bool {
	return len(a.Indices) >= a.limits.MaxIndices
}

// Full reports whether either the position or the index storage is exhausted.
func (a *Arena) Full() bool {
	return a.VerticesFull() || a.IndicesFull()
}

// AppendVertex appends one position.
func (a *Arena) AppendVertex(x, y, z float64) error {
	if len(a.Vertices)+3 > a.limits.MaxVertices*3 {
		return fmt.Errorf("vertex %d: %w", a.Positions()+1, ErrCapacityExceeded)
	}
	a.Vertices = append(a.Vertices, x, y, z)
	return nil
}

// AppendNormal appends one normal.
func (a *Arena) AppendNormal(x, y, z float32) error {
	if len(a.Normals)+3 > a.limits.MaxVertices*3 {
		return fmt.Errorf("normal %d: %w", len(a.Normals)/3+1, ErrCapacityExceeded)
	}
	a.Normals = append(a.Normals, x, y, z)
	return nil
}

// AppendTexCoord appends one UV pair.
func (a *Arena) AppendTexCoord(u, v float32) error {
	if len(a.TexCoords)+2 > a.limits.MaxVertices*2 {
		return fmt.Errorf("texcoord %d: %w", len(a.TexCoords)/2+1, ErrCapacityExceeded)
	}
	a.TexCoords = append(a.TexCoords, u, v)
	return nil
}

// AppendTriangle appends three 0-based position indices as one face.
// The triple is written entirely or not at all.
func (a *Arena) AppendTriangle(i0, i1, i2 uint32) error {
	if len(a.Indices)+3 > a.limits.MaxIndices {
		return fmt.Errorf("face %d: %w", a.Triangles()+1, ErrCapacityExceeded)
	}
	a.Indices = append(a.Indices, i0, i1, i2)
	return nil
}

// Release drops the arena storage. Counts read zero afterwards.
func (a *Arena) Release() {
	a.Vertices = nil
	a.Normals = nil
	a.TexCoords = nil
	a.Indices = nil
}
