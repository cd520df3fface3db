// Package gfx defines the graphics device the viewer renders through and
// its OpenGL 4.1 implementation.
package gfx

import (
	"errors"
	"image"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/shader"
)

// ErrGL is wrapped by every error reported from the GL error queue.
var ErrGL = errors.New("gl error")

// BufferTarget selects what a buffer is bound as.
type BufferTarget int

// Buffer targets.
const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// AttribType is the component type of a vertex attribute.
type AttribType int

// Attribute component types. Double attributes are read as dvec in shaders.
const (
	Float AttribType = iota
	Double
)

// Size returns the byte width of one component.
func (t AttribType) Size() int {
	if t == Double {
		return 8
	}
	return 4
}

// Attribute describes one vertex attribute inside a buffer.
type Attribute struct {
	Index  uint32
	Size   int32 // components per vertex
	Type   AttribType
	Stride int32
	Offset int
}

// Primitive is the topology of a draw call.
type Primitive int

// Draw primitives.
const (
	Triangles Primitive = iota
	Lines
)

// Device is the set of graphics operations the viewer needs. All calls must
// come from the thread owning the context.
type Device interface {
	CreateVertexArray() (uint32, error)
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	// CreateBuffer creates a buffer, leaves it bound to target and fills it.
	CreateBuffer(target BufferTarget, data []byte) (uint32, error)
	UpdateBuffer(buf uint32, target BufferTarget, data []byte) error
	DeleteBuffer(buf uint32)
	// SetAttribute points attr at buf and enables it on the bound vertex array.
	SetAttribute(buf uint32, attr Attribute) error

	CreateProgram(src shader.Sources) (uint32, error)
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	SetUniformMat4(loc int32, m mgl32.Mat4)
	SetUniformVec3(loc int32, v mgl32.Vec3)
	SetUniformVec4(loc int32, v mgl32.Vec4)
	SetUniformInt(loc int32, v int32)

	CreateTexture(img *image.RGBA) (uint32, error)
	UpdateTexture(tex uint32, img *image.RGBA) error
	BindTexture(unit uint32, tex uint32)
	DeleteTexture(tex uint32)

	DrawElements(p Primitive, count int32)
	DrawArrays(p Primitive, first, count int32)
	LineWidth(w float32)
	SetDepthTest(enabled bool)
	SetBlend(enabled bool)
	Viewport(x, y, width, height int32)
	Clear(color mgl32.Vec4)
	ReadPixels(x, y, width, height int32) ([]byte, error)
}

// Float64Bytes views v as raw bytes without copying.
func Float64Bytes(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*8)
}

// Float32Bytes views v as raw bytes without copying.
func Float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// Uint32Bytes views v as raw bytes without copying.
func Uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
