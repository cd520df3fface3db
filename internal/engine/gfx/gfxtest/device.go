// Package gfxtest provides a recording gfx.Device for headless tests.
package gfxtest

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/shader"
)

// ErrInjected is returned by the create call selected with FailAt.
var ErrInjected = errors.New("gfxtest: injected failure")

// Kind identifies what a resource id refers to.
type Kind int

// Resource kinds.
const (
	KindVertexArray Kind = iota
	KindBuffer
	KindProgram
	KindTexture
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindVertexArray:
		return "vertex array"
	case KindBuffer:
		return "buffer"
	case KindProgram:
		return "program"
	case KindTexture:
		return "texture"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Draw records one draw call.
type Draw struct {
	Primitive gfx.Primitive
	Elements  bool
	First     int32
	Count     int32
	VAO       uint32
	Program   uint32
}

// Device records every call made through gfx.Device.
type Device struct {
	// FailAt makes the N-th create call (1-based, counting vertex arrays,
	// buffers, attributes, programs and textures) fail with ErrInjected.
	FailAt int
	// ReadErr is returned by ReadPixels when set.
	ReadErr error

	Creates  int
	nextID   uint32
	Live     map[uint32]Kind
	Deleted  []uint32
	Buffers  map[uint32][]byte
	Programs map[uint32]shader.Sources
	Textures map[uint32]image.Rectangle

	Attributes map[uint32]map[uint32]gfx.Attribute // vertex array -> attribute index

	uniformNames []string
	Mat4         map[string]mgl32.Mat4
	Vec3         map[string]mgl32.Vec3
	Vec4         map[string]mgl32.Vec4
	Int          map[string]int32

	Draws      []Draw
	LineWidths []float32
	Clears     []mgl32.Vec4
	Viewports  [][4]int32
	DepthTest  bool
	Blend      bool

	boundVAO     uint32
	boundProgram uint32
}

var _ gfx.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		Live:       make(map[uint32]Kind),
		Buffers:    make(map[uint32][]byte),
		Programs:   make(map[uint32]shader.Sources),
		Textures:   make(map[uint32]image.Rectangle),
		Attributes: make(map[uint32]map[uint32]gfx.Attribute),
		Mat4:       make(map[string]mgl32.Mat4),
		Vec3:       make(map[string]mgl32.Vec3),
		Vec4:       make(map[string]mgl32.Vec4),
		Int:        make(map[string]int32),
		DepthTest:  true,
	}
}

func (d *Device) create(kind Kind) (uint32, error) {
	d.Creates++
	if d.FailAt > 0 && d.Creates == d.FailAt {
		return 0, fmt.Errorf("create %s: %w", kind, ErrInjected)
	}
	d.nextID++
	d.Live[d.nextID] = kind
	return d.nextID, nil
}

func (d *Device) delete(id uint32, kind Kind) {
	if id == 0 {
		return
	}
	if k, ok := d.Live[id]; ok && k == kind {
		delete(d.Live, id)
		d.Deleted = append(d.Deleted, id)
	}
}

// LiveCount returns how many resources of kind are still alive.
func (d *Device) LiveCount(kind Kind) int {
	n := 0
	for _, k := range d.Live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveTotal returns the number of resources not yet deleted.
func (d *Device) LiveTotal() int { return len(d.Live) }

// ResetFrame clears per-frame recordings.
func (d *Device) ResetFrame() {
	d.Draws = d.Draws[:0]
	d.LineWidths = d.LineWidths[:0]
	d.Clears = d.Clears[:0]
}

func (d *Device) CreateVertexArray() (uint32, error) {
	id, err := d.create(KindVertexArray)
	if err == nil {
		d.boundVAO = id
	}
	return id, err
}

func (d *Device) BindVertexArray(vao uint32)   { d.boundVAO = vao }
func (d *Device) DeleteVertexArray(vao uint32) { d.delete(vao, KindVertexArray) }

func (d *Device) CreateBuffer(target gfx.BufferTarget, data []byte) (uint32, error) {
	id, err := d.create(KindBuffer)
	if err != nil {
		return 0, err
	}
	d.Buffers[id] = append([]byte(nil), data...)
	return id, nil
}

func (d *Device) UpdateBuffer(buf uint32, target gfx.BufferTarget, data []byte) error {
	if d.Live[buf] != KindBuffer {
		return fmt.Errorf("update buffer %d: %w", buf, gfx.ErrGL)
	}
	d.Buffers[buf] = append([]byte(nil), data...)
	return nil
}

func (d *Device) DeleteBuffer(buf uint32) {
	d.delete(buf, KindBuffer)
	delete(d.Buffers, buf)
}

func (d *Device) SetAttribute(buf uint32, attr gfx.Attribute) error {
	d.Creates++
	if d.FailAt > 0 && d.Creates == d.FailAt {
		return fmt.Errorf("vertex attribute %d: %w", attr.Index, ErrInjected)
	}
	if d.Live[buf] != KindBuffer {
		return fmt.Errorf("vertex attribute %d on buffer %d: %w", attr.Index, buf, gfx.ErrGL)
	}
	if d.Attributes[d.boundVAO] == nil {
		d.Attributes[d.boundVAO] = make(map[uint32]gfx.Attribute)
	}
	d.Attributes[d.boundVAO][attr.Index] = attr
	return nil
}

func (d *Device) CreateProgram(src shader.Sources) (uint32, error) {
	if err := src.Validate(); err != nil {
		return 0, err
	}
	id, err := d.create(KindProgram)
	if err != nil {
		return 0, err
	}
	d.Programs[id] = src
	return id, nil
}

func (d *Device) UseProgram(program uint32) { d.boundProgram = program }

func (d *Device) DeleteProgram(program uint32) {
	d.delete(program, KindProgram)
	delete(d.Programs, program)
}

// UniformLocation hands out stable locations per name. Locations are shared
// across programs so recorded values can be looked up by name.
func (d *Device) UniformLocation(program uint32, name string) int32 {
	for i, n := range d.uniformNames {
		if n == name {
			return int32(i)
		}
	}
	d.uniformNames = append(d.uniformNames, name)
	return int32(len(d.uniformNames) - 1)
}

func (d *Device) uniformName(loc int32) string {
	if loc < 0 || int(loc) >= len(d.uniformNames) {
		return ""
	}
	return d.uniformNames[loc]
}

func (d *Device) SetUniformMat4(loc int32, m mgl32.Mat4) { d.Mat4[d.uniformName(loc)] = m }
func (d *Device) SetUniformVec3(loc int32, v mgl32.Vec3) { d.Vec3[d.uniformName(loc)] = v }
func (d *Device) SetUniformVec4(loc int32, v mgl32.Vec4) { d.Vec4[d.uniformName(loc)] = v }
func (d *Device) SetUniformInt(loc int32, v int32)       { d.Int[d.uniformName(loc)] = v }

func (d *Device) CreateTexture(img *image.RGBA) (uint32, error) {
	id, err := d.create(KindTexture)
	if err != nil {
		return 0, err
	}
	d.Textures[id] = img.Bounds()
	return id, nil
}

func (d *Device) UpdateTexture(tex uint32, img *image.RGBA) error {
	if d.Live[tex] != KindTexture {
		return fmt.Errorf("update texture %d: %w", tex, gfx.ErrGL)
	}
	d.Textures[tex] = img.Bounds()
	return nil
}

func (d *Device) BindTexture(unit uint32, tex uint32) {}

func (d *Device) DeleteTexture(tex uint32) {
	d.delete(tex, KindTexture)
	delete(d.Textures, tex)
}

func (d *Device) DrawElements(p gfx.Primitive, count int32) {
	d.Draws = append(d.Draws, Draw{Primitive: p, Elements: true, Count: count, VAO: d.boundVAO, Program: d.boundProgram})
}

func (d *Device) DrawArrays(p gfx.Primitive, first, count int32) {
	d.Draws = append(d.Draws, Draw{Primitive: p, First: first, Count: count, VAO: d.boundVAO, Program: d.boundProgram})
}

func (d *Device) LineWidth(w float32)       { d.LineWidths = append(d.LineWidths, w) }
func (d *Device) SetDepthTest(enabled bool) { d.DepthTest = enabled }
func (d *Device) SetBlend(enabled bool)     { d.Blend = enabled }

func (d *Device) Viewport(x, y, width, height int32) {
	d.Viewports = append(d.Viewports, [4]int32{x, y, width, height})
}

func (d *Device) Clear(color mgl32.Vec4) { d.Clears = append(d.Clears, color) }

// ReadPixels returns an opaque frame whose colour channels hold the row
// index, so tests can check vertical flipping.
func (d *Device) ReadPixels(x, y, width, height int32) ([]byte, error) {
	if d.ReadErr != nil {
		return nil, d.ReadErr
	}
	pixels := make([]byte, int(width)*int(height)*4)
	for i := range pixels {
		if i%4 == 3 {
			pixels[i] = 0xff
			continue
		}
		pixels[i] = byte(i / (int(width) * 4))
	}
	return pixels, nil
}
