// Package hud draws the text overlay in the top-left corner of the window.
package hud

import (
	"fmt"
	"image"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/shaders"
)

// Margin from the window corner in pixels.
const Margin = 8

// HUD owns the texture, quad and program of the overlay.
type HUD struct {
	dev   gfx.Device
	scale int

	lines []string
	img   *image.RGBA

	tex     uint32
	vao     uint32
	vbo     uint32
	program uint32

	locProj, locTexture, locTint int32
}

// New creates an empty overlay. scale enlarges glyphs by an integer factor.
func New(dev gfx.Device, scale int) (*HUD, error) {
	if scale < 1 {
		scale = 1
	}
	h := &HUD{dev: dev, scale: scale}
	if err := h.init(); err != nil {
		h.Destroy()
		return nil, err
	}
	return h, nil
}

func (h *HUD) init() error {
	var err error
	if h.vao, err = h.dev.CreateVertexArray(); err != nil {
		return fmt.Errorf("hud vertex array: %w", err)
	}
	if h.vbo, err = h.dev.CreateBuffer(gfx.ArrayBuffer, gfx.Float32Bytes(quad(0, 0))); err != nil {
		return fmt.Errorf("hud buffer: %w", err)
	}
	const stride = 4 * 4
	if err = h.dev.SetAttribute(h.vbo, gfx.Attribute{Index: 0, Size: 2, Type: gfx.Float, Stride: stride}); err != nil {
		return fmt.Errorf("hud position attribute: %w", err)
	}
	if err = h.dev.SetAttribute(h.vbo, gfx.Attribute{Index: 1, Size: 2, Type: gfx.Float, Stride: stride, Offset: 2 * 4}); err != nil {
		return fmt.Errorf("hud texcoord attribute: %w", err)
	}
	if h.program, err = h.dev.CreateProgram(shaders.HUD); err != nil {
		return fmt.Errorf("hud program: %w", err)
	}
	h.locProj = h.dev.UniformLocation(h.program, "uProj")
	h.locTexture = h.dev.UniformLocation(h.program, "uTexture")
	h.locTint = h.dev.UniformLocation(h.program, "uTint")
	h.dev.BindVertexArray(0)
	return nil
}

// quad returns two triangles covering w×h pixels from the origin, as
// interleaved x, y, u, v.
func quad(w, h float32) []float32 {
	return []float32{
		0, 0, 0, 0,
		w, 0, 1, 0,
		w, h, 1, 1,
		0, 0, 0, 0,
		w, h, 1, 1,
		0, h, 0, 1,
	}
}

// SetLines replaces the overlay text. The texture is only rebuilt when the
// text changed; the return value reports whether that happened.
func (h *HUD) SetLines(lines []string) (bool, error) {
	if slices.Equal(lines, h.lines) {
		return false, nil
	}
	h.lines = slices.Clone(lines)
	h.img = Rasterize(h.lines, h.scale)
	if h.img == nil {
		return true, nil
	}

	if h.tex == 0 {
		tex, err := h.dev.CreateTexture(h.img)
		if err != nil {
			return true, fmt.Errorf("hud texture: %w", err)
		}
		h.tex = tex
	} else if err := h.dev.UpdateTexture(h.tex, h.img); err != nil {
		return true, fmt.Errorf("hud texture: %w", err)
	}

	size := h.img.Bounds().Size()
	if err := h.dev.UpdateBuffer(h.vbo, gfx.ArrayBuffer, gfx.Float32Bytes(quad(float32(size.X), float32(size.Y)))); err != nil {
		return true, fmt.Errorf("hud quad: %w", err)
	}
	return true, nil
}

// Lines returns the current text.
func (h *HUD) Lines() []string { return h.lines }

// Size returns the overlay size in pixels, zero when empty.
func (h *HUD) Size() image.Point {
	if h.img == nil {
		return image.Point{}
	}
	return h.img.Bounds().Size()
}

// Draw renders the overlay for a window of the given size.
func (h *HUD) Draw(screenW, screenH int) {
	if h == nil || h.img == nil || h.tex == 0 || screenW <= 0 || screenH <= 0 {
		return
	}
	proj := mgl32.Ortho(0, float32(screenW), float32(screenH), 0, -1, 1).
		Mul4(mgl32.Translate3D(Margin, Margin, 0))

	h.dev.SetDepthTest(false)
	h.dev.SetBlend(true)
	h.dev.UseProgram(h.program)
	h.dev.SetUniformMat4(h.locProj, proj)
	h.dev.SetUniformInt(h.locTexture, 0)
	h.dev.SetUniformVec4(h.locTint, mgl32.Vec4{1, 1, 1, 1})
	h.dev.BindTexture(0, h.tex)
	h.dev.BindVertexArray(h.vao)
	h.dev.DrawArrays(gfx.Triangles, 0, 6)
	h.dev.BindVertexArray(0)
	h.dev.UseProgram(0)
	h.dev.SetBlend(false)
	h.dev.SetDepthTest(true)
}

// Destroy releases the overlay's GPU resources.
func (h *HUD) Destroy() {
	if h == nil {
		return
	}
	h.dev.DeleteTexture(h.tex)
	h.dev.DeleteBuffer(h.vbo)
	h.dev.DeleteVertexArray(h.vao)
	h.dev.DeleteProgram(h.program)
	h.tex, h.vbo, h.vao, h.program = 0, 0, 0, 0
}
