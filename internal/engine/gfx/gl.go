package gfx

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/fmv/internal/engine/shader"
	"github.com/Faultbox/fmv/internal/logger"
)

var _ Device = (*GL)(nil)

// GL is the OpenGL 4.1 core Device.
type GL struct {
	Version  string
	Renderer string
}

// NewGL loads the GL function pointers and sets the default state.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &GL{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	logger.Info("OpenGL initialized",
		zap.String("version", d.Version),
		zap.String("renderer", d.Renderer),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return d, d.check("init")
}

// check drains the GL error queue and reports the first error found.
func (d *GL) check(op string) error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("%s: %w 0x%04X", op, ErrGL, first)
	}
	return nil
}

func glTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glPrimitive(p Primitive) uint32 {
	if p == Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

// CreateVertexArray creates and binds a vertex array object.
func (d *GL) CreateVertexArray() (uint32, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	if err := d.check("create vertex array"); err != nil {
		if vao != 0 {
			gl.DeleteVertexArrays(1, &vao)
		}
		return 0, err
	}
	return vao, nil
}

// BindVertexArray binds vao for subsequent attribute and draw calls.
func (d *GL) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

// DeleteVertexArray deletes vao. A zero id is ignored.
func (d *GL) DeleteVertexArray(vao uint32) {
	if vao != 0 {
		gl.DeleteVertexArrays(1, &vao)
	}
}

// CreateBuffer creates a buffer filled with data for static drawing.
func (d *GL) CreateBuffer(target BufferTarget, data []byte) (uint32, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(glTarget(target), buf)
	gl.BufferData(glTarget(target), len(data), ptr(data), gl.STATIC_DRAW)
	if err := d.check("create buffer"); err != nil {
		if buf != 0 {
			gl.DeleteBuffers(1, &buf)
		}
		return 0, err
	}
	return buf, nil
}

// UpdateBuffer replaces the contents of buf.
func (d *GL) UpdateBuffer(buf uint32, target BufferTarget, data []byte) error {
	gl.BindBuffer(glTarget(target), buf)
	gl.BufferData(glTarget(target), len(data), ptr(data), gl.DYNAMIC_DRAW)
	return d.check("update buffer")
}

// DeleteBuffer deletes buf. A zero id is ignored.
func (d *GL) DeleteBuffer(buf uint32) {
	if buf != 0 {
		gl.DeleteBuffers(1, &buf)
	}
}

// SetAttribute describes and enables a vertex attribute read from buf.
func (d *GL) SetAttribute(buf uint32, attr Attribute) error {
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	offset := gl.PtrOffset(attr.Offset)
	if attr.Type == Double {
		gl.VertexAttribLPointer(attr.Index, attr.Size, gl.DOUBLE, attr.Stride, offset)
	} else {
		gl.VertexAttribPointer(attr.Index, attr.Size, gl.FLOAT, false, attr.Stride, offset)
	}
	gl.EnableVertexAttribArray(attr.Index)
	return d.check(fmt.Sprintf("vertex attribute %d", attr.Index))
}

// CreateProgram compiles and links src.
func (d *GL) CreateProgram(src shader.Sources) (uint32, error) {
	program, err := shader.CompileProgram(src)
	if err != nil {
		return 0, err
	}
	if err := d.check("create program " + src.Name); err != nil {
		gl.DeleteProgram(program)
		return 0, err
	}
	return program, nil
}

// UseProgram makes program current.
func (d *GL) UseProgram(program uint32) { gl.UseProgram(program) }

// DeleteProgram deletes program. A zero id is ignored.
func (d *GL) DeleteProgram(program uint32) {
	if program != 0 {
		gl.DeleteProgram(program)
	}
}

// UniformLocation returns the location of a uniform, or -1.
func (d *GL) UniformLocation(program uint32, name string) int32 {
	return shader.UniformLocation(program, name)
}

// SetUniformMat4 sets a mat4 uniform.
func (d *GL) SetUniformMat4(loc int32, m mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }
// SetUniformVec3 sets a vec3 uniform.
func (d *GL) SetUniformVec3(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }
// SetUniformVec4 sets a vec4 uniform.
func (d *GL) SetUniformVec4(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }
// SetUniformInt sets an int or sampler uniform.
func (d *GL) SetUniformInt(loc int32, v int32) { gl.Uniform1i(loc, v) }

// CreateTexture uploads img into a new nearest-filtered texture.
func (d *GL) CreateTexture(img *image.RGBA) (uint32, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if err := d.UpdateTexture(tex, img); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return tex, nil
}

// UpdateTexture replaces the image of tex, resizing it to img.
func (d *GL) UpdateTexture(tex uint32, img *image.RGBA) error {
	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	return d.check("upload texture")
}

// BindTexture binds tex to texture unit.
func (d *GL) BindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

// DeleteTexture deletes tex. A zero id is ignored.
func (d *GL) DeleteTexture(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// DrawElements draws count indices from the bound element buffer.
func (d *GL) DrawElements(p Primitive, count int32) {
	gl.DrawElements(glPrimitive(p), count, gl.UNSIGNED_INT, nil)
}

// DrawArrays draws count vertices starting at first.
func (d *GL) DrawArrays(p Primitive, first, count int32) {
	gl.DrawArrays(glPrimitive(p), first, count)
}

// LineWidth sets the rasterized line width. Core profiles may only support
// 1.0; an unsupported width is logged and ignored.
func (d *GL) LineWidth(w float32) {
	gl.LineWidth(w)
	if err := d.check("line width"); err != nil {
		logger.Debug("line width not supported", zap.Float32("width", w), zap.Error(err))
	}
}

// SetDepthTest enables or disables depth testing.
func (d *GL) SetDepthTest(enabled bool) { toggle(gl.DEPTH_TEST, enabled) }
// SetBlend enables or disables alpha blending.
func (d *GL) SetBlend(enabled bool) { toggle(gl.BLEND, enabled) }

// Viewport sets the viewport rectangle.
func (d *GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

// Clear clears the colour and depth buffers.
func (d *GL) Clear(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads RGBA bytes from the default framebuffer, bottom row first.
func (d *GL) ReadPixels(x, y, width, height int32) ([]byte, error) {
	pixels := make([]byte, int(width)*int(height)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, ptr(pixels))
	if err := d.check("read pixels"); err != nil {
		return nil, err
	}
	return pixels, nil
}

func toggle(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
