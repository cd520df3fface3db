// Package shader compiles and links GLSL programs for the viewer pipelines.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Version is the GLSL version directive every program starts with.
const Version = "#version 410 core"

// ErrInvalidSource is returned for sources that cannot be compiled.
var ErrInvalidSource = errors.New("invalid shader source")

// Sources is a named vertex/fragment pair.
type Sources struct {
	Name     string
	Vertex   string
	Fragment string
}

// Validate checks that both stages are present and target the expected
// GLSL version. It does not touch the GPU.
func (s Sources) Validate() error {
	if strings.TrimSpace(s.Vertex) == "" {
		return fmt.Errorf("%s: empty vertex stage: %w", s.Name, ErrInvalidSource)
	}
	if strings.TrimSpace(s.Fragment) == "" {
		return fmt.Errorf("%s: empty fragment stage: %w", s.Name, ErrInvalidSource)
	}
	for stage, src := range map[string]string{"vertex": s.Vertex, "fragment": s.Fragment} {
		if !strings.HasPrefix(strings.TrimSpace(src), Version) {
			return fmt.Errorf("%s: %s stage must start with %q: %w", s.Name, stage, Version, ErrInvalidSource)
		}
	}
	return nil
}

// CompileProgram compiles both stages of s and links them into a program.
// Must be called with a current GL context.
func CompileProgram(s Sources) (uint32, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	vertShader, err := compileShader(s.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("%s: vertex shader: %w", s.Name, err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(s.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("%s: fragment shader: %w", s.Name, err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetProgramInfoLog(program, logLen, nil, buf) })
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%s: link: %s", s.Name, log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetShaderInfoLog(shader, logLen, nil, buf) })
		gl.DeleteShader(shader)
		return 0, errors.New(log)
	}

	return shader, nil
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "unknown error"
	}
	buf := make([]byte, n)
	read(&buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

// UniformLocation returns the location of a uniform, or -1 if the program
// has no active uniform with that name.
func UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
