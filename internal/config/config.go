// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/fmv/internal/engine/camera"
	"github.com/Faultbox/fmv/internal/engine/grid"
	"github.com/Faultbox/fmv/internal/engine/lighting"
	"github.com/Faultbox/fmv/pkg/formats"
	"github.com/Faultbox/fmv/pkg/mesh"
)

// Camera modes.
const (
	CameraOrbit   = "orbit"
	CameraArcball = "arcball"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Samples    int  `yaml:"samples"`
}

// ViewerConfig holds rendering and interaction settings.
type ViewerConfig struct {
	ForceSimpleShader bool       `yaml:"force_simple_shader"`
	GridSize          int        `yaml:"grid_size"`
	GridSpacing       float32    `yaml:"grid_spacing"`
	GridLineWidth     float32    `yaml:"grid_line_width"`
	ShowGrid          bool       `yaml:"show_grid"`
	ShowBounds        bool       `yaml:"show_bounds"`
	ShowHUD           bool       `yaml:"show_hud"`
	HUDScale          int        `yaml:"hud_scale"`
	Camera            string     `yaml:"camera"`
	ScreenshotDir     string     `yaml:"screenshot_dir"`
	ScreenshotFormat  string     `yaml:"screenshot_format"`
	ClearColor        [4]float32 `yaml:"clear_color"`
	LightLongitude    float32    `yaml:"light_longitude"`
	LightLatitude     float32    `yaml:"light_latitude"`
}

// MeshConfig holds parser and arena limits.
type MeshConfig struct {
	MaxVertices int `yaml:"max_vertices"`
	MaxIndices  int `yaml:"max_indices"`
	LineBuffer  int `yaml:"line_buffer"`
	MaxWarnings int `yaml:"max_warnings"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	g := grid.DefaultConfig()
	lon, lat := lighting.DefaultSun().Angles()
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Viewer: ViewerConfig{
			ForceSimpleShader: true,
			GridSize:          g.Size,
			GridSpacing:       g.Spacing,
			GridLineWidth:     g.LineWidth,
			ShowGrid:          true,
			ShowBounds:        false,
			ShowHUD:           true,
			HUDScale:          1,
			Camera:            CameraOrbit,
			ScreenshotDir:     "screenshots",
			ScreenshotFormat:  "png",
			ClearColor:        [4]float32{0.08, 0.08, 0.08, 1},
			LightLongitude:    lon,
			LightLatitude:     lat,
		},
		Mesh: MeshConfig{
			MaxVertices: mesh.DefaultMaxVertices,
			MaxIndices:  mesh.DefaultMaxIndices,
			LineBuffer:  formats.DefaultOBJLineBufferSize,
			MaxWarnings: formats.DefaultOBJMaxWarnings,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch strings.ToLower(c.Viewer.Camera) {
	case CameraOrbit, CameraArcball:
	default:
		return fmt.Errorf("unknown camera %q (want %s or %s)", c.Viewer.Camera, CameraOrbit, CameraArcball)
	}
	if c.Viewer.GridSize <= 0 || c.Viewer.GridSpacing <= 0 {
		return fmt.Errorf("grid size and spacing must be positive")
	}
	if c.Mesh.MaxVertices <= 0 || c.Mesh.MaxIndices <= 0 {
		return fmt.Errorf("mesh limits must be positive, got %d vertices / %d indices",
			c.Mesh.MaxVertices, c.Mesh.MaxIndices)
	}
	return nil
}

// Limits returns the arena limits.
func (m MeshConfig) Limits() mesh.Limits {
	return mesh.Limits{MaxVertices: m.MaxVertices, MaxIndices: m.MaxIndices}
}

// OBJOptions returns the parser options.
func (m MeshConfig) OBJOptions() formats.OBJOptions {
	return formats.OBJOptions{LineBufferSize: m.LineBuffer, MaxWarnings: m.MaxWarnings}
}

// Grid returns the grid overlay settings.
func (v ViewerConfig) Grid() grid.Config {
	g := grid.DefaultConfig()
	g.Size = v.GridSize
	g.Spacing = v.GridSpacing
	g.LineWidth = v.GridLineWidth
	return g
}

// Light returns the model light.
func (v ViewerConfig) Light() lighting.Sun {
	return lighting.NewSun(v.LightLongitude, v.LightLatitude)
}

// Arcball reports whether the arcball camera is selected.
func (v ViewerConfig) Arcball() bool {
	return strings.EqualFold(v.Camera, CameraArcball)
}

// NewCamera returns the configured camera controller.
func (v ViewerConfig) NewCamera() camera.Controller {
	if v.Arcball() {
		return camera.NewArcballCamera()
	}
	return camera.NewOrbitCamera()
}
