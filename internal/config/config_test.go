package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fmv/internal/engine/camera"
	"github.com/Faultbox/fmv/internal/engine/lighting"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Viewer defaults
	if !cfg.Viewer.ForceSimpleShader {
		t.Error("expected force_simple_shader to be true by default")
	}
	if cfg.Viewer.GridSize != 10 || cfg.Viewer.GridSpacing != 0.5 || cfg.Viewer.GridLineWidth != 1 {
		t.Errorf("unexpected grid defaults %d/%v/%v", cfg.Viewer.GridSize, cfg.Viewer.GridSpacing, cfg.Viewer.GridLineWidth)
	}
	if !cfg.Viewer.ShowGrid || cfg.Viewer.ShowBounds {
		t.Error("expected grid shown and bounds hidden by default")
	}
	if cfg.Viewer.Camera != CameraOrbit {
		t.Errorf("expected orbit camera, got %s", cfg.Viewer.Camera)
	}
	if cfg.Viewer.ScreenshotDir != "screenshots" {
		t.Errorf("expected screenshots dir, got %s", cfg.Viewer.ScreenshotDir)
	}

	// Mesh defaults
	if cfg.Mesh.MaxVertices != 1_000_000 || cfg.Mesh.MaxIndices != 1_000_000 {
		t.Errorf("unexpected mesh limits %d/%d", cfg.Mesh.MaxVertices, cfg.Mesh.MaxIndices)
	}
	if cfg.Mesh.LineBuffer != 96 {
		t.Errorf("expected line buffer 96, got %d", cfg.Mesh.LineBuffer)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

viewer:
  force_simple_shader: false
  grid_size: 20
  grid_spacing: 1
  show_bounds: true
  camera: arcball
  screenshot_format: bmp
  clear_color: [0.2, 0.3, 0.4, 1]

mesh:
  max_vertices: 5000
  max_indices: 9000

logging:
  level: "debug"
  log_file: "fmv.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Viewer.ForceSimpleShader {
		t.Error("expected force_simple_shader to be false")
	}
	if cfg.Viewer.GridSize != 20 || cfg.Viewer.GridSpacing != 1 {
		t.Errorf("unexpected grid %d/%v", cfg.Viewer.GridSize, cfg.Viewer.GridSpacing)
	}
	// Unset keys keep their defaults.
	if cfg.Viewer.GridLineWidth != 1 || !cfg.Viewer.ShowGrid {
		t.Error("unset viewer keys should keep defaults")
	}
	if !cfg.Viewer.Arcball() {
		t.Error("expected arcball camera")
	}
	if cfg.Viewer.ClearColor != [4]float32{0.2, 0.3, 0.4, 1} {
		t.Errorf("unexpected clear color %v", cfg.Viewer.ClearColor)
	}

	if l := cfg.Mesh.Limits(); l.MaxVertices != 5000 || l.MaxIndices != 9000 {
		t.Errorf("unexpected limits %+v", l)
	}
	if cfg.Mesh.LineBuffer != 96 {
		t.Errorf("expected default line buffer, got %d", cfg.Mesh.LineBuffer)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "fmv.log" {
		t.Errorf("expected log file 'fmv.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/fmv.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"arcball uppercase", func(c *Config) { c.Viewer.Camera = "Arcball" }, false},
		{"unknown camera", func(c *Config) { c.Viewer.Camera = "fly" }, true},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, true},
		{"zero spacing", func(c *Config) { c.Viewer.GridSpacing = 0 }, true},
		{"negative vertices", func(c *Config) { c.Mesh.MaxVertices = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestViewerHelpers(t *testing.T) {
	v := Default().Viewer
	v.GridSize = 4
	v.GridSpacing = 0.25

	g := v.Grid()
	if g.Size != 4 || g.Spacing != 0.25 || g.LineWidth != 1 {
		t.Errorf("unexpected grid config %+v", g)
	}

	if _, ok := v.NewCamera().(*camera.OrbitCamera); !ok {
		t.Error("expected orbit camera by default")
	}
	v.Camera = CameraArcball
	if _, ok := v.NewCamera().(*camera.ArcballCamera); !ok {
		t.Error("expected arcball camera")
	}

	v.LightLongitude, v.LightLatitude = 0, 90
	if d := v.Light().Direction; !d.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("expected overhead light, got %v", d)
	}
	def := Default().Viewer.Light().Direction
	if !def.ApproxEqualThreshold(lighting.DefaultSun().Direction, 1e-5) {
		t.Errorf("default angles should reproduce the default light, got %v", def)
	}

	opts := Default().Mesh.OBJOptions()
	if opts.LineBufferSize != 96 || opts.MaxWarnings != 256 {
		t.Errorf("unexpected parser options %+v", opts)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(FileName, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find fmv.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Viewer.ShowBounds {
					t.Error("expected bounds overlay with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "camera flag",
			setup: func() { *flagCamera = CameraArcball },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Viewer.Arcball() {
					t.Errorf("expected arcball camera, got %s", cfg.Viewer.Camera)
				}
			},
			teardown: func() { *flagCamera = "" },
		},
		{
			name: "mesh limit flags",
			setup: func() {
				*flagMaxVertices = 10
				*flagMaxIndices = 30
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.MaxVertices != 10 || cfg.Mesh.MaxIndices != 30 {
					t.Errorf("expected 10/30, got %d/%d", cfg.Mesh.MaxVertices, cfg.Mesh.MaxIndices)
				}
			},
			teardown: func() {
				*flagMaxVertices = 0
				*flagMaxIndices = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(configPath, []byte("viewer:\n  camera: fly\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid camera to be rejected")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Window.Width = 1024
	cfg.Viewer.Camera = CameraArcball
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Window.Width != 1024 || !loaded.Viewer.Arcball() {
		t.Errorf("saved values not restored: %+v", loaded.Window)
	}
}

func TestSave(t *testing.T) {
	if ConfigDir() == "" {
		t.Skip("no config dir")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if err := Default().Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ConfigDir(), FileName)); err != nil {
		t.Errorf("expected saved config: %v", err)
	}
}
