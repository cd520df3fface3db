// Package viewer composes the model, camera and overlays into a scene and
// drives it from the application loop.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/fmv/internal/engine/camera"
	"github.com/Faultbox/fmv/internal/engine/debug"
	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/grid"
	"github.com/Faultbox/fmv/internal/engine/model"
	"github.com/Faultbox/fmv/internal/logger"
	"github.com/Faultbox/fmv/pkg/formats"
	"github.com/Faultbox/fmv/pkg/mesh"
)

// Projection parameters.
const (
	FieldOfView = 45.0
	NearPlane   = 0.1
	FarPlane    = 100.0
)

// ErrNoModel is returned by operations that need a loaded model.
var ErrNoModel = errors.New("viewer: no model loaded")

// Options configures a Scene.
type Options struct {
	Limits     mesh.Limits
	OBJ        formats.OBJOptions
	Upload     model.UploadOptions
	Grid       grid.Config
	ShowGrid   bool
	ShowBounds bool
	Arcball    bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Limits:   mesh.DefaultLimits(),
		Upload:   model.DefaultUploadOptions(),
		Grid:     grid.DefaultConfig(),
		ShowGrid: true,
	}
}

// Scene owns at most one GPU mesh together with the camera, grid and
// bounds overlay used to draw it.
type Scene struct {
	dev  gfx.Device
	opts Options

	mesh   *model.GPUMesh
	report *formats.OBJReport
	path   string
	sizeMB float64

	orbit   *camera.OrbitCamera
	arcball *camera.ArcballCamera
	camera  camera.Controller

	grid       *grid.Grid
	bounds     *debug.BoundsOverlay
	showGrid   bool
	showBounds bool

	proj          mgl32.Mat4
	width, height int
	dirty         bool
}

// NewScene creates an empty scene with its overlays.
func NewScene(dev gfx.Device, opts Options) (*Scene, error) {
	s := &Scene{
		dev:        dev,
		opts:       opts,
		orbit:      camera.NewOrbitCamera(),
		arcball:    camera.NewArcballCamera(),
		showGrid:   opts.ShowGrid,
		showBounds: opts.ShowBounds,
		dirty:      true,
	}
	s.camera = s.orbit
	if opts.Arcball {
		s.camera = s.arcball
	}

	var err error
	if s.grid, err = grid.New(dev, opts.Grid); err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}
	if s.bounds, err = debug.NewBoundsOverlay(dev); err != nil {
		s.grid.Destroy()
		return nil, fmt.Errorf("creating bounds overlay: %w", err)
	}
	s.Resize(1, 1)
	return s, nil
}

// Load makes path the displayed model. Loading the path that is already
// shown does nothing. A parse failure leaves the current model untouched; an
// upload failure restores the previous model when possible.
func (s *Scene) Load(path string) error {
	if path == "" {
		return fmt.Errorf("loading model: empty path")
	}
	key := canonicalPath(path)
	if s.path != "" && key == s.path {
		logger.Debug("model already loaded", zap.String("path", key))
		return nil
	}
	return s.load(key)
}

// Reload parses and uploads the current model again.
func (s *Scene) Reload() error {
	if s.path == "" {
		return ErrNoModel
	}
	return s.load(s.path)
}

func (s *Scene) load(path string) error {
	a, report, err := s.parse(path)
	if err != nil {
		return err
	}

	prev := s.path
	s.Unload()

	g, err := model.Upload(s.dev, a, s.opts.Upload)
	a.Release()
	if err != nil {
		logger.Error("model upload failed", zap.String("path", path), zap.Error(err))
		if prev != "" {
			s.restore(prev)
		}
		return fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}

	s.install(path, g, report)
	return nil
}

// restore reloads a previously working model after a failed upload.
func (s *Scene) restore(path string) {
	a, report, err := s.parse(path)
	if err != nil {
		logger.Error("restoring previous model failed", zap.String("path", path), zap.Error(err))
		return
	}
	g, err := model.Upload(s.dev, a, s.opts.Upload)
	a.Release()
	if err != nil {
		logger.Error("restoring previous model failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.install(path, g, report)
	logger.Info("restored previous model", zap.String("path", path))
}

func (s *Scene) parse(path string) (*mesh.Arena, *formats.OBJReport, error) {
	a := mesh.NewArena(s.opts.Limits)
	report, err := formats.ParseOBJFile(path, a, s.opts.OBJ)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	for _, w := range report.Warnings {
		logger.Warn("skipped obj line",
			zap.String("file", filepath.Base(path)),
			zap.Int("line", w.Line),
			zap.Stringer("kind", w.Kind),
			zap.String("detail", w.Text),
		)
	}
	if dropped := report.WarningCount - len(report.Warnings); dropped > 0 {
		logger.Warn("further obj warnings suppressed", zap.Int("count", dropped))
	}
	if report.CapacityExceeded {
		logger.Warn("mesh truncated at capacity",
			zap.Int("line", report.CapacityLine),
			zap.Int("max_vertices", a.Limits().MaxVertices),
			zap.Int("max_indices", a.Limits().MaxIndices),
		)
	}
	logger.Info("parsed model",
		zap.String("path", path),
		zap.Int("lines", report.Lines),
		zap.Int("vertices", report.Positions()),
		zap.Int("triangles", report.Triangles()),
		zap.Stringer("face_format", report.FaceFormat),
		zap.Int("warnings", report.WarningCount),
	)
	return a, report, nil
}

func (s *Scene) install(path string, g *model.GPUMesh, report *formats.OBJReport) {
	s.mesh = g
	s.report = report
	s.path = path
	s.sizeMB = report.SizeMB

	if g.Bounds.Valid() {
		lo, hi := g.NormalizedBounds()
		if err := s.bounds.SetBounds(lo, hi); err != nil {
			logger.Warn("bounds overlay update failed", zap.Error(err))
		}
	}
	s.dirty = true
}

// Unload releases the current model.
func (s *Scene) Unload() {
	if s.mesh != nil {
		s.mesh.Destroy()
		s.mesh = nil
	}
	s.bounds.Clear()
	s.report = nil
	s.path = ""
	s.sizeMB = 0
	s.dirty = true
}

// Render draws the grid, the model and the bounds overlay.
func (s *Scene) Render() {
	view := s.camera.View()
	if s.showGrid {
		s.grid.Render(s.proj, view)
	}
	if s.mesh != nil {
		s.mesh.Render(s.proj, view)
		if s.showBounds {
			s.bounds.Render(s.proj, view, s.mesh.Model)
		}
	}
	s.dirty = false
}

// Resize updates the viewport and projection for a framebuffer of w×h
// pixels. Non-positive sizes, as reported for minimized windows, are ignored.
func (s *Scene) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.width, s.height = w, h
	s.dev.Viewport(0, 0, int32(w), int32(h))
	s.proj = Projection(w, h)
	s.dirty = true
}

// Projection returns the perspective projection for a w×h viewport.
func Projection(w, h int) mgl32.Mat4 {
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	return mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
}

// HandleScroll zooms the camera by delta wheel steps.
func (s *Scene) HandleScroll(delta float32) {
	if delta == 0 {
		return
	}
	s.camera.Zoom(delta)
	s.dirty = true
}

// HandleDrag rotates the camera by a mouse movement in pixels.
func (s *Scene) HandleDrag(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	s.camera.Drag(dx, dy)
	s.dirty = true
}

// ToggleGrid shows or hides the grid and returns the new state.
func (s *Scene) ToggleGrid() bool {
	s.showGrid = !s.showGrid
	s.dirty = true
	return s.showGrid
}

// ToggleBounds shows or hides the bounding box and returns the new state.
func (s *Scene) ToggleBounds() bool {
	s.showBounds = !s.showBounds
	s.dirty = true
	return s.showBounds
}

// ToggleCamera switches between the orbit and arcball cameras.
func (s *Scene) ToggleCamera() camera.Controller {
	if s.camera == camera.Controller(s.orbit) {
		s.camera = s.arcball
	} else {
		s.camera = s.orbit
	}
	s.dirty = true
	return s.camera
}

// ResetCamera restores the active camera's initial position.
func (s *Scene) ResetCamera() {
	s.camera.Reset()
	s.dirty = true
}

// Close releases every GPU resource owned by the scene.
func (s *Scene) Close() {
	s.Unload()
	s.grid.Destroy()
	s.bounds.Destroy()
}

// Path returns the loaded model path, empty when nothing is loaded.
func (s *Scene) Path() string { return s.path }

// SizeMB returns the approximate size of the loaded geometry.
func (s *Scene) SizeMB() float64 { return s.sizeMB }

// Report returns the parse report of the loaded model.
func (s *Scene) Report() *formats.OBJReport { return s.report }

// Mesh returns the loaded GPU mesh or nil.
func (s *Scene) Mesh() *model.GPUMesh { return s.mesh }

// Camera returns the active camera.
func (s *Scene) Camera() camera.Controller { return s.camera }

// Projection returns the current projection matrix.
func (s *Scene) Projection() mgl32.Mat4 { return s.proj }

// Size returns the viewport size.
func (s *Scene) Size() (int, int) { return s.width, s.height }

// Dirty reports whether anything changed since the last Render.
func (s *Scene) Dirty() bool { return s.dirty }

// GridVisible reports whether the grid is drawn.
func (s *Scene) GridVisible() bool { return s.showGrid }

// BoundsVisible reports whether the bounding box is drawn.
func (s *Scene) BoundsVisible() bool { return s.showBounds }

// StatusLines describes the loaded model for the HUD.
func (s *Scene) StatusLines() []string {
	if s.mesh == nil || s.path == "" {
		return []string{"no model - drop an .obj file or press O"}
	}
	st := s.mesh.Stats()
	lines := []string{
		filepath.Base(s.path),
		fmt.Sprintf("vertices %d  triangles %d", st.Positions, st.Triangles),
		fmt.Sprintf("%.2f MB  %s  %s", s.sizeMB, st.Pipeline, cameraName(s.camera)),
	}
	if s.report != nil && s.report.WarningCount > 0 {
		lines = append(lines, fmt.Sprintf("%d lines skipped", s.report.WarningCount))
	}
	if s.report != nil && s.report.CapacityExceeded {
		lines = append(lines, fmt.Sprintf("truncated at line %d", s.report.CapacityLine))
	}
	return lines
}

func cameraName(c camera.Controller) string {
	if _, ok := c.(*camera.ArcballCamera); ok {
		return "arcball"
	}
	return "orbit"
}

// canonicalPath makes equal files compare equal for the reload guard.
func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
