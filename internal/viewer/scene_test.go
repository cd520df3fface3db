package viewer

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fmv/internal/engine/camera"
	"github.com/Faultbox/fmv/internal/engine/debug"
	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/fmv/pkg/mesh"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 2 -1\nf 1 2 3\n"

func writeOBJ(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newTestScene(t *testing.T) (*Scene, *gfxtest.Device) {
	t.Helper()
	dev := gfxtest.New()
	s, err := NewScene(dev, DefaultOptions())
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s, dev
}

func TestLoadTriangle(t *testing.T) {
	s, _ := newTestScene(t)
	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)

	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := s.Mesh()
	if !g.Valid() {
		t.Fatal("expected valid mesh")
	}
	if g.VertexCount != 9 || g.IndexCount != 3 || g.NormalCount != 0 || g.TexCoordCount != 0 {
		t.Errorf("unexpected counts %d/%d/%d/%d", g.VertexCount, g.IndexCount, g.NormalCount, g.TexCoordCount)
	}
	want := mesh.Bounds{Min: mgl64.Vec3{0, 0, -1}, Max: mgl64.Vec3{1, 2, 0}}
	if g.Bounds != want {
		t.Errorf("expected bounds %v, got %v", want, g.Bounds)
	}
	if s.Path() != canonicalPath(path) {
		t.Errorf("expected path %s, got %s", path, s.Path())
	}
	if s.SizeMB() <= 0 {
		t.Error("expected non-zero size")
	}
	if !s.Dirty() {
		t.Error("load should mark the scene dirty")
	}
}

func TestLoadOutOfRangeFaceStillSucceeds(t *testing.T) {
	s, _ := newTestScene(t)
	path := writeOBJ(t, t.TempDir(), "bad.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 5\n")

	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.Mesh().Valid() {
		t.Error("expected an empty but valid mesh")
	}
	if s.Mesh().IndexCount != 0 {
		t.Errorf("expected no indices, got %d", s.Mesh().IndexCount)
	}
	if s.Report().WarningCount != 1 {
		t.Errorf("expected 1 warning, got %d", s.Report().WarningCount)
	}
}

func TestLoadSamePathIsNoop(t *testing.T) {
	s, dev := newTestScene(t)
	dir := t.TempDir()
	path := writeOBJ(t, dir, "tri.obj", triangleOBJ)

	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	creates := dev.Creates
	report := s.Report()
	s.Render()

	// Same file via a different spelling of the path.
	again := filepath.Join(dir, ".", "tri.obj")
	for i := 0; i < 2; i++ {
		if err := s.Load(again); err != nil {
			t.Fatalf("second Load failed: %v", err)
		}
	}

	if dev.Creates != creates {
		t.Errorf("expected no GPU work, creates went %d -> %d", creates, dev.Creates)
	}
	if s.Report() != report {
		t.Error("expected no reparse")
	}
	if s.Dirty() {
		t.Error("no-op load should not mark dirty")
	}
}

func TestLoadMissingFileKeepsModel(t *testing.T) {
	s, dev := newTestScene(t)
	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	g := s.Mesh()
	live := dev.LiveTotal()

	err := s.Load(filepath.Join(t.TempDir(), "missing.obj"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if s.Mesh() != g || !g.Valid() {
		t.Error("failed load replaced the working model")
	}
	if s.Path() != canonicalPath(path) {
		t.Errorf("path changed to %s", s.Path())
	}
	if dev.LiveTotal() != live {
		t.Errorf("expected %d live resources, got %d", live, dev.LiveTotal())
	}
}

func TestLoadUploadFailureRestoresPrevious(t *testing.T) {
	s, dev := newTestScene(t)
	dir := t.TempDir()
	first := writeOBJ(t, dir, "first.obj", triangleOBJ)
	second := writeOBJ(t, dir, "second.obj", "v 0 0 0\nv 2 0 0\nv 0 2 0\nv 0 0 2\nf 1 2 3\nf 1 3 4\n")

	if err := s.Load(first); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	live := dev.LiveTotal()

	// Fail on the position buffer of the next upload.
	dev.FailAt = dev.Creates + 2
	err := s.Load(second)
	if !errors.Is(err, gfxtest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	if s.Path() != canonicalPath(first) {
		t.Errorf("expected previous model restored, path is %q", s.Path())
	}
	if !s.Mesh().Valid() || s.Mesh().IndexCount != 3 {
		t.Errorf("expected restored triangle, got %+v", s.Mesh())
	}
	if dev.LiveTotal() != live {
		t.Errorf("expected %d live resources after restore, got %d", live, dev.LiveTotal())
	}
}

func TestLoadUploadFailurePreviousFileRemoved(t *testing.T) {
	s, dev := newTestScene(t)
	dir := t.TempDir()
	first := writeOBJ(t, dir, "first.obj", triangleOBJ)
	second := writeOBJ(t, dir, "second.obj", triangleOBJ)
	base := dev.LiveTotal()

	if err := s.Load(first); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := os.Remove(first); err != nil {
		t.Fatalf("failed to remove %s: %v", first, err)
	}

	dev.FailAt = dev.Creates + 2
	if err := s.Load(second); !errors.Is(err, gfxtest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	// The previous model is read back from disk, so a removed file leaves
	// the scene empty.
	if s.Mesh() != nil || s.Path() != "" {
		t.Errorf("expected empty scene, got path %q mesh %+v", s.Path(), s.Mesh())
	}
	if dev.LiveTotal() != base {
		t.Errorf("expected %d live resources, got %d", base, dev.LiveTotal())
	}
	dev.ResetFrame()
	s.Render()
	for _, d := range dev.Draws {
		if d.Elements {
			t.Error("empty scene should not draw a model")
		}
	}
}

func TestLoadUploadFailureWithoutPrevious(t *testing.T) {
	s, dev := newTestScene(t)
	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)
	live := dev.LiveTotal()

	dev.FailAt = dev.Creates + 1
	if err := s.Load(path); !errors.Is(err, gfxtest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if s.Mesh() != nil || s.Path() != "" {
		t.Error("expected no model after failed first load")
	}
	if dev.LiveTotal() != live {
		t.Errorf("upload leaked %d resources", dev.LiveTotal()-live)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	s, _ := newTestScene(t)
	if err := s.Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestReload(t *testing.T) {
	s, dev := newTestScene(t)

	if err := s.Reload(); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}

	dir := t.TempDir()
	path := writeOBJ(t, dir, "model.obj", triangleOBJ)
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	creates := dev.Creates

	// Edit the file and reload.
	writeOBJ(t, dir, "model.obj", triangleOBJ+"v 5 5 5\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if dev.Creates == creates {
		t.Error("reload should upload again")
	}
	if s.Mesh().VertexCount != 12 {
		t.Errorf("expected 12 vertex scalars after reload, got %d", s.Mesh().VertexCount)
	}
	if dev.LiveCount(gfxtest.KindProgram) != 3 {
		t.Errorf("expected 3 programs (grid, bounds, model), got %d", dev.LiveCount(gfxtest.KindProgram))
	}
}

func TestUnload(t *testing.T) {
	s, dev := newTestScene(t)
	overlays := dev.LiveTotal()

	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.Unload()

	if s.Mesh() != nil || s.Path() != "" || s.SizeMB() != 0 || s.Report() != nil {
		t.Error("unload should clear model state")
	}
	if dev.LiveTotal() != overlays {
		t.Errorf("expected only overlay resources alive, got %d", dev.LiveTotal())
	}

	// Loading the same path after unload does the work again.
	if err := s.Load(path); err != nil || !s.Mesh().Valid() {
		t.Errorf("reload after unload failed: %v", err)
	}
}

func TestRender(t *testing.T) {
	s, dev := newTestScene(t)
	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s.Render()
	if s.Dirty() {
		t.Error("render should clear dirty")
	}
	var lines, elements int
	for _, d := range dev.Draws {
		if d.Elements {
			elements++
		} else if d.Primitive == gfx.Lines {
			lines++
		}
	}
	if elements != 1 || lines != 1 {
		t.Errorf("expected grid + model draws, got %d line / %d element", lines, elements)
	}
	if dev.Mat4["uProj"] != s.Projection() {
		t.Error("projection uniform not set")
	}

	dev.ResetFrame()
	s.ToggleGrid()
	s.ToggleBounds()
	s.Render()
	if len(dev.Draws) != 2 {
		t.Fatalf("expected model + bounds draws, got %d", len(dev.Draws))
	}
	if d := dev.Draws[1]; d.Primitive != gfx.Lines || d.Count != debug.BBoxWireframeVertexCount {
		t.Errorf("unexpected bounds draw %+v", d)
	}
}

func TestRenderEmptyScene(t *testing.T) {
	s, dev := newTestScene(t)
	s.ToggleBounds()
	s.Render()

	if len(dev.Draws) != 1 || dev.Draws[0].Primitive != gfx.Lines {
		t.Errorf("expected only the grid, got %+v", dev.Draws)
	}
}

func TestResize(t *testing.T) {
	s, dev := newTestScene(t)
	s.Render()

	s.Resize(800, 400)
	want := mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 100)
	if !s.Projection().ApproxEqual(want) {
		t.Errorf("unexpected projection %v", s.Projection())
	}
	if !s.Dirty() {
		t.Error("resize should mark dirty")
	}
	if vp := dev.Viewports[len(dev.Viewports)-1]; vp != [4]int32{0, 0, 800, 400} {
		t.Errorf("unexpected viewport %v", vp)
	}

	s.Resize(0, 0)
	if w, h := s.Size(); w != 800 || h != 400 {
		t.Errorf("minimized resize should be ignored, got %dx%d", w, h)
	}
}

func TestHandleScroll(t *testing.T) {
	tests := []struct {
		name  string
		delta float32
		want  float32
	}{
		{"out", 2, 6},
		{"in", -2, 4},
		{"clamped far", 500, camera.DefaultMaxRadius},
		{"clamped near", -500, camera.DefaultMinRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestScene(t)
			s.Render()
			s.HandleScroll(tt.delta)

			orbit := s.Camera().(*camera.OrbitCamera)
			if math.Abs(float64(orbit.Radius-tt.want)) > 1e-5 {
				t.Errorf("expected radius %v, got %v", tt.want, orbit.Radius)
			}
			if !s.Dirty() {
				t.Error("scroll should mark dirty")
			}
		})
	}
}

func TestHandleDrag(t *testing.T) {
	s, _ := newTestScene(t)
	s.Render()

	s.HandleDrag(0, 0)
	if s.Dirty() {
		t.Error("empty drag should not mark dirty")
	}

	s.HandleDrag(100, -50)
	orbit := s.Camera().(*camera.OrbitCamera)
	if math.Abs(float64(orbit.Yaw-1)) > 1e-5 || math.Abs(float64(orbit.Pitch+0.5)) > 1e-5 {
		t.Errorf("expected yaw 1 pitch -0.5, got %v %v", orbit.Yaw, orbit.Pitch)
	}
	if !s.Dirty() {
		t.Error("drag should mark dirty")
	}

	s.HandleDrag(0, -1000)
	if orbit.Pitch != -float32(camera.PitchLimit) {
		t.Errorf("expected pitch clamped, got %v", orbit.Pitch)
	}
}

func TestToggleCameraAndReset(t *testing.T) {
	s, _ := newTestScene(t)

	if _, ok := s.ToggleCamera().(*camera.ArcballCamera); !ok {
		t.Fatal("expected arcball after first toggle")
	}
	s.HandleScroll(3)
	s.ResetCamera()
	if d := s.Camera().(*camera.ArcballCamera).Distance; d != camera.DefaultArcballDistance {
		t.Errorf("reset should restore distance, got %v", d)
	}
	if _, ok := s.ToggleCamera().(*camera.OrbitCamera); !ok {
		t.Error("expected orbit after second toggle")
	}

	opts := DefaultOptions()
	opts.Arcball = true
	a, err := NewScene(gfxtest.New(), opts)
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}
	defer a.Close()
	if _, ok := a.Camera().(*camera.ArcballCamera); !ok {
		t.Error("expected arcball camera from options")
	}
}

func TestStatusLines(t *testing.T) {
	s, _ := newTestScene(t)
	if lines := s.StatusLines(); len(lines) != 1 || !strings.Contains(lines[0], "no model") {
		t.Errorf("unexpected empty status %v", lines)
	}

	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ+"vn broken\n")
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	lines := s.StatusLines()
	if lines[0] != "tri.obj" {
		t.Errorf("expected file name first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "vertices 3") || !strings.Contains(lines[1], "triangles 1") {
		t.Errorf("unexpected counts line %q", lines[1])
	}
	if !strings.Contains(strings.Join(lines, "\n"), "1 lines skipped") {
		t.Errorf("expected warning line in %v", lines)
	}
}

func TestNewSceneFailure(t *testing.T) {
	for failAt := 1; failAt <= 12; failAt++ {
		dev := gfxtest.New()
		dev.FailAt = failAt
		if _, err := NewScene(dev, DefaultOptions()); !errors.Is(err, gfxtest.ErrInjected) {
			t.Errorf("failAt %d: expected injected error, got %v", failAt, err)
		}
		if dev.LiveTotal() != 0 {
			t.Errorf("failAt %d: %d resources leaked", failAt, dev.LiveTotal())
		}
	}
}

func TestClose(t *testing.T) {
	dev := gfxtest.New()
	s, err := NewScene(dev, DefaultOptions())
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}
	path := writeOBJ(t, t.TempDir(), "tri.obj", triangleOBJ)
	if err := s.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s.Close()
	if dev.LiveTotal() != 0 {
		t.Errorf("%d resources leaked", dev.LiveTotal())
	}
}
