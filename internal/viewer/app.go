package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/fmv/internal/config"
	"github.com/Faultbox/fmv/internal/engine/debug"
	"github.com/Faultbox/fmv/internal/engine/gfx"
	"github.com/Faultbox/fmv/internal/engine/hud"
	"github.com/Faultbox/fmv/internal/engine/input"
	"github.com/Faultbox/fmv/internal/engine/model"
	"github.com/Faultbox/fmv/internal/engine/window"
	"github.com/Faultbox/fmv/internal/logger"
)

// Title is the window title prefix.
const Title = "fmv"

type dialogResult struct {
	path string
	err  error
}

// App runs the viewer: window, input, scene and HUD.
type App struct {
	cfg     *config.Config
	window  *window.Window
	dev     gfx.Device
	input   *input.Input
	scene   *Scene
	hud     *hud.HUD
	fps     *hud.FPSCounter
	shots   *debug.ScreenshotCapture
	clear   mgl32.Vec4
	showHUD bool
	running bool

	// pickFile shows the native open dialog. It runs off the main thread.
	pickFile   func() (string, error)
	opened     chan dialogResult
	dialogOpen bool

	status string
	title  string
}

// SceneOptions derives scene options from the config.
func SceneOptions(cfg *config.Config) Options {
	return Options{
		Limits:     cfg.Mesh.Limits(),
		OBJ:        cfg.Mesh.OBJOptions(),
		Upload:     model.UploadOptions{ForceSimpleShader: cfg.Viewer.ForceSimpleShader, Light: cfg.Viewer.Light()},
		Grid:       cfg.Viewer.Grid(),
		ShowGrid:   cfg.Viewer.ShowGrid,
		ShowBounds: cfg.Viewer.ShowBounds,
		Arcball:    cfg.Viewer.Arcball(),
	}
}

// New opens the window and creates the viewer.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// The GL context must exist before the device.
	win, err := window.New(window.Config{
		Title:      Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dev, err := gfx.NewGL()
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	a, err := newApp(cfg, dev)
	if err != nil {
		win.Close()
		return nil, err
	}
	a.window = win
	a.scene.Resize(win.DrawableSize())

	logger.Info("viewer initialized successfully")
	return a, nil
}

func newApp(cfg *config.Config, dev gfx.Device) (*App, error) {
	scene, err := NewScene(dev, SceneOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	overlay, err := hud.New(dev, cfg.Viewer.HUDScale)
	if err != nil {
		scene.Close()
		return nil, fmt.Errorf("failed to create hud: %w", err)
	}

	shots := debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, Title)
	shots.SetFormat(cfg.Viewer.ScreenshotFormat)

	a := &App{
		cfg:      cfg,
		dev:      dev,
		input:    input.New(),
		scene:    scene,
		hud:      overlay,
		fps:      hud.NewFPSCounter(),
		shots:    shots,
		clear:    mgl32.Vec4(cfg.Viewer.ClearColor),
		showHUD:  cfg.Viewer.ShowHUD,
		pickFile: pickOBJ,
		opened:   make(chan dialogResult, 1),
	}
	a.scene.Resize(cfg.Window.Width, cfg.Window.Height)
	return a, nil
}

func pickOBJ() (string, error) {
	return dialog.File().
		Filter("Wavefront OBJ", "obj").
		Filter("All Files", "*").
		Title("Open Model").
		Load()
}

// Run loads the initial model, if any, and runs the frame loop until the
// window closes or Escape is pressed.
func (a *App) Run(initial string) error {
	if a.window == nil {
		return errors.New("viewer: no window")
	}
	if initial != "" {
		a.Load(initial)
	}

	a.running = true
	last := time.Now()

	logger.Info("starting frame loop")
	for a.running {
		now := time.Now()
		dt := now.Sub(last)
		last = now

		if a.input.Update() {
			break
		}
		a.frame(dt)
		a.window.SwapBuffers()
	}
	return nil
}

// Close releases the scene, the HUD and the window.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.hud != nil {
		a.hud.Destroy()
	}
	if a.scene != nil {
		a.scene.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// Load loads path into the scene and reports failures on the HUD.
func (a *App) Load(path string) {
	if err := a.scene.Load(path); err != nil {
		logger.Error("failed to load model", zap.String("path", path), zap.Error(err))
		a.status = "load failed: " + err.Error()
		return
	}
	a.status = ""
}

func (a *App) frame(dt time.Duration) {
	a.handleInput()
	a.pollDialog()

	if a.fps.Tick(dt) {
		logger.Sugar.Debugf("fps %.1f", a.fps.FPS())
	}
	a.updateTitle()
	a.updateHUD()

	a.dev.Clear(a.clear)
	a.scene.Render()
	if a.showHUD {
		w, h := a.scene.Size()
		a.hud.Draw(w, h)
	}
}

func (a *App) handleInput() {
	in := a.input

	if w, h, ok := in.Resized(); ok {
		if a.window != nil {
			w, h = a.window.DrawableSize()
		}
		a.scene.Resize(w, h)
	}
	if d := in.Scroll(); d != 0 {
		a.scene.HandleScroll(d)
	}
	if dx, dy := in.Drag(); dx != 0 || dy != 0 {
		a.scene.HandleDrag(dx, dy)
	}
	// Only the last of several dropped files is kept.
	if dropped := in.Dropped(); len(dropped) > 0 {
		a.Load(dropped[len(dropped)-1])
	}

	if in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		a.running = false
	}
	if in.IsKeyPressed(sdl.SCANCODE_R) {
		if err := a.scene.Reload(); err != nil {
			logger.Warn("reload failed", zap.Error(err))
			a.status = "reload failed: " + err.Error()
		} else {
			a.status = ""
		}
	}
	if in.IsKeyPressed(sdl.SCANCODE_G) {
		logger.Debug("grid", zap.Bool("visible", a.scene.ToggleGrid()))
	}
	if in.IsKeyPressed(sdl.SCANCODE_B) {
		logger.Debug("bounds", zap.Bool("visible", a.scene.ToggleBounds()))
	}
	if in.IsKeyPressed(sdl.SCANCODE_C) {
		logger.Debug("camera", zap.String("mode", cameraName(a.scene.ToggleCamera())))
	}
	if in.IsKeyPressed(sdl.SCANCODE_H) {
		a.showHUD = !a.showHUD
	}
	if in.IsKeyPressed(sdl.SCANCODE_HOME) {
		a.scene.ResetCamera()
	}
	if in.IsKeyPressed(sdl.SCANCODE_O) {
		a.openDialog()
	}
	if in.IsKeyPressed(sdl.SCANCODE_F12) {
		a.screenshot()
	}
}

// openDialog shows the file dialog on a goroutine. SDL and GL calls stay on
// the main thread, which picks up the result in pollDialog.
func (a *App) openDialog() {
	if a.dialogOpen {
		return
	}
	a.dialogOpen = true
	pick := a.pickFile
	go func() {
		path, err := pick()
		a.opened <- dialogResult{path: path, err: err}
	}()
}

func (a *App) pollDialog() {
	select {
	case res := <-a.opened:
		a.dialogOpen = false
		switch {
		case errors.Is(res.err, dialog.ErrCancelled):
		case res.err != nil:
			logger.Error("file dialog error", zap.Error(res.err))
		default:
			a.Load(res.path)
		}
	default:
	}
}

func (a *App) screenshot() {
	w, h := a.scene.Size()
	path, err := a.shots.Capture(a.dev, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		a.status = "screenshot failed"
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
	a.status = "saved " + filepath.Base(path)
}

// WindowTitle returns the title for the current model and frame rate.
func (a *App) WindowTitle() string {
	name := "no model"
	if p := a.scene.Path(); p != "" {
		name = filepath.Base(p)
	}
	return fmt.Sprintf("%s - %s - %.0f FPS", Title, name, a.fps.FPS())
}

func (a *App) updateTitle() {
	title := a.WindowTitle()
	if title == a.title {
		return
	}
	a.title = title
	if a.window != nil {
		a.window.SetTitle(title)
	}
}

func (a *App) updateHUD() {
	if !a.showHUD {
		return
	}
	lines := a.scene.StatusLines()
	lines = append(lines, fmt.Sprintf("%.0f fps", a.fps.FPS()))
	if a.status != "" {
		lines = append(lines, a.status)
	}
	if _, err := a.hud.SetLines(lines); err != nil {
		logger.Warn("hud update failed", zap.Error(err))
	}
}
