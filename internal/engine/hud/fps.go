package hud

import "time"

// FPSCounter averages frame rate over fixed windows.
type FPSCounter struct {
	Window time.Duration

	frames  int
	elapsed time.Duration
	fps     float64
}

// NewFPSCounter creates a counter with a one second window.
func NewFPSCounter() *FPSCounter {
	return &FPSCounter{Window: time.Second}
}

// Tick records one frame that took dt. It returns true when a window closed
// and FPS changed.
func (c *FPSCounter) Tick(dt time.Duration) bool {
	c.frames++
	c.elapsed += dt
	if c.elapsed < c.Window {
		return false
	}
	c.fps = float64(c.frames) / c.elapsed.Seconds()
	c.frames = 0
	c.elapsed = 0
	return true
}

// FPS returns the rate measured over the last complete window.
func (c *FPSCounter) FPS() float64 { return c.fps }
