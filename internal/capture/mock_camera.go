package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/geometry"
)

// MockCamera plays back pre-recorded frames for testing.
type MockCamera struct {
	frames  []*gocv.Mat
	geom    geometry.FrameGeometry
	facing  Facing
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	fps     int
}

// NewMockCamera creates a camera that replays the given frames. The frame
// geometry is taken from the first frame; rotation defaults to 0.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	c := &MockCamera{
		frames: frames,
		facing: FacingFront,
		loop:   loop,
		fps:    DefaultFPS,
	}
	if len(frames) > 0 {
		c.geom = geometry.FrameGeometry{
			Width:  float64(frames[0].Cols()),
			Height: float64(frames[0].Rows()),
		}
	}
	return c
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++

	return &frame, nil
}

func (c *MockCamera) Geometry() geometry.FrameGeometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

func (c *MockCamera) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
	if len(frames) > 0 {
		c.geom = geometry.FrameGeometry{
			Width:  float64(frames[0].Cols()),
			Height: float64(frames[0].Rows()),
		}
	}
}

// SetFacing overrides the reported camera facing.
func (c *MockCamera) SetFacing(f Facing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facing = f
}

// SetGeometry overrides the reported frame geometry, for tests exercising
// rotated or mismatched buffers.
func (c *MockCamera) SetGeometry(g geometry.FrameGeometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geom = g
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
