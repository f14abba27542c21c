package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Mock camera errors.
var (
	ErrNoFrames     = errors.New("no frames loaded")
	ErrPlaybackDone = errors.New("frame sequence exhausted")
)

// MockCamera replays a recorded frame sequence, optionally looping.
// It stands in for the webcam in tests and headless development.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	cursor  int
	loop    bool
	running bool
}

// NewMockCamera creates a MockCamera over the given frames.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.cursor = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next recorded frame, so callers can
// close their copy like a real capture.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrames
	}

	if c.cursor >= len(c.frames) {
		if !c.loop {
			return nil, ErrPlaybackDone
		}
		c.cursor = 0
	}

	frame := c.frames[c.cursor].Clone()
	c.cursor++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {}

func (c *MockCamera) FPS() int { return 15 }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames swaps in a new sequence and rewinds.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.cursor = 0
}

// Reset rewinds playback to the first frame.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = 0
}
