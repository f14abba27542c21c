// Package capture provides webcam acquisition and the motion gate that
// keeps the recognizer idle while nobody is playing.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. Acquisition starts at the idle rate; the tick loop
// raises it once motion is seen.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when reading from a camera that has not
// been opened.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is a frame source. The webcam is the production implementation;
// MockCamera replays recorded frames in tests.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam reads frames from a video device through GoCV.
type webcam struct {
	deviceID int

	mu  sync.Mutex
	dev *gocv.VideoCapture
	fps int
}

// NewCamera returns a Camera for the given device ID. The device is not
// touched until Open.
func NewCamera(deviceID int) Camera {
	return &webcam{deviceID: deviceID, fps: DefaultFPS}
}

// Open claims the device and applies the capture resolution and rate.
// Opening an already-open camera is a no-op.
func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev != nil {
		return nil
	}

	dev, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	dev.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	dev.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	dev.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.dev = dev
	return nil
}

// Close releases the device. Safe to call on a closed camera.
func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil
	}

	err := c.dev.Close()
	c.dev = nil
	return err
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must
// close it.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if !c.dev.Read(&mat) {
		mat.Close()
		return nil, errors.New("read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("camera produced an empty frame")
	}
	return &mat, nil
}

// SetFPS changes the capture rate. Non-positive rates are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.dev != nil {
		c.dev.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the configured capture rate.
func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is currently claimed.
func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev != nil
}
