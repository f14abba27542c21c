package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

func TestMockCameraPlayback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := NewMockCamera(testFrames(t, 2), false)
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()

	for i := 0; i < 2; i++ {
		frame, err := c.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error: %v", i, err)
		}
		frame.Close()
	}

	// Without looping, the sequence runs out.
	if _, err := c.ReadFrame(); err == nil {
		t.Error("ReadFrame() past the end = nil error, want exhaustion")
	}
}

func TestMockCameraLoops(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := NewMockCamera(testFrames(t, 2), true)
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()

	for i := 0; i < 7; i++ {
		frame, err := c.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error with looping: %v", i, err)
		}
		frame.Close()
	}
}

func TestMockCameraClosed(t *testing.T) {
	c := NewMockCamera(nil, false)

	if c.IsOpen() {
		t.Error("IsOpen() = true before Open()")
	}
	if _, err := c.ReadFrame(); err == nil {
		t.Error("ReadFrame() on closed mock = nil error")
	}
}

func TestMockCameraReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := NewMockCamera(testFrames(t, 1), false)
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer c.Close()

	frame, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error: %v", err)
	}
	frame.Close()

	c.Reset()
	frame, err = c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset() error: %v", err)
	}
	frame.Close()
}
