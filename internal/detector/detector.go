package detector

import "gocv.io/x/gocv"

// Detector turns a camera frame into zero or more hand landmark sets.
// An empty result means no hand was visible.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes hand detection.
type Config struct {
	// MaxHands caps how many hands are reported per frame.
	MaxHands int
	// MinConfidence discards detections scored below this value.
	MinConfidence float64
	// MinTrackingConf is the tracking threshold forwarded to the backend.
	MinTrackingConf float64
}

// DefaultConfig is tuned for a single player in front of the camera.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.6,
		MinTrackingConf: 0.6,
	}
}
