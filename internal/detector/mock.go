package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// basePalm returns a right hand with wrist and knuckle positions filled in
// and all digits left at the zero value. Fixture builders place the digits.
func basePalm() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: 0.0}
	lm.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.68, Z: 0.0}
	lm.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.67, Z: 0.0}
	lm.Points[RingMCP] = Point3D{X: 0.46, Y: 0.68, Z: 0.0}
	lm.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.70, Z: 0.0}

	return lm
}

// raiseFinger places the PIP/DIP/TIP chain of the finger rooted at mcpIdx
// so the recognizer reads it as extended: the tip folds back over the PIP
// joint and ends above the knuckle.
func raiseFinger(lm *HandLandmarks, mcpIdx int) {
	mcp := lm.Points[mcpIdx]
	lm.Points[mcpIdx+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.13, Z: 0.0}
	lm.Points[mcpIdx+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.08, Z: 0.0}
	lm.Points[mcpIdx+3] = Point3D{X: mcp.X, Y: mcp.Y - 0.03, Z: 0.0}
}

// curlFinger places the PIP/DIP/TIP chain of the finger rooted at mcpIdx
// so the recognizer reads it as flexed: the tip curls down past the knuckle
// toward the palm.
func curlFinger(lm *HandLandmarks, mcpIdx int) {
	mcp := lm.Points[mcpIdx]
	lm.Points[mcpIdx+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.04, Z: -0.02}
	lm.Points[mcpIdx+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.01, Z: -0.03}
	lm.Points[mcpIdx+3] = Point3D{X: mcp.X, Y: mcp.Y + 0.02, Z: -0.02}
}

// extendThumb points the thumb away from the palm plane.
func extendThumb(lm *HandLandmarks) {
	lm.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.62, Z: -0.02}
	lm.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.55, Z: -0.04}
}

// tuckThumb folds the thumb across the palm.
func tuckThumb(lm *HandLandmarks) {
	lm.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.66, Z: 0.02}
	lm.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.64, Z: 0.04}
}

// OpenPalmLandmarks returns a preset hand with all five digits extended.
func OpenPalmLandmarks() HandLandmarks {
	lm := basePalm()
	extendThumb(&lm)
	raiseFinger(&lm, IndexMCP)
	raiseFinger(&lm, MiddleMCP)
	raiseFinger(&lm, RingMCP)
	raiseFinger(&lm, PinkyMCP)
	return lm
}

// FistLandmarks returns a preset hand with all five digits flexed.
func FistLandmarks() HandLandmarks {
	lm := basePalm()
	tuckThumb(&lm)
	curlFinger(&lm, IndexMCP)
	curlFinger(&lm, MiddleMCP)
	curlFinger(&lm, RingMCP)
	curlFinger(&lm, PinkyMCP)
	return lm
}

// ThumbsUpLandmarks returns a preset hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	lm := basePalm()
	extendThumb(&lm)
	curlFinger(&lm, IndexMCP)
	curlFinger(&lm, MiddleMCP)
	curlFinger(&lm, RingMCP)
	curlFinger(&lm, PinkyMCP)
	return lm
}

// PeaceSignLandmarks returns a preset hand with index and middle fingers
// extended and the remaining digits flexed.
func PeaceSignLandmarks() HandLandmarks {
	lm := basePalm()
	tuckThumb(&lm)
	raiseFinger(&lm, IndexMCP)
	raiseFinger(&lm, MiddleMCP)
	curlFinger(&lm, RingMCP)
	curlFinger(&lm, PinkyMCP)
	return lm
}
