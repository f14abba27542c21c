package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel is the Gaussian kernel size used to wash out sensor
	// noise before differencing.
	blurKernel = 21
	// diffThreshold is the per-pixel intensity delta that counts a
	// pixel as changed.
	diffThreshold = 25
)

// MotionDetector gates the recognizer: it compares each frame to the
// previous one and reports whether enough of the scene changed for a
// player to plausibly be moving in front of the camera.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector. The threshold is the percentage
// of the frame that must change to count as motion; 1.0 means 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect reports whether the frame differs enough from the previous one,
// along with the measured change percentage. The first frame only seeds
// the baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	smoothed := prepare(frame)
	defer smoothed.Close()

	if !m.primed {
		smoothed.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(smoothed, m.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	percent := 100.0 * float64(changed) / float64(mask.Rows()*mask.Cols())

	smoothed.CopyTo(&m.baseline)
	return percent > m.threshold, percent
}

// prepare converts a frame to blurred grayscale for differencing.
func prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	smoothed := gocv.NewMat()
	gocv.GaussianBlur(gray, &smoothed,
		image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)
	gray.Close()
	return smoothed
}

// Reset discards the baseline; the next frame seeds a fresh one. Used
// after the camera restarts so a scene cut does not read as motion.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
}

// Close releases the detector's resources.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
}

func (m *MotionDetector) discard() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold changes the motion threshold. Non-positive values are
// ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
