// Package detector provides hand acquisition: the landmark model, the
// MediaPipe-backed implementation and a scriptable mock for tests.
package detector

import "math"

// Indices into the 21-point MediaPipe hand model. Each digit runs base to
// tip: knuckle (MCP), then the two hinge joints (PIP, DIP), then the tip.
// The thumb uses CMC/MCP/IP instead.
const (
	Wrist = 0

	ThumbCMC = 1
	ThumbMCP = 2
	ThumbIP  = 3
	ThumbTip = 4

	IndexMCP = 5
	IndexPIP = 6
	IndexDIP = 7
	IndexTip = 8

	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12

	RingMCP = 13
	RingPIP = 14
	RingDIP = 15
	RingTip = 16

	PinkyMCP = 17
	PinkyPIP = 18
	PinkyDIP = 19
	PinkyTip = 20

	NumLandmarks = 21
)

// Point3D is one tracked point. X and Y are normalized to the camera
// frame with Y growing downward; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns the vector from q to p.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Dot returns the dot product of p and q.
func (p Point3D) Dot(q Point3D) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product of p and q.
func (p Point3D) Cross(q Point3D) Point3D {
	return Point3D{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point3D) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// HandLandmarks is one detected hand for one frame: the tracked points
// plus detector metadata. Hands carry no identity across frames.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}
