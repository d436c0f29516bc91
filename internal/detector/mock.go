package detector

import (
	"math"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/geometry"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	faces []Face
	conv  geometry.Convention
	err   error
}

// NewMockDetector creates a new MockDetector instance emitting
// normalized, rotation-baked coordinates.
func NewMockDetector() *MockDetector {
	return &MockDetector{
		conv: geometry.DefaultConvention(),
	}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []Face) {
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// SetConvention overrides the coordinate convention the mock reports.
func (m *MockDetector) SetConvention(conv geometry.Convention) {
	m.conv = conv
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Face, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.faces, nil
}

// Convention returns the configured coordinate convention.
func (m *MockDetector) Convention() geometry.Convention {
	return m.conv
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FrontalFaceLandmarks returns a preset Face representing a frontal face
// centered in the frame, with all 68 landmarks in normalized coordinates.
// The layout is synthetic but respects the convention's ordering: jaw along
// the lower face ellipse, eyebrows above the eyes, nose down the center,
// eyes and lips as closed rings.
func FrontalFaceLandmarks() Face {
	face := Face{Score: 0.95}

	const (
		cx = 0.5
		cy = 0.5
	)

	// Jaw: ear to ear along the lower half of the face ellipse.
	for i := 0; i <= JawEnd; i++ {
		theta := math.Pi * float64(i) / float64(JawEnd)
		face.Points[JawStart+i] = geometry.Point{
			X: cx - 0.18*math.Cos(theta),
			Y: cy + 0.24*math.Sin(theta),
		}
	}

	// Eyebrows: shallow arcs above each eye.
	for i := 0; i < 5; i++ {
		t := float64(i) / 4
		face.Points[RightEyebrowStart+i] = geometry.Point{
			X: 0.36 + 0.10*t,
			Y: 0.38 - 0.02*math.Sin(math.Pi*t),
		}
		face.Points[LeftEyebrowStart+i] = geometry.Point{
			X: 0.54 + 0.10*t,
			Y: 0.38 - 0.02*math.Sin(math.Pi*t),
		}
	}

	// Nose bridge: vertical line down the center.
	for i := 0; i < 4; i++ {
		face.Points[NoseBridgeStart+i] = geometry.Point{
			X: cx,
			Y: 0.42 + 0.04*float64(i),
		}
	}

	// Lower nose: nostril line through the nose tip.
	for i := 0; i < 5; i++ {
		face.Points[LowerNoseStart+i] = geometry.Point{
			X: cx + 0.03*(float64(i)-2),
			Y: 0.575,
		}
	}

	// Eyes: six points around each eye ellipse.
	for i := 0; i < 6; i++ {
		theta := 2 * math.Pi * float64(i) / 6
		face.Points[RightEyeStart+i] = geometry.Point{
			X: 0.41 + 0.035*math.Cos(theta),
			Y: 0.445 + 0.015*math.Sin(theta),
		}
		face.Points[LeftEyeStart+i] = geometry.Point{
			X: 0.59 + 0.035*math.Cos(theta),
			Y: 0.445 + 0.015*math.Sin(theta),
		}
	}

	// Lips: outer ring of twelve, inner ring of eight.
	for i := 0; i < 12; i++ {
		theta := 2 * math.Pi * float64(i) / 12
		face.Points[OuterLipsStart+i] = geometry.Point{
			X: cx + 0.06*math.Cos(theta),
			Y: 0.65 + 0.025*math.Sin(theta),
		}
	}
	for i := 0; i < 8; i++ {
		theta := 2 * math.Pi * float64(i) / 8
		face.Points[InnerLipsStart+i] = geometry.Point{
			X: cx + 0.035*math.Cos(theta),
			Y: 0.65 + 0.012*math.Sin(theta),
		}
	}

	return face
}
