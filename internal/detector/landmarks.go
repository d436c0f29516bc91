// Package detector provides face landmark detection interfaces and types for
// the FaceTrace overlay.
package detector

import "github.com/mihika/facetrace/internal/geometry"

// Face landmark indices following the 68-point iBUG 300-W convention used
// by dlib-style landmark models.
// See: https://ibug.doc.ic.ac.uk/resources/facial-point-annotations/
const (
	JawStart          = 0
	JawEnd            = 16
	RightEyebrowStart = 17
	RightEyebrowEnd   = 21
	LeftEyebrowStart  = 22
	LeftEyebrowEnd    = 26
	NoseBridgeStart   = 27
	NoseBridgeEnd     = 30
	LowerNoseStart    = 31
	LowerNoseEnd      = 35
	RightEyeStart     = 36
	RightEyeEnd       = 41
	LeftEyeStart      = 42
	LeftEyeEnd        = 47
	OuterLipsStart    = 48
	OuterLipsEnd      = 59
	InnerLipsStart    = 60
	InnerLipsEnd      = 67
	NoseTip           = 33
	NumLandmarks      = 68
)

// Contour is a named polyline over a face's landmark points, drawn as a
// connected open or closed path.
type Contour struct {
	Name    string `json:"name"`
	Closed  bool   `json:"closed"`
	Indices []int  `json:"-"`
}

// StandardContours returns the contours of the 68-point convention. Eyes and
// lips are closed curves; the jaw line, eyebrows and nose are open.
func StandardContours() []Contour {
	return []Contour{
		{Name: "jaw", Closed: false, Indices: indexRange(JawStart, JawEnd)},
		{Name: "rightEyebrow", Closed: false, Indices: indexRange(RightEyebrowStart, RightEyebrowEnd)},
		{Name: "leftEyebrow", Closed: false, Indices: indexRange(LeftEyebrowStart, LeftEyebrowEnd)},
		{Name: "noseBridge", Closed: false, Indices: indexRange(NoseBridgeStart, NoseBridgeEnd)},
		{Name: "lowerNose", Closed: false, Indices: indexRange(LowerNoseStart, LowerNoseEnd)},
		{Name: "rightEye", Closed: true, Indices: indexRange(RightEyeStart, RightEyeEnd)},
		{Name: "leftEye", Closed: true, Indices: indexRange(LeftEyeStart, LeftEyeEnd)},
		{Name: "outerLips", Closed: true, Indices: indexRange(OuterLipsStart, OuterLipsEnd)},
		{Name: "innerLips", Closed: true, Indices: indexRange(InnerLipsStart, InnerLipsEnd)},
	}
}

func indexRange(start, end int) []int {
	indices := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		indices = append(indices, i)
	}
	return indices
}

// Face represents one detected face: the 68 landmark points in detector
// space plus the detection confidence. Face order within a result is
// detector-defined and not stable across frames; faces carry no persistent
// identity.
type Face struct {
	Points [NumLandmarks]geometry.Point `json:"points"`
	Score  float64                      `json:"score"`
}

// BoundingRect computes the tight bounding rectangle around all landmarks,
// in the same detector space as the points.
func (f *Face) BoundingRect() geometry.Rect {
	minX, minY := f.Points[0].X, f.Points[0].Y
	maxX, maxY := minX, minY

	for _, p := range f.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Result is the snapshot produced for exactly one input buffer: the detected
// faces tagged with the frame geometry that produced them and the session's
// mirroring flag. Superseded results are discarded whole, never merged.
type Result struct {
	Faces    []Face
	Geometry geometry.FrameGeometry
	Mirrored bool
}
