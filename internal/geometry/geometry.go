// Package geometry provides the coordinate transforms that map detector-space
// points onto the on-screen viewport for the FaceTrace overlay.
package geometry

// Point represents a 2D point. Depending on context its coordinates are in
// detector space (normalized or pixel units) or in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents an axis-aligned rectangle by its origin and extent.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FrameGeometry describes the logical dimensions of the buffer a detection
// ran on and the rotation applied before detection. It is created once per
// detection call and carried alongside the result, so the mapper never has
// to guess which geometry produced which points.
type FrameGeometry struct {
	Width           float64
	Height          float64
	RotationDegrees int // one of 0, 90, 180, 270
}

// Valid reports whether the geometry describes a drawable buffer.
func (g FrameGeometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Viewport represents the current render target size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the viewport has a positive area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Units identifies the unit convention of detector-space point coordinates.
type Units string

const (
	// UnitsNormalized means point coordinates are in [0,1] relative to the
	// frame dimensions.
	UnitsNormalized Units = "normalized"
	// UnitsPixel means point coordinates are in frame pixels.
	UnitsPixel Units = "pixel"
)

// RotationMode identifies how the detector reports rotation.
type RotationMode string

const (
	// RotationBaked means point coordinates are already expressed in the
	// rotated (display-oriented) frame; FrameGeometry dimensions are
	// post-rotation logical dimensions.
	RotationBaked RotationMode = "baked"
	// RotationSeparate means point coordinates are in the raw, unrotated
	// buffer and FrameGeometry.RotationDegrees must be applied by the
	// mapper. A 90 or 270 degree rotation swaps the effective width and
	// height.
	RotationSeparate RotationMode = "separate"
)

// Convention describes the coordinate convention a detector emits.
// Different detectors disagree on both axes of this choice, so it is an
// explicit configuration input fixed once per capture session, never
// inferred from individual results.
type Convention struct {
	Units    Units
	Rotation RotationMode
}

// DefaultConvention returns the convention used by the bundled MediaPipe
// detector: normalized coordinates with rotation already baked in.
func DefaultConvention() Convention {
	return Convention{
		Units:    UnitsNormalized,
		Rotation: RotationBaked,
	}
}
