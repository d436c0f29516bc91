package detector

import (
	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/geometry"
)

// Detector defines the interface for face landmark detection
// implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected face landmarks.
	// Returns an empty slice if no faces are detected.
	Detect(frame *gocv.Mat) ([]Face, error)

	// Convention reports the coordinate convention of the points this
	// detector emits. Fixed for the detector's lifetime.
	Convention() geometry.Convention

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face landmark detection.
type Config struct {
	// MaxFaces is the maximum number of faces to detect (default: 4).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:      4,
		MinConfidence: 0.5,
	}
}
