// Package testdata provides synthetic camera frames for tests. Frames are
// generated rather than loaded from disk so tests do not depend on image
// assets or a camera.
package testdata

import (
	"gocv.io/x/gocv"
)

// SolidFrame returns a uniform BGR frame of the given size.
// The caller is responsible for closing the returned Mat.
func SolidFrame(width, height int, b, g, r uint8) *gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(b), float64(g), float64(r), 0),
		height, width, gocv.MatTypeCV8UC3,
	)
	return &mat
}

// MotionSequence returns count frames alternating between dark and bright,
// enough inter-frame change to keep a frame-differencing motion detector in
// active mode when played in a loop.
// The caller is responsible for closing the returned Mats.
func MotionSequence(width, height, count int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	for i := 0; i < count; i++ {
		var v uint8
		if i%2 == 1 {
			v = 255
		}
		frames = append(frames, SolidFrame(width, height, v, v, v))
	}
	return frames
}

// CloseFrames closes every frame in the sequence.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
