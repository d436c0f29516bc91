package geometry

// Fit describes an aspect-fill placement of a source rectangle inside a
// destination viewport: the source scaled uniformly by Scale and translated
// by (OffsetX, OffsetY) exactly covers the destination on the binding axis
// and overflows it symmetrically on the other.
type Fit struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Valid   bool
}

// AspectFill computes the fill-and-crop placement of a srcW x srcH source
// inside a dstW x dstH destination, preserving aspect ratio and centering.
//
// If the source is relatively wider than the destination, the height is the
// binding constraint and the horizontal overflow is split evenly; otherwise
// the width binds and the vertical overflow is split.
//
// Any non-positive dimension yields Fit{Valid: false}; callers must treat
// that as "do not draw" rather than dividing by zero.
func AspectFill(srcW, srcH, dstW, dstH float64) Fit {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Fit{}
	}

	var fit Fit
	fit.Valid = true

	if srcW/srcH > dstW/dstH {
		fit.Scale = dstH / srcH
		fit.OffsetX = (dstW - srcW*fit.Scale) / 2
	} else {
		fit.Scale = dstW / srcW
		fit.OffsetY = (dstH - srcH*fit.Scale) / 2
	}

	return fit
}

// ContentSize returns the dimensions of the scaled source, i.e. the content
// rectangle the fit places over the destination.
func (f Fit) ContentSize(srcW, srcH float64) (float64, float64) {
	if !f.Valid {
		return 0, 0
	}
	return srcW * f.Scale, srcH * f.Scale
}
