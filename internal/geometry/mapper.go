package geometry

// Mapper maps points and rectangles from detector space to viewport pixels.
//
// It is a pure value derived from its four construction inputs: the
// FrameGeometry of the producing frame, the target Viewport, the mirroring
// flag for the capture session, and the detector's coordinate Convention.
// It holds no hidden state, so it is safe to share across concurrent render
// passes and mapping the same input twice always yields the same output.
type Mapper struct {
	geom     FrameGeometry
	viewport Viewport
	mirrored bool
	conv     Convention

	effW, effH float64
	fit        Fit
}

// NewMapper builds a Mapper for one frame/viewport pairing.
//
// Mapping proceeds in order: resolve the effective source dimensions (a 90
// or 270 degree rotation reported separately swaps width and height), fit
// the effective source over the viewport with AspectFill, scale the point
// into content space honoring the axis swap, mirror horizontally within
// content bounds when the session is mirrored, and finally add the fit
// offsets.
func NewMapper(geom FrameGeometry, viewport Viewport, mirrored bool, conv Convention) Mapper {
	m := Mapper{
		geom:     geom,
		viewport: viewport,
		mirrored: mirrored,
		conv:     conv,
	}

	m.effW, m.effH = geom.Width, geom.Height
	if conv.Rotation == RotationSeparate && (geom.RotationDegrees == 90 || geom.RotationDegrees == 270) {
		m.effW, m.effH = geom.Height, geom.Width
	}

	m.fit = AspectFill(m.effW, m.effH, viewport.Width, viewport.Height)
	return m
}

// Valid reports whether the mapper can produce drawable output. It is false
// when either the frame geometry or the viewport has zero area; callers must
// skip drawing for that frame.
func (m Mapper) Valid() bool {
	return m.fit.Valid
}

// Viewport returns the viewport the mapper targets.
func (m Mapper) Viewport() Viewport {
	return m.viewport
}

// MapPoint maps a single detector-space point to viewport pixels. The
// second return value is false when the mapper is degenerate, in which case
// the zero Point is returned.
func (m Mapper) MapPoint(p Point) (Point, bool) {
	if !m.fit.Valid {
		return Point{}, false
	}

	sx, sy := m.sourcePixels(p)

	cx := sx * m.fit.Scale
	cy := sy * m.fit.Scale

	if m.mirrored {
		cx = m.effW*m.fit.Scale - cx
	}

	return Point{
		X: cx + m.fit.OffsetX,
		Y: cy + m.fit.OffsetY,
	}, true
}

// MapRect maps a detector-space rectangle to viewport pixels. The origin is
// mapped through the full point transform and the extent is recomputed by
// scaling rather than by transforming the far corner, because mirroring
// changes which corner becomes the new origin.
func (m Mapper) MapRect(r Rect) (Rect, bool) {
	if !m.fit.Valid {
		return Rect{}, false
	}

	origin, _ := m.MapPoint(Point{X: r.X, Y: r.Y})

	w, h := r.Width, r.Height
	if m.conv.Units == UnitsNormalized {
		w *= m.geom.Width
		h *= m.geom.Height
	}
	if m.conv.Rotation == RotationSeparate && (m.geom.RotationDegrees == 90 || m.geom.RotationDegrees == 270) {
		w, h = h, w
	}
	w *= m.fit.Scale
	h *= m.fit.Scale

	if m.mirrored {
		origin.X -= w
	}

	return Rect{X: origin.X, Y: origin.Y, Width: w, Height: h}, true
}

// sourcePixels resolves a detector-space point into effective source pixels,
// converting normalized units and applying the rotation when the detector
// reports it separately from the coordinates.
func (m Mapper) sourcePixels(p Point) (float64, float64) {
	sx, sy := p.X, p.Y
	if m.conv.Units == UnitsNormalized {
		sx *= m.geom.Width
		sy *= m.geom.Height
	}

	if m.conv.Rotation != RotationSeparate {
		return sx, sy
	}

	// Rotate from raw buffer axes into display orientation. The raw buffer
	// is geom.Width x geom.Height; the rotated frame is effW x effH.
	switch m.geom.RotationDegrees {
	case 90:
		return m.geom.Height - sy, sx
	case 180:
		return m.geom.Width - sx, m.geom.Height - sy
	case 270:
		return sy, m.geom.Width - sx
	default:
		return sx, sy
	}
}
