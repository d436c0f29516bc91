package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/detector"
	"github.com/mihika/facetrace/internal/geometry"
)

// Style holds the drawing parameters for face annotations.
type Style struct {
	ContourColor color.RGBA
	MarkerColor  color.RGBA
	Thickness    int
	MarkerRadius int
}

// DefaultStyle returns the standard annotation style: green contours with a
// red nose-tip marker.
func DefaultStyle() Style {
	return Style{
		ContourColor: color.RGBA{R: 0, G: 220, B: 120, A: 255},
		MarkerColor:  color.RGBA{R: 230, G: 60, B: 60, A: 255},
		Thickness:    2,
		MarkerRadius: 3,
	}
}

// Renderer draws face annotations onto a canvas. It is stateless given its
// inputs: every draw pass builds a fresh Mapper from the result's geometry
// and the viewport, so it is safe to call from concurrent render passes.
// Drawing never mutates the State or the Result.
type Renderer struct {
	style    Style
	contours []detector.Contour
}

// NewRenderer creates a Renderer using the 68-point standard contours.
func NewRenderer(style Style) *Renderer {
	return &Renderer{
		style:    style,
		contours: detector.StandardContours(),
	}
}

// Draw renders every face of the result onto the canvas: each named contour
// as a connected open or closed path, plus the nose tip as a filled marker.
//
// A nil or empty result draws nothing, which clears prior annotations since
// each pass starts from a fresh canvas. A degenerate frame geometry or
// viewport skips the pass entirely rather than producing garbage geometry.
func (r *Renderer) Draw(canvas *gocv.Mat, result *detector.Result, viewport geometry.Viewport, conv geometry.Convention) {
	if canvas == nil || result == nil {
		return
	}

	mapper := geometry.NewMapper(result.Geometry, viewport, result.Mirrored, conv)
	if !mapper.Valid() {
		return
	}

	for i := range result.Faces {
		face := &result.Faces[i]

		for _, contour := range r.contours {
			r.drawContour(canvas, mapper, face, contour)
		}

		if p, ok := mapper.MapPoint(face.Points[detector.NoseTip]); ok {
			gocv.Circle(canvas, image.Pt(int(p.X), int(p.Y)), r.style.MarkerRadius, r.style.MarkerColor, -1)
		}
	}
}

// drawContour strokes one polyline of a face through the mapper.
func (r *Renderer) drawContour(canvas *gocv.Mat, mapper geometry.Mapper, face *detector.Face, contour detector.Contour) {
	if len(contour.Indices) < 2 {
		return
	}

	mapped := make([]image.Point, 0, len(contour.Indices))
	for _, idx := range contour.Indices {
		p, ok := mapper.MapPoint(face.Points[idx])
		if !ok {
			return
		}
		mapped = append(mapped, image.Pt(int(p.X), int(p.Y)))
	}

	for i := 1; i < len(mapped); i++ {
		gocv.Line(canvas, mapped[i-1], mapped[i], r.style.ContourColor, r.style.Thickness)
	}
	if contour.Closed {
		gocv.Line(canvas, mapped[len(mapped)-1], mapped[0], r.style.ContourColor, r.style.Thickness)
	}
}
