package server

import (
	"fmt"
	"image"
	"math"
	"net/http"
	"strconv"
	"time"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/app"
	"github.com/mihika/facetrace/internal/geometry"
	"github.com/mihika/facetrace/internal/overlay"
)

// StreamHandler serves the annotated camera preview as an MJPEG stream. Each
// request carries its own viewport via the w and h query parameters; frames
// are cropped to fill that viewport and annotations are drawn in the same
// viewport coordinates, so landmarks land on the faces they belong to.
type StreamHandler struct {
	app      *app.App
	renderer *overlay.Renderer
}

// NewStreamHandler creates a new StreamHandler for the given app.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{
		app:      a,
		renderer: overlay.NewRenderer(overlay.DefaultStyle()),
	}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vp, err := viewportFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.app.Camera().ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		target := vp
		if !target.Valid() {
			// No explicit viewport: stream at the camera's native size.
			target = geometry.Viewport{
				Width:  float64(frame.Cols()),
				Height: float64(frame.Rows()),
			}
		}

		canvas, ok := fitFrame(frame, target, h.app.Mirrored())
		frame.Close()
		if !ok {
			continue
		}

		if h.app.IsEnabled() {
			result, _ := h.app.State().Snapshot()
			h.renderer.Draw(&canvas, result, target, h.app.Convention())
		}

		buf, err := gocv.IMEncode(".jpg", canvas)
		canvas.Close()
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(66 * time.Millisecond) // ~15 FPS
	}
}

// viewportFromQuery parses the optional w and h query parameters. Both absent
// means "native size"; a present but non-positive dimension is an error.
func viewportFromQuery(r *http.Request) (geometry.Viewport, error) {
	wStr := r.URL.Query().Get("w")
	hStr := r.URL.Query().Get("h")
	if wStr == "" && hStr == "" {
		return geometry.Viewport{}, nil
	}

	width, err := strconv.ParseFloat(wStr, 64)
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("invalid w parameter")
	}
	height, err := strconv.ParseFloat(hStr, 64)
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("invalid h parameter")
	}

	vp := geometry.Viewport{Width: width, Height: height}
	if !vp.Valid() {
		return geometry.Viewport{}, fmt.Errorf("viewport dimensions must be positive")
	}
	return vp, nil
}

// fitFrame scales and crops a camera frame so it exactly fills the viewport,
// preserving aspect ratio and cropping the overflow symmetrically. The result
// is flipped horizontally when the session is mirrored, matching the
// mirroring the coordinate mapper applies to landmark positions.
func fitFrame(frame *gocv.Mat, vp geometry.Viewport, mirrored bool) (gocv.Mat, bool) {
	srcW := float64(frame.Cols())
	srcH := float64(frame.Rows())

	fit := geometry.AspectFill(srcW, srcH, vp.Width, vp.Height)
	if !fit.Valid {
		return gocv.Mat{}, false
	}

	contentW, contentH := fit.ContentSize(srcW, srcH)

	resized := gocv.NewMat()
	gocv.Resize(*frame, &resized,
		image.Pt(int(math.Ceil(contentW)), int(math.Ceil(contentH))), 0, 0,
		gocv.InterpolationLinear)

	// Cover-mode offsets are non-positive: the viewport is a centered
	// window into the scaled content. Clamp against rounding.
	x := clamp(int(-fit.OffsetX), 0, resized.Cols()-int(vp.Width))
	y := clamp(int(-fit.OffsetY), 0, resized.Rows()-int(vp.Height))

	region := resized.Region(image.Rect(x, y, x+int(vp.Width), y+int(vp.Height)))
	canvas := region.Clone()
	region.Close()
	resized.Close()

	if mirrored {
		flipped := gocv.NewMat()
		gocv.Flip(canvas, &flipped, 1)
		canvas.Close()
		canvas = flipped
	}

	return canvas, true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
