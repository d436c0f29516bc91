// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/geometry"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Facing identifies which camera the capture session uses. Front-facing
// previews are conventionally shown mirrored; back-facing ones are not.
type Facing string

const (
	// FacingFront is the user-facing camera.
	FacingFront Facing = "front"
	// FacingBack is the world-facing camera.
	FacingBack Facing = "back"
)

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	// Geometry reports the logical frame dimensions and the rotation the
	// device applies before frames reach the detector. Valid after Open.
	Geometry() geometry.FrameGeometry
	Facing() Facing
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID int
	facing   Facing
	rotation int
	capture  *gocv.VideoCapture
	geom     geometry.FrameGeometry
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a new Camera for the given device ID and facing.
// rotationDegrees describes how the sensor is mounted relative to the
// display (0, 90, 180 or 270); it is carried in the frame geometry so the
// coordinate mapper can compensate for detectors that do not rotate.
func NewCamera(deviceID int, facing Facing, rotationDegrees int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		facing:   facing,
		rotation: rotationDegrees,
		fps:      DefaultFPS,
	}
}

// Open opens the camera for capturing frames.
// It requests 640x480 for performance and records the dimensions the
// device actually delivers.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	// The device may not honor the requested size; trust what it reports.
	width := capture.Get(gocv.VideoCaptureFrameWidth)
	height := capture.Get(gocv.VideoCaptureFrameHeight)
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	c.geom = geometry.FrameGeometry{
		Width:           width,
		Height:          height,
		RotationDegrees: c.rotation,
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// Geometry returns the frame geometry recorded when the camera was opened.
func (c *cameraImpl) Geometry() geometry.FrameGeometry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.geom
}

// Facing returns which camera this device represents.
func (c *cameraImpl) Facing() Facing {
	return c.facing
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
