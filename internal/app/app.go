// Package app provides the main application logic for the FaceTrace camera
// overlay system.
package app

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/mihika/facetrace/internal/capture"
	"github.com/mihika/facetrace/internal/detector"
	"github.com/mihika/facetrace/internal/geometry"
	"github.com/mihika/facetrace/internal/overlay"
	"github.com/mihika/facetrace/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// MaxInFlight is the maximum number of concurrently running detections.
	// Frames arriving while the limit is reached are skipped, not queued.
	MaxInFlight = 2
)

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	FrontDeviceID int
	BackDeviceID  int
	RotationDeg   int
	MotionThresh  float64
	InitialFacing capture.Facing
	// MirrorFront controls whether front-facing sessions are displayed as a
	// mirror image. Fixed per session, validated against the real preview
	// rather than inferred.
	MirrorFront bool
}

// session is the per-capture-session configuration snapshot the pipeline
// tags results with. Replaced whole on a facing switch, never mutated.
type session struct {
	id       uuid.UUID
	facing   capture.Facing
	mirrored bool
}

// App orchestrates the capture, detection and overlay pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	state    *overlay.State
	conv     geometry.Convention

	session  session
	enabled  bool
	failing  bool
	onError  func(error)
	mu       sync.RWMutex
	stopCh   chan struct{}
	seq      uint64
	inFlight int
	pipeMu   sync.Mutex
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	facing := config.InitialFacing
	if facing == "" {
		facing = capture.FacingFront
	}

	a := &App{
		config: config,
		motion: capture.NewMotionDetector(motionThreshold),
		state:  overlay.NewState(),
		conv:   geometry.DefaultConvention(),
	}

	a.camera = a.cameraFor(facing)
	a.session = session{
		id:       a.state.Session(),
		facing:   facing,
		mirrored: facing == capture.FacingFront && config.MirrorFront,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		a.conv = mp.Convention()
		log.Println("Using MediaPipe face landmark detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		mock := detector.NewMockDetector()
		a.detector = mock
		a.conv = mock.Convention()
	}

	return a
}

// cameraFor builds the camera for a facing using the configured device IDs.
func (a *App) cameraFor(facing capture.Facing) capture.Camera {
	deviceID := a.config.FrontDeviceID
	if facing == capture.FacingBack {
		deviceID = a.config.BackDeviceID
	}
	return capture.NewCamera(deviceID, facing, a.config.RotationDeg)
}

// SetEnabled enables or disables face annotation. Disabling clears the
// overlay immediately so no stale geometry remains on screen.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.enabled = enabled
	if !enabled {
		a.beginSessionLocked(a.session.facing, a.session.mirrored)
	}
}

// IsEnabled returns whether face annotation is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the face detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
	a.conv = d.Convention()
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Convention returns the coordinate convention of the active detector.
func (a *App) Convention() geometry.Convention {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.conv
}

// State returns the overlay state cell shared with consumers.
func (a *App) State() *overlay.State {
	return a.state
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// SetCamera replaces the camera implementation. Intended for tests that
// substitute a MockCamera; must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Facing returns the active camera facing.
func (a *App) Facing() capture.Facing {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.facing
}

// Mirrored returns whether the active session's preview is mirrored.
func (a *App) Mirrored() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.mirrored
}

// OnDetectorError registers a callback invoked once per failure streak when
// the detection engine reports an error. The overlay keeps its last good
// value; the callback exists so the UI layer can show a one-shot notice.
func (a *App) OnDetectorError(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = fn
}

// ApplyProfile applies a stored calibration profile: camera facing,
// mirroring and the detector coordinate convention.
func (a *App) ApplyProfile(p *store.Profile) error {
	if err := a.SwitchFacing(capture.Facing(p.Facing)); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv = geometry.Convention{
		Units:    geometry.Units(p.Units),
		Rotation: geometry.RotationMode(p.RotationMode),
	}
	a.beginSessionLocked(a.session.facing, p.Mirrored)
	return nil
}

// SwitchFacing tears down the current capture session and starts one on the
// other camera. The overlay is cleared before the new session's first
// result can arrive, and any in-flight detection from the old session is
// invalidated by the session switch.
func (a *App) SwitchFacing(facing capture.Facing) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if facing == a.session.facing {
		return nil
	}

	wasOpen := a.camera.IsOpen()
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.camera = a.cameraFor(facing)
	a.motion.Reset()
	a.beginSessionLocked(facing, facing == capture.FacingFront && a.config.MirrorFront)

	if wasOpen {
		if err := a.camera.Open(); err != nil {
			return err
		}
		a.camera.SetFPS(IdleFPS)
	}

	log.Printf("Switched to %s camera (mirrored=%v)", facing, a.session.mirrored)
	return nil
}

// beginSessionLocked starts a fresh session and clears the overlay.
// Callers must hold a.mu.
func (a *App) beginSessionLocked(facing capture.Facing, mirrored bool) {
	id := uuid.New()
	a.session = session{id: id, facing: facing, mirrored: mirrored}
	a.state.BeginSession(id)
	a.failing = false
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources. The overlay is
// cleared so consumers stop drawing immediately.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the face detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.beginSessionLocked(a.session.facing, a.session.mirrored)

	log.Println("Detection pipeline stopped")
}
