package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/mihika/facetrace/internal/detector"
)

// runPipeline is the capture loop that feeds frames to the detector and
// publishes results into the overlay state. It manages the transitions
// between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Submit the frame for face detection on its own goroutine, tagged with
//    the session ID and a submission sequence number
// 4. Detections complete in any order; the overlay state keeps whichever
//    completed submission has the highest sequence ("latest completed wins")
// 5. After 2s no motion, switch back to idle mode
func (a *App) runPipeline(stopCh chan struct{}) {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if annotation is disabled
			if !a.IsEnabled() {
				continue
			}

			camera := a.Camera()

			// Read a frame from the camera
			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip detection if not in active mode
			if !activeMode {
				frame.Close()
				continue
			}

			// Step 2: Submit the frame for asynchronous detection
			a.submitFrame(frame)
		}
	}
}

// submitFrame hands a frame to the detector on its own goroutine. The frame
// is skipped (not queued) when too many detections are already in flight,
// so the producer never blocks on a slow detector. Ownership of the frame
// passes to the detection goroutine.
func (a *App) submitFrame(frame *gocv.Mat) {
	a.mu.RLock()
	det := a.detector
	sess := a.session
	geom := a.camera.Geometry()
	a.mu.RUnlock()

	if det == nil || !geom.Valid() {
		frame.Close()
		return
	}

	a.pipeMu.Lock()
	if a.inFlight >= MaxInFlight {
		a.pipeMu.Unlock()
		frame.Close()
		return
	}
	a.inFlight++
	a.seq++
	seq := a.seq
	a.pipeMu.Unlock()

	go func() {
		defer func() {
			a.pipeMu.Lock()
			a.inFlight--
			a.pipeMu.Unlock()
		}()

		faces, err := det.Detect(frame)
		frame.Close()

		if err != nil {
			a.notifyDetectorError(err)
			return
		}
		a.clearDetectorError()

		result := &detector.Result{
			Faces:    faces,
			Geometry: geom,
			Mirrored: sess.mirrored,
		}

		// Publish reports false for results superseded while detecting or
		// belonging to a torn-down session; both are dropped silently.
		a.state.Publish(sess.id, seq, result)
	}()
}

// notifyDetectorError surfaces a detector failure to the UI layer once per
// failure streak. The overlay state keeps its last good value.
func (a *App) notifyDetectorError(err error) {
	a.mu.Lock()
	first := !a.failing
	a.failing = true
	fn := a.onError
	a.mu.Unlock()

	if first {
		log.Printf("Error detecting faces: %v", err)
		if fn != nil {
			fn(err)
		}
	}
}

// clearDetectorError re-arms the one-shot failure notification after a
// successful detection.
func (a *App) clearDetectorError() {
	a.mu.Lock()
	a.failing = false
	a.mu.Unlock()
}
