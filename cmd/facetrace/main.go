package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mihika/facetrace/internal/app"
	"github.com/mihika/facetrace/internal/capture"
	"github.com/mihika/facetrace/internal/server"
	"github.com/mihika/facetrace/internal/store"
	"github.com/mihika/facetrace/internal/tray"
)

const serverAddr = ":8080"

func main() {
	fmt.Println("FaceTrace - Camera Face Overlay")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".facetrace")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dbDir, "facetrace.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Build the capture and detection pipeline
	a := app.New(app.Config{
		Store:         st,
		FrontDeviceID: 0,
		BackDeviceID:  1,
		InitialFacing: capture.FacingFront,
		MirrorFront:   true,
	})

	restoreSettings(st, a)

	a.OnDetectorError(func(err error) {
		log.Printf("Face detection unavailable: %v", err)
	})

	if err := a.Start(); err != nil {
		// No camera is not fatal: the API and settings UI still work.
		log.Printf("Failed to start pipeline: %v", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", serverAddr)
		if err := srv.ListenAndServe(serverAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	runTray(st, a)
}

// restoreSettings applies the persisted profile and annotation state.
func restoreSettings(st *store.Store, a *app.App) {
	if id, err := st.Settings().Get(store.SettingActiveProfile); err == nil {
		if profile, err := st.Profiles().GetByID(id); err == nil {
			if err := a.ApplyProfile(profile); err != nil {
				log.Printf("Failed to apply profile %s: %v", profile.Name, err)
			}
		} else if errors.Is(err, store.ErrNotFound) {
			st.Settings().Delete(store.SettingActiveProfile)
		}
	}

	if value, err := st.Settings().Get(store.SettingOverlayEnabled); err == nil {
		a.SetEnabled(value == "1")
	} else {
		a.SetEnabled(true)
	}
}

// runTray wires the system tray to the pipeline and blocks until quit.
func runTray(st *store.Store, a *app.App) {
	t := tray.New()

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		value := "0"
		if enabled {
			value = "1"
		}
		st.Settings().Set(store.SettingOverlayEnabled, value)
	})

	t.OnSwitchCamera(func() {
		target := capture.FacingBack
		if a.Facing() == capture.FacingBack {
			target = capture.FacingFront
		}
		if err := a.SwitchFacing(target); err != nil {
			log.Printf("Failed to switch camera: %v", err)
			return
		}
		t.SetFacing(string(a.Facing()))
	})

	t.OnPreview(func() {
		if err := exec.Command("open", "http://localhost"+serverAddr).Start(); err != nil {
			log.Printf("Failed to open preview: %v", err)
		}
	})

	t.OnQuit(func() {
		a.Stop()
	})

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.facetrace/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".facetrace", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
