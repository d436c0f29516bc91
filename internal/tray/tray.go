// Package tray provides a macOS system tray interface for the FaceTrace camera overlay system.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle       func(enabled bool)
	onSwitchCamera func()
	onPreview      func()
	onQuit         func()
	enabled        bool
	mu             sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuFacing *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the annotation state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSwitchCamera sets the callback function to be called when the camera switch menu item is clicked.
func (t *Tray) OnSwitchCamera(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSwitchCamera = fn
}

// OnPreview sets the callback function to be called when the preview menu item is clicked.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	// Set the tray title and tooltip
	systray.SetTitle("FaceTrace")
	systray.SetTooltip("FaceTrace Camera Overlay")

	// Create menu items
	t.menuToggle = systray.AddMenuItem("● Annotations On", "Toggle face annotations")
	systray.AddSeparator()

	t.menuFacing = systray.AddMenuItem("Camera: front", "Active camera facing")
	t.menuFacing.Disable()
	menuSwitch := systray.AddMenuItem("Switch Camera", "Switch between front and back camera")
	systray.AddSeparator()

	menuPreview := systray.AddMenuItem("Open Preview...", "Open camera preview in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit FaceTrace")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSwitch.ClickedCh:
				t.handleSwitchCamera()
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
// It performs cleanup tasks.
func (t *Tray) onExit() {
	// Cleanup resources if needed
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	// Update menu item text based on new state
	if enabled {
		t.menuToggle.SetTitle("● Annotations On")
	} else {
		t.menuToggle.SetTitle("○ Annotations Off")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSwitchCamera handles the camera switch menu item click.
func (t *Tray) handleSwitchCamera() {
	t.mu.RLock()
	callback := t.onSwitchCamera
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handlePreview handles the preview menu item click.
func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetFacing updates the camera facing display in the menu.
func (t *Tray) SetFacing(facing string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuFacing != nil {
		t.menuFacing.SetTitle("Camera: " + facing)
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
