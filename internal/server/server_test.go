package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mihika/facetrace/internal/app"
	"github.com/mihika/facetrace/internal/capture"
	"github.com/mihika/facetrace/internal/store"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	a := app.New(app.Config{
		FrontDeviceID: 0,
		BackDeviceID:  1,
		MirrorFront:   true,
	})
	t.Cleanup(func() {
		a.Stop()
	})

	return a
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_SessionRoutesRequireApp(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/session", "/api/stream", "/api/overlay"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d without app, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_SessionGet(t *testing.T) {
	a := newTestApp(t)
	s := New(Config{App: a})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Facing != "front" {
		t.Errorf("facing = %q, want %q", response.Facing, "front")
	}
	if !response.Mirrored {
		t.Error("expected mirrored front session")
	}
	if response.Session == "" {
		t.Error("expected session ID in response")
	}
	if response.Session != a.State().Session().String() {
		t.Errorf("session = %q, want %q", response.Session, a.State().Session())
	}
}

func TestServer_SessionSwitchFacing(t *testing.T) {
	a := newTestApp(t)
	s := New(Config{App: a})

	before := a.State().Session()

	body := `{"facing": "back"}`
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response sessionResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Facing != "back" {
		t.Errorf("facing = %q, want %q", response.Facing, "back")
	}
	if response.Mirrored {
		t.Error("back session should not be mirrored")
	}
	if response.Session == before.String() {
		t.Error("facing switch should start a new session")
	}

	if a.Facing() != capture.FacingBack {
		t.Errorf("app facing = %q, want %q", a.Facing(), capture.FacingBack)
	}
}

func TestServer_SessionValidation(t *testing.T) {
	a := newTestApp(t)
	s := New(Config{App: a})

	tests := []struct {
		name string
		body string
	}{
		{"invalid facing", `{"facing": "sideways"}`},
		{"invalid JSON", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestServer_SessionToggleEnabled(t *testing.T) {
	a := newTestApp(t)
	s := New(Config{App: a})

	body := `{"enabled": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response sessionResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if !response.Enabled {
		t.Error("expected enabled after toggle")
	}
	if !a.IsEnabled() {
		t.Error("expected app enabled after toggle")
	}
}

func TestServer_SessionToggleSurvivesStoreFailure(t *testing.T) {
	a := newTestApp(t)

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	// A closed store makes every settings write fail; the toggle itself
	// must still apply and the request must still succeed.
	st.Close()

	s := New(Config{App: a, Store: st})

	body := `{"enabled": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !a.IsEnabled() {
		t.Error("expected app enabled despite store failure")
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()

	testContent := "<html><body>FaceTrace</body></html>"
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(testContent), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if rec.Body.String() != testContent {
		t.Errorf("expected body %q, got %q", testContent, rec.Body.String())
	}
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		cfg := Config{StaticDir: "/some/path"}
		s := New(cfg)

		if s == nil {
			t.Fatal("expected non-nil server")
		}

		if s.config.StaticDir != cfg.StaticDir {
			t.Errorf("expected StaticDir %s, got %s", cfg.StaticDir, s.config.StaticDir)
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}
