package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mihika/facetrace/internal/app"
	"github.com/mihika/facetrace/internal/detector"
	"github.com/mihika/facetrace/internal/geometry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// OverlayHandler broadcasts screen-space face annotations via WebSocket.
// Unlike a fixed-rate feed, messages are driven by the overlay's redraw
// signal: one message per published result or viewport change, with bursts
// between draws collapsed to the latest state.
//
// Clients may send {"width": W, "height": H} messages to report their render
// target size; the last write wins and triggers a fresh broadcast.
type OverlayHandler struct {
	app      *app.App
	contours []detector.Contour
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewOverlayHandler creates a new OverlayHandler for the given app.
func NewOverlayHandler(a *app.App) *OverlayHandler {
	h := &OverlayHandler{
		app:      a,
		contours: detector.StandardContours(),
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// Message types sent to clients.

type contourMessage struct {
	Name   string       `json:"name"`
	Closed bool         `json:"closed"`
	Points [][2]float64 `json:"points"`
}

type faceMessage struct {
	Contours []contourMessage `json:"contours"`
	NoseTip  [2]float64       `json:"nose_tip"`
	Score    float64          `json:"score"`
}

type overlayMessage struct {
	Session   string        `json:"session"`
	Faces     []faceMessage `json:"faces"`
	Viewport  [2]float64    `json:"viewport"`
	Timestamp int64         `json:"timestamp"`
}

type viewportMessage struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *OverlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// New clients get the current overlay immediately instead of waiting
	// for the next redraw. This happens before the conn joins the broadcast
	// set: gorilla allows only one concurrent writer per connection, and
	// once registered the broadcast goroutine owns all writes.
	if err := conn.WriteMessage(websocket.TextMessage, h.buildMessage()); err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var vm viewportMessage
		if err := json.Unmarshal(data, &vm); err != nil {
			continue
		}

		vp := geometry.Viewport{Width: vm.Width, Height: vm.Height}
		if vp.Valid() {
			h.app.State().SetViewport(vp)
		}
	}
}

// broadcast sends overlay data to all connected clients on every redraw
// signal.
func (h *OverlayHandler) broadcast() {
	for range h.app.State().Redraw() {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		msg := h.buildMessage()

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// buildMessage maps the current overlay snapshot into viewport coordinates.
// An empty overlay, an unset viewport or a degenerate mapping all produce a
// message with no faces, which tells clients to clear their annotations.
func (h *OverlayHandler) buildMessage() []byte {
	result, vp := h.app.State().Snapshot()

	msg := overlayMessage{
		Session:   h.app.State().Session().String(),
		Faces:     []faceMessage{},
		Viewport:  [2]float64{vp.Width, vp.Height},
		Timestamp: time.Now().UnixMilli(),
	}

	if result != nil && h.app.IsEnabled() {
		mapper := geometry.NewMapper(result.Geometry, vp, result.Mirrored, h.app.Convention())
		if mapper.Valid() {
			for i := range result.Faces {
				if fm, ok := h.mapFace(mapper, &result.Faces[i]); ok {
					msg.Faces = append(msg.Faces, fm)
				}
			}
		}
	}

	data, _ := json.Marshal(msg)
	return data
}

// mapFace converts one face's landmarks into screen-space polylines.
func (h *OverlayHandler) mapFace(mapper geometry.Mapper, face *detector.Face) (faceMessage, bool) {
	fm := faceMessage{
		Contours: make([]contourMessage, 0, len(h.contours)),
		Score:    face.Score,
	}

	nose, ok := mapper.MapPoint(face.Points[detector.NoseTip])
	if !ok {
		return faceMessage{}, false
	}
	fm.NoseTip = [2]float64{nose.X, nose.Y}

	for _, contour := range h.contours {
		cm := contourMessage{
			Name:   contour.Name,
			Closed: contour.Closed,
			Points: make([][2]float64, 0, len(contour.Indices)),
		}
		for _, idx := range contour.Indices {
			p, ok := mapper.MapPoint(face.Points[idx])
			if !ok {
				return faceMessage{}, false
			}
			cm.Points = append(cm.Points, [2]float64{p.X, p.Y})
		}
		fm.Contours = append(fm.Contours, cm)
	}

	return fm, true
}
