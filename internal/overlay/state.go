// Package overlay provides the shared state cell and renderer that connect
// the detection pipeline to the annotation drawing code.
package overlay

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mihika/facetrace/internal/detector"
	"github.com/mihika/facetrace/internal/geometry"
)

// published is one fully-formed value of the overlay cell. Readers always
// observe a complete published value, never a mix of two.
type published struct {
	session uuid.UUID
	seq     uint64
	result  *detector.Result
}

// State is the synchronization point between the detection producer and the
// render consumer. The producer only writes, the consumer only reads, and
// both sides are wait-free: writes replace the stored result atomically with
// most-recent-wins semantics (no queue, no back-pressure) and reads take an
// atomic snapshot at draw time.
//
// Results are tagged with the capture session and a per-session submission
// sequence so that late results from superseded submissions, or from a
// session that has already been torn down, are silently dropped.
type State struct {
	current  atomic.Pointer[published]
	viewport atomic.Pointer[geometry.Viewport]
	session  atomic.Pointer[uuid.UUID]
	redraw   chan struct{}
}

// NewState creates a State with a fresh session and an empty overlay.
func NewState() *State {
	s := &State{
		redraw: make(chan struct{}, 1),
	}
	id := uuid.New()
	s.session.Store(&id)
	s.current.Store(&published{session: id})
	return s
}

// Session returns the currently active capture session ID.
func (s *State) Session() uuid.UUID {
	return *s.session.Load()
}

// BeginSession activates a new capture session. The overlay is cleared to
// empty immediately so the renderer stops drawing stale geometry, and any
// in-flight result from a previous session is invalidated: its Publish will
// be rejected even if it completes after this call.
func (s *State) BeginSession(id uuid.UUID) {
	idCopy := id
	s.session.Store(&idCopy)
	s.current.Store(&published{session: idCopy})
	s.requestRedraw()
}

// Publish stores a detection result, replacing the current one. It returns
// false when the result is dropped: either its session is no longer active,
// or a result with an equal or newer submission sequence has already been
// published ("latest completed wins"). Publish never blocks.
func (s *State) Publish(session uuid.UUID, seq uint64, result *detector.Result) bool {
	active := s.session.Load()
	if active == nil || *active != session {
		return false
	}

	snap := &published{session: session, seq: seq, result: result}
	for {
		old := s.current.Load()
		if old != nil && old.session == session && old.seq >= seq {
			return false
		}
		if !s.current.CompareAndSwap(old, snap) {
			continue
		}

		// A session switch may have cleared the cell between the check
		// above and the swap; undo so the new session starts empty.
		if now := s.session.Load(); now == nil || *now != session {
			cleared := &published{}
			if now != nil {
				cleared.session = *now
			}
			s.current.CompareAndSwap(snap, cleared)
			return false
		}

		s.requestRedraw()
		return true
	}
}

// SetViewport updates the render target size. Viewport updates follow the
// same last-write-wins rule as results and also schedule a redraw,
// independent of detection cadence.
func (s *State) SetViewport(vp geometry.Viewport) {
	s.viewport.Store(&vp)
	s.requestRedraw()
}

// Viewport returns the current render target size, zero before the first
// layout pass.
func (s *State) Viewport() geometry.Viewport {
	vp := s.viewport.Load()
	if vp == nil {
		return geometry.Viewport{}
	}
	return *vp
}

// Snapshot returns the current result and viewport for a draw pass. The
// result is nil when the overlay is empty. The two cells are updated
// independently; each is individually fully formed but they need not have
// been written in the same instant.
func (s *State) Snapshot() (*detector.Result, geometry.Viewport) {
	cur := s.current.Load()
	if cur == nil {
		return nil, s.Viewport()
	}
	return cur.result, s.Viewport()
}

// Redraw returns the redraw signal channel. Every write schedules at most
// one pending redraw; a burst of writes between draws collapses to a single
// signal, and the draw pass reads the latest state via Snapshot.
func (s *State) Redraw() <-chan struct{} {
	return s.redraw
}

func (s *State) requestRedraw() {
	select {
	case s.redraw <- struct{}{}:
	default:
	}
}
