package overlay

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/mihika/facetrace/internal/detector"
	"github.com/mihika/facetrace/internal/geometry"
)

func testResult(faces int) *detector.Result {
	r := &detector.Result{
		Geometry: geometry.FrameGeometry{Width: 640, Height: 480},
	}
	for i := 0; i < faces; i++ {
		r.Faces = append(r.Faces, detector.FrontalFaceLandmarks())
	}
	return r
}

func TestState_PublishAndSnapshot(t *testing.T) {
	s := NewState()
	session := s.Session()

	result := testResult(1)
	if !s.Publish(session, 1, result) {
		t.Fatal("expected publish to succeed")
	}

	got, _ := s.Snapshot()
	if got != result {
		t.Errorf("snapshot returned %p, want %p", got, result)
	}
}

func TestState_StaleResultDropped(t *testing.T) {
	// Submissions 1 and 2 complete out of order: 2 lands first, then 1.
	// The state must retain 2's result after both deliveries.
	s := NewState()
	session := s.Session()

	second := testResult(2)
	first := testResult(1)

	if !s.Publish(session, 2, second) {
		t.Fatal("expected newer result to publish")
	}
	if s.Publish(session, 1, first) {
		t.Error("expected stale result to be dropped")
	}

	got, _ := s.Snapshot()
	if got != second {
		t.Error("state does not retain the newer result")
	}
}

func TestState_EqualSequenceDropped(t *testing.T) {
	s := NewState()
	session := s.Session()

	s.Publish(session, 1, testResult(1))
	if s.Publish(session, 1, testResult(2)) {
		t.Error("expected duplicate sequence to be dropped")
	}
}

func TestState_BeginSessionClearsOverlay(t *testing.T) {
	s := NewState()
	oldSession := s.Session()
	s.Publish(oldSession, 5, testResult(1))

	s.BeginSession(uuid.New())

	got, _ := s.Snapshot()
	if got != nil {
		t.Error("expected empty overlay after session switch")
	}
}

func TestState_InFlightResultFromOldSessionRejected(t *testing.T) {
	s := NewState()
	oldSession := s.Session()

	s.BeginSession(uuid.New())

	// A detection submitted before the switch completes afterwards.
	if s.Publish(oldSession, 99, testResult(1)) {
		t.Error("expected result from superseded session to be rejected")
	}

	got, _ := s.Snapshot()
	if got != nil {
		t.Error("stale session result leaked into the overlay")
	}
}

func TestState_NewSessionStartsSequenceFresh(t *testing.T) {
	s := NewState()
	s.Publish(s.Session(), 100, testResult(1))

	next := uuid.New()
	s.BeginSession(next)

	// Sequences are per session; low numbers from the new session publish.
	if !s.Publish(next, 1, testResult(1)) {
		t.Error("expected first result of new session to publish")
	}
}

func TestState_RedrawCoalesces(t *testing.T) {
	s := NewState()
	session := s.Session()

	// Drain the signal scheduled by NewState's initial clear, if any.
	select {
	case <-s.Redraw():
	default:
	}

	s.Publish(session, 1, testResult(1))
	s.Publish(session, 2, testResult(1))
	s.Publish(session, 3, testResult(1))

	// A burst of writes collapses to a single pending redraw.
	select {
	case <-s.Redraw():
	default:
		t.Fatal("expected a pending redraw")
	}

	select {
	case <-s.Redraw():
		t.Error("expected redraw signals to coalesce")
	default:
	}
}

func TestState_SetViewportSchedulesRedraw(t *testing.T) {
	s := NewState()

	select {
	case <-s.Redraw():
	default:
	}

	s.SetViewport(geometry.Viewport{Width: 390, Height: 844})

	select {
	case <-s.Redraw():
	default:
		t.Fatal("expected viewport update to schedule a redraw")
	}

	if vp := s.Viewport(); vp.Width != 390 || vp.Height != 844 {
		t.Errorf("unexpected viewport %+v", vp)
	}
}

func TestState_ViewportZeroBeforeLayout(t *testing.T) {
	s := NewState()
	if vp := s.Viewport(); vp.Valid() {
		t.Errorf("expected invalid viewport before layout, got %+v", vp)
	}
}

func TestState_ConcurrentPublishKeepsNewest(t *testing.T) {
	s := NewState()
	session := s.Session()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				seq := uint64(w*perWriter + i + 1)
				s.Publish(session, seq, testResult(1))
			}
		}(w)
	}
	wg.Wait()

	// The highest sequence overall must have won.
	if !s.Publish(session, writers*perWriter+1, testResult(1)) {
		t.Error("expected a strictly newer sequence to publish after the burst")
	}
	if s.Publish(session, writers*perWriter, testResult(1)) {
		t.Error("expected an older sequence to be rejected after the burst")
	}
}
