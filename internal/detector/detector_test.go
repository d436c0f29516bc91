package detector

import (
	"errors"
	"testing"

	"github.com/mihika/facetrace/internal/geometry"
)

func TestStandardContours_CoverAllLandmarks(t *testing.T) {
	contours := StandardContours()

	seen := make(map[int]bool)
	for _, c := range contours {
		if len(c.Indices) == 0 {
			t.Errorf("contour %s has no indices", c.Name)
		}
		for _, idx := range c.Indices {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("contour %s has out-of-range index %d", c.Name, idx)
			}
			if seen[idx] {
				t.Errorf("index %d appears in more than one contour", idx)
			}
			seen[idx] = true
		}
	}

	if len(seen) != NumLandmarks {
		t.Errorf("contours cover %d landmarks, want %d", len(seen), NumLandmarks)
	}
}

func TestStandardContours_ClosedKinds(t *testing.T) {
	closed := map[string]bool{
		"jaw":          false,
		"rightEyebrow": false,
		"leftEyebrow":  false,
		"noseBridge":   false,
		"lowerNose":    false,
		"rightEye":     true,
		"leftEye":      true,
		"outerLips":    true,
		"innerLips":    true,
	}

	for _, c := range StandardContours() {
		want, known := closed[c.Name]
		if !known {
			t.Errorf("unexpected contour %s", c.Name)
			continue
		}
		if c.Closed != want {
			t.Errorf("contour %s: closed = %v, want %v", c.Name, c.Closed, want)
		}
	}
}

func TestFrontalFaceLandmarks_Normalized(t *testing.T) {
	face := FrontalFaceLandmarks()

	for i, p := range face.Points {
		if p.X <= 0 || p.X >= 1 || p.Y <= 0 || p.Y >= 1 {
			t.Errorf("landmark %d = (%f, %f) outside (0,1)", i, p.X, p.Y)
		}
	}

	if face.Score <= 0 {
		t.Errorf("expected positive score, got %f", face.Score)
	}
}

func TestFace_BoundingRect(t *testing.T) {
	face := FrontalFaceLandmarks()
	rect := face.BoundingRect()

	if rect.Width <= 0 || rect.Height <= 0 {
		t.Fatalf("expected positive extent, got %fx%f", rect.Width, rect.Height)
	}

	// Every landmark must fall inside the rect, nose tip included.
	for i, p := range face.Points {
		if p.X < rect.X || p.X > rect.X+rect.Width ||
			p.Y < rect.Y || p.Y > rect.Y+rect.Height {
			t.Errorf("landmark %d = (%f, %f) outside bounding rect %+v", i, p.X, p.Y, rect)
		}
	}
}

func TestMockDetector_ReturnsConfiguredFaces(t *testing.T) {
	mock := NewMockDetector()
	mock.SetFaces([]Face{FrontalFaceLandmarks()})

	faces, err := mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
}

func TestMockDetector_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockDetector()
	wantErr := errors.New("engine unavailable")
	mock.SetError(wantErr)

	_, err := mock.Detect(nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}
}

func TestMockDetector_Convention(t *testing.T) {
	mock := NewMockDetector()

	if got := mock.Convention(); got != geometry.DefaultConvention() {
		t.Errorf("expected default convention, got %+v", got)
	}

	conv := geometry.Convention{Units: geometry.UnitsPixel, Rotation: geometry.RotationSeparate}
	mock.SetConvention(conv)
	if got := mock.Convention(); got != conv {
		t.Errorf("expected %+v, got %+v", conv, got)
	}
}

func TestJSONFace_TruncatesExtraPoints(t *testing.T) {
	// A service that sends more than 68 points must not overflow the array.
	jf := jsonFace{Score: 0.9}
	for i := 0; i < NumLandmarks+10; i++ {
		jf.Points = append(jf.Points, jsonPoint{X: float64(i), Y: float64(i)})
	}

	face := jf.toFace()
	if face.Points[NumLandmarks-1].X != float64(NumLandmarks-1) {
		t.Errorf("expected last landmark x %d, got %f", NumLandmarks-1, face.Points[NumLandmarks-1].X)
	}
}
