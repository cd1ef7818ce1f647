package tickets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "previews"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func previewExists(t *testing.T, s *Store, p StagedPhoto) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(s.Dir(), p.PreviewFile))
	return err == nil
}

func TestStageCreatesPreview(t *testing.T) {
	s := newTestStore(t)
	if err := s.Stage("sess", "lunch.png", bytes.NewReader(pngBytes(t, 640, 480))); err != nil {
		t.Fatalf("stage: %v", err)
	}

	d := s.View("sess")
	if len(d.Photos) != 1 {
		t.Fatalf("expected 1 staged photo, got %d", len(d.Photos))
	}
	if d.Photos[0].Name != "lunch.png" {
		t.Fatalf("unexpected name %q", d.Photos[0].Name)
	}
	if !strings.HasSuffix(d.Photos[0].PreviewFile, ".webp") {
		t.Fatalf("preview should be webp, got %q", d.Photos[0].PreviewFile)
	}
	if !previewExists(t, s, d.Photos[0]) {
		t.Fatalf("preview file missing")
	}
}

func TestStageRejectsNonImage(t *testing.T) {
	s := newTestStore(t)
	err := s.Stage("sess", "notes.txt", strings.NewReader("not an image"))
	if err != ErrNotAnImage {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if got := len(s.View("sess").Photos); got != 0 {
		t.Fatalf("nothing should be staged, got %d", got)
	}
}

func TestRemoveReleasesPreviewAndKeepsOthers(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		if err := s.Stage("sess", name, bytes.NewReader(pngBytes(t, 64, 64))); err != nil {
			t.Fatalf("stage %s: %v", name, err)
		}
	}
	before := s.View("sess").Photos
	removed := before[1]

	if err := s.Remove("sess", 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	after := s.View("sess").Photos
	if len(after) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(after))
	}
	if after[0].Name != "a.png" || after[1].Name != "c.png" {
		t.Fatalf("remaining photos changed identity: %v, %v", after[0].Name, after[1].Name)
	}
	if after[0].PreviewFile != before[0].PreviewFile || after[1].PreviewFile != before[2].PreviewFile {
		t.Fatalf("remaining previews must be unchanged")
	}
	if previewExists(t, s, removed) {
		t.Fatalf("removed preview file must be deleted")
	}

	if err := s.Remove("sess", 5); err != ErrNoSuchPhoto {
		t.Fatalf("expected ErrNoSuchPhoto, got %v", err)
	}
}

func TestEncodePhotosProducesDataURLs(t *testing.T) {
	s := newTestStore(t)
	if err := s.Stage("sess", "a.png", bytes.NewReader(pngBytes(t, 32, 32))); err != nil {
		t.Fatalf("stage: %v", err)
	}
	photos := s.EncodePhotos("sess")
	if len(photos) != 1 {
		t.Fatalf("expected 1 encoded photo, got %d", len(photos))
	}
	if !strings.HasPrefix(photos[0], "data:image/png;base64,") {
		t.Fatalf("expected png data URL, got prefix %q", photos[0][:30])
	}
	// Encoding must not consume the draft: retry after a failed submit
	// re-encodes the same set.
	if got := len(s.EncodePhotos("sess")); got != 1 {
		t.Fatalf("draft consumed by encode, got %d photos", got)
	}
}

func TestFieldsSurviveUntilDiscard(t *testing.T) {
	s := newTestStore(t)
	s.SetFields("sess", "Hygiene", "Kitchen", "critical", "flooded floor")

	d := s.View("sess")
	if d.Category != "Hygiene" || d.Urgency != "critical" || d.Description != "flooded floor" {
		t.Fatalf("fields not preserved: %+v", d)
	}

	if err := s.Stage("sess", "a.png", bytes.NewReader(pngBytes(t, 16, 16))); err != nil {
		t.Fatalf("stage: %v", err)
	}
	staged := s.View("sess").Photos

	s.Discard("sess")
	d = s.View("sess")
	if d.Category != "" || len(d.Photos) != 0 {
		t.Fatalf("discard should reset the draft: %+v", d)
	}
	if previewExists(t, s, staged[0]) {
		t.Fatalf("discard must release preview files")
	}
	// Idempotent.
	s.Discard("sess")
}

func TestPreviewOwnership(t *testing.T) {
	s := newTestStore(t)
	if err := s.Stage("s1", "a.png", bytes.NewReader(pngBytes(t, 16, 16))); err != nil {
		t.Fatalf("stage: %v", err)
	}
	p := s.View("s1").Photos[0]

	if !s.Owns("s1", p.PreviewFile) {
		t.Fatalf("owner should see its preview")
	}
	if s.Owns("s2", p.PreviewFile) {
		t.Fatalf("previews must not be visible across sessions")
	}
	if s.Owns("s1", "../"+p.PreviewFile) {
		t.Fatalf("only exact preview names may match")
	}
}

func TestDraftsIsolatedPerSession(t *testing.T) {
	s := newTestStore(t)
	s.SetFields("s1", "Service", "", "basic", "slow queue")
	if got := s.View("s2").Category; got != "" {
		t.Fatalf("sessions must not share drafts, got %q", got)
	}
}
