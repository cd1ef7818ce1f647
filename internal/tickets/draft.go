// Package tickets stages a support-ticket draft before submission. Photos
// are held as raw bytes plus a locally generated preview thumbnail; the
// preview is a scoped resource, released on removal, discard, and shutdown.
// Nothing leaves this process until the whole draft is submitted atomically.
package tickets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// maxPhotoSize caps a single staged file (the upload form advertises 5MB).
const maxPhotoSize = 5 << 20

const (
	previewMaxSize = 320
	previewQuality = 80
)

var (
	ErrPhotoTooLarge = errors.New("photo exceeds 5MB")
	ErrNotAnImage    = errors.New("file is not a supported image")
	ErrNoSuchPhoto   = errors.New("no staged photo at that index")
)

// StagedPhoto is one not-yet-submitted attachment.
type StagedPhoto struct {
	Name        string // display name from the upload
	PreviewFile string // webp thumbnail filename under the store's dir
	data        []byte
	contentType string
}

// Draft is a per-session ticket in progress. Form fields are kept so a
// failed submit preserves everything for retry.
type Draft struct {
	Category    string
	SubCategory string
	Urgency     string
	Description string
	Photos      []StagedPhoto
}

// Store owns all drafts and the preview directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	drafts map[string]*Draft
}

// NewStore creates the preview directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &Store{dir: dir, drafts: make(map[string]*Draft)}, nil
}

// Dir is the directory previews are served from.
func (s *Store) Dir() string { return s.dir }

// View returns a copy of the session's draft for rendering.
func (s *Store) View(sessionID string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft(sessionID)
	out := *d
	out.Photos = append([]StagedPhoto(nil), d.Photos...)
	return out
}

// SetFields records the form fields so they survive a failed submit.
func (s *Store) SetFields(sessionID, category, subCategory, urgency, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft(sessionID)
	d.Category = category
	d.SubCategory = subCategory
	d.Urgency = urgency
	d.Description = description
}

// Stage appends one photo: the raw bytes are kept for submission and a webp
// thumbnail is written as the local preview. Staging is append-only.
func (s *Store) Stage(sessionID, name string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxPhotoSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxPhotoSize {
		return ErrPhotoTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return ErrNotAnImage
	}
	thumb := imaging.Fit(img, previewMaxSize, previewMaxSize, imaging.Lanczos)

	previewFile := uuid.NewString() + ".webp"
	f, err := os.Create(filepath.Join(s.dir, previewFile))
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := webp.Encode(f, thumb, &webp.Options{Quality: previewQuality}); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("write preview: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft(sessionID)
	d.Photos = append(d.Photos, StagedPhoto{
		Name:        name,
		PreviewFile: previewFile,
		data:        data,
		contentType: http.DetectContentType(data),
	})
	return nil
}

// Remove drops the staged photo at index and releases its preview file.
// Other entries keep their identity; the list is index-addressed only.
func (s *Store) Remove(sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft(sessionID)
	if index < 0 || index >= len(d.Photos) {
		return ErrNoSuchPhoto
	}
	s.release(d.Photos[index])
	d.Photos = append(d.Photos[:index], d.Photos[index+1:]...)
	return nil
}

// Owns reports whether the named preview file belongs to the session's
// draft. Previews are only served to the session that staged them.
func (s *Store) Owns(sessionID, previewFile string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[sessionID]
	if !ok {
		return false
	}
	for _, p := range d.Photos {
		if p.PreviewFile == previewFile {
			return true
		}
	}
	return false
}

// EncodePhotos converts every staged file into a self-contained data URL in
// staging order. The draft itself is untouched; callers discard it only
// after the API accepts the whole ticket.
func (s *Store) EncodePhotos(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft(sessionID)
	out := make([]string, 0, len(d.Photos))
	for _, p := range d.Photos {
		out = append(out, "data:"+p.contentType+";base64,"+base64.StdEncoding.EncodeToString(p.data))
	}
	return out
}

// Discard drops the session's draft and releases every preview. Idempotent.
func (s *Store) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[sessionID]; ok {
		for _, p := range d.Photos {
			s.release(p)
		}
		delete(s.drafts, sessionID)
	}
}

// Close releases every draft's previews; called on shutdown so no preview
// file outlives the process.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, d := range s.drafts {
		for _, p := range d.Photos {
			s.release(p)
		}
		delete(s.drafts, sid)
	}
}

func (s *Store) draft(sessionID string) *Draft {
	d, ok := s.drafts[sessionID]
	if !ok {
		d = &Draft{Urgency: "basic"}
		s.drafts[sessionID] = d
	}
	return d
}

func (s *Store) release(p StagedPhoto) {
	if p.PreviewFile != "" {
		os.Remove(filepath.Join(s.dir, p.PreviewFile))
	}
}
