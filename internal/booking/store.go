package booking

import (
	"sync"

	"github.com/mealwise/mealwise/internal/models"
)

// Store keeps in-flight drafts keyed by session and menu. Drafts are the
// only mutable state the meal-selection screens own; they never outlive a
// closed window or a successful submit.
type Store struct {
	mu     sync.Mutex
	drafts map[draftKey]*Draft
}

type draftKey struct {
	sessionID string
	menuID    string
}

func NewStore() *Store {
	return &Store{drafts: make(map[draftKey]*Draft)}
}

// Open returns the session's draft for a fetched menu, creating one seeded
// from the menu's selection state if none exists. A menu whose window is now
// closed silently drops any previous edits and yields a read-only draft.
func (s *Store) Open(sessionID string, m models.Menu) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := draftKey{sessionID, m.ID}
	if !m.SelectionWindow.Allowed {
		delete(s.drafts, key)
		return NewDraft(m.ID, false, m.SelectedItemIDs)
	}
	if d, ok := s.drafts[key]; ok {
		d.setAllowed(true)
		return d
	}
	d := NewDraft(m.ID, true, m.SelectedItemIDs)
	s.drafts[key] = d
	return d
}

// Get returns an existing draft without creating one.
func (s *Store) Get(sessionID, menuID string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[draftKey{sessionID, menuID}]
	return d, ok
}

// Sync reconciles drafts against a fresh fetch: edits against menus whose
// window has closed are discarded.
func (s *Store) Sync(sessionID string, menus []models.Menu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range menus {
		if !m.SelectionWindow.Allowed {
			delete(s.drafts, draftKey{sessionID, m.ID})
		}
	}
}

// Discard drops one draft (cancel, or successful submit).
func (s *Store) Discard(sessionID, menuID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey{sessionID, menuID})
}

// DiscardAll drops every draft a session holds (logout).
func (s *Store) DiscardAll(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.drafts {
		if k.sessionID == sessionID {
			delete(s.drafts, k)
		}
	}
}
