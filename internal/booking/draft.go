// Package booking holds the working selection set a student edits before
// confirming a meal booking. The selection window flag is an opaque snapshot
// of what the API last reported; this package never computes windows itself.
package booking

import (
	"errors"
	"sync"
)

var (
	// ErrWindowClosed rejects any edit to a menu whose selection window the
	// API reported as closed. The draft is left untouched.
	ErrWindowClosed = errors.New("selection window is closed")
	// ErrEmptySelection rejects a confirm with no items; no network call may
	// be made for an empty set.
	ErrEmptySelection = errors.New("select at least one item")
)

// Draft is the editable working copy of one menu's selection. It is created
// from a fetched menu, mutated by toggles, and submitted wholesale as a full
// replacement set, never as a diff. Drafts are shared between overlapping
// requests of one session, so every method synchronizes.
type Draft struct {
	MenuID string

	mu       sync.Mutex
	allowed  bool // window snapshot from the fetch that produced this draft
	selected []string
	index    map[string]int
}

// NewDraft opens a menu for editing. When the student already has a booking,
// the working set starts as exactly the previously selected item IDs.
func NewDraft(menuID string, allowed bool, preselected []string) *Draft {
	d := &Draft{
		MenuID:  menuID,
		allowed: allowed,
		index:   make(map[string]int, len(preselected)),
	}
	for _, id := range preselected {
		if _, dup := d.index[id]; dup {
			continue
		}
		d.index[id] = len(d.selected)
		d.selected = append(d.selected, id)
	}
	return d
}

// Allowed reports the window snapshot this draft was opened under.
func (d *Draft) Allowed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allowed
}

func (d *Draft) setAllowed(allowed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allowed = allowed
}

// Toggle adds or removes one item. While the window is closed every toggle
// is rejected without mutating the draft.
func (d *Draft) Toggle(itemID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.allowed {
		return ErrWindowClosed
	}
	if i, ok := d.index[itemID]; ok {
		d.selected = append(d.selected[:i], d.selected[i+1:]...)
		delete(d.index, itemID)
		for j := i; j < len(d.selected); j++ {
			d.index[d.selected[j]] = j
		}
		return nil
	}
	d.index[itemID] = len(d.selected)
	d.selected = append(d.selected, itemID)
	return nil
}

// Has reports whether an item is currently in the working set.
func (d *Draft) Has(itemID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.index[itemID]
	return ok
}

func (d *Draft) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.selected) == 0
}

func (d *Draft) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.selected)
}

// Payload validates and returns the full replacement set for submission.
func (d *Draft) Payload() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.allowed {
		return nil, ErrWindowClosed
	}
	if len(d.selected) == 0 {
		return nil, ErrEmptySelection
	}
	out := make([]string, len(d.selected))
	copy(out, d.selected)
	return out, nil
}
