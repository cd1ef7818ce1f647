package booking

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealwise/mealwise/internal/models"
)

func openMenu(id string, selected ...string) models.Menu {
	return models.Menu{
		ID:              id,
		SelectionWindow: models.SelectionWindow{Allowed: true},
		UserSelected:    len(selected) > 0,
		SelectedItemIDs: selected,
	}
}

func closedMenu(id string, selected ...string) models.Menu {
	m := openMenu(id, selected...)
	m.SelectionWindow.Allowed = false
	return m
}

func TestDraftPrepopulatesFromExistingBooking(t *testing.T) {
	d := NewDraft("m1", true, []string{"A", "B"})
	require.Equal(t, 2, d.Count())
	assert.True(t, d.Has("A"))
	assert.True(t, d.Has("B"))
	assert.False(t, d.Has("C"))
}

func TestToggleRejectedWhileWindowClosed(t *testing.T) {
	d := NewDraft("m1", false, []string{"A"})
	err := d.Toggle("B")
	require.ErrorIs(t, err, ErrWindowClosed)
	// no mutation
	assert.False(t, d.Has("B"))
	assert.Equal(t, 1, d.Count())

	_, err = d.Payload()
	require.ErrorIs(t, err, ErrWindowClosed)
}

func TestEmptySubmitRejected(t *testing.T) {
	d := NewDraft("m1", true, nil)
	_, err := d.Payload()
	require.ErrorIs(t, err, ErrEmptySelection)
}

func TestToggleOnThenOffRestoresOriginalSet(t *testing.T) {
	d := NewDraft("m1", true, []string{"A", "B"})
	require.NoError(t, d.Toggle("C"))
	require.NoError(t, d.Toggle("C"))

	got, err := d.Payload()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestPayloadIsFullReplacementSet(t *testing.T) {
	d := NewDraft("m1", true, []string{"A", "B"})
	require.NoError(t, d.Toggle("A")) // off
	require.NoError(t, d.Toggle("C")) // on

	got, err := d.Payload()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)

	// Payload returns a copy; later toggles must not alias it.
	require.NoError(t, d.Toggle("D"))
	assert.Equal(t, []string{"B", "C"}, got)
}

func TestDraftDeduplicatesPreselection(t *testing.T) {
	d := NewDraft("m1", true, []string{"A", "A", "B"})
	got, err := d.Payload()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestConcurrentTogglesAreSafe(t *testing.T) {
	d := NewDraft("m1", true, nil)

	// Overlapping requests from one session share the draft; an even number
	// of toggles per item must leave the set empty regardless of interleaving.
	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", n)
			for i := 0; i < 100; i++ {
				_ = d.Toggle(id) // never errors while the window is open
			}
		}(n)
	}
	wg.Wait()

	assert.True(t, d.Empty())
	assert.Equal(t, 0, d.Count())
}

func TestStoreOpenReusesDraftWhileWindowOpen(t *testing.T) {
	s := NewStore()
	d := s.Open("sess", openMenu("m1", "A"))
	require.NoError(t, d.Toggle("B"))

	again := s.Open("sess", openMenu("m1", "A"))
	assert.Same(t, d, again)
	assert.True(t, again.Has("B"))
}

func TestStoreDiscardsEditsWhenWindowCloses(t *testing.T) {
	s := NewStore()
	d := s.Open("sess", openMenu("m1", "A"))
	require.NoError(t, d.Toggle("B"))

	// Next fetch reports the window closed: edits are dropped silently and
	// the returned draft reflects only the server state.
	ro := s.Open("sess", closedMenu("m1", "A"))
	assert.False(t, ro.Allowed())
	assert.False(t, ro.Has("B"))

	_, ok := s.Get("sess", "m1")
	assert.False(t, ok, "closed-window draft must not be retained")
}

func TestStoreSyncDropsClosedMenus(t *testing.T) {
	s := NewStore()
	s.Open("sess", openMenu("m1"))
	s.Open("sess", openMenu("m2"))

	s.Sync("sess", []models.Menu{closedMenu("m1"), openMenu("m2")})

	if _, ok := s.Get("sess", "m1"); ok {
		t.Fatalf("m1 draft should be discarded after window closed")
	}
	if _, ok := s.Get("sess", "m2"); !ok {
		t.Fatalf("m2 draft should survive")
	}
}

func TestStoreIsolatesSessions(t *testing.T) {
	s := NewStore()
	d1 := s.Open("s1", openMenu("m1"))
	require.NoError(t, d1.Toggle("A"))

	d2 := s.Open("s2", openMenu("m1"))
	assert.False(t, d2.Has("A"))

	s.DiscardAll("s1")
	if _, ok := s.Get("s1", "m1"); ok {
		t.Fatalf("s1 drafts should be gone")
	}
	if _, ok := s.Get("s2", "m1"); !ok {
		t.Fatalf("s2 drafts should remain")
	}
}
