package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/booking"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/models"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/validate"
)

// StudentHandler serves the dashboard, the meal picker, booking history and
// the profile page.
type StudentHandler struct {
	base
	bookings *booking.Store
}

func NewStudentHandler(sessions *session.Store, client *api.Client, bookings *booking.Store) *StudentHandler {
	return &StudentHandler{base: base{sessions: sessions, api: client}, bookings: bookings}
}

func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	menus, err := h.api.StudentMenus(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/dashboard")
		return
	}
	h.bookings.Sync(sess.ID, menus)

	var booked, open int
	for _, m := range menus {
		if m.UserSelected {
			booked++
		}
		if m.SelectionWindow.Allowed {
			open++
		}
	}
	h.render(w, r, "dashboard.html", map[string]any{
		"Menus":       menus,
		"MenuCount":   len(menus),
		"BookedCount": booked,
		"OpenCount":   open,
	})
}

// Meals shows the picker. Every visit re-fetches menus so the window state
// is as fresh as the last server word; drafts for menus that closed since
// the last visit are dropped before rendering.
func (h *StudentHandler) Meals(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	menus, err := h.api.StudentMenus(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/dashboard")
		return
	}
	h.bookings.Sync(sess.ID, menus)

	data := map[string]any{"Menus": menus}
	if active, found := pickMenu(menus, r.URL.Query().Get("menu")); found {
		data["Active"] = active
		data["Draft"] = h.bookings.Open(sess.ID, active)
	}
	h.render(w, r, "meals.html", data)
}

// Toggle flips one item in the working set. The draft refuses the edit when
// the freshly fetched window is closed; the user sees why, and the set is
// left exactly as it was.
func (h *StudentHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	menuID := r.PostFormValue("menu_id")
	itemID := r.PostFormValue("item_id")
	back := "/meals?menu=" + menuID

	menus, err := h.api.StudentMenus(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, back)
		return
	}
	h.bookings.Sync(sess.ID, menus)

	menu, found := findMenu(menus, menuID)
	if !found {
		httpx.SetFlash(w, "error", "That menu is no longer available.")
		http.Redirect(w, r, "/meals", http.StatusSeeOther)
		return
	}
	draft := h.bookings.Open(sess.ID, menu)
	if err := draft.Toggle(itemID); err != nil {
		if errors.Is(err, booking.ErrWindowClosed) {
			httpx.SetFlash(w, "error", "Selection window is closed.")
		} else {
			httpx.SetFlash(w, "error", err.Error())
		}
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Confirm submits the full working set as a replacement. Empty sets and
// closed windows are rejected locally; no request leaves the process.
func (h *StudentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	menuID := r.PostFormValue("menu_id")
	back := "/meals?menu=" + menuID

	menus, err := h.api.StudentMenus(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, back)
		return
	}
	h.bookings.Sync(sess.ID, menus)

	menu, found := findMenu(menus, menuID)
	if !found {
		httpx.SetFlash(w, "error", "That menu is no longer available.")
		http.Redirect(w, r, "/meals", http.StatusSeeOther)
		return
	}
	draft := h.bookings.Open(sess.ID, menu)
	itemIDs, err := draft.Payload()
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrWindowClosed):
			httpx.SetFlash(w, "error", "Selection window is closed.")
		case errors.Is(err, booking.ErrEmptySelection):
			httpx.SetFlash(w, "error", "Select at least one item before confirming.")
		default:
			httpx.SetFlash(w, "error", err.Error())
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := h.api.SubmitSelection(r.Context(), sess.Token, menu.ID, itemIDs); err != nil {
		// The draft stays; the user can retry with the same set.
		h.fail(w, r, sess, err, back)
		return
	}
	h.bookings.Discard(sess.ID, menu.ID)
	httpx.SetFlash(w, "success", "Meal selection confirmed.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Cancel drops the working set without submitting anything.
func (h *StudentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	menuID := r.PostFormValue("menu_id")
	h.bookings.Discard(sess.ID, menuID)
	http.Redirect(w, r, "/meals?menu="+menuID, http.StatusSeeOther)
}

func (h *StudentHandler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	history, err := h.api.BookingHistory(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/dashboard")
		return
	}
	h.render(w, r, "history.html", map[string]any{"Bookings": history})
}

func (h *StudentHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "profile.html", nil)
}

// UpdateProfile patches the editable fields and re-fetches the user so the
// cached copy matches what the server now holds.
func (h *StudentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.ProfileForm{
		Name:       r.PostFormValue("name"),
		RoomNumber: r.PostFormValue("room_number"),
	}
	if v := validate.Struct(form); !v.Empty() {
		h.render(w, r, "profile.html", map[string]any{"Errors": v})
		return
	}

	update := api.ProfileUpdate{Name: form.Name, RoomNumber: form.RoomNumber}
	if picture, err := readPicture(r); err != nil {
		h.render(w, r, "profile.html", map[string]any{
			"Errors": validate.Violations{"picture": err.Error()},
		})
		return
	} else if picture != "" {
		update.ProfilePicture = picture
	}

	if _, err := h.api.UpdateProfile(r.Context(), sess.Token, update); err != nil {
		h.fail(w, r, sess, err, "/profile")
		return
	}
	if _, err := h.sessions.RefreshUser(r.Context(), w, sess.ID); err != nil {
		h.fail(w, r, sess, err, "/profile")
		return
	}
	httpx.SetFlash(w, "success", "Profile updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// readPicture turns an optional uploaded image into a data URL, or "" when
// no file was sent.
func readPicture(r *http.Request) (string, error) {
	file, _, err := r.FormFile("picture")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", errors.New("could not read the uploaded file")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, 5<<20+1))
	if err != nil {
		return "", errors.New("could not read the uploaded file")
	}
	if len(data) > 5<<20 {
		return "", errors.New("image exceeds 5MB")
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// findMenu requires an exact ID match. Mutating posts use this so a stale
// menu ID can never act on a different menu's draft.
func findMenu(menus []models.Menu, id string) (models.Menu, bool) {
	for _, m := range menus {
		if m.ID == id {
			return m, true
		}
	}
	return models.Menu{}, false
}

// pickMenu finds the requested menu, falling back to the first one. Only
// page views use the fallback; see findMenu for mutations.
func pickMenu(menus []models.Menu, id string) (models.Menu, bool) {
	if len(menus) == 0 {
		return models.Menu{}, false
	}
	if id != "" {
		if m, ok := findMenu(menus, id); ok {
			return m, true
		}
	}
	return menus[0], true
}
