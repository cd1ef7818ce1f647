package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/models"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/tickets"
	"github.com/mealwise/mealwise/internal/validate"
)

// TicketHandler serves the student complaint flow: the draft form, photo
// staging and final submission.
type TicketHandler struct {
	base
	drafts *tickets.Store
}

func NewTicketHandler(sessions *session.Store, client *api.Client, drafts *tickets.Store) *TicketHandler {
	return &TicketHandler{base: base{sessions: sessions, api: client}, drafts: drafts}
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	list, err := h.api.Tickets(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/dashboard")
		return
	}
	h.render(w, r, "tickets.html", map[string]any{"Tickets": list})
}

func (h *TicketHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, sess, nil)
}

func (h *TicketHandler) renderForm(w http.ResponseWriter, r *http.Request, sess *session.Session, errs validate.Violations) {
	h.render(w, r, "ticket-new.html", map[string]any{
		"Draft":         h.drafts.View(sess.ID),
		"Categories":    models.TicketCategories,
		"UrgencyLevels": models.UrgencyLevels,
		"Errors":        errs,
	})
}

// Create submits the whole draft, photos included, in one request. A failed
// submit leaves the draft fully intact for retry; only a success clears it.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.TicketForm{
		Category:    r.PostFormValue("category"),
		SubCategory: r.PostFormValue("sub_category"),
		Urgency:     r.PostFormValue("urgency"),
		Description: r.PostFormValue("description"),
	}
	// Record the fields first so even a validation round-trip keeps them.
	h.drafts.SetFields(sess.ID, form.Category, form.SubCategory, form.Urgency, form.Description)

	v := validate.Struct(form)
	if form.Category != "" && !models.ValidTicketCategory(form.Category) {
		v["category"] = "unknown category"
	}
	if !v.Empty() {
		h.renderForm(w, r, sess, v)
		return
	}

	in := api.TicketInput{
		Category:    form.Category,
		SubCategory: form.SubCategory,
		Urgency:     form.Urgency,
		Description: form.Description,
		Photos:      h.drafts.EncodePhotos(sess.ID),
	}
	if err := h.api.CreateTicket(r.Context(), sess.Token, in); err != nil {
		h.fail(w, r, sess, err, "/tickets/new")
		return
	}
	h.drafts.Discard(sess.ID)
	httpx.SetFlash(w, "success", "Ticket submitted.")
	http.Redirect(w, r, "/tickets", http.StatusSeeOther)
}

// StagePhoto attaches one photo to the draft. Nothing is uploaded yet; the
// file is held locally until the ticket is submitted.
func (h *TicketHandler) StagePhoto(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httpx.SetFlash(w, "error", "Could not read the upload.")
		http.Redirect(w, r, "/tickets/new", http.StatusSeeOther)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		httpx.SetFlash(w, "error", "Choose a file to attach.")
		http.Redirect(w, r, "/tickets/new", http.StatusSeeOther)
		return
	}
	defer file.Close()

	switch err := h.drafts.Stage(sess.ID, header.Filename, file); {
	case errors.Is(err, tickets.ErrPhotoTooLarge):
		httpx.SetFlash(w, "error", "Photo exceeds 5MB.")
	case errors.Is(err, tickets.ErrNotAnImage):
		httpx.SetFlash(w, "error", "Only image files can be attached.")
	case err != nil:
		httpx.SetFlash(w, "error", "Could not stage the photo.")
	}
	http.Redirect(w, r, "/tickets/new", http.StatusSeeOther)
}

// Preview serves one staged thumbnail, and only to the session that staged
// it. The ownership check doubles as path sanitization: the name must match
// a stored preview filename exactly.
func (h *TicketHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	name := r.PathValue("file")
	if !h.drafts.Owns(sess.ID, name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.drafts.Dir(), name))
}

// RemovePhoto drops one staged photo by its position in the list.
func (h *TicketHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.drafts.Remove(sess.ID, index); err != nil {
		httpx.SetFlash(w, "error", "That photo is no longer staged.")
	}
	http.Redirect(w, r, "/tickets/new", http.StatusSeeOther)
}
