package handlers

import (
	"net/http"
	"sync"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/models"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/validate"
)

// AdminHandler serves the analytics dashboard, menu management and the
// ticket queue.
type AdminHandler struct {
	base
}

func NewAdminHandler(sessions *session.Store, client *api.Client) *AdminHandler {
	return &AdminHandler{base: base{sessions: sessions, api: client}}
}

// Dashboard fetches menus and tickets concurrently, then analytics for the
// selected menu (the first one by default). Analytics are never cached;
// every selector change is a fresh fetch.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}

	var (
		wg         sync.WaitGroup
		menus      []models.Menu
		ticketList []models.Ticket
		menusErr   error
		ticketsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		menus, menusErr = h.api.Menus(r.Context(), sess.Token)
	}()
	go func() {
		defer wg.Done()
		ticketList, ticketsErr = h.api.Tickets(r.Context(), sess.Token)
	}()
	wg.Wait()

	if menusErr != nil {
		h.fail(w, r, sess, menusErr, "/admin")
		return
	}
	if ticketsErr != nil {
		h.fail(w, r, sess, ticketsErr, "/admin")
		return
	}

	open := 0
	for _, t := range ticketList {
		if t.Status == models.TicketOpen {
			open++
		}
	}
	data := map[string]any{"Menus": menus, "OpenTickets": open}

	if menu, found := pickMenu(menus, r.URL.Query().Get("menu")); found {
		analytics, err := h.api.Analytics(r.Context(), sess.Token, menu.ID)
		if err != nil {
			h.fail(w, r, sess, err, "/admin")
			return
		}
		data["Analytics"] = analytics
	}
	h.render(w, r, "admin-dashboard.html", data)
}

func (h *AdminHandler) MenusPage(w http.ResponseWriter, r *http.Request) {
	h.renderMenus(w, r, nil, validate.MenuForm{})
}

func (h *AdminHandler) renderMenus(w http.ResponseWriter, r *http.Request, errs validate.Violations, form validate.MenuForm) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	items, err := h.api.MenuItems(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/admin")
		return
	}
	menus, err := h.api.Menus(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/admin")
		return
	}
	h.render(w, r, "admin-menus.html", map[string]any{
		"Items":     items,
		"Menus":     menus,
		"MealTypes": models.MealTypes,
		"Errors":    errs,
		"Form":      form,
	})
}

func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.MenuItemForm{
		Name:     r.PostFormValue("name"),
		Category: r.PostFormValue("category"),
		MealType: r.PostFormValue("meal_type"),
	}
	if v := validate.Struct(form); !v.Empty() {
		h.renderMenus(w, r, v, validate.MenuForm{})
		return
	}
	_, err := h.api.CreateMenuItem(r.Context(), sess.Token, api.MenuItemInput{
		Name:     form.Name,
		Category: form.Category,
		MealType: form.MealType,
	})
	if err != nil {
		h.fail(w, r, sess, err, "/admin/menus")
		return
	}
	httpx.SetFlash(w, "success", "Item added.")
	http.Redirect(w, r, "/admin/menus", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := h.api.DeleteMenuItem(r.Context(), sess.Token, r.PathValue("id")); err != nil {
		h.fail(w, r, sess, err, "/admin/menus")
		return
	}
	httpx.SetFlash(w, "success", "Item deleted.")
	http.Redirect(w, r, "/admin/menus", http.StatusSeeOther)
}

// PublishMenu creates a menu from the checked items. Items whose meal type
// does not match the chosen one are dropped before publishing, so switching
// the meal type effectively resets a cross-type selection.
func (h *AdminHandler) PublishMenu(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.MenuForm{
		Date:     r.PostFormValue("date"),
		MealType: r.PostFormValue("meal_type"),
	}
	if v := validate.Struct(form); !v.Empty() {
		h.renderMenus(w, r, v, form)
		return
	}

	items, err := h.api.MenuItems(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/admin/menus")
		return
	}
	matching := make(map[string]bool, len(items))
	for _, it := range items {
		if it.MealType == form.MealType {
			matching[it.ID] = true
		}
	}
	var itemIDs []string
	for _, id := range r.PostForm["item_ids"] {
		if matching[id] {
			itemIDs = append(itemIDs, id)
		}
	}
	if len(itemIDs) == 0 {
		h.renderMenus(w, r, validate.Violations{"item_ids": "select at least one item for this meal type"}, form)
		return
	}

	if err := h.api.PublishMenu(r.Context(), sess.Token, api.MenuInput{
		Date:     form.Date,
		MealType: form.MealType,
		ItemIDs:  itemIDs,
	}); err != nil {
		h.fail(w, r, sess, err, "/admin/menus")
		return
	}
	httpx.SetFlash(w, "success", "Menu published.")
	http.Redirect(w, r, "/admin/menus", http.StatusSeeOther)
}

func (h *AdminHandler) TicketsPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	list, err := h.api.Tickets(r.Context(), sess.Token)
	if err != nil {
		h.fail(w, r, sess, err, "/admin")
		return
	}
	h.render(w, r, "admin-tickets.html", map[string]any{
		"Tickets":  list,
		"Statuses": models.TicketStatuses,
	})
}

func (h *AdminHandler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	status := r.PostFormValue("status")
	if !models.ValidTicketStatus(status) {
		httpx.SetFlash(w, "error", "Unknown ticket status.")
		http.Redirect(w, r, "/admin/tickets", http.StatusSeeOther)
		return
	}
	if err := h.api.UpdateTicketStatus(r.Context(), sess.Token, r.PathValue("id"), status); err != nil {
		h.fail(w, r, sess, err, "/admin/tickets")
		return
	}
	httpx.SetFlash(w, "success", "Ticket updated.")
	http.Redirect(w, r, "/admin/tickets", http.StatusSeeOther)
}
