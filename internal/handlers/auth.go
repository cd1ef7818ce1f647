package handlers

import (
	"net/http"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/booking"
	"github.com/mealwise/mealwise/internal/gate"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/tickets"
	"github.com/mealwise/mealwise/internal/validate"
)

// AuthHandler serves sign-in, sign-up, sign-out and the connection probe.
type AuthHandler struct {
	base
	bookings *booking.Store
	drafts   *tickets.Store
}

func NewAuthHandler(sessions *session.Store, client *api.Client, bookings *booking.Store, drafts *tickets.Store) *AuthHandler {
	return &AuthHandler{base: base{sessions: sessions, api: client}, bookings: bookings, drafts: drafts}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok && sess.User != nil {
		http.Redirect(w, r, gate.HomeFor(sess.User), http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if v := validate.Struct(form); !v.Empty() {
		h.render(w, r, "login.html", map[string]any{"Errors": v, "Email": form.Email})
		return
	}

	user, err := h.sessions.Login(r.Context(), w, form.Email, form.Password)
	if err != nil {
		// Stay on the page; the entered email survives, the password does not.
		h.render(w, r, "login.html", map[string]any{
			"Errors": validate.Violations{"form": api.UserMessage(err)},
			"Email":  form.Email,
		})
		return
	}
	http.Redirect(w, r, gate.HomeFor(user), http.StatusSeeOther)
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup.html", map[string]any{"Form": validate.SignupForm{}})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := validate.SignupForm{
		Name:       r.PostFormValue("name"),
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		HostelID:   r.PostFormValue("hostel_id"),
		RoomNumber: r.PostFormValue("room_number"),
	}
	if v := validate.Struct(form); !v.Empty() {
		h.render(w, r, "signup.html", map[string]any{"Errors": v, "Form": form})
		return
	}

	user, err := h.sessions.Register(r.Context(), w, api.RegisterRequest{
		Email:      form.Email,
		Password:   form.Password,
		Name:       form.Name,
		HostelID:   form.HostelID,
		RoomNumber: form.RoomNumber,
	})
	if err != nil {
		h.render(w, r, "signup.html", map[string]any{
			"Errors": validate.Violations{"form": api.UserMessage(err)},
			"Form":   form,
		})
		return
	}
	http.Redirect(w, r, gate.HomeFor(user), http.StatusSeeOther)
}

// Logout also drops any in-progress drafts; nothing survives sign-out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		h.bookings.DiscardAll(sess.ID)
		h.drafts.Discard(sess.ID)
		h.sessions.Logout(w, sess.ID)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Ping reports backend reachability as JSON; used by the login page's
// "Test connection" button.
func (h *AuthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	latency, err := h.sessions.Ping(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "unreachable", api.UserMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"latency_ms": latency.Milliseconds(),
	})
}
