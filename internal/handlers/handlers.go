// Package handlers wires the HTTP surface: it parses forms, talks to the
// meal API with the session's token, and renders pages. No business rules
// live here; rejected operations come back from the API or from the local
// draft stores.
package handlers

import (
	"net/http"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/view"
)

// base carries the collaborators every handler needs.
type base struct {
	sessions *session.Store
	api      *api.Client
}

// render executes a page with the session user and any pending flash
// injected. Extra data wins on key collisions.
func (b base) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		if sess, found := session.FromContext(r.Context()); found {
			data["User"] = sess.User
		} else {
			data["User"] = nil
		}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = httpx.TakeFlash(w, r)
	}
	if err := view.Render(w, r, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// fail translates an API failure into navigation. A 401 is the session-expiry
// signal: the session is destroyed and the user lands on the login page.
// Anything else keeps the session and redirects back with the error flashed.
func (b base) fail(w http.ResponseWriter, r *http.Request, sess *session.Session, err error, backTo string) {
	if api.IsUnauthorized(err) {
		if sess != nil {
			b.sessions.Logout(w, sess.ID)
		}
		httpx.SetFlash(w, "error", "Your session has expired. Please sign in again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	httpx.SetFlash(w, "error", api.UserMessage(err))
	http.Redirect(w, r, backTo, http.StatusSeeOther)
}

// mustSession returns the request's session; the route guard guarantees it
// exists on protected routes, so absence is a programming error worth a 500.
func (b base) mustSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok || sess == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}
