package main

import (
	"net/http"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/booking"
	"github.com/mealwise/mealwise/internal/gate"
	"github.com/mealwise/mealwise/internal/handlers"
	"github.com/mealwise/mealwise/internal/httpx"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/tickets"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	sessions *session.Store
}

// NewApp creates a new application with all routes configured.
func NewApp(sessions *session.Store, client *api.Client, bookings *booking.Store, drafts *tickets.Store) *App {
	app := &App{mux: http.NewServeMux(), sessions: sessions}

	ah := handlers.NewAuthHandler(sessions, client, bookings, drafts)
	sh := handlers.NewStudentHandler(sessions, client, bookings)
	th := handlers.NewTicketHandler(sessions, client, drafts)
	adh := handlers.NewAdminHandler(sessions, client)

	// Public routes
	app.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	app.mux.HandleFunc("GET /login", ah.LoginPage)
	app.mux.HandleFunc("POST /login", ah.Login)
	app.mux.HandleFunc("GET /signup", ah.SignupPage)
	app.mux.HandleFunc("POST /signup", ah.Signup)
	app.mux.HandleFunc("POST /logout", ah.Logout)
	app.mux.HandleFunc("GET /ping", ah.Ping)

	// Student routes
	app.mux.Handle("GET /dashboard", app.requireAuth(http.HandlerFunc(sh.Dashboard)))
	app.mux.Handle("GET /meals", app.requireAuth(http.HandlerFunc(sh.Meals)))
	app.mux.Handle("POST /meals/toggle", app.requireAuth(http.HandlerFunc(sh.Toggle)))
	app.mux.Handle("POST /meals/confirm", app.requireAuth(http.HandlerFunc(sh.Confirm)))
	app.mux.Handle("POST /meals/cancel", app.requireAuth(http.HandlerFunc(sh.Cancel)))
	app.mux.Handle("GET /history", app.requireAuth(http.HandlerFunc(sh.History)))
	app.mux.Handle("GET /profile", app.requireAuth(http.HandlerFunc(sh.ProfilePage)))
	app.mux.Handle("POST /profile", app.requireAuth(http.HandlerFunc(sh.UpdateProfile)))

	// Tickets
	app.mux.Handle("GET /tickets", app.requireAuth(http.HandlerFunc(th.List)))
	app.mux.Handle("GET /tickets/new", app.requireAuth(http.HandlerFunc(th.NewPage)))
	app.mux.Handle("POST /tickets/new", app.requireAuth(http.HandlerFunc(th.Create)))
	app.mux.Handle("POST /tickets/photos", app.requireAuth(http.HandlerFunc(th.StagePhoto)))
	app.mux.Handle("POST /tickets/photos/{index}/delete", app.requireAuth(http.HandlerFunc(th.RemovePhoto)))

	// Admin routes
	app.mux.Handle("GET /admin", app.requireAdmin(http.HandlerFunc(adh.Dashboard)))
	app.mux.Handle("GET /admin/menus", app.requireAdmin(http.HandlerFunc(adh.MenusPage)))
	app.mux.Handle("POST /admin/items", app.requireAdmin(http.HandlerFunc(adh.CreateItem)))
	app.mux.Handle("POST /admin/items/{id}/delete", app.requireAdmin(http.HandlerFunc(adh.DeleteItem)))
	app.mux.Handle("POST /admin/menus", app.requireAdmin(http.HandlerFunc(adh.PublishMenu)))
	app.mux.Handle("GET /admin/tickets", app.requireAdmin(http.HandlerFunc(adh.TicketsPage)))
	app.mux.Handle("POST /admin/tickets/{id}/status", app.requireAdmin(http.HandlerFunc(adh.UpdateTicketStatus)))

	// Static files and staged-photo previews
	app.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	app.mux.Handle("GET /previews/{file}", app.requireAuth(http.HandlerFunc(th.Preview)))

	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.sessions.Middleware(a.mux).ServeHTTP(w, r)
}

// guard runs the route-access decision after making sure a present session
// has its user resolved. An expired token is detected here, on the first
// authenticated request after expiry.
func (a *App) guard(requireAdmin bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if ok && sess.User == nil {
			user, err := a.sessions.RefreshUser(r.Context(), w, sess.ID)
			if err != nil {
				// A 401 already tore the session down inside RefreshUser.
				// Any other failure keeps the session; revisiting any
				// guarded page retries the refresh.
				if api.IsUnauthorized(err) {
					httpx.SetFlash(w, "error", "Your session has expired. Please sign in again.")
				} else {
					httpx.SetFlash(w, "error", api.UserMessage(err))
				}
				http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
				return
			}
			sess.User = user
		}
		var decision gate.Decision
		if ok {
			decision = gate.Decide(sess.User, requireAdmin)
		} else {
			decision = gate.Decide(nil, requireAdmin)
		}
		if target, redirect := decision.Target(); redirect {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) requireAuth(next http.Handler) http.Handler  { return a.guard(false, next) }
func (a *App) requireAdmin(next http.Handler) http.Handler { return a.guard(true, next) }
