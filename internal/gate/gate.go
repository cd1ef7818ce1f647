// Package gate decides whether a navigation may proceed. The decision is a
// pure function of the session's user and the screen's requirement, so it is
// re-evaluated on every request and testable without HTTP plumbing.
package gate

import "github.com/mealwise/mealwise/internal/models"

type Decision int

const (
	// Allow renders the guarded view.
	Allow Decision = iota
	// RedirectLogin means no session is present.
	RedirectLogin
	// RedirectHome means the session's user lacks the admin role.
	RedirectHome
)

// Paths the deny decisions resolve to.
const (
	LoginPath = "/login"
	HomePath  = "/dashboard"
	AdminPath = "/admin"
)

// Decide gates a navigation. user is nil when no session is present.
func Decide(user *models.User, requireAdmin bool) Decision {
	switch {
	case user == nil:
		return RedirectLogin
	case requireAdmin && !user.IsAdmin():
		return RedirectHome
	default:
		return Allow
	}
}

// Target returns the redirect path for a deny decision. ok is false for Allow.
func (d Decision) Target() (string, bool) {
	switch d {
	case RedirectLogin:
		return LoginPath, true
	case RedirectHome:
		return HomePath, true
	default:
		return "", false
	}
}

// HomeFor returns the landing page for a logged-in user by role.
func HomeFor(user *models.User) string {
	if user.IsAdmin() {
		return AdminPath
	}
	return HomePath
}
