package gate

import (
	"testing"

	"github.com/mealwise/mealwise/internal/models"
)

func TestDecide(t *testing.T) {
	student := &models.User{ID: "u1", Role: models.RoleStudent}
	admin := &models.User{ID: "u2", Role: models.RoleAdmin}

	cases := []struct {
		name         string
		user         *models.User
		requireAdmin bool
		want         Decision
	}{
		{"no session", nil, false, RedirectLogin},
		{"no session admin screen", nil, true, RedirectLogin},
		{"student on student screen", student, false, Allow},
		{"student on admin screen", student, true, RedirectHome},
		{"admin on admin screen", admin, true, Allow},
		{"admin on student screen", admin, false, Allow},
	}
	for _, tc := range cases {
		if got := Decide(tc.user, tc.requireAdmin); got != tc.want {
			t.Errorf("%s: Decide = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTarget(t *testing.T) {
	if _, ok := Allow.Target(); ok {
		t.Fatalf("Allow must not redirect")
	}
	if p, ok := RedirectLogin.Target(); !ok || p != LoginPath {
		t.Fatalf("RedirectLogin target = %q", p)
	}
	if p, ok := RedirectHome.Target(); !ok || p != HomePath {
		t.Fatalf("RedirectHome target = %q", p)
	}
}

func TestHomeFor(t *testing.T) {
	if HomeFor(&models.User{Role: models.RoleAdmin}) != AdminPath {
		t.Fatalf("admin should land on %s", AdminPath)
	}
	if HomeFor(&models.User{Role: models.RoleStudent}) != HomePath {
		t.Fatalf("student should land on %s", HomePath)
	}
}
