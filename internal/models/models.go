// Package models holds the client-side view of the meal API's JSON shapes.
// The API owns these entities; nothing here is persisted locally.
package models

import "time"

// Roles as reported by the API.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Meal types a menu can be published for.
var MealTypes = []string{"breakfast", "lunch", "dinner"}

// Item categories.
const (
	CategoryVeg    = "veg"
	CategoryNonVeg = "non-veg"
)

// Ticket categories offered in the complaint form.
var TicketCategories = []string{"Food Quality", "Service", "Hygiene", "Billing", "Other"}

// Ticket urgency levels.
var UrgencyLevels = []string{"basic", "medium", "critical"}

// Ticket lifecycle states.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

// TicketStatuses lists the states an admin may move a ticket to.
var TicketStatuses = []string{TicketOpen, TicketInProgress, TicketClosed}

// User is the account behind the current session. Read-mostly: refreshed
// after login and after profile edits, never mutated locally.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	HostelID       string    `json:"hostel_id,omitempty"`
	RoomNumber     string    `json:"room_number,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// MenuItem is a bookable dish. Immutable here except via admin create/delete.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	MealType    string `json:"meal_type"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// SelectionWindow is computed entirely server-side. Allowed is the single
// authoritative gate; the client never infers it from wall-clock time.
type SelectionWindow struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// Menu is a published, date- and meal-type-scoped set of bookable items,
// enriched by the student endpoint with the caller's selection state.
type Menu struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"` // YYYY-MM-DD
	MealType        string          `json:"meal_type"`
	ItemIDs         []string        `json:"item_ids,omitempty"`
	Status          string          `json:"status,omitempty"`
	Items           []MenuItem      `json:"items,omitempty"`
	SelectionWindow SelectionWindow `json:"selection_window"`
	UserSelected    bool            `json:"user_selected"`
	SelectedItemIDs []string        `json:"selected_item_ids,omitempty"`
}

// Booking is a past selection joined with its menu and resolved items.
type Booking struct {
	ID              string     `json:"id"`
	MenuID          string     `json:"menu_id"`
	SelectedItemIDs []string   `json:"selected_item_ids"`
	CreatedAt       time.Time  `json:"created_at"`
	Menu            *Menu      `json:"menu,omitempty"`
	Items           []MenuItem `json:"items,omitempty"`
}

// Ticket is a complaint/feedback record. StudentName and RoomNumber are
// only populated on the admin listing.
type Ticket struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category,omitempty"`
	Urgency     string    `json:"urgency"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos,omitempty"`
	Status      string    `json:"status"`
	StudentName string    `json:"student_name,omitempty"`
	RoomNumber  string    `json:"room_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalyticsItem carries server-aggregated demand for one menu item.
// Count and Percentage are rendered verbatim; the client only formats.
type AnalyticsItem struct {
	ItemID     string  `json:"item_id"`
	ItemName   string  `json:"item_name"`
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Analytics is the per-menu selection snapshot, recomputed server-side on
// every request and never cached across menu-selector changes.
type Analytics struct {
	Menu            Menu            `json:"menu"`
	TotalUsers      int             `json:"total_users"`
	TotalSelections int             `json:"total_selections"`
	Items           []AnalyticsItem `json:"items"`
}

// ValidMealType reports whether s is a publishable meal type.
func ValidMealType(s string) bool {
	for _, m := range MealTypes {
		if s == m {
			return true
		}
	}
	return false
}

// ValidTicketCategory reports whether s is one of the offered categories.
func ValidTicketCategory(s string) bool {
	for _, c := range TicketCategories {
		if s == c {
			return true
		}
	}
	return false
}

// ValidTicketStatus reports whether s is a known lifecycle state.
func ValidTicketStatus(s string) bool {
	for _, c := range TicketStatuses {
		if s == c {
			return true
		}
	}
	return false
}
