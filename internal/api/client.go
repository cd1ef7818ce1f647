// Package api is the typed HTTP client for the remote meal API. All business
// logic (auth, window enforcement, analytics, ticket lifecycle) lives behind
// these calls; the client only ships JSON back and forth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mealwise/mealwise/internal/models"
)

// DefaultTimeout tolerates slow backend cold starts. Timeouts surface as a
// generic failure; there is no retry path.
const DefaultTimeout = 45 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the API rooted at baseURL (the "/api" prefix is
// appended here, mirroring how the hosted backend is addressed).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: timeout},
	}
}

// Credentials is the login/register response.
type Credentials struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	HostelID   string `json:"hostel_id,omitempty"`
	RoomNumber string `json:"room_number,omitempty"`
}

type MenuItemInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	MealType    string `json:"meal_type"`
	Description string `json:"description,omitempty"`
}

type MenuInput struct {
	Date     string   `json:"date"`
	MealType string   `json:"meal_type"`
	ItemIDs  []string `json:"item_ids"`
}

type TicketInput struct {
	Category    string   `json:"category"`
	SubCategory string   `json:"sub_category,omitempty"`
	Urgency     string   `json:"urgency"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

type ProfileUpdate struct {
	Name           string `json:"name,omitempty"`
	RoomNumber     string `json:"room_number,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var creds Credentials
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Credentials, error) {
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ping probes reachability and reports round-trip latency. Unauthenticated;
// used for diagnostics only, never for gating.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.do(ctx, http.MethodGet, "/ping", "", nil, nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Student

func (c *Client) StudentMenus(ctx context.Context, token string) ([]models.Menu, error) {
	var menus []models.Menu
	if err := c.do(ctx, http.MethodGet, "/student/menus", token, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// SubmitSelection sends the full replacement set for one menu. Callers must
// never submit an empty set; the window check itself stays server-side.
func (c *Client) SubmitSelection(ctx context.Context, token, menuID string, itemIDs []string) error {
	body := map[string]any{"menu_id": menuID, "selected_item_ids": itemIDs}
	return c.do(ctx, http.MethodPost, "/student/selections", token, body, nil)
}

func (c *Client) BookingHistory(ctx context.Context, token string) ([]models.Booking, error) {
	var history []models.Booking
	if err := c.do(ctx, http.MethodGet, "/student/booking-history", token, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Admin

func (c *Client) MenuItems(ctx context.Context, token string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.do(ctx, http.MethodGet, "/admin/menu-items", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, token string, in MenuItemInput) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(ctx, http.MethodPost, "/admin/menu-items", token, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, token, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/menu-items/"+url.PathEscape(itemID), token, nil, nil)
}

func (c *Client) Menus(ctx context.Context, token string) ([]models.Menu, error) {
	var menus []models.Menu
	if err := c.do(ctx, http.MethodGet, "/admin/menus", token, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

func (c *Client) PublishMenu(ctx context.Context, token string, in MenuInput) error {
	return c.do(ctx, http.MethodPost, "/admin/menus", token, in, nil)
}

func (c *Client) Analytics(ctx context.Context, token, menuID string) (*models.Analytics, error) {
	var a models.Analytics
	if err := c.do(ctx, http.MethodGet, "/admin/analytics/"+url.PathEscape(menuID), token, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Tickets and profile

func (c *Client) CreateTicket(ctx context.Context, token string, in TicketInput) error {
	return c.do(ctx, http.MethodPost, "/tickets", token, in, nil)
}

func (c *Client) Tickets(ctx context.Context, token string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets", token, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, token, ticketID, status string) error {
	path := fmt.Sprintf("/admin/tickets/%s?status=%s", url.PathEscape(ticketID), url.QueryEscape(status))
	return c.do(ctx, http.MethodPatch, path, token, struct{}{}, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/profile", token, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// detailBody is FastAPI's error envelope: {"detail": "..."}.
type detailBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var detail detailBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &detail)
		return &Error{Status: resp.StatusCode, Detail: detail.Detail}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
