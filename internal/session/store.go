// Package session owns the only shared mutable client state: the API bearer
// token and the cached current user. The token is the sole durably persisted
// value, stored in a local sqlite row keyed by a signed cookie's session ID.
// The cached user is read-mostly, refreshed after login and profile edits;
// an authorization failure anywhere tears the session down.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/models"
)

// Record is the persisted half of a session: the token, nothing else.
type Record struct {
	ID        string `gorm:"primaryKey"`
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "sessions" }

// Session is what a request sees. User is nil until the persisted token has
// been exchanged for a user via RefreshUser.
type Session struct {
	ID    string
	Token string
	User  *models.User
}

type ctxKey struct{}

// FromContext extracts the session attached by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// Store manages session lifecycle against the meal API.
type Store struct {
	db     *gorm.DB
	api    *api.Client
	secret []byte

	mu    sync.RWMutex
	users map[string]*models.User
}

func NewStore(db *gorm.DB, client *api.Client, secret string) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &Store{
		db:     db,
		api:    client,
		secret: []byte(secret),
		users:  make(map[string]*models.User),
	}, nil
}

// Login exchanges credentials for a token, persists the token, caches the
// user and sets the session cookie. On failure nothing is created and the
// server's error message propagates.
func (s *Store) Login(ctx context.Context, w http.ResponseWriter, email, password string) (*models.User, error) {
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(w, creds)
}

// Register has the same contract as Login for a new account.
func (s *Store) Register(ctx context.Context, w http.ResponseWriter, req api.RegisterRequest) (*models.User, error) {
	creds, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(w, creds)
}

func (s *Store) establish(w http.ResponseWriter, creds *api.Credentials) (*models.User, error) {
	rec := Record{ID: uuid.NewString(), Token: creds.Token}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	user := creds.User
	s.mu.Lock()
	s.users[rec.ID] = &user
	s.mu.Unlock()
	setCookie(w, rec.ID, s.secret)
	return &user, nil
}

// Logout destroys the session unconditionally: persisted token, cached user
// and cookie. Idempotent; an unknown or empty ID still clears the cookie.
func (s *Store) Logout(w http.ResponseWriter, sessionID string) {
	if sessionID != "" {
		s.db.Delete(&Record{}, "id = ?", sessionID)
		s.mu.Lock()
		delete(s.users, sessionID)
		s.mu.Unlock()
	}
	clearCookie(w)
}

// RefreshUser re-fetches the current user with the stored token. A 401
// destroys the session; this is the only expiry detection there is.
// Any other failure leaves the session untouched.
func (s *Store) RefreshUser(ctx context.Context, w http.ResponseWriter, sessionID string) (*models.User, error) {
	var rec Record
	if err := s.db.First(&rec, "id = ?", sessionID).Error; err != nil {
		clearCookie(w)
		return nil, fmt.Errorf("no such session")
	}
	user, err := s.api.Me(ctx, rec.Token)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.Logout(w, sessionID)
		}
		return nil, err
	}
	s.mu.Lock()
	s.users[sessionID] = user
	s.mu.Unlock()
	return user, nil
}

// Ping probes the API; diagnostics only.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	return s.api.Ping(ctx)
}

// Current resolves the request's cookie to a session, if any.
func (s *Store) Current(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	id, ok := parseValue(c.Value, s.secret)
	if !ok {
		return nil, false
	}
	var rec Record
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, false
	}
	s.mu.RLock()
	user := s.users[id]
	s.mu.RUnlock()
	return &Session{ID: id, Token: rec.Token, User: user}, true
}

// Middleware attaches the session (when present) to the request context.
// Guarding decisions live in the route guard, not here.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.Current(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess))
		}
		next.ServeHTTP(w, r)
	})
}
