package viewstate

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/javajoker/barter-backend/internal/models"
)

var ErrSignedOut = errors.New("signed out")

// Identity is what a write is tagged with.
type Identity struct {
	UserID uuid.UUID
	Token  string
}

// Session is the signed-in state a client passes to everything that
// writes. It starts from a sign-in result and is emptied by SignOut; any
// Guard after that fails, so a late callback cannot write as a stale user.
type Session struct {
	mu           sync.RWMutex
	user         *models.User
	accessToken  string
	refreshToken string
}

func NewSession(user *models.User, accessToken, refreshToken string) *Session {
	u := *user
	return &Session{user: &u, accessToken: accessToken, refreshToken: refreshToken}
}

// Guard returns the current identity or ErrSignedOut.
func (s *Session) Guard() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Identity{}, ErrSignedOut
	}
	return Identity{UserID: s.user.ID, Token: s.accessToken}, nil
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) HasProfile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.HasProfile()
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Update replaces the user and tokens, e.g. after an anonymous identity
// registers or tokens rotate. The user id must not change.
func (s *Session) Update(user *models.User, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrSignedOut
	}
	if user.ID != s.user.ID {
		return errors.New("session user changed")
	}
	u := *user
	s.user = &u
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	return nil
}

// SignOut clears the identity and returns the tokens it held so the caller
// can revoke them.
func (s *Session) SignOut() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accessToken, refreshToken = s.accessToken, s.refreshToken
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	return accessToken, refreshToken
}
