package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role codes issued by the backend.
const (
	RoleUser       = 0
	RoleAdmin      = 1
	RoleStaff      = 3
	RoleSuperAdmin = 4
)

// Session is the locally stored login result.
type Session struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
	Role    int    `json:"is_admin"`
}

// Claims decodes the access token without verifying its signature; the
// client never holds the signing key.
func (s Session) Claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if s.Access == "" {
		return claims, errors.New("no access token")
	}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Access, claims); err != nil {
		return claims, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// RoleCode prefers the role returned at login and falls back to the token.
func (s Session) RoleCode() int {
	if s.Role != 0 {
		return s.Role
	}
	claims, err := s.Claims()
	if err != nil {
		return RoleUser
	}
	for _, k := range []string{"is_admin", "role"} {
		if v, ok := claims[k].(float64); ok {
			return int(v)
		}
	}
	return RoleUser
}

// IsAdmin reports admin or superadmin.
func (s Session) IsAdmin() bool {
	r := s.RoleCode()
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (s Session) IsSuperAdmin() bool { return s.RoleCode() == RoleSuperAdmin }

// UserID reads the user id claim.
func (s Session) UserID() (int, bool) {
	claims, err := s.Claims()
	if err != nil {
		return 0, false
	}
	for _, k := range []string{"user_id", "userId", "id"} {
		if v, ok := claims[k].(float64); ok {
			return int(v), true
		}
	}
	return 0, false
}

// Expired reports whether the token carries an exp claim in the past.
func (s Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil {
		return true
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

// TokenStore keeps the session on disk between CLI invocations. An empty
// path keeps it in memory only.
type TokenStore struct {
	path string

	mu      sync.RWMutex
	session *Session
}

// NewTokenStore returns a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the session file. A missing file is not an error.
func (s *TokenStore) Load() error {
	if s.path == "" {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()
	return nil
}

// Save replaces the current session and persists it.
func (s *TokenStore) Save(sess Session) error {
	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear drops the session, removing the file.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Session returns the current session, if any.
func (s *TokenStore) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Token returns the access token or "".
func (s *TokenStore) Token() string {
	sess, _ := s.Session()
	return sess.Access
}
