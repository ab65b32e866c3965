package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kanak-sys/ToDo-App/types"
)

// Session is the token and user returned by signup or login.
type Session struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Valid reports whether s carries a token.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// ExpiresAt reads the expiry embedded in the token without verifying the
// signature. Only the server can do that.
func (s Session) ExpiresAt() (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether the token is past its expiry at now. Unreadable
// tokens count as expired.
func (s Session) Expired(now time.Time) bool {
	exp, err := s.ExpiresAt()
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// TokenStore persists a Session between runs.
type TokenStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is <user config dir>/todo/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "todo", "session.json"), nil
}

// Load returns ErrNoSession when nothing has been saved.
func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", f.path, err)
	}
	if !s.Valid() {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore holds the session in memory.
type MemoryStore struct {
	session Session
}

func (m *MemoryStore) Load() (Session, error) {
	if !m.session.Valid() {
		return Session{}, ErrNoSession
	}
	return m.session, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.session = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.session = Session{}
	return nil
}
