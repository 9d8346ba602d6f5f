package controlplane

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.yaml.in/yaml/v3"
)

// ErrUnauthenticated is returned when a request needs a session and none
// is available.
var ErrUnauthenticated = errors.New("not signed in")

// Session is an authenticated control-plane session.
type Session struct {
	AccessToken  string `yaml:"access_token"`
	AccountID    string `yaml:"account_id,omitempty"`
	AccountLabel string `yaml:"account_label,omitempty"`
}

// UserID returns the session's user id: the explicit account id, else the
// subject claim of the access token. The token signature is not checked
// here; the control plane verifies it on every request. A nil session
// has no user id.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	if s.AccountID != "" {
		return s.AccountID
	}
	if s.AccessToken == "" {
		return ""
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return ""
	}
	return strings.TrimSpace(claims.Subject)
}

// ReadSession reads the session file. A missing file means no session.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

// WriteSession writes s to path, readable by the owner only.
func WriteSession(path string, s Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// DeleteSession removes the session file. No error if it doesn't exist.
func DeleteSession(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
