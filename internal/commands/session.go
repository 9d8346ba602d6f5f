package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruminaider/confcascade/internal/controlplane"
	"github.com/ruminaider/confcascade/internal/handler"
)

type LoginResult struct {
	UserID        string
	Organizations []string
}

// Login stores a session for token and cascades with it. The token must
// identify a user, either through accountID or its subject claim.
func Login(ctx context.Context, h *handler.Handler, sessionPath, token, accountID, label string) (*LoginResult, error) {
	s := &controlplane.Session{AccessToken: token, AccountID: accountID, AccountLabel: label}
	userID := s.UserID()
	if userID == "" {
		return nil, errors.New("token does not identify a user; pass --account")
	}
	if err := controlplane.WriteSession(sessionPath, *s); err != nil {
		return nil, err
	}
	if _, err := h.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("refreshing after login: %w", err)
	}

	result := &LoginResult{UserID: userID}
	for _, o := range h.SerializedOrganizations() {
		result.Organizations = append(result.Organizations, o.Name)
	}
	return result, nil
}

// Logout removes the stored session and cascades without it.
func Logout(ctx context.Context, h *handler.Handler, sessionPath string) error {
	if err := controlplane.DeleteSession(sessionPath); err != nil {
		return err
	}
	if _, err := h.UpdateSession(ctx, nil); err != nil {
		return fmt.Errorf("refreshing after logout: %w", err)
	}
	return nil
}
