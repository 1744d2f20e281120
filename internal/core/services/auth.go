package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
	"github.com/custodia-labs/graphmail/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService checks credentials against the identity endpoint.
type AuthService struct {
	tokens driven.TokenProvider
	logger *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(tokens driven.TokenProvider, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{tokens: tokens, logger: logger}
}

// Verify forces a token acquisition and returns a redacted description.
func (s *AuthService) Verify(ctx context.Context) (*domain.TokenInfo, error) {
	tok, err := s.tokens.Acquire(ctx)
	if err != nil {
		s.logger.Warn("credential check failed", "operation", "verify", "status", "failed", "error", err)
		return nil, err
	}

	info := tok.Info()
	s.logger.Debug("credential check passed", "operation", "verify", "status", "ok", "expires_at", info.ExpiresAt)
	return &info, nil
}
