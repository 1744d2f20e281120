// Package oauth provides the client-credentials token manager for Graph.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// DefaultAuthority is the public-cloud identity endpoint.
const DefaultAuthority = "https://login.microsoftonline.com"

// Ensure TokenManager implements the TokenProvider interface.
var _ driven.TokenProvider = (*TokenManager)(nil)

// TokenManager holds one client-credentials token and refreshes it on demand.
type TokenManager struct {
	tenantID   string
	config     clientcredentials.Config
	httpClient *http.Client
	logger     *slog.Logger
	clock      func() time.Time
	buffer     time.Duration

	mu    sync.Mutex
	token *domain.Token
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *TokenManager) { m.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *TokenManager) { m.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *TokenManager) { m.clock = clock }
}

// WithAuthority overrides the identity endpoint host (sovereign clouds, tests).
func WithAuthority(authority string) Option {
	return func(m *TokenManager) {
		if authority != "" {
			m.config.TokenURL = TokenURL(authority, m.tenantID)
		}
	}
}

// WithRefreshBuffer overrides how early EnsureFresh refreshes.
func WithRefreshBuffer(d time.Duration) Option {
	return func(m *TokenManager) { m.buffer = d }
}

// TokenURL returns the v2.0 token endpoint for a tenant.
func TokenURL(authority, tenantID string) string {
	return strings.TrimRight(authority, "/") + "/" + tenantID + "/oauth2/v2.0/token"
}

// NewTokenManager creates a token manager. No request is made until a token is needed.
func NewTokenManager(creds domain.Credentials, opts ...Option) (*TokenManager, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	m := &TokenManager{
		tenantID: creds.TenantID,
		config: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     TokenURL(DefaultAuthority, creds.TenantID),
			Scopes:       creds.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: domain.DefaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
		clock:      time.Now,
		buffer:     domain.DefaultRefreshBuffer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("tenant", m.tenantID)

	return m, nil
}

// Acquire requests a new token regardless of the current one.
func (m *TokenManager) Acquire(ctx context.Context) (*domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	cp := *tok
	return &cp, nil
}

// IsStale reports whether the held token expires within buffer.
func (m *TokenManager) IsStale(buffer time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token.IsStale(m.clock(), buffer)
}

// EnsureFresh refreshes the token if it is stale.
func (m *TokenManager) EnsureFresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.ensureFresh(ctx)
	return err
}

// AccessToken returns a fresh copy of the current token.
func (m *TokenManager) AccessToken(ctx context.Context) (*domain.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.ensureFresh(ctx)
	if err != nil {
		return nil, err
	}
	cp := *tok
	return &cp, nil
}

// ensureFresh requires m.mu to be held.
func (m *TokenManager) ensureFresh(ctx context.Context) (*domain.Token, error) {
	if !m.token.IsStale(m.clock(), m.buffer) {
		m.logger.Debug("token not expiring soon", "expires_at", m.token.ExpiresAt)
		return m.token, nil
	}

	if m.token != nil {
		m.logger.Warn("token expiring soon, retrieving new token", "expires_at", m.token.ExpiresAt)
	}
	return m.acquire(ctx)
}

// acquire requires m.mu to be held.
func (m *TokenManager) acquire(ctx context.Context) (*domain.Token, error) {
	m.logger.Debug("retrieving token", "token_url", m.config.TokenURL)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	raw, err := m.config.Token(ctx)
	if err != nil {
		m.logger.Error("token request failed", "token_url", m.config.TokenURL, "error", err)
		return nil, newTokenError(err)
	}

	if raw.TokenType == "" {
		return nil, &TokenError{Description: "response missing token_type"}
	}
	lifetime, ok := expiresIn(raw)
	if !ok {
		return nil, &TokenError{Description: "response missing expires_in"}
	}

	m.token = &domain.Token{
		AccessToken: raw.AccessToken,
		TokenType:   raw.TokenType,
		ExpiresAt:   m.clock().Add(lifetime),
	}
	m.logger.Info("retrieved token", "expires_at", m.token.ExpiresAt)

	return m.token, nil
}

// expiresIn reads the server-reported lifetime from the raw token response.
func expiresIn(tok *oauth2.Token) (time.Duration, bool) {
	var seconds float64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case int64:
		seconds = float64(v)
	case int:
		seconds = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		seconds = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		seconds = f
	default:
		return 0, false
	}
	if seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// TokenError is a failed token acquisition. It is never retried.
type TokenError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func newTokenError(err error) *TokenError {
	te := &TokenError{Err: err}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te.Code = re.ErrorCode
		te.Description = re.ErrorDescription
		if re.Response != nil {
			te.StatusCode = re.Response.StatusCode
		}
	}
	return te
}

func (e *TokenError) Error() string {
	var b strings.Builder
	b.WriteString("oauth: token request failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	if e.Err != nil && e.Code == "" && e.Description == "" {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both domain.ErrAuthInvalid and the underlying cause.
func (e *TokenError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrAuthInvalid}
	}
	return []error{domain.ErrAuthInvalid, e.Err}
}

// IsTokenError reports whether err came from token acquisition.
func IsTokenError(err error) bool {
	var te *TokenError
	return errors.As(err, &te)
}
