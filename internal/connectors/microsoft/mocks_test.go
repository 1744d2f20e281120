package microsoft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	mu           sync.Mutex
	token        string
	err          error
	freshChecks  int
	tokenFetches int
}

var _ driven.TokenProvider = (*mockTokenProvider)(nil)

func (p *mockTokenProvider) Acquire(_ context.Context) (*domain.Token, error) {
	return p.current()
}

func (p *mockTokenProvider) IsStale(_ time.Duration) bool {
	return p.token == ""
}

func (p *mockTokenProvider) EnsureFresh(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freshChecks++
	return p.err
}

func (p *mockTokenProvider) AccessToken(_ context.Context) (*domain.Token, error) {
	p.mu.Lock()
	p.tokenFetches++
	p.mu.Unlock()
	return p.current()
}

func (p *mockTokenProvider) current() (*domain.Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Token{
		AccessToken: p.token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

// sleepRecorder records backoff sleeps instead of waiting.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

// graphServer starts a fake Graph endpoint and returns a client pointed at it.
func graphServer(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *mockTokenProvider, *sleepRecorder) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &mockTokenProvider{token: "test-token"}
	sleeper := &sleepRecorder{}
	base := []ClientOption{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithSleep(sleeper.Sleep),
	}
	client := NewClient(tokens, append(base, opts...)...)
	return client, tokens, sleeper
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
