// Package app wires the Graph mail client together from a resolved configuration.
package app

import (
	"log/slog"
	"net/http"

	"github.com/custodia-labs/graphmail/internal/adapters/driven/eml"
	"github.com/custodia-labs/graphmail/internal/adapters/driven/oauth"
	"github.com/custodia-labs/graphmail/internal/connectors/microsoft"
	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/services"
	"github.com/custodia-labs/graphmail/internal/logger"
)

// App holds the services built for one sender.
type App struct {
	Config domain.ClientConfig
	Mail   *services.MailService
	Auth   *services.AuthService
	Parser *eml.Parser
	Tokens *oauth.TokenManager
}

// New validates cfg and builds the token manager, Graph client and services.
// No network request is made until a service is used.
func New(cfg domain.ClientConfig, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = domain.DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	tokens, err := oauth.NewTokenManager(cfg.Credentials(),
		oauth.WithHTTPClient(httpClient),
		oauth.WithLogger(log.With("component", "oauth")),
		oauth.WithAuthority(cfg.Authority),
	)
	if err != nil {
		return nil, err
	}

	opts := []microsoft.ClientOption{
		microsoft.WithBaseURL(cfg.GraphBaseURL),
		microsoft.WithHTTPClient(httpClient),
		microsoft.WithLogger(log.With("component", "graph")),
		microsoft.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, microsoft.WithRateLimiter(microsoft.NewRateLimiter(microsoft.RateLimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.Burst,
		})))
	}
	client := microsoft.NewClient(tokens, opts...)
	transport := microsoft.NewMailClient(client, microsoft.WithPayloadLogging(cfg.LogPayloads))

	return &App{
		Config: cfg,
		Mail:   services.NewMailService(transport, cfg.Sender(), log),
		Auth:   services.NewAuthService(tokens, log),
		Parser: eml.New(),
		Tokens: tokens,
	}, nil
}
