package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultScope is the client-credentials scope covering every application
// permission granted to the app registration.
const DefaultScope = "https://graph.microsoft.com/.default"

// Client defaults.
const (
	DefaultMaxRetries = 5
	DefaultTimeout    = 30 * time.Second
)

// ClientConfig holds everything needed to talk to Graph on behalf of one sender.
type ClientConfig struct {
	// TenantID is the Entra ID directory (tenant) identifier.
	TenantID string `json:"tenant_id"`
	// ClientID is the application (client) identifier.
	ClientID string `json:"client_id"`
	// ClientSecret is the application secret. Never logged or printed.
	ClientSecret string `json:"-"`
	// Scopes requested from the identity endpoint.
	Scopes []string `json:"scopes"`

	// SenderName is the display name used in the sender field.
	SenderName string `json:"sender_name"`
	// SenderAddress is the mailbox that sends mail (and the default mailbox for reads).
	SenderAddress string `json:"sender_address"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose"`
	// LogPayloads logs outbound JSON bodies at debug level, attachment bytes redacted.
	LogPayloads bool `json:"log_payloads"`

	// MaxRetries bounds the number of rate-limited attempts per call.
	MaxRetries int `json:"max_retries"`
	// RequestsPerSecond enables proactive throttling when positive.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
	// Burst is the token bucket size used with RequestsPerSecond.
	Burst int `json:"burst,omitempty"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout"`

	// GraphBaseURL overrides https://graph.microsoft.com/v1.0.
	GraphBaseURL string `json:"graph_base_url,omitempty"`
	// Authority overrides https://login.microsoftonline.com.
	Authority string `json:"authority,omitempty"`
}

// NewClientConfig returns a config with defaults applied.
func NewClientConfig(tenantID, clientID, clientSecret, senderName, senderAddress string) ClientConfig {
	return ClientConfig{
		TenantID:      tenantID,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		SenderName:    senderName,
		SenderAddress: senderAddress,
		Scopes:        []string{DefaultScope},
		MaxRetries:    DefaultMaxRetries,
		Timeout:       DefaultTimeout,
	}
}

// Validate checks that every required setting is present.
func (c ClientConfig) Validate() error {
	if err := c.Credentials().Validate(); err != nil {
		return err
	}
	if err := requireNonEmpty("sender_name", c.SenderName); err != nil {
		return err
	}
	if err := requireNonEmpty("sender_address", c.SenderAddress); err != nil {
		return err
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalidInput)
	}
	if c.RequestsPerSecond < 0 || c.Burst < 0 {
		return fmt.Errorf("%w: rate limit settings must not be negative", ErrInvalidInput)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}

	return nil
}

// Sender returns the fixed sender identity for this client.
func (c ClientConfig) Sender() Sender {
	return Sender{Name: c.SenderName, Address: c.SenderAddress}
}

// String describes the config without revealing the secret.
func (c ClientConfig) String() string {
	return fmt.Sprintf(
		"tenant=%s client=%s secret_set=%t scopes=%v sender=%q <%s>",
		c.TenantID, c.ClientID, c.ClientSecret != "", c.Scopes, c.SenderName, c.SenderAddress,
	)
}

// Credentials returns the client-credentials grant inputs.
func (c ClientConfig) Credentials() Credentials {
	return Credentials{
		TenantID:     c.TenantID,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
	}
}

// Credentials are the inputs to the client-credentials grant.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Validate checks that every credential is present and no scope is blank.
func (c Credentials) Validate() error {
	if err := requireNonEmpty("tenant_id", c.TenantID); err != nil {
		return err
	}
	if err := requireNonEmpty("client_id", c.ClientID); err != nil {
		return err
	}
	if err := requireNonEmpty("client_secret", c.ClientSecret); err != nil {
		return err
	}

	if len(c.Scopes) == 0 {
		return fmt.Errorf("%w: at least one scope is required", ErrInvalidInput)
	}
	for i, scope := range c.Scopes {
		if strings.TrimSpace(scope) == "" {
			return fmt.Errorf("%w: scope %d must not be empty", ErrInvalidInput, i)
		}
	}
	return nil
}

func requireNonEmpty(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, name)
	}
	return nil
}

// Sender is the identity mail is sent from.
type Sender struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}
