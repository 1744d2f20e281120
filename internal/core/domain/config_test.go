package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() ClientConfig {
	return NewClientConfig("tenant-1", "client-1", "s3cret-value", "Ops Bot", "ops@example.com")
}

func TestNewClientConfig_Defaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, []string{DefaultScope}, cfg.Scopes)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantMsg string
	}{
		{"empty tenant", func(c *ClientConfig) { c.TenantID = "" }, "tenant_id"},
		{"blank client id", func(c *ClientConfig) { c.ClientID = "   " }, "client_id"},
		{"empty secret", func(c *ClientConfig) { c.ClientSecret = "" }, "client_secret"},
		{"empty sender name", func(c *ClientConfig) { c.SenderName = "" }, "sender_name"},
		{"empty sender address", func(c *ClientConfig) { c.SenderAddress = "" }, "sender_address"},
		{"no scopes", func(c *ClientConfig) { c.Scopes = nil }, "scope"},
		{"blank scope", func(c *ClientConfig) { c.Scopes = []string{DefaultScope, ""} }, "scope 1"},
		{"zero retries", func(c *ClientConfig) { c.MaxRetries = 0 }, "max_retries"},
		{"negative rate", func(c *ClientConfig) { c.RequestsPerSecond = -1 }, "rate limit"},
		{"negative timeout", func(c *ClientConfig) { c.Timeout = -1 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClientConfig_StringHidesSecret(t *testing.T) {
	cfg := validConfig()

	s := cfg.String()

	assert.NotContains(t, s, "s3cret-value")
	assert.Contains(t, s, "secret_set=true")
	assert.Contains(t, s, "ops@example.com")
}

func TestClientConfig_Sender(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, Sender{Name: "Ops Bot", Address: "ops@example.com"}, cfg.Sender())
}
