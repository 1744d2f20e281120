// Package config resolves the client configuration from the TOML store,
// GRAPHMAIL_* environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/graphmail/internal/core/domain"
	"github.com/custodia-labs/graphmail/internal/core/ports/driven"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRAPHMAIL_"

// Kind is the stored type of a setting.
type Kind int

// Setting kinds.
const (
	KindString Kind = iota
	KindStringList
	KindInt
	KindFloat
	KindBool
)

// Config keys.
//
//nolint:gosec // G101: key names, not credentials.
const (
	KeyTenantID          = "auth.tenant_id"
	KeyClientID          = "auth.client_id"
	KeyClientSecret      = "auth.client_secret"
	KeyScopes            = "auth.scopes"
	KeySenderName        = "sender.name"
	KeySenderAddress     = "sender.address"
	KeyMaxRetries        = "client.max_retries"
	KeyRequestsPerSecond = "client.requests_per_second"
	KeyBurst             = "client.burst"
	KeyTimeoutSeconds    = "client.timeout_seconds"
	KeyLogPayloads       = "log.payloads"
	KeyGraphBaseURL      = "graph.base_url"
	KeyAuthority         = "graph.authority"
)

// Setting describes one supported key.
type Setting struct {
	Key         string
	Env         string
	Kind        Kind
	Secret      bool
	Description string
}

// Settings lists every supported key in display order.
var Settings = []Setting{
	{KeyTenantID, EnvPrefix + "TENANT_ID", KindString, false, "Entra ID tenant id"},
	{KeyClientID, EnvPrefix + "CLIENT_ID", KindString, false, "application (client) id"},
	{KeyClientSecret, EnvPrefix + "CLIENT_SECRET", KindString, true, "application client secret"},
	{KeyScopes, EnvPrefix + "SCOPES", KindStringList, false, "token scopes, comma separated"},
	{KeySenderName, EnvPrefix + "SENDER_NAME", KindString, false, "sender display name"},
	{KeySenderAddress, EnvPrefix + "SENDER_ADDRESS", KindString, false, "sender mailbox address"},
	{KeyMaxRetries, EnvPrefix + "MAX_RETRIES", KindInt, false, "rate-limited attempts per call"},
	{KeyRequestsPerSecond, EnvPrefix + "REQUESTS_PER_SECOND", KindFloat, false, "proactive throttle, 0 disables"},
	{KeyBurst, EnvPrefix + "BURST", KindInt, false, "throttle burst size"},
	{KeyTimeoutSeconds, EnvPrefix + "TIMEOUT_SECONDS", KindInt, false, "HTTP timeout in seconds"},
	{KeyLogPayloads, EnvPrefix + "LOG_PAYLOADS", KindBool, false, "log outbound JSON at debug level"},
	{KeyGraphBaseURL, EnvPrefix + "GRAPH_BASE_URL", KindString, false, "Graph endpoint override"},
	{KeyAuthority, EnvPrefix + "AUTHORITY", KindString, false, "identity endpoint override"},
}

// Lookup returns the setting for key.
func Lookup(key string) (Setting, bool) {
	for _, s := range Settings {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Resolve builds a ClientConfig from defaults, then the store, then the
// environment. It does not validate.
func Resolve(store driven.ConfigStore, lookup LookupFunc) (domain.ClientConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := domain.NewClientConfig("", "", "", "", "")
	r := resolver{store: store, lookup: lookup}

	cfg.TenantID = r.getString(KeyTenantID, cfg.TenantID)
	cfg.ClientID = r.getString(KeyClientID, cfg.ClientID)
	cfg.ClientSecret = r.getString(KeyClientSecret, cfg.ClientSecret)
	cfg.Scopes = r.getStringSlice(KeyScopes, cfg.Scopes)
	cfg.SenderName = r.getString(KeySenderName, cfg.SenderName)
	cfg.SenderAddress = r.getString(KeySenderAddress, cfg.SenderAddress)
	cfg.MaxRetries = r.getInt(KeyMaxRetries, cfg.MaxRetries)
	cfg.RequestsPerSecond = r.getFloat(KeyRequestsPerSecond, cfg.RequestsPerSecond)
	cfg.Burst = r.getInt(KeyBurst, cfg.Burst)
	cfg.Timeout = time.Duration(r.getInt(KeyTimeoutSeconds, int(cfg.Timeout/time.Second))) * time.Second
	cfg.LogPayloads = r.getBool(KeyLogPayloads, cfg.LogPayloads)
	cfg.GraphBaseURL = r.getString(KeyGraphBaseURL, cfg.GraphBaseURL)
	cfg.Authority = r.getString(KeyAuthority, cfg.Authority)

	if r.err != nil {
		return domain.ClientConfig{}, r.err
	}
	return cfg, nil
}

// Load resolves and validates the configuration.
func Load(store driven.ConfigStore, lookup LookupFunc) (domain.ClientConfig, error) {
	cfg, err := Resolve(store, lookup)
	if err != nil {
		return domain.ClientConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.ClientConfig{}, err
	}
	return cfg, nil
}

// ParseValue converts command-line text into the value stored for key.
func ParseValue(key, raw string) (any, error) {
	s, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	return parse(s, raw)
}

func parse(s Setting, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch s.Kind {
	case KindStringList:
		return splitList(raw), nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, s.Key, raw)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number: %q", domain.ErrInvalidInput, s.Key, raw)
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false: %q", domain.ErrInvalidInput, s.Key, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolver reads each key from the environment first, then the store.
// The first malformed environment value is kept in err.
type resolver struct {
	store  driven.ConfigStore
	lookup LookupFunc
	err    error
}

func (r *resolver) env(key string) (any, bool) {
	s, _ := Lookup(key)
	raw, ok := r.lookup(s.Env)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, false
	}
	v, err := parse(s, raw)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%s: %w", s.Env, err)
		}
		return nil, false
	}
	return v, true
}

func (r *resolver) stored(key string) bool {
	if r.store == nil {
		return false
	}
	_, ok := r.store.Get(key)
	return ok
}

func (r *resolver) getString(key, fallback string) string {
	if v, ok := r.env(key); ok {
		return v.(string)
	}
	if r.stored(key) {
		if s := r.store.GetString(key); s != "" {
			return s
		}
	}
	return fallback
}

func (r *resolver) getStringSlice(key string, fallback []string) []string {
	if v, ok := r.env(key); ok {
		if l := v.([]string); len(l) > 0 {
			return l
		}
	}
	if r.stored(key) {
		if l := r.store.GetStringSlice(key); len(l) > 0 {
			return l
		}
	}
	return fallback
}

func (r *resolver) getInt(key string, fallback int) int {
	if v, ok := r.env(key); ok {
		return v.(int)
	}
	if r.stored(key) {
		return r.store.GetInt(key)
	}
	return fallback
}

func (r *resolver) getFloat(key string, fallback float64) float64 {
	if v, ok := r.env(key); ok {
		return v.(float64)
	}
	if r.stored(key) {
		return r.store.GetFloat(key)
	}
	return fallback
}

func (r *resolver) getBool(key string, fallback bool) bool {
	if v, ok := r.env(key); ok {
		return v.(bool)
	}
	if r.stored(key) {
		return r.store.GetBool(key)
	}
	return fallback
}
