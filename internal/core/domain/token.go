package domain

import "time"

// DefaultRefreshBuffer is how long before expiry a token is treated as stale.
const DefaultRefreshBuffer = 5 * time.Second

// Token is an application access token issued by the identity endpoint.
// It is replaced wholesale on refresh and never persisted.
type Token struct {
	// AccessToken is the bearer credential sent to Graph.
	AccessToken string
	// TokenType is typically "Bearer".
	TokenType string
	// ExpiresAt is issue time plus the server-reported lifetime.
	ExpiresAt time.Time
}

// IsStale reports whether the token expires within buffer of now.
// A nil token is always stale.
func (t *Token) IsStale(now time.Time, buffer time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	return !now.Add(buffer).Before(t.ExpiresAt)
}

// AuthorizationHeader returns the value for the Authorization header.
func (t *Token) AuthorizationHeader() string {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + t.AccessToken
}

// TokenInfo is a display-safe view of a token.
type TokenInfo struct {
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	MaskedToken string    `json:"masked_token"`
}

// Info returns a redacted description of the token.
func (t *Token) Info() TokenInfo {
	masked := "****"
	if len(t.AccessToken) > 12 {
		masked = t.AccessToken[:6] + "..." + t.AccessToken[len(t.AccessToken)-4:]
	}
	return TokenInfo{
		TokenType:   t.TokenType,
		ExpiresAt:   t.ExpiresAt,
		MaskedToken: masked,
	}
}
