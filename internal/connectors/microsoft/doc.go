// Package microsoft implements mail operations against the Microsoft Graph API.
//
// # Architecture
//
// The package implements the [driven.MailTransport] port and comprises:
//
//   - Client: the request executor. Every call runs inside a bounded retry
//     loop for rate limiting, and each attempt first checks token freshness.
//   - MailClient: builds send, list, delete and folder requests.
//   - RateLimiter: optional proactive throttling plus Retry-After backoff.
//
// # Authentication
//
// Tokens come from a [driven.TokenProvider] using the OAuth2
// client-credentials grant. The application registration needs the
// Mail.Send application permission for sending and Mail.ReadWrite for
// listing, deleting and folder lookups:
// https://learn.microsoft.com/en-us/graph/api/user-sendmail
//
// # Rate Limits
//
// Graph throttles with HTTP 429 and a Retry-After header (seconds, or an
// HTTP-date). The executor sleeps for that long and retries, up to the
// configured maximum, then fails with [RateLimitExceededError]. When the
// header is missing the executor waits 90 seconds.
//
// # Pagination
//
// List responses carry an @odata.nextLink URL that already encodes the
// original query. Continuation requests use it verbatim.
package microsoft
