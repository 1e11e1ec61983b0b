// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, cookie names and storage prefixes that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: cookie names, CSRF transport and link issuers.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "meattrack-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS      = 100.0
	DefaultRateLimitBurst    = 150
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim of signed one-time links.
	AuthIssuer = "meattrack"

	// BrowserSessionCookieName carries the opaque browser session id.
	BrowserSessionCookieName = "sid"

	// RememberCookieName carries the 64-hex remember-me session token.
	RememberCookieName = "session_token"

	// CookiePath scopes both auth cookies.
	CookiePath = "/"

	// CSRFHeaderName is accepted for JSON clients.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is accepted for form posts.
	CSRFFormField = "csrf_token"

	// SessionTokenBytes is the entropy of session and CSRF tokens (256 bits).
	SessionTokenBytes = 32

	// VerificationLinkTTL bounds how long an email verification link is valid.
	VerificationLinkTTL = 48 * time.Hour

	// PurposeEmailVerification binds link tokens to the verify-email flow.
	PurposeEmailVerification = "email_verification"

	// TypingWindow is how recent a typing signal must be to count as "typing".
	TypingWindow = 3 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAccept        = "Accept"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldSuccess = "success"
	FieldMessage = "message"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Key Taxonomy)

const (
	RedisPrefixBrowserSession = "auth:browser:"
	RedisPrefixVerifyJTI      = "auth:verify_jti:"
	RedisPrefixLoginFailure   = "auth:login_fail:"
)
