// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// CSRFGuard issues and verifies the per-browser-session CSRF token.
type CSRFGuard struct {
	browsers BrowserSessionStore
	ttl      time.Duration
}

// NewCSRFGuard constructs a [CSRFGuard].
func NewCSRFGuard(browsers BrowserSessionStore, ttl time.Duration) *CSRFGuard {
	return &CSRFGuard{browsers: browsers, ttl: ttl}
}

// IssueToken returns the token of the browser session, generating it only when absent.
func (guard *CSRFGuard) IssueToken(context context.Context, browserSessionID string) (string, error) {
	if browserSessionID == "" {
		return "", apperr.ServiceUnavailable("Session unavailable")
	}

	browser, err := guard.browsers.Get(context, browserSessionID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.ServiceUnavailable("Session unavailable")
		}
		return "", fmt.Errorf("auth_csrf_load_failed: %w", err)
	}

	if browser.CSRFToken != "" {
		return browser.CSRFToken, nil
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("auth_csrf_token_failed: %w", err)
	}

	browser.CSRFToken = token
	if err := guard.browsers.Save(context, browser, guard.ttl); err != nil {
		return "", fmt.Errorf("auth_csrf_save_failed: %w", err)
	}

	return token, nil
}

// Verify reports whether supplied is byte-equal to the stored token.
// A missing browser session, a missing token or a storage error all reject.
func (guard *CSRFGuard) Verify(context context.Context, browserSessionID, supplied string) bool {
	if browserSessionID == "" || supplied == "" {
		return false
	}

	browser, err := guard.browsers.Get(context, browserSessionID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			ctxutil.GetLogger(context).ErrorContext(context, "csrf_token_load_failed", slog.Any("error", err))
		}
		return false
	}

	return sec.TokensEqual(browser.CSRFToken, supplied)
}
