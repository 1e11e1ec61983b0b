// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/cookie"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/metrics"
	requestutil "github.com/taibuivan/meattrack/internal/platform/request"
	"github.com/taibuivan/meattrack/internal/platform/respond"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # Collaborators
//
// The interfaces below decouple the middleware from the auth and collab
// services, so the mediator can be tested with small fakes.

// SessionResolver turns the request cookies into a session context.
type SessionResolver interface {
	Resolve(context context.Context, browserSessionID, rememberToken string) (*sec.Resolution, error)
}

// CSRFVerifier checks a supplied token against the browser session's token.
type CSRFVerifier interface {
	Verify(context context.Context, browserSessionID, supplied string) bool
}

// RoleLoader reads the current global role and status of an account.
type RoleLoader interface {
	LoadAccess(context context.Context, userID string) (sec.UserRole, sec.UserStatus, error)
}

// ResourceRoleResolver reads a user's binding to one resource.
// A missing binding must be reported as an [apperr.NotFound] error.
type ResourceRoleResolver interface {
	ResourceRole(context context.Context, resourceID, userID string) (sec.ParticipantRole, error)
}

// Flasher stores a one-shot message shown on the next page render.
type Flasher interface {
	SetFlash(context context.Context, browserSessionID, message string) error
}

// Denial reasons reported to metrics.
const (
	reasonUnauthenticated = "unauthenticated"
	reasonRole            = "role"
	reasonInactive        = "inactive"
	reasonResource        = "resource"
	reasonCSRF            = "csrf"
)

// Guard bundles the session, CSRF and access-mediation middleware.
type Guard struct {
	sessions  SessionResolver
	csrf      CSRFVerifier
	roles     RoleLoader
	flash     Flasher
	jar       *cookie.Jar
	loginPath string
}

// GuardDeps lists the collaborators of a [Guard].
type GuardDeps struct {
	Sessions SessionResolver
	CSRF     CSRFVerifier
	Roles    RoleLoader
	Flash    Flasher
	Jar      *cookie.Jar

	// LoginPath is where unauthenticated browsers are redirected. Defaults to "/login".
	LoginPath string
}

// NewGuard wires the access mediator.
func NewGuard(deps GuardDeps) *Guard {
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{
		sessions:  deps.Sessions,
		csrf:      deps.CSRF,
		roles:     deps.Roles,
		flash:     deps.Flash,
		jar:       deps.Jar,
		loginPath: loginPath,
	}
}

// # Session Resolution

// Session resolves the browser session for every request and places a
// [sec.SessionContext] in the context.
//
// # Flow
//  1. Read the sid and session_token cookies.
//  2. Resolve them (marker fast path, remember-me slow path).
//  3. Re-issue or clear cookies as the resolution requires.
//  4. Inject the session context for downstream handlers.
//
// A resolution error yields an anonymous context with no CSRF token, so the
// request can neither pass authentication nor mutate anything.
func (guard *Guard) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		browserSessionID, rememberToken := cookie.Read(request)

		resolution, err := guard.sessions.Resolve(ctx, browserSessionID, rememberToken)
		if err != nil || resolution == nil || resolution.Session == nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "session_resolution_failed", slog.Any("error", err))
			metrics.RecordSessionResolution("error")
			resolution = &sec.Resolution{Session: &sec.SessionContext{}, Path: "error"}
		} else {
			metrics.RecordSessionResolution(resolution.Path)
		}

		if resolution.IssueBrowserCookie {
			guard.jar.SetBrowserSession(writer, resolution.Session.BrowserSessionID)
		}
		if resolution.ClearRememberCookie {
			guard.jar.ClearRemember(writer)
		}

		recordUser(ctx, resolution.Session.UserID)
		next.ServeHTTP(writer, request.WithContext(ctxutil.WithSession(ctx, resolution.Session)))
	})
}

// # CSRF Guard

// CSRF rejects state-mutating requests whose token does not match the browser
// session's token. Safe methods pass through.
//
// The token is read from the X-CSRF-Token header, or from the csrf_token field
// of a form body.
func (guard *Guard) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(writer, request)
			return
		}

		supplied := request.Header.Get(constants.CSRFHeaderName)
		if supplied == "" && requestutil.IsForm(request) {
			supplied = request.PostFormValue(constants.CSRFFormField)
		}

		ctx := request.Context()
		session := ctxutil.GetSession(ctx)
		if session == nil || !guard.csrf.Verify(ctx, session.BrowserSessionID, supplied) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "csrf_validation_failed",
				slog.Bool("token_supplied", supplied != ""),
			)
			metrics.RecordCSRFFailure()
			guard.deny(writer, request, apperr.CSRFFailed(), reasonCSRF)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// # Access Mediation

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered after [Guard.Session].
func (guard *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			guard.deny(writer, request, apperr.Unauthorized("Not authenticated"), reasonUnauthenticated)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests unless the caller's current role is in allowed.
//
// The role is re-read from the credential store on every request, so a role
// change or deactivation takes effect immediately. It implies [Guard.RequireAuth].
// Membership is exact: [sec.RoleAdmin] does not satisfy RequireRole(RoleManager).
func (guard *Guard) RequireRole(allowed ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			session := ctxutil.GetAuthUser(ctx)
			if session == nil {
				guard.deny(writer, request, apperr.Unauthorized("Not authenticated"), reasonUnauthenticated)
				return
			}

			role, status, err := guard.roles.LoadAccess(ctx, session.UserID)
			if err != nil {
				ctxutil.GetLogger(ctx).ErrorContext(ctx, "role_lookup_failed",
					slog.String("user_id", session.UserID),
					slog.Any("error", err),
				)
				guard.deny(writer, request, apperr.AccessDenied(), reasonRole)
				return
			}

			if status != sec.StatusActive {
				guard.deny(writer, request, apperr.AccessDenied(), reasonInactive)
				return
			}

			if !role.In(allowed...) {
				guard.deny(writer, request, apperr.AccessDenied(), reasonRole)
				return
			}

			refreshed := *session
			refreshed.Role = role
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithSession(ctx, &refreshed)))
		})
	}
}

// RequireResourceRole blocks requests unless the caller is bound to the
// resource named by the URL parameter urlParam with a role in allowed (any
// role when allowed is empty).
//
// A missing binding is reported as a generic "Access denied", never as
// "not found", so callers learn nothing about resources they cannot see.
// Global roles do not bypass the check.
func (guard *Guard) RequireResourceRole(resolver ResourceRoleResolver, urlParam string, allowed ...sec.ParticipantRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			session := ctxutil.GetAuthUser(ctx)
			if session == nil {
				guard.deny(writer, request, apperr.Unauthorized("Not authenticated"), reasonUnauthenticated)
				return
			}

			resourceID := chi.URLParam(request, urlParam)
			if resourceID == "" {
				guard.deny(writer, request, apperr.AccessDenied(), reasonResource)
				return
			}

			role, err := resolver.ResourceRole(ctx, resourceID, session.UserID)
			if err != nil {
				if !apperr.IsNotFound(err) {
					ctxutil.GetLogger(ctx).ErrorContext(ctx, "resource_role_lookup_failed",
						slog.String("resource_id", resourceID),
						slog.Any("error", err),
					)
				}
				guard.deny(writer, request, apperr.AccessDenied(), reasonResource)
				return
			}

			if !role.In(allowed...) {
				guard.deny(writer, request, apperr.AccessDenied(), reasonResource)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// deny ends the request. Browsers get a redirect and a flash message; API
// clients get the JSON error envelope.
func (guard *Guard) deny(writer http.ResponseWriter, request *http.Request, appError *apperr.AppError, reason string) {
	if reason != reasonCSRF {
		metrics.RecordAccessDenied(reason)
	}

	if !wantsHTML(request) {
		respond.Error(writer, request, appError)
		return
	}

	ctx := request.Context()
	target := "/"
	if appError.HTTPStatus == http.StatusUnauthorized {
		target = guard.loginPath
	}

	if session := ctxutil.GetSession(ctx); session != nil && session.BrowserSessionID != "" && guard.flash != nil {
		if err := guard.flash.SetFlash(ctx, session.BrowserSessionID, flashFor(appError)); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "flash_store_failed", slog.Any("error", err))
		}
	}

	http.Redirect(writer, request, target, http.StatusSeeOther)
}

func flashFor(appError *apperr.AppError) string {
	switch appError.Code {
	case apperr.CodeUnauthorized:
		return "Please log in to continue."
	case apperr.CodeCSRFFailed:
		return "Security validation failed."
	default:
		return "Access denied."
	}
}
