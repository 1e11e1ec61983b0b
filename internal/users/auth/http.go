// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meattrack/internal/platform/cookie"
	requestutil "github.com/taibuivan/meattrack/internal/platform/request"
	"github.com/taibuivan/meattrack/internal/platform/respond"
	"github.com/taibuivan/meattrack/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// CSRF validation of the mutating routes happens in the router-level guard;
// this handler only moves data between HTTP and [Service].
type Handler struct {
	authService *Service
	csrf        *CSRFGuard
	jar         *cookie.Jar
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, csrf *CSRFGuard, jar *cookie.Jar) *Handler {
	return &Handler{authService: service, csrf: csrf, jar: jar}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - GET  /csrf         : Returns the CSRF token of the browser session.
//   - POST /register     : Creates a new account.
//   - POST /login        : Opens a session and sets the cookies.
//   - POST /logout       : Ends the session and clears the cookies.
//   - GET  /session      : Reports the authenticated user.
//   - GET  /verify-email : Redeems a verification link.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/csrf", handler.csrfToken)
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.session)
	router.Get("/verify-email", handler.verifyEmail)

	return router
}

// clientMeta extracts request metadata stored with sessions and activity rows.
func clientMeta(request *http.Request) ClientMeta {
	return ClientMeta{IPAddress: requestutil.ClientIP(request), UserAgent: request.UserAgent()}
}

/*
CSRFToken returns the token the client must echo on mutating requests.

GET /api/v1/auth/csrf

Response:
  - 200: {"csrf_token": "..."}
  - 503: The browser session store is unavailable
*/
func (handler *Handler) csrfToken(writer http.ResponseWriter, request *http.Request) {
	var browserSessionID string
	if session := requestutil.Session(request); session != nil {
		browserSessionID = session.BrowserSessionID
	}

	token, err := handler.csrf.IssueToken(request.Context(), browserSessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldCSRFToken: token})
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Request:
  - Body: RegisterInput as JSON or a urlencoded form

Response:
  - 201: Account created; verification_url only in development
  - 400: Validation failure
  - 409: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput

	if requestutil.IsForm(request) {
		input = RegisterInput{
			Username:        requestutil.FormValue(request, FieldUsername),
			Email:           requestutil.FormValue(request, FieldEmail),
			Password:        request.PostFormValue(FieldPassword),
			ConfirmPassword: request.PostFormValue(FieldConfirmPassword),
			FullName:        requestutil.FormValue(request, FieldFullName),
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.Client = clientMeta(request)

	result, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := respond.Payload{FieldUser: result.User}
	if result.VerificationURL != "" {
		payload[FieldVerificationURL] = result.VerificationURL
	}

	respond.Created(writer, "Registration successful. Please check your email to verify your account.", payload)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: On success the browser session is rotated (new sid and CSRF token).
The remember-me cookie is set only when requested and cleared otherwise.

Request:
  - Body: {"email", "password", "remember"} as JSON or a urlencoded form

Response:
  - 200: {"user", "csrf_token"}
  - 401: Invalid email or password
  - 429: Too many failed attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput

	if requestutil.IsForm(request) {
		input = LoginInput{
			Email:    requestutil.FormValue(request, FieldEmail),
			Password: request.PostFormValue(FieldPassword),
			Remember: requestutil.FormBool(request, FieldRemember),
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if session := requestutil.Session(request); session != nil {
		input.BrowserSessionID = session.BrowserSessionID
	}
	input.Client = clientMeta(request)

	result, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.jar.SetBrowserSession(writer, result.Browser.ID)
	if result.Remember {
		handler.jar.SetRemember(writer, result.Token, result.ExpiresAt)
	} else {
		handler.jar.ClearRemember(writer)
	}

	respond.Success(writer, http.StatusOK, "Login successful", respond.Payload{
		FieldUser:      result.User,
		FieldCSRFToken: result.Browser.CSRFToken,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Always succeeds. Server-side cleanup is best effort and both
cookies are cleared regardless.

Response:
  - 200: Logged out
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	_, rememberToken := cookie.Read(request)

	input := LogoutInput{RememberToken: rememberToken, Client: clientMeta(request)}
	if session := requestutil.Session(request); session != nil {
		input.UserID = session.UserID
		input.BrowserSessionID = session.BrowserSessionID
	}

	handler.authService.Logout(request.Context(), input)
	handler.jar.ClearAll(writer)

	respond.Message(writer, "Logged out successfully")
}

/*
Session reports the authenticated user and any pending flash message.

GET /api/v1/auth/session

Response:
  - 200: {"authenticated": true, "user", "flash"}
  - 401: Not authenticated
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	user, flash, err := handler.authService.SessionStatus(request.Context(), requestutil.Session(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := respond.Payload{FieldAuthenticated: true, FieldUser: user}
	if flash != "" {
		payload[FieldFlash] = flash
	}
	respond.OK(writer, payload)
}

/*
VerifyEmail confirms a user's email ownership.

GET /api/v1/auth/verify-email?token=

Response:
  - 200: Email verified
  - 400: Invalid or expired verification link
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(FieldToken)

	if err := handler.authService.VerifyEmail(request.Context(), token, clientMeta(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Email verified successfully")
}
