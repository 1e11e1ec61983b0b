// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meattrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/meattrack/internal/platform/request"
	"github.com/taibuivan/meattrack/internal/platform/respond"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/platform/validate"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements account and user administration endpoints.
type Handler struct {
	accountService *Service
	guard          *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{accountService: service, guard: guard}
}

// Routes returns the self-service routes, mounted under /account.
//
// # Endpoints
//   - GET    /me               : Current profile.
//   - GET    /me/sessions      : Active sessions, current one flagged.
//   - DELETE /me/sessions/{id} : Revoke one own session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Get("/me/sessions", handler.listSessions)
	router.Delete("/me/sessions/{id}", handler.revokeSession)

	return router
}

// AdminRoutes returns the user administration routes, mounted under /users.
//
// # Endpoints
//   - GET   /            : List users (admin, manager).
//   - POST  /            : Create a user (admin).
//   - PATCH /{id}/status : Activate or deactivate a user (admin).
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.RequireRole(sec.RoleAdmin, sec.RoleManager)).Get("/", handler.listUsers)
	router.Group(func(r chi.Router) {
		r.Use(handler.guard.RequireRole(sec.RoleAdmin))
		r.Post("/", handler.createUser)
		r.Patch("/{id}/status", handler.updateStatus)
	})

	return router
}

func clientMeta(request *http.Request) auth.ClientMeta {
	return auth.ClientMeta{IPAddress: requestutil.ClientIP(request), UserAgent: request.UserAgent()}
}

// # Self Service Endpoints

/*
GET /api/v1/account/me.

Response:
  - 200: {"user": User}
  - 401: Not authenticated
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldUser: user})
}

/*
GET /api/v1/account/me/sessions.

Response:
  - 200: {"sessions": []SessionInfo}
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	session, err := requestutil.RequiredSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), session.UserID, session.SessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldSessions: sessions})
}

/*
DELETE /api/v1/account/me/sessions/{id}.

Response:
  - 200: Session revoked
  - 404: No such session for the caller
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "id")
	if err := handler.accountService.RevokeSession(request.Context(), userID, sessionID, clientMeta(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Session revoked")
}

// # Administration Endpoints

/*
GET /api/v1/users?page=&limit=&role=&status=&q=.

Response:
  - 200: {"users": []User, "pagination": Meta}
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	filter := UserFilter{
		Role:   sec.UserRole(query.Get(FieldRole)),
		Status: sec.UserStatus(query.Get(FieldStatus)),
		Search: query.Get(FieldSearch),
	}

	users, meta, err := handler.accountService.ListUsers(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldUsers: users, FieldPagination: meta})
}

/*
POST /api/v1/users.

Request:
  - Body: CreateUserInput

Response:
  - 201: {"user": User}
  - 400: Validation failure
  - 409: Username or email already exists
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.Client = clientMeta(request)

	user, err := handler.accountService.CreateUser(request.Context(), actorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User created", respond.Payload{FieldUser: user})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

/*
PATCH /api/v1/users/{id}/status.

Request:
  - Body: {"status": "active" | "inactive"}

Response:
  - 200: {"user": User}
  - 403: Changing one's own status
*/
func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateStatus(request.Context(), actorID, requestutil.Param(request, "id"), input.Status, clientMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, "Status updated", respond.Payload{FieldUser: user})
}
