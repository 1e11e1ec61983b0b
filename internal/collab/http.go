// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collab

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meattrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/meattrack/internal/platform/request"
	"github.com/taibuivan/meattrack/internal/platform/respond"
	"github.com/taibuivan/meattrack/internal/platform/validate"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the chat session endpoints.
type Handler struct {
	chatService *Service
	guard       *middleware.Guard
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, guard *middleware.Guard) *Handler {
	return &Handler{chatService: service, guard: guard}
}

// Routes returns the chat routes, mounted under /chat/sessions.
//
// Every route under /{id} requires a participant binding to that chat.
//
// # Endpoints
//   - GET  /                   : Chats of the caller.
//   - POST /                   : Create a chat.
//   - GET  /{id}               : Open a chat.
//   - GET  /{id}/participants  : Participants with presence.
//   - GET  /{id}/messages      : Messages after an id.
//   - POST /{id}/typing        : Set the typing signal.
//   - GET  /{id}/typing        : Participants currently typing.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{id}", func(r chi.Router) {
		r.Use(handler.guard.RequireResourceRole(handler.chatService, "id"))

		r.Get("/", handler.get)
		r.Get("/participants", handler.participants)
		r.Get("/messages", handler.messages)
		r.Post("/typing", handler.setTyping)
		r.Get("/typing", handler.typing)
	})

	return router
}

// expiryLayouts are accepted for expires_at in form posts.
var expiryLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05"}

// createForm reads a [CreateInput] from a urlencoded form.
func createForm(request *http.Request) (CreateInput, error) {
	input := CreateInput{
		Title:       requestutil.FormValue(request, FieldTitle),
		Description: requestutil.FormValue(request, FieldDescription),
		AIModel:     requestutil.FormValue(request, FieldAIModel),
		AccessCode:  requestutil.FormValue(request, FieldAccessCode),
	}

	if raw := requestutil.FormValue(request, FieldMaxParticipants); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return input, validate.RequiredError(FieldMaxParticipants, "Must be a number")
		}
		input.MaxParticipants = value
	}

	if raw := requestutil.FormValue(request, FieldExpiresAt); raw != "" {
		for _, layout := range expiryLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				input.ExpiresAt = &parsed
				break
			}
		}
		if input.ExpiresAt == nil {
			return input, validate.RequiredError(FieldExpiresAt, "Must be a valid date and time")
		}
	}

	return input, nil
}

/*
POST /api/v1/chat/sessions.

Request:
  - Body: CreateInput as JSON or a urlencoded form

Response:
  - 201: {"session": ChatSession}
  - 400: Validation failure
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if requestutil.IsForm(request) {
		if input, err = createForm(request); err != nil {
			respond.Error(writer, request, err)
			return
		}
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.Client = auth.ClientMeta{IPAddress: requestutil.ClientIP(request), UserAgent: request.UserAgent()}

	chat, err := handler.chatService.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Session created successfully", respond.Payload{FieldSession: chat})
}

/*
GET /api/v1/chat/sessions.

Response:
  - 200: {"sessions": []ChatView, "total": n}
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chats, err := handler.chatService.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldSessions: chats, FieldTotal: len(chats)})
}

/*
GET /api/v1/chat/sessions/{id}.

Response:
  - 200: {"session": ChatView}
  - 403: No participant binding
  - 422: Session is no longer active
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chat, err := handler.chatService.Get(request.Context(), requestutil.Param(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldSession: chat})
}

// GET /api/v1/chat/sessions/{id}/participants.
func (handler *Handler) participants(writer http.ResponseWriter, request *http.Request) {
	participants, err := handler.chatService.Participants(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldParticipants: participants, FieldCount: len(participants)})
}

/*
GET /api/v1/chat/sessions/{id}/messages?after=&limit=.

Response:
  - 200: {"messages": []Message, "count": n}; at most 100 per call
*/
func (handler *Handler) messages(writer http.ResponseWriter, request *http.Request) {
	cursor := pagination.CursorFromRequest(request, DefaultMessageLimit, MaxMessageLimit)

	messages, err := handler.chatService.Messages(request.Context(), requestutil.Param(request, "id"), cursor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldMessages: messages, FieldCount: len(messages)})
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

/*
POST /api/v1/chat/sessions/{id}/typing.

Request:
  - Body: {"is_typing": bool} as JSON, or is_typing=1 as a form
*/
func (handler *Handler) setTyping(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input typingRequest
	if requestutil.IsForm(request) {
		input.IsTyping = requestutil.FormBool(request, FieldIsTyping)
	} else if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.chatService.SetTyping(request.Context(), requestutil.Param(request, "id"), userID, input.IsTyping); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Typing status updated")
}

// GET /api/v1/chat/sessions/{id}/typing.
func (handler *Handler) typing(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.chatService.TypingUsers(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Payload{FieldTypingUsers: users, FieldCount: len(users)})
}
