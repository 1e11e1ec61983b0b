// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every JSON response shares one flat envelope:
//
//	{"success": true, "message": "Login successful", "user": {...}}
//	{"success": false, "message": "Access denied", "code": "FORBIDDEN"}
//
// Payload keys sit next to "success" rather than under a nested "data" object,
// which is the shape browser clients of the session API already consume.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
)

// Payload holds the top-level keys merged into the envelope.
type Payload map[string]any

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Success writes a {"success": true} envelope with an optional message.
func Success(writer http.ResponseWriter, statusCode int, message string, payload Payload) {
	body := Payload{constants.FieldSuccess: true}
	for key, value := range payload {
		body[key] = value
	}
	if message != "" {
		body[constants.FieldMessage] = message
	}
	JSON(writer, statusCode, body)
}

// OK writes a 200 success envelope.
func OK(writer http.ResponseWriter, payload Payload) {
	Success(writer, http.StatusOK, "", payload)
}

// Message writes a 200 success envelope carrying only a message.
func Message(writer http.ResponseWriter, message string) {
	Success(writer, http.StatusOK, message, nil)
}

// Created writes a 201 success envelope.
func Created(writer http.ResponseWriter, message string, payload Payload) {
	Success(writer, http.StatusCreated, message, payload)
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a {"success": false} envelope.
//
// Errors that are not [apperr.AppError] become a generic 500; the cause is
// logged but never sent to the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// 5xx indicates a server-side problem; the cause goes to the log only.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	body := Payload{
		constants.FieldSuccess: false,
		constants.FieldMessage: appError.Message,
		constants.FieldCode:    appError.Code,
	}
	if len(appError.Details) > 0 {
		body[constants.FieldDetails] = appError.Details
	}

	JSON(writer, appError.HTTPStatus, body)
}
