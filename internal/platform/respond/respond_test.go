// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/respond"
)

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

/*
TestSuccess_FlatEnvelope checks that payload keys sit beside "success".
*/
func TestSuccess_FlatEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Success(recorder, http.StatusOK, "Login successful", respond.Payload{"user": map[string]string{"id": "u1"}})

	body := decode(t, recorder)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "u1", body["user"].(map[string]any)["id"])
}

/*
TestError_AppError maps codes and hides causes.
*/
func TestError_AppError(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	recorder := httptest.NewRecorder()
	respond.Error(recorder, request, apperr.CSRFFailed())
	body := decode(t, recorder)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Security validation failed", body["message"])
	assert.Equal(t, "CSRF_FAILED", body["code"])
	assert.NotContains(t, body, "details")

	recorder = httptest.NewRecorder()
	respond.Error(recorder, request, errors.New("pq: relation users does not exist"))
	body = decode(t, recorder)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "An unexpected error occurred", body["message"])
	assert.NotContains(t, recorder.Body.String(), "relation")
}
