// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
)

/*
TestAppError_Unwrap verifies that wrapped causes stay reachable through errors.Is.
*/
func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("store: %w", apperr.Internal(cause))

	assert.ErrorIs(t, err, cause)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInternal, ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
	assert.NotContains(t, ae.Error(), "connection reset")
}

/*
TestAppError_GenericMessages checks that security failures never reveal detail.
*/
func TestAppError_GenericMessages(t *testing.T) {
	assert.Equal(t, "Access denied", apperr.AccessDenied().Message)
	assert.Equal(t, http.StatusForbidden, apperr.AccessDenied().HTTPStatus)

	csrf := apperr.CSRFFailed()
	assert.Equal(t, "Security validation failed", csrf.Message)
	assert.Equal(t, apperr.CodeCSRFFailed, csrf.Code)
}

/*
TestAppError_CodeHelpers exercises IsNotFound and IsCode on wrapped chains.
*/
func TestAppError_CodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", apperr.NotFound("User"))

	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.IsNotFound(errors.New("plain")))
	assert.True(t, apperr.IsCode(apperr.Conflict("dup"), apperr.CodeConflict))
	assert.False(t, apperr.IsAppError(errors.New("plain")))
}
