package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-directory/internal/apierr"
)

func TestFromStatusNotFound(t *testing.T) {
	t.Parallel()

	err := apierr.FromStatus(http.StatusNotFound, nil)

	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP_404", apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Empty(t, apiErr.Details)

	assert.True(t, apierr.IsNotFound(err))
	assert.False(t, apierr.IsRetryable(err))
}

func TestFromStatusRetryableClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, apierr.IsRetryable(apierr.FromStatus(http.StatusInternalServerError, nil)))
	assert.True(t, apierr.IsRetryable(apierr.FromStatus(http.StatusBadGateway, nil)))
	assert.True(t, apierr.IsRetryable(apierr.FromStatus(http.StatusTooManyRequests, nil)))
	assert.False(t, apierr.IsRetryable(apierr.FromStatus(http.StatusBadRequest, nil)))
	assert.False(t, apierr.IsRetryable(apierr.FromStatus(http.StatusGone, nil)))
}

func TestFromStatusKeepsParsedBody(t *testing.T) {
	t.Parallel()

	err := apierr.FromStatus(http.StatusForbidden, map[string]any{"message": "rate limited"})

	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rate limited", apiErr.Details["message"])
}

func TestNetwork(t *testing.T) {
	t.Parallel()

	err := apierr.Network(errors.New("dial tcp: connection refused"))

	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.CodeNetworkError, apiErr.Code)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "dial tcp: connection refused", apiErr.Message)

	assert.True(t, apierr.IsRetryable(err))
	assert.False(t, apierr.IsNotFound(err))
}

func TestValidationErrorEnvelope(t *testing.T) {
	t.Parallel()

	valErr := apierr.NewValidationError("player profile", []apierr.Issue{
		{Path: "username", Message: "required", Code: "required"},
		{Path: "country", Message: "must be 2 chars", Code: "len", Expected: "2", Received: "usa"},
	})
	assert.True(t, apierr.IsValidation(valErr))

	envelope := valErr.Envelope()
	assert.Equal(t, apierr.CodeValidationError, envelope.Error.Code)
	require.Contains(t, envelope.Error.Details, "username")
	require.Contains(t, envelope.Error.Details, "country")
}

func TestRender(t *testing.T) {
	t.Parallel()

	status, envelope := apierr.Render(apierr.NewValidationError("x", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apierr.CodeValidationError, envelope.Error.Code)

	status, envelope = apierr.Render(apierr.FromStatus(http.StatusNotFound, nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "HTTP_404", envelope.Error.Code)

	status, envelope = apierr.Render(fmt.Errorf("wrapped: %w", apierr.FromStatus(http.StatusBadGateway, nil)))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "HTTP_502", envelope.Error.Code)

	status, envelope = apierr.Render(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apierr.CodeInternalError, envelope.Error.Code)
}
