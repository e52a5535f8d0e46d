package forge_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		apiErr   forge.APIError
		expected string
	}{
		{
			name:     "message only",
			apiErr:   forge.APIError{Message: "job not found"},
			expected: "job not found",
		},
		{
			name:     "message and detail",
			apiErr:   forge.APIError{Message: "invalid request", Detail: "page_size must be positive"},
			expected: "invalid request: page_size must be positive",
		},
		{
			name:     "message detail and code",
			apiErr:   forge.APIError{Message: "invalid request", Detail: "bad field", Code: "validation_failed"},
			expected: "invalid request: bad field (code: validation_failed)",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, testCase.apiErr.Error())
		})
	}
}

func TestFormatResponseError_Envelope(t *testing.T) {
	t.Parallel()

	body := []byte(`{"meta":{"status":422,"request_id":"req-7"},"error":{"message":"invalid artifact type","code":"validation_failed"}}`)

	got := forge.FormatResponseError("GET", "https://api.example.com/v1/jobs/1", 422, "application/json", body)

	assert.Equal(t, "GET https://api.example.com/v1/jobs/1: HTTP 422: invalid artifact type (code: validation_failed)", got)
}

func TestFormatResponseError_RawBody(t *testing.T) {
	t.Parallel()

	body := []byte("<html><body>Bad Gateway</body></html>")

	got := forge.FormatResponseError("GET", "https://api.example.com/v1/jobs", 502, "text/html", body)

	assert.Equal(t, "HTTP 502: GET https://api.example.com/v1/jobs\n<html><body>Bad Gateway</body></html>", got)
}

func TestFormatResponseError_EmptyBody(t *testing.T) {
	t.Parallel()

	got := forge.FormatResponseError("DELETE", "https://api.example.com/v1/jobs/1", 500, "", nil)

	assert.Equal(t, "HTTP 500: DELETE https://api.example.com/v1/jobs/1", got)
}

func TestFormatResponseError_Truncation(t *testing.T) {
	t.Parallel()

	body := []byte(strings.Repeat("x", 1500))

	got := forge.FormatResponseError("GET", "https://api.example.com/v1/jobs", 500, "text/plain", body)

	require.True(t, strings.HasPrefix(got, "HTTP 500: GET https://api.example.com/v1/jobs\n"))
	assert.Contains(t, got, strings.Repeat("x", 1000)+"... (500 characters truncated)")
	assert.NotContains(t, got, strings.Repeat("x", 1001))
}

func TestFormatResponseError_ExactLimitNotTruncated(t *testing.T) {
	t.Parallel()

	body := []byte(strings.Repeat("y", 1000))

	got := forge.FormatResponseError("GET", "https://api.example.com/v1/jobs", 500, "text/plain", body)

	assert.NotContains(t, got, "truncated")
	assert.True(t, strings.HasSuffix(got, strings.Repeat("y", 1000)))
}

func TestRequestError_Unwrap(t *testing.T) {
	t.Parallel()

	apiErr := &forge.APIError{Status: 404, Message: "job not found"}
	reqErr := &forge.RequestError{Method: "GET", URL: "https://api.example.com/v1/jobs/1", Status: 404, APIErr: apiErr}

	wrapped := fmt.Errorf("fetching job: %w", reqErr)

	target := &forge.APIError{}
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "job not found", target.Message)

	assert.True(t, forge.IsNotFound(wrapped))
	assert.False(t, forge.IsUnauthorized(wrapped))
}

func TestIsUnauthorized(t *testing.T) {
	t.Parallel()

	reqErr := &forge.RequestError{Method: "GET", URL: "https://api.example.com/v1/jobs", Status: 401}

	assert.True(t, forge.IsUnauthorized(reqErr))
	assert.False(t, forge.IsNotFound(reqErr))
	assert.False(t, forge.IsUnauthorized(forge.ErrNoMorePages))
}
