package forge_test

import (
	"testing"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelope_Success(t *testing.T) {
	t.Parallel()

	body := []byte(`{"meta":{"status":200,"api_version":"v1","request_id":"req-1"},"data":{"id":"job-1"}}`)

	env, err := forge.ValidateEnvelope(200, "application/json", body)
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())
	assert.False(t, env.IsError())
	assert.Equal(t, 200, env.Meta.Status)
	assert.Equal(t, "v1", env.Meta.APIVersion)
	assert.Equal(t, "req-1", env.Meta.RequestID)
}

func TestValidateEnvelope_Error(t *testing.T) {
	t.Parallel()

	body := []byte(`{"meta":{"status":404,"api_version":"v1","request_id":"req-2"},"error":{"message":"job not found","code":"not_found"}}`)

	env, err := forge.ValidateEnvelope(404, "application/json", body)
	require.NoError(t, err)
	assert.False(t, env.IsSuccess())
	assert.True(t, env.IsError())

	apiErr := env.APIError()
	require.NotNil(t, apiErr)
	assert.Equal(t, "job not found", apiErr.Message)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "req-2", apiErr.RequestID)
}

func TestValidateEnvelope_NoContent(t *testing.T) {
	t.Parallel()

	// 204 bypasses content-type checking entirely.
	contentTypes := []string{"", "text/html", "application/octet-stream", "application/json"}

	for _, contentType := range contentTypes {
		env, err := forge.ValidateEnvelope(204, contentType, nil)
		require.NoError(t, err)
		assert.True(t, env.IsSuccess())
		assert.Equal(t, 204, env.Meta.Status)
	}
}

func TestValidateEnvelope_UnknownContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
	}{
		{name: "html", contentType: "text/html"},
		{name: "plain text", contentType: "text/plain; charset=utf-8"},
		{name: "empty", contentType: ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := forge.ValidateEnvelope(200, testCase.contentType, []byte(`{"meta":{"status":200}}`))
			require.ErrorIs(t, err, forge.ErrUnknownContentType)
		})
	}
}

func TestValidateEnvelope_UnknownResponseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing meta", body: `{"data":{"id":"job-1"}}`},
		{name: "null meta", body: `{"meta":null,"data":{}}`},
		{name: "malformed json", body: `<html>not json</html>`},
		{name: "empty body", body: ``},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := forge.ValidateEnvelope(200, "application/json", []byte(testCase.body))
			require.ErrorIs(t, err, forge.ErrUnknownResponseFormat)
		})
	}
}

func TestEnvelope_DecodeData(t *testing.T) {
	t.Parallel()

	body := []byte(`{"meta":{"status":200},"data":{"id":"job-9","state":"running"}}`)

	env, err := forge.ValidateEnvelope(200, "application/json", body)
	require.NoError(t, err)

	var job forge.Job

	require.NoError(t, env.DecodeData(&job))
	assert.Equal(t, "job-9", job.ID)
	assert.Equal(t, forge.JobStateRunning, job.State)
}

func TestEnvelope_APIError_UnexpectedShape(t *testing.T) {
	t.Parallel()

	body := []byte(`{"meta":{"status":500},"error":"boom"}`)

	env, err := forge.ValidateEnvelope(500, "application/json", body)
	require.NoError(t, err)
	require.True(t, env.IsError())

	apiErr := env.APIError()
	require.NotNil(t, apiErr)
	assert.Contains(t, apiErr.Message, "boom")
}

func TestJobState_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, forge.JobStateSuccess.Terminal())
	assert.True(t, forge.JobStateFailed.Terminal())
	assert.True(t, forge.JobStateCanceled.Terminal())
	assert.False(t, forge.JobStateQueued.Terminal())
	assert.False(t, forge.JobStateCreated.Terminal())
	assert.False(t, forge.JobStateRunning.Terminal())
}
