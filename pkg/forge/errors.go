package forge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgeworks-io/forge-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	// ErrUnknownContentType means the server declared a non-JSON content type
	// on a non-204 response. Never retried.
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrUnknownResponseFormat means the body could not be interpreted as an
	// API envelope (malformed JSON or missing meta). Never retried.
	ErrUnknownResponseFormat = errors.New("unknown response format")

	// ErrNoMorePages is returned by a cursor advanced past exhaustion.
	ErrNoMorePages = errors.New("no more pages")

	// ErrPageShape means a list endpoint returned a success envelope that the
	// caller's guard rejected. Fatal: the API contract and client disagree.
	ErrPageShape = errors.New("unexpected page shape")

	// ErrArtifactNotProduced means the service has no download URL for the
	// requested artifact type.
	ErrArtifactNotProduced = errors.New("artifact not produced")

	// ErrInvalidPathList means a config value could not be normalized to a
	// list of file paths.
	ErrInvalidPathList = errors.New("invalid path list")

	// ErrConfigRequired means the client was constructed with a nil config.
	ErrConfigRequired = errors.New("config is required")

	// ErrAPIEndpointRequired means the client was constructed without a base URL.
	ErrAPIEndpointRequired = errors.New("API endpoint is required")

	// ErrNotAuthenticated means no token is available for the current API.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is the structured error payload of an error-classified envelope.
type APIError struct {
	Status    int    `json:"-"`
	RequestID string `json:"-"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != "" {
		fmt.Fprintf(&b, " (code: %s)", e.Code)
	}

	return b.String()
}

// RequestError is the fatal-channel error for a request whose response
// classified as an error envelope, or could not be interpreted at all.
type RequestError struct {
	Method  string
	URL     string
	Status  int
	APIErr  *APIError
	RawBody []byte
}

// Error implements the error interface. The rendering is bounded regardless
// of how badly the server misbehaves.
func (e *RequestError) Error() string {
	if e.APIErr != nil {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.Status, e.APIErr.Error())
	}

	return formatRawResponse(e.Method, e.URL, e.Status, e.RawBody)
}

// Unwrap exposes the structured API error for errors.As chains.
func (e *RequestError) Unwrap() error {
	if e.APIErr != nil {
		return e.APIErr
	}

	return nil
}

// FormatResponseError renders a human diagnostic for a failed request.
//
// If the body validates as an API error envelope, the structured payload is
// rendered. Anything else falls back to the raw body, truncated to
// FormatErrorBodyMaxLength characters with a marker stating how much was
// elided. This never fails and always returns some diagnostic.
func FormatResponseError(method, url string, status int, contentType string, body []byte) string {
	env, err := ValidateEnvelope(status, contentType, body)
	if err == nil && env.IsError() {
		return (&RequestError{Method: method, URL: url, Status: status, APIErr: env.APIError()}).Error()
	}

	return formatRawResponse(method, url, status, body)
}

func formatRawResponse(method, url string, status int, body []byte) string {
	header := fmt.Sprintf("HTTP %d: %s %s", status, method, url)
	if len(body) == 0 {
		return header
	}

	text := string(body)
	if len(text) <= constants.FormatErrorBodyMaxLength {
		return header + "\n" + text
	}

	elided := len(text) - constants.FormatErrorBodyMaxLength

	return fmt.Sprintf("%s\n%s... (%d characters truncated)",
		header, text[:constants.FormatErrorBodyMaxLength], elided)
}

// IsNotFound checks whether an error is a not-found request error.
func IsNotFound(err error) bool {
	reqErr := &RequestError{}

	return errors.As(err, &reqErr) && reqErr.Status == 404
}

// IsUnauthorized checks whether an error is an authentication failure.
func IsUnauthorized(err error) bool {
	reqErr := &RequestError{}

	return errors.As(err, &reqErr) && reqErr.Status == 401
}
