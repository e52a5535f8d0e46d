package forge

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/forgeworks-io/forge-client/internal/constants"
)

// Envelope is the normalized wrapper around every API response body: a meta
// block plus exactly one of Data (success) or Err (error). The raw payloads
// stay unparsed so endpoint clients can narrow them to their own shapes.
type Envelope struct {
	Meta *Meta           `json:"meta"`
	Data json.RawMessage `json:"data,omitempty"`
	Err  json.RawMessage `json:"error,omitempty"`
}

// IsSuccess reports whether the envelope carries a data payload.
func (e *Envelope) IsSuccess() bool {
	return len(e.Data) > 0
}

// IsError reports whether the envelope carries an error payload.
func (e *Envelope) IsError() bool {
	return len(e.Err) > 0
}

// DecodeData unmarshals the success payload into out. It fails on an error
// envelope rather than silently decoding nothing.
func (e *Envelope) DecodeData(out interface{}) error {
	if !e.IsSuccess() {
		return ErrUnknownResponseFormat
	}

	err := json.Unmarshal(e.Data, out)
	if err != nil {
		return fmt.Errorf("decoding envelope data: %w", err)
	}

	return nil
}

// APIError decodes the error payload of an error-classified envelope.
// Returns nil for success envelopes.
func (e *Envelope) APIError() *APIError {
	if !e.IsError() {
		return nil
	}

	apiErr := &APIError{}
	if err := json.Unmarshal(e.Err, apiErr); err != nil || apiErr.Message == "" {
		// Error payload with an unexpected shape; keep it verbatim.
		apiErr = &APIError{Message: string(e.Err)}
	}

	if e.Meta != nil {
		apiErr.Status = e.Meta.Status
		apiErr.RequestID = e.Meta.RequestID
	}

	return apiErr
}

// ValidateEnvelope interprets a raw response as an API envelope.
//
// A 204 bypasses content-type checking entirely and always yields a success
// envelope with empty data. Otherwise the declared content type must be JSON
// (ErrUnknownContentType) and the parsed body must carry a meta block
// (ErrUnknownResponseFormat). Classification into success vs error is purely
// the presence of the data vs error keys; no other field is consulted.
func ValidateEnvelope(status int, contentType string, body []byte) (*Envelope, error) {
	if status == http.StatusNoContent {
		return &Envelope{
			Meta: &Meta{Status: http.StatusNoContent},
			Data: json.RawMessage(`{}`),
		}, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != constants.JSONContentType {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownResponseFormat, err)
	}

	if env.Meta == nil {
		return nil, fmt.Errorf("%w: missing meta", ErrUnknownResponseFormat)
	}

	return &env, nil
}
