// Package forge provides the public types and protocols of the Forge API
// client: the response envelope contract, error taxonomy and formatting,
// cursor pagination over list endpoints, response caching, and the
// request/response interceptor chain.
//
// The transport itself lives in internal/http; resource clients for jobs and
// artifacts live in internal/client and are constructed through the
// forgeclient package. This package holds everything a caller needs to
// configure a client and interpret what the service sent back.
//
// Every well-formed response is an envelope: a meta block carrying the
// HTTP-equivalent status, API version and request id, plus exactly one of a
// data payload (success) or an error payload (failure). Validation and
// classification happen at a single boundary, ValidateEnvelope, so callers
// never inspect raw bodies.
package forge
