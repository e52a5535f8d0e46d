// Package http implements the transport core of the Forge client: request
// construction against the API base URL, bearer authentication, lazily
// cached TLS material, proxying, bounded transport retries, and the envelope
// validation boundary.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/forgeworks-io/forge-client/internal/auth"
	"github.com/forgeworks-io/forge-client/internal/constants"
	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/hashicorp/go-retryablehttp"
)

// Request describes one outbound API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ContentType returns the declared content type.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// Client issues requests against the Forge API. Transport failures surface
// to the caller; there is no retry at this layer beyond retryablehttp's
// 5xx/429 policy.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	retryClient  *retryablehttp.Client
	userAgent    string
	logger       forge.Logger
	debug        bool
	tlsMaterial  *TLSMaterial
	proxyURL     string
	interceptors *forge.InterceptorChain
	cache        forge.Cache
	cacheTTL     time.Duration

	transportOnce sync.Once
	transportErr  error
}

// NewClient creates a client for the given base URL. tokenManager may be nil
// for unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		retryClient:  retryClient,
		userAgent:    "forge-client/1",
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// ensureTransport applies proxy and TLS material to the underlying transport
// exactly once. The sync.Once guard serializes concurrent first callers so
// the TLS file reads happen a single time per process.
func (c *Client) ensureTransport() error {
	c.transportOnce.Do(func() {
		proxy, err := proxyFromConfig(c.proxyURL)
		if err != nil {
			c.transportErr = err

			return
		}

		tlsConfig, err := c.tlsMaterial.Config()
		if err != nil {
			c.transportErr = fmt.Errorf("loading TLS material: %w", err)

			return
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = proxy
		transport.TLSClientConfig = tlsConfig

		c.retryClient.HTTPClient.Transport = transport
	})

	return c.transportErr
}

// resolveURL resolves a request path against the base URL. Absolute URLs
// (signed artifact links) pass through untouched.
func (c *Client) resolveURL(path string, query url.Values) string {
	full := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}

	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return full
}

// Do sends the request and reads the whole body. HTTP error statuses are not
// errors here; envelope classification is DoEnvelope's concern.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := c.ensureTransport(); err != nil {
		return nil, err
	}

	fullURL := c.resolveURL(req.Path, req.Query)

	var bodyBytes []byte

	if req.Body != nil {
		var err error

		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	intReq := &forge.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    bodyBytes,
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, intReq); err != nil {
			return nil, err
		}
	}

	if req.Method == http.MethodGet && c.cache != nil {
		if entry, err := c.cache.Get(ctx, fullURL); err == nil {
			resp := cachedResponse(entry)

			if c.debug && c.logger != nil {
				c.logger.Debug("HTTP Response (cached)", map[string]interface{}{
					"method": req.Method,
					"url":    fullURL,
					"status": resp.StatusCode,
				})
			}

			// Cached responses still flow through the response chain so
			// interceptor-backed accounting sees every request.
			if c.interceptors != nil {
				intResp := &forge.Response{
					StatusCode: resp.StatusCode,
					Headers:    resp.Headers,
					Body:       resp.Body,
				}
				if err := c.interceptors.ExecuteResponseInterceptors(ctx, intReq, intResp); err != nil {
					return nil, err
				}
			}

			return resp, nil
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyBytes)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.JSONContentType)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", constants.JSONContentType)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, values := range intReq.Headers {
		for _, value := range values {
			httpReq.Header.Set(key, value)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"status": resp.StatusCode,
		})
	}

	if c.interceptors != nil {
		intResp := &forge.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}
		if err := c.interceptors.ExecuteResponseInterceptors(ctx, intReq, intResp); err != nil {
			return nil, err
		}
	}

	if req.Method == http.MethodGet && c.cache != nil && resp.StatusCode == http.StatusOK {
		ttl := c.cacheTTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		_ = c.cache.Set(ctx, fullURL, &forge.CacheEntry{
			Data:      body,
			ExpiresAt: time.Now().Add(ttl),
			ETag:      httpResp.Header.Get("ETag"),
		})
	}

	return resp, nil
}

// DoEnvelope sends the request and validates the response as an API
// envelope. An error-classified envelope fails fatally with a *RequestError;
// format errors carry a bounded diagnostic of the offending body.
func (c *Client) DoEnvelope(ctx context.Context, req *Request) (*forge.Envelope, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	fullURL := c.resolveURL(req.Path, req.Query)

	env, err := forge.ValidateEnvelope(resp.StatusCode, resp.ContentType(), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w",
			forge.FormatResponseError(req.Method, fullURL, resp.StatusCode, resp.ContentType(), resp.Body), err)
	}

	if env.IsError() {
		return nil, &forge.RequestError{
			Method: req.Method,
			URL:    fullURL,
			Status: resp.StatusCode,
			APIErr: env.APIError(),
		}
	}

	return env, nil
}

// Get issues a GET for path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*forge.Envelope, error) {
	return c.DoEnvelope(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST for path with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*forge.Envelope, error) {
	return c.DoEnvelope(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT for path with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*forge.Envelope, error) {
	return c.DoEnvelope(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH for path with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*forge.Envelope, error) {
	return c.DoEnvelope(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) (*forge.Envelope, error) {
	return c.DoEnvelope(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// DownloadClient returns a plain HTTP client sharing this client's transport
// (proxy and TLS material included) with the longer download timeout.
// Artifact URLs are pre-signed, so no bearer credential is attached.
func (c *Client) DownloadClient() (*http.Client, error) {
	if err := c.ensureTransport(); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: c.retryClient.HTTPClient.Transport,
		Timeout:   constants.DefaultDownloadTimeout,
	}, nil
}

// cachedResponse reconstructs a Response from a cache entry. Only 200 JSON
// bodies are ever cached.
func cachedResponse(entry *forge.CacheEntry) *Response {
	headers := make(http.Header)
	headers.Set("Content-Type", constants.JSONContentType)

	if entry.ETag != "" {
		headers.Set("ETag", entry.ETag)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       entry.Data,
	}
}

// leveledLogger adapts forge.Logger to retryablehttp's LeveledLogger.
type leveledLogger struct {
	logger forge.Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}
