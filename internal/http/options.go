package http

import (
	"time"

	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and retry logging.
func WithLogger(logger forge.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig configures transport-level retries (5xx and 429 only;
// format and business errors are never retried).
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = retryMax
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.retryClient.HTTPClient.Timeout = timeout
	}
}

// WithTLSMaterial injects mutual-TLS material. File contents load lazily on
// the first request and are cached for the process lifetime.
func WithTLSMaterial(material *TLSMaterial) Option {
	return func(c *Client) {
		c.tlsMaterial = material
	}
}

// WithProxy sets a global proxy URL applied to every request. Empty means
// the process environment decides.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithCache enables read caching of GET responses.
func WithCache(cache forge.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithInterceptors installs a request/response interceptor chain.
func WithInterceptors(chain *forge.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}
