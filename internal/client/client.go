// Package client wires the Forge API resource clients over the shared
// transport: jobs (status, listing, polling) and artifacts (URL resolution
// and download).
package client

import (
	"time"

	"github.com/forgeworks-io/forge-client/internal/auth"
	"github.com/forgeworks-io/forge-client/internal/http"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// Client is the top-level Forge API client.
type Client struct {
	httpClient *http.Client
	jobs       *JobsClient
	artifacts  *ArtifactsClient
}

// New creates a Forge client from config.
func New(config *forge.Config) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, forge.ErrAPIEndpointRequired
	}

	tokenManager := createTokenManager(config)

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	client := &Client{httpClient: httpClient}
	client.jobs = NewJobsClient(httpClient)
	client.artifacts = NewArtifactsClient(httpClient)

	return client, nil
}

// createTokenManager picks a token manager for the configured credentials.
func createTokenManager(config *forge.Config) auth.TokenManager {
	if config.TokenProvider != nil {
		return auth.NewSessionTokenManager(config.TokenProvider)
	}

	if config.Token != "" {
		return auth.NewStaticTokenManager(config.Token)
	}

	return nil // No authentication
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *forge.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Proxy != "" {
		httpOpts = append(httpOpts, http.WithProxy(config.Proxy))
	}

	if len(config.CAFiles) > 0 || len(config.CertFiles) > 0 || len(config.KeyFiles) > 0 {
		material := http.NewTLSMaterial(config.CAFiles, config.CertFiles, config.KeyFiles)
		httpOpts = append(httpOpts, http.WithTLSMaterial(material))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = time.Second
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = 10 * time.Second
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if config.Timeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.Timeout))
	}

	if config.Cache != nil {
		cache, err := forge.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, err
		}

		httpOpts = append(httpOpts, http.WithCache(cache, config.CacheTTL))
	}

	return httpOpts, nil
}

// Jobs returns the jobs client.
func (c *Client) Jobs() forge.JobsClient {
	return c.jobs
}

// Artifacts returns the artifacts client.
func (c *Client) Artifacts() forge.ArtifactsClient {
	return c.artifacts
}

// HTTP exposes the underlying transport for callers issuing raw requests.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}
