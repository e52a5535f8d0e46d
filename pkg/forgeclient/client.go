// Package forgeclient provides the main entry point for creating Forge API clients
package forgeclient

import (
	"fmt"
	"strings"

	"github.com/forgeworks-io/forge-client/internal/client"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// New creates a new Forge API client from config.
func New(config *forge.Config) (forge.Client, error) {
	if config == nil {
		return nil, forge.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, forge.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	// Use the internal client implementation
	forgeClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return forgeClient, nil
}

// NewWithEndpoint creates an unauthenticated client for the given endpoint.
func NewWithEndpoint(apiEndpoint string) (forge.Client, error) {
	return New(&forge.Config{APIEndpoint: apiEndpoint})
}

// NewWithToken creates a client authenticating with a literal bearer token.
func NewWithToken(apiEndpoint, token string) (forge.Client, error) {
	return New(&forge.Config{
		APIEndpoint: apiEndpoint,
		Token:       token,
	})
}
