package client

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/forgeworks-io/forge-client/internal/download"
	"github.com/forgeworks-io/forge-client/internal/http"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// ArtifactsClient resolves and downloads job artifacts.
type ArtifactsClient struct {
	httpClient *http.Client
}

// NewArtifactsClient creates a new artifacts client.
func NewArtifactsClient(httpClient *http.Client) *ArtifactsClient {
	return &ArtifactsClient{httpClient: httpClient}
}

// DownloadURL resolves the signed download URL for one artifact type of a
// job. A null URL means the job never produced that artifact, which is a
// domain error, not a transport failure.
func (c *ArtifactsClient) DownloadURL(ctx context.Context, jobID string, artifactType forge.ArtifactType) (string, error) {
	query := url.Values{}
	query.Set("artifact_type", string(artifactType))

	env, err := c.httpClient.Get(ctx, "/v1/jobs/"+jobID+"/artifacts/url", query)
	if err != nil {
		return "", fmt.Errorf("resolving artifact URL: %w", err)
	}

	var payload struct {
		URL *string `json:"url"`
	}

	err = env.DecodeData(&payload)
	if err != nil {
		return "", fmt.Errorf("parsing artifact URL response: %w", err)
	}

	if payload.URL == nil || *payload.URL == "" {
		return "", fmt.Errorf("%w: %q for job %s", forge.ErrArtifactNotProduced, artifactType, jobID)
	}

	return *payload.URL, nil
}

// Download fetches one artifact of a job into destDir, named by policy. The
// bytes stream to a temp file first and move into place atomically, so a
// crashed download never leaves a half-written destination. Returns the
// final path.
func (c *ArtifactsClient) Download(
	ctx context.Context,
	jobID string,
	artifactType forge.ArtifactType,
	destDir string,
	policy forge.NamingPolicy,
	progress forge.ProgressFunc,
) (string, error) {
	signedURL, err := c.DownloadURL(ctx, jobID, artifactType)
	if err != nil {
		return "", err
	}

	httpClient, err := c.httpClient.DownloadClient()
	if err != nil {
		return "", err
	}

	destPath := filepath.Join(destDir, policy.FileName(jobID, artifactType))

	var opts []download.Option
	if progress != nil {
		opts = append(opts, download.WithProgress(progress))
	}

	if err := download.ToFile(ctx, httpClient, signedURL, destPath, opts...); err != nil {
		return "", err
	}

	return destPath, nil
}
