package forge

import (
	"context"
	"io"
	"time"

	"github.com/forgeworks-io/forge-client/internal/constants"
)

// Config carries everything needed to construct a Client.
type Config struct {
	// APIEndpoint is the base URL of the Forge API, e.g. https://api.forge.dev.
	APIEndpoint string

	// Token is a literal bearer token. TokenProvider wins when both are set.
	Token string

	// TokenProvider defers token lookup to an externally-owned session store.
	TokenProvider func() (string, error)

	// Proxy is a global proxy URL; empty defers to the process environment.
	Proxy string

	// CAFiles, CertFiles and KeyFiles configure mutual TLS. Contents load
	// lazily, once per process.
	CAFiles   PathList
	CertFiles PathList
	KeyFiles  PathList

	Logger    Logger
	Debug     bool
	UserAgent string

	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration

	// Cache optionally enables GET response caching.
	Cache    *CacheConfig
	CacheTTL time.Duration
}

// ProgressFunc receives the running byte count and the declared total after
// every downloaded chunk. Total is 0 when the server sent no usable
// Content-Length.
type ProgressFunc func(loaded, total int64)

// NamingPolicy decides the destination file name for a downloaded artifact.
// Owned by the caller; the client never invents file names itself.
type NamingPolicy interface {
	FileName(jobID string, artifactType ArtifactType) string
}

// WaitOptions tunes the job polling loop. Zero values take the defaults: 5 s
// interval, 3 tolerated consecutive fetch failures.
type WaitOptions struct {
	Interval               time.Duration
	MaxConsecutiveFailures int

	// Trace receives newly appended trace text as it appears. Nil discards.
	Trace io.Writer

	// Logger receives the one-time created notice and transient fetch
	// warnings. Nil silences both.
	Logger Logger
}

// Client is the top-level Forge API surface.
type Client interface {
	Jobs() JobsClient
	Artifacts() ArtifactsClient
}

// JobsClient reads and follows remote job resources.
type JobsClient interface {
	// Get fetches the current snapshot of a job.
	Get(ctx context.Context, jobID string) (*Job, error)

	// List returns a lazy cursor over all jobs; no request happens until the
	// first advance.
	List(opts ...CursorOption[Job]) *Cursor[Job]

	// Wait polls the job on a fixed interval until it reaches a terminal
	// state and returns the final snapshot.
	Wait(ctx context.Context, jobID string, options *WaitOptions) (*Job, error)
}

// ArtifactsClient resolves and downloads job artifacts.
type ArtifactsClient interface {
	// DownloadURL resolves the signed download URL for one artifact type of
	// a job. ErrArtifactNotProduced means the job never produced it.
	DownloadURL(ctx context.Context, jobID string, artifactType ArtifactType) (string, error)

	// Download fetches one artifact of a job into destDir, named by policy,
	// and returns the final path.
	Download(ctx context.Context, jobID string, artifactType ArtifactType,
		destDir string, policy NamingPolicy, progress ProgressFunc) (string, error)
}

// DefaultWaitOptions returns the polling defaults applied to zero-valued
// WaitOptions fields.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		Interval:               constants.DefaultPollInterval,
		MaxConsecutiveFailures: constants.MaxConsecutiveFetchFailures,
	}
}
