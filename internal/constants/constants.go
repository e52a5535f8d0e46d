package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ArtifactFilePerm is the permission for downloaded artifact files.
	ArtifactFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultDownloadTimeout is the default timeout for artifact downloads.
	DefaultDownloadTimeout = 10 * time.Minute
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between transport retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Job polling.
const (
	// DefaultPollInterval is the fixed sleep between job status fetches.
	DefaultPollInterval = 5 * time.Second

	// MaxConsecutiveFetchFailures is how many fetch failures in a row the
	// poller tolerates before giving up.
	MaxConsecutiveFetchFailures = 3
)

// Pagination.
const (
	// DefaultPageSize is the page size a cursor uses when none is configured.
	DefaultPageSize = 100
)

// Error formatting.
const (
	// FormatErrorBodyMaxLength bounds how much raw response body is included
	// in a formatted request error.
	FormatErrorBodyMaxLength = 1000
)

// Response caching.
const (
	// DefaultCacheSize is the default number of entries kept by the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)

// JSONContentType is the media type every API request and well-formed
// response carries.
const JSONContentType = "application/json"
