package forge

import (
	"encoding/json"
	"fmt"
	"time"
)

// Meta is the metadata block present on every well-formed API envelope.
type Meta struct {
	Status     int    `json:"status"      yaml:"status"`
	APIVersion string `json:"api_version" yaml:"api_version"`
	RequestID  string `json:"request_id"  yaml:"request_id"`
}

// JobState is a job lifecycle state reported by the service.
type JobState string

// Job states. Queued, created and running are transient; success, failed and
// canceled are terminal.
const (
	JobStateQueued   JobState = "queued"
	JobStateCreated  JobState = "created"
	JobStateRunning  JobState = "running"
	JobStateSuccess  JobState = "success"
	JobStateFailed   JobState = "failed"
	JobStateCanceled JobState = "canceled"
)

// Terminal reports whether no further state transitions can occur.
func (s JobState) Terminal() bool {
	return s == JobStateSuccess || s == JobStateFailed || s == JobStateCanceled
}

// ArtifactType categorizes a downloadable job output.
type ArtifactType string

// Artifact types produced by the service.
const (
	ArtifactTypeArchive  ArtifactType = "archive"
	ArtifactTypeLogs     ArtifactType = "logs"
	ArtifactTypeReport   ArtifactType = "report"
	ArtifactTypeMetadata ArtifactType = "metadata"
)

// Artifact is a named downloadable output of a job.
type Artifact struct {
	Name         string       `json:"name"          yaml:"name"`
	URL          string       `json:"url"           yaml:"url"`
	ArtifactType ArtifactType `json:"artifact_type" yaml:"artifact_type"`
}

// Job is the client-side snapshot of a remote job resource. The service owns
// the resource; Trace is append-only while the job is non-terminal.
type Job struct {
	ID        string     `json:"id"                   yaml:"id"`
	State     JobState   `json:"state"                yaml:"state"`
	Trace     string     `json:"trace"                yaml:"trace"`
	Artifacts []Artifact `json:"artifacts,omitempty"  yaml:"artifacts,omitempty"`
	CreatedAt time.Time  `json:"created_at"           yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"           yaml:"updated_at"`
}

// Logger is the leveled logging interface consumed throughout the client.
// Implementations own all formatting and coloring concerns.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// PathList is a string slice that also accepts a single scalar when decoded
// from YAML or JSON. TLS material config historically allowed either one path
// or an ordered list of paths; both normalize to a list.
type PathList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PathList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var one string
	if err := unmarshal(&one); err == nil {
		*p = PathList{one}

		return nil
	}

	var many []string

	err := unmarshal(&many)
	if err != nil {
		return fmt.Errorf("decoding path list: %w", err)
	}

	*p = PathList(many)

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PathList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = PathList{one}

		return nil
	}

	var many []string

	err := json.Unmarshal(data, &many)
	if err != nil {
		return fmt.Errorf("decoding path list: %w", err)
	}

	*p = PathList(many)

	return nil
}

// NormalizePathList converts a raw config value (string, []string or []any)
// to a PathList. Configuration loaded through viper arrives untyped.
func NormalizePathList(value interface{}) (PathList, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}

		return PathList{v}, nil
	case []string:
		return PathList(v), nil
	case []interface{}:
		out := make(PathList, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %T", ErrInvalidPathList, item)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPathList, value)
	}
}
