package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/forgeworks-io/forge-client/internal/constants"
	"github.com/forgeworks-io/forge-client/internal/http"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// JobsClient reads and follows remote job resources.
type JobsClient struct {
	httpClient *http.Client
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client) *JobsClient {
	return &JobsClient{httpClient: httpClient}
}

// Get fetches the current snapshot of a job.
func (c *JobsClient) Get(ctx context.Context, jobID string) (*forge.Job, error) {
	env, err := c.httpClient.Get(ctx, "/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job forge.Job

	err = env.DecodeData(&job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	return &job, nil
}

// List returns a cursor over all jobs, newest first. The cursor is lazy; no
// request happens until the first advance.
func (c *JobsClient) List(opts ...forge.CursorOption[forge.Job]) *forge.Cursor[forge.Job] {
	fetch := func(ctx context.Context, page, pageSize int) (*forge.Envelope, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("page_size", strconv.Itoa(pageSize))

		return c.httpClient.Get(ctx, "/v1/jobs", query)
	}

	return forge.NewCursor(fetch, forge.SliceGuard[forge.Job], opts...)
}

// waitOptionsWithDefaults fills zero-valued WaitOptions fields with the
// polling defaults.
func waitOptionsWithDefaults(o *forge.WaitOptions) forge.WaitOptions {
	out := forge.WaitOptions{}
	if o != nil {
		out = *o
	}

	if out.Interval <= 0 {
		out.Interval = constants.DefaultPollInterval
	}

	if out.MaxConsecutiveFailures <= 0 {
		out.MaxConsecutiveFailures = constants.MaxConsecutiveFetchFailures
	}

	return out
}

// Wait polls the job on a fixed interval until it reaches a terminal state
// and returns the final snapshot. The caller decides what a non-success
// terminal state means.
//
// Each successful fetch resets the consecutive-failure counter and emits only
// the trace text appended since the previous observation. Fetch failures are
// warned about and retried transparently; once MaxConsecutiveFailures happen
// in a row the triggering error is re-raised and the loop aborts. There is no
// backoff growth: the observed service behaves best under a steady interval.
func (c *JobsClient) Wait(ctx context.Context, jobID string, options *forge.WaitOptions) (*forge.Job, error) {
	opts := waitOptionsWithDefaults(options)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var (
		failures        int
		seenTraceLen    int
		createdNotified bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}

		job, err := c.Get(ctx, jobID)
		if err != nil {
			failures++

			if opts.Logger != nil {
				opts.Logger.Warn("job fetch failed, retrying", map[string]interface{}{
					"job_id":   jobID,
					"failures": failures,
					"error":    err.Error(),
				})
			}

			if failures >= opts.MaxConsecutiveFailures {
				return nil, fmt.Errorf("giving up after %d consecutive fetch failures: %w", failures, err)
			}

			continue
		}

		failures = 0

		if job.State == forge.JobStateCreated && !createdNotified {
			createdNotified = true

			if opts.Logger != nil {
				opts.Logger.Info("job created, waiting for an available runner", map[string]interface{}{
					"job_id": jobID,
				})
			}
		}

		if len(job.Trace) > seenTraceLen {
			if opts.Trace != nil {
				if _, err := io.WriteString(opts.Trace, job.Trace[seenTraceLen:]); err != nil {
					return nil, fmt.Errorf("writing trace: %w", err)
				}
			}

			seenTraceLen = len(job.Trace)
		}

		if job.State.Terminal() {
			return job, nil
		}
	}
}
