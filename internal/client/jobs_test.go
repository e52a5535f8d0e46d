package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks-io/forge-client/internal/client"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, m := range l.messages {
		if m == msg {
			n++
		}
	}

	return n
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record(msg) }

func writeJobEnvelope(t *testing.T, w http.ResponseWriter, job forge.Job) {
	t.Helper()

	data, err := json.Marshal(job)
	require.NoError(t, err)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"meta":{"status":200,"api_version":"v1"},"data":` + string(data) + `}`))
}

func writeJobListEnvelope(t *testing.T, w http.ResponseWriter, jobs []forge.Job) {
	t.Helper()

	data, err := json.Marshal(jobs)
	require.NoError(t, err)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"meta":{"status":200,"api_version":"v1"},"data":` + string(data) + `}`))
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"meta":{"status":404},"error":{"message":"job not found","code":"not_found"}}`))
}

func newTestClient(t *testing.T, serverURL string) *client.Client {
	t.Helper()

	forgeClient, err := client.New(&forge.Config{
		APIEndpoint: serverURL,
		Token:       "tok-test",
	})
	require.NoError(t, err)

	return forgeClient
}

func TestJobsClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs/job-1", r.URL.Path)
		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateRunning, Trace: "building"})
	}))
	defer server.Close()

	job, err := newTestClient(t, server.URL).Jobs().Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, forge.JobStateRunning, job.State)
	assert.Equal(t, "building", job.Trace)
}

func TestJobsClient_GetNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Jobs().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, forge.IsNotFound(err))
}

func TestJobsClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs", r.URL.Path)

		switch r.URL.Query().Get("page") {
		case "1":
			assert.Equal(t, "2", r.URL.Query().Get("page_size"))
			writeJobListEnvelope(t, w, []forge.Job{{ID: "job-1"}, {ID: "job-2"}})
		default:
			writeJobListEnvelope(t, w, []forge.Job{{ID: "job-3"}})
		}
	}))
	defer server.Close()

	cursor := newTestClient(t, server.URL).Jobs().List(forge.WithPageSize[forge.Job](2))

	jobs, err := cursor.All(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "job-3", jobs[2].ID)
}

func TestJobsClient_Wait_TerminalState(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateRunning})

			return
		}

		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateSuccess})
	}))
	defer server.Close()

	job, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, forge.JobStateSuccess, job.State)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestJobsClient_Wait_TraceTailing(t *testing.T) {
	t.Parallel()

	traces := []string{
		"step 1 ok\n",
		"step 1 ok\nstep 2 ok\n",
		"step 1 ok\nstep 2 ok\ndone\n",
	}

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := int(atomic.AddInt32(&calls, 1))

		state := forge.JobStateRunning
		if call >= len(traces) {
			call = len(traces)
			state = forge.JobStateSuccess
		}

		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: state, Trace: traces[call-1]})
	}))
	defer server.Close()

	var trace bytes.Buffer

	job, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond, Trace: &trace})
	require.NoError(t, err)
	assert.Equal(t, forge.JobStateSuccess, job.State)
	// Each poll emits only the appended suffix, so the buffer holds the full
	// trace exactly once.
	assert.Equal(t, traces[len(traces)-1], trace.String())
}

func TestJobsClient_Wait_RecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			writeNotFound(w)

			return
		}

		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateSuccess})
	}))
	defer server.Close()

	logger := &recordingLogger{}

	job, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, forge.JobStateSuccess, job.State)
	assert.Equal(t, 2, logger.count("job fetch failed, retrying"))
}

func TestJobsClient_Wait_GivesUpAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeNotFound(w)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 consecutive fetch failures")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, forge.IsNotFound(err), "the triggering failure stays inspectable")
}

func TestJobsClient_Wait_FailureCounterResets(t *testing.T) {
	t.Parallel()

	// Two failures, one success, two more failures: the counter must reset on
	// the success, so the bound is never hit before the terminal snapshot.
	responses := []func(w http.ResponseWriter){
		writeNotFound,
		writeNotFound,
		func(w http.ResponseWriter) {
			writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateRunning})
		},
		writeNotFound,
		writeNotFound,
		func(w http.ResponseWriter) {
			writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateSuccess})
		},
	}

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := int(atomic.AddInt32(&calls, 1))
		require.LessOrEqual(t, call, len(responses))
		responses[call-1](w)
	}))
	defer server.Close()

	job, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, forge.JobStateSuccess, job.State)
}

func TestJobsClient_Wait_CreatedNoticeOnce(t *testing.T) {
	t.Parallel()

	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := forge.JobStateCreated
		if atomic.AddInt32(&calls, 1) > 2 {
			state = forge.JobStateSuccess
		}

		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: state})
	}))
	defer server.Close()

	logger := &recordingLogger{}

	_, err := newTestClient(t, server.URL).Jobs().Wait(context.Background(), "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, 1, logger.count("job created, waiting for an available runner"))
}

func TestJobsClient_Wait_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJobEnvelope(t, w, forge.Job{ID: "job-1", State: forge.JobStateRunning})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL).Jobs().Wait(ctx, "job-1",
		&forge.WaitOptions{Interval: 5 * time.Millisecond})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_RequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := client.New(&forge.Config{})
	require.ErrorIs(t, err, forge.ErrAPIEndpointRequired)
}
