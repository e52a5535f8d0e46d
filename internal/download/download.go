// Package download streams HTTP response bodies to a sink with progress
// reporting, and to files via a temp-file-then-rename pattern so a partial
// download never clobbers the destination.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/forgeworks-io/forge-client/internal/constants"
	"github.com/forgeworks-io/forge-client/pkg/forge"
)

// Static errors for err113 compliance.
var (
	// ErrUnexpectedStatus means the server answered with a non-success
	// status. The body is still drained before this is returned.
	ErrUnexpectedStatus = errors.New("unexpected download status")
)

// ProgressFunc receives the running byte count and the declared total after
// every chunk. Total is 0 when the server sent no usable Content-Length.
type ProgressFunc = forge.ProgressFunc

type options struct {
	progress ProgressFunc
	okStatus int
}

// Option configures a download.
type Option func(*options)

// WithProgress reports progress through fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithExpectedStatus overrides the success status (default 200).
func WithExpectedStatus(status int) Option {
	return func(o *options) {
		o.okStatus = status
	}
}

// Do issues a GET for url and pipes the body to sink. A non-success status
// still drains the body into the pipe before failing, so the transfer is
// observable; the error is what tells the caller to discard it. Timeouts are
// classified with a message naming the client's configured timeout and the
// URL; other transport errors propagate unchanged.
func Do(ctx context.Context, client *http.Client, url string, sink io.Writer, optFns ...Option) error {
	opts := options{okStatus: http.StatusOK}
	for _, opt := range optFns {
		opt(&opts)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(err, client, url)
	}

	defer func() { _ = resp.Body.Close() }()

	var writer io.Writer = sink

	if opts.progress != nil {
		total := resp.ContentLength
		if total < 0 {
			total = 0
		}

		writer = &progressWriter{w: sink, total: total, report: opts.progress}
	}

	_, copyErr := io.Copy(writer, resp.Body)

	if resp.StatusCode != opts.okStatus {
		return fmt.Errorf("%w: HTTP %d for %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	if copyErr != nil {
		return classifyTransportError(copyErr, client, url)
	}

	return nil
}

// ToFile downloads url to destPath through a temp file in the destination
// directory, fsyncs and atomically renames on success. On any failure the
// temp file is removed and the existing destination stays untouched.
func ToFile(ctx context.Context, client *http.Client, url, destPath string, optFns ...Option) error {
	file, err := os.CreateTemp(filepath.Dir(destPath), ".forge-dl-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool

	defer func() {
		_ = file.Close()

		if !successful {
			_ = os.Remove(file.Name())
		}
	}()

	if err := Do(ctx, client, url, file, optFns...); err != nil {
		return err
	}

	// Temp files are created 0600; downloaded artifacts are plain files.
	if err := file.Chmod(constants.ArtifactFilePerm); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}

// classifyTransportError gives timeouts a dedicated diagnostic; everything
// else propagates with its original cause intact.
func classifyTransportError(err error, client *http.Client, url string) error {
	var netErr net.Error

	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		os.IsTimeout(err)

	if timedOut {
		return fmt.Errorf("download of %s timed out after %s: %w", url, client.Timeout, err)
	}

	return fmt.Errorf("downloading %s: %w", url, err)
}

// progressWriter counts bytes through to the sink and reports after every
// chunk.
type progressWriter struct {
	w      io.Writer
	loaded int64
	total  int64
	report ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.loaded += int64(n)
	pw.report(pw.loaded, pw.total)

	return n, err
}
