package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
)

// Browser is the browser automation handle a screenshot is taken from
type Browser interface {
	// TakeScreenshot returns base64 encoded PNG data
	TakeScreenshot(ctx context.Context) (string, error)
	BrowserName() string
	Version() string
}

// BrowserLabel is the browser column name a run is reported under
func BrowserLabel(b Browser) string {
	if b.Version() == "" {
		return b.BrowserName()
	}
	return b.BrowserName() + "-" + b.Version()
}

// Sink writes end-of-run screenshots to a directory
type Sink struct {
	dir     string
	timeout time.Duration

	wg       sync.WaitGroup
	written  atomic.Int64
	failures atomic.Int64
}

// NewSink creates a sink writing into dir. A zero timeout leaves captures unbounded.
func NewSink(dir string, timeout time.Duration) *Sink {
	return &Sink{dir: dir, timeout: timeout}
}

// Dir returns the directory screenshots are written to
func (s *Sink) Dir() string {
	return s.dir
}

// Capture takes a screenshot in the background and writes it under the run id.
// Errors are logged and never returned to the caller.
func (s *Sink) Capture(ctx context.Context, b Browser, scenario string) {
	label := BrowserLabel(b)
	id := RunID(scenario, label)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		captureCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			captureCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		data, err := b.TakeScreenshot(captureCtx)
		if err != nil {
			s.failures.Add(1)
			logger.WithRun(scenario, label).Warnf("Failed to capture screenshot %s: %v", id, err)
			return
		}

		if _, err := s.Write(id, data); err != nil {
			s.failures.Add(1)
			logger.WithRun(scenario, label).Warnf("Failed to write screenshot %s: %v", id, err)
		}
	}()
}

// Write decodes base64 image data and writes it as <dir>/<id>.png, replacing any earlier file
func (s *Sink) Write(id, data string) (string, error) {
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode screenshot data: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	path := filepath.Join(s.dir, id+Extension)
	if err := os.WriteFile(path, img, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	s.written.Add(1)
	logger.Debugf("Saved screenshot %s", path)
	return path, nil
}

// Wait blocks until every pending capture has settled
func (s *Sink) Wait() {
	s.wg.Wait()
}

// Written returns the number of screenshots written so far
func (s *Sink) Written() int {
	return int(s.written.Load())
}

// Failures returns the number of captures that failed
func (s *Sink) Failures() int {
	return int(s.failures.Load())
}
