package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	ioutils "github.com/handiism/bulk-downloader/internal/io"
	"github.com/handiism/bulk-downloader/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	URL     string
}

// DefaultConcurrency is the transfer bound used when Options.Concurrency is not positive.
const DefaultConcurrency = 32

var errUnsafeFilename = errors.New("filename escapes the output directory")

// Fetcher performs a single transfer attempt, writing the body to destPath.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Recorder observes transfers. All methods may be called concurrently.
type Recorder interface {
	TransferStarted()
	TransferAttempted()
	TransferFinished(summary model.Summary)
}

// Options controls how a Manager transfers descriptors.
type Options struct {
	OutputDir     string
	Retries       uint
	Concurrency   int
	RetryCooldown float64 // seconds
	RetryExponent float64
}

// Manager coordinates downloads.
type Manager struct {
	fetcher  Fetcher
	opts     Options
	recorder Recorder

	receivedBytes int64
	finishedFiles int32
	failedFiles   int32
	totalFiles    int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
//
// onProgress may be nil. It is called from transfer goroutines and must be safe for concurrent use.
func NewManager(fetcher Fetcher, opts Options, onProgress func(ProgressEvent)) *Manager {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Manager{
		fetcher:    fetcher,
		opts:       opts,
		onProgress: onProgress,
	}
}

// WithRecorder attaches r to the manager and returns the manager.
func (m *Manager) WithRecorder(r Recorder) *Manager {
	m.recorder = r
	return m
}

// Download transfers every descriptor and returns one summary per descriptor at the same index.
//
// A failed descriptor never stops the others. At most Options.Concurrency transfers run at once.
func (m *Manager) Download(ctx context.Context, descriptors []model.Descriptor) []model.Summary {
	summaries := make([]model.Summary, len(descriptors))
	atomic.AddInt32(&m.totalFiles, int32(len(descriptors)))

	var g errgroup.Group
	g.SetLimit(m.opts.Concurrency)

	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			summaries[i] = m.transfer(ctx, d)
			return nil
		})
	}

	_ = g.Wait()
	return summaries
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, finished, failed, total int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.finishedFiles),
		atomic.LoadInt32(&m.failedFiles),
		atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) transfer(ctx context.Context, d model.Descriptor) (summary model.Summary) {
	start := time.Now()
	if m.recorder != nil {
		m.recorder.TransferStarted()
	}
	defer func() { m.finish(summary) }()

	rawURL := d.String()
	if !d.IsLocal() {
		reason := errUnsafeFilename
		if d.Filename == "" {
			reason = model.ErrNoFilename
		}
		return model.FailureSummary(d, 0, &TransferError{URL: rawURL, Err: reason}, time.Since(start))
	}

	dest := d.Destination(m.opts.OutputDir)
	if err := ioutils.EnsureParentDir(dest); err != nil {
		return model.FailureSummary(d, 0, &TransferError{URL: rawURL, Err: err}, time.Since(start))
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s to %s", rawURL, dest), Level: LevelVerbose, URL: rawURL})

	maxAttempts := int(m.opts.Retries) + 1
	attempts := 0
	var err error

	for tries := 0; tries < maxAttempts; tries++ {
		if tries > 0 {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Retry %d/%d for %s: %v", tries, m.opts.Retries, rawURL, err),
				Level:   LevelWarning,
				URL:     rawURL,
			})
			m.waitForRetry(ctx, tries-1)
		}

		attempts++
		var written int64
		err = m.attempt(ctx, rawURL, dest, &written)
		if err == nil {
			return model.SuccessSummary(d, attempts, written, time.Since(start))
		}

		atomic.AddInt64(&m.receivedBytes, -written)
		if ctx.Err() != nil {
			break
		}
	}

	return model.FailureSummary(d, attempts, &TransferError{URL: rawURL, Attempts: attempts, Err: err}, time.Since(start))
}

// attempt runs one fetch into a fresh part file and commits it. written tracks the bytes counted
// into receivedBytes so a failed attempt can take them back.
func (m *Manager) attempt(ctx context.Context, rawURL, dest string, written *int64) error {
	if m.recorder != nil {
		m.recorder.TransferAttempted()
	}

	part, err := ioutils.CreatePartFile(dest)
	if err != nil {
		return err
	}

	err = m.fetcher.DownloadFile(ctx, rawURL, part, func(n, _ int64) {
		atomic.AddInt64(&m.receivedBytes, n-*written)
		*written = n
	})
	if err == nil {
		err = ioutils.CommitPartFile(part, dest)
	}
	if err != nil {
		_ = ioutils.RemovePartFile(part)
	}
	return err
}

// finish counts the outcome and emits the single final event of a descriptor.
func (m *Manager) finish(summary model.Summary) {
	rawURL := summary.Descriptor.String()
	if summary.Failed() {
		atomic.AddInt32(&m.failedFiles, 1)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", rawURL, summary.Reason), Level: LevelError, URL: rawURL})
	} else {
		atomic.AddInt32(&m.finishedFiles, 1)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", summary.Descriptor.Filename), Level: LevelSuccess, URL: rawURL})
	}
	if m.recorder != nil {
		m.recorder.TransferFinished(summary)
	}
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.opts.RetryCooldown * math.Pow(m.opts.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
