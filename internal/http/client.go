package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "bulk-downloader"

// Options configures a Client.
type Options struct {
	// Timeout bounds a whole request including the body transfer. Zero means no timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RateLimit caps the combined download rate of all transfers in bytes per second.
	// Zero disables the cap.
	RateLimit int64
}

// Client streams HTTP downloads to disk.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - File download with progress tracking
//   - An optional bandwidth cap shared by every concurrent download
//
// Example usage:
//
//	client := NewClient(Options{Timeout: 10 * time.Minute})
//
//	err := client.DownloadFile(ctx, "https://example.org/a.dat", "/out/a.dat.part", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: userAgent,
	}

	if opts.RateLimit > 0 {
		burst := opts.RateLimit
		if burst > int64(^uint32(0)>>1) {
			burst = int64(^uint32(0) >> 1)
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(burst))
	}

	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header), -1 if unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is created (or truncated if it exists) and the content is streamed
// directly to disk, avoiding loading the entire file into memory.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - The file cannot be created or written
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	var body io.Reader = resp.Body
	if c.limiter != nil {
		body = &limitedReader{ctx: ctx, r: resp.Body, limiter: c.limiter}
	}

	_, err = io.Copy(writer, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// limitedReader throttles reads through a shared token bucket, one token per byte.
type limitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if burst := l.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := l.r.Read(p)
	if n > 0 {
		if waitErr := l.limiter.WaitN(l.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
