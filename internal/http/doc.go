// Package http provides the HTTP client that performs the actual transfers.
//
// The Client in this package handles:
//   - User-Agent headers
//   - File downloads with progress tracking
//   - A process-wide bandwidth cap (golang.org/x/time/rate)
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{Timeout: time.Hour, RateLimit: 4 << 20})
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, fileURL, "/path/to/file.part", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Retries are not handled here; the download package retries failed calls.
package http
