// Package download provides the transfer engine that fetches every
// discovered descriptor to disk.
//
// # Manager
//
// The Manager runs each descriptor through the same steps:
//
//  1. Reject empty filenames and filenames that would leave the output directory
//  2. Create the parent directories of the destination
//  3. Stream the body into a part file of its own through a Fetcher
//  4. Rename the part file into place, or remove it on failure
//
// Two descriptors with the same destination both succeed; the last rename wins.
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{Timeout: time.Hour})
//	manager := download.NewManager(client, download.Options{
//	    OutputDir:   "out",
//	    Retries:     3,
//	    Concurrency: 32,
//	}, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	summaries := manager.Download(ctx, descriptors)
//
// # Concurrency
//
// At most Options.Concurrency transfers are in flight. A failing transfer
// never cancels the others; every descriptor gets exactly one summary.
//
// # Retry Logic
//
// Each descriptor is attempted up to Retries+1 times. Between attempts the
// manager waits RetryCooldown * RetryExponent^n seconds.
package download
