package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/bulk-downloader/internal/app"
	"github.com/handiism/bulk-downloader/internal/cli"
	"github.com/handiism/bulk-downloader/internal/download"
	"github.com/handiism/bulk-downloader/internal/logging"
	"github.com/handiism/bulk-downloader/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewCommand("bulk-dl-tui", version, run).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, inv *cli.Invocation) error {
	// Logs are held back while the alternate screen is active.
	logs := &lockedBuffer{}
	defer logs.flush(cmd.ErrOrStderr())

	logger, err := logging.New(inv.Settings.LogLevel, inv.Settings.LogFormat, logs)
	if err != nil {
		return err
	}
	log, _ := logging.WithRun(logger)

	verbose := inv.Settings.LogLevel == "debug"
	r, err := tui.Run(cmd.Context(), inv.Inputs, verbose, func(onProgress func(download.ProgressEvent)) (tui.Runner, error) {
		return app.New(inv.Settings, log, app.WithProgress(onProgress))
	})
	if r != nil {
		if perr := r.Print(cmd.OutOrStdout()); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) flush(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.buf.WriteTo(w)
}
