package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/handiism/bulk-downloader/internal/app"
	"github.com/handiism/bulk-downloader/internal/cli"
	"github.com/handiism/bulk-downloader/internal/download"
	"github.com/handiism/bulk-downloader/internal/logging"
)

var version = "dev"

func main() {
	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewCommand("bulk-dl", version, run).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, inv *cli.Invocation) error {
	ctx := cmd.Context()

	logger, err := logging.New(inv.Settings.LogLevel, inv.Settings.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log, _ := logging.WithRun(logger)

	// bar is set before Transfer starts and only read by transfer goroutines.
	var bar *progressbar.ProgressBar

	a, err := app.New(inv.Settings, log, app.WithProgress(func(event download.ProgressEvent) {
		logEvent(log, event)
		if bar != nil && (event.Level == download.LevelSuccess || event.Level == download.LevelError) {
			_ = bar.Add(1)
		}
	}))
	if err != nil {
		return err
	}

	plan, err := a.Plan(ctx, inv.Inputs)
	if err != nil {
		return err
	}

	if !inv.Quiet && len(plan.Descriptors) > 0 {
		bar = newBar(len(plan.Descriptors), cmd.ErrOrStderr())
	}

	r := a.Transfer(ctx, plan)
	if bar != nil {
		_ = bar.Finish()
	}

	if err := r.Print(cmd.OutOrStdout()); err != nil {
		return err
	}
	return r.Err()
}

func newBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetItsString("file"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func logEvent(log logrus.FieldLogger, event download.ProgressEvent) {
	entry := log.WithField("url", event.URL)
	switch event.Level {
	case download.LevelError:
		entry.Error(event.Message)
	case download.LevelWarning:
		entry.Warn(event.Message)
	case download.LevelInfo:
		entry.Info(event.Message)
	default:
		entry.Debug(event.Message)
	}
}
