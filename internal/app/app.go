// Package app runs one download job: plan the descriptors, transfer them and
// fold the results into a report.
package app

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/handiism/bulk-downloader/internal/config"
	"github.com/handiism/bulk-downloader/internal/discover"
	"github.com/handiism/bulk-downloader/internal/download"
	"github.com/handiism/bulk-downloader/internal/http"
	"github.com/handiism/bulk-downloader/internal/metrics"
	"github.com/handiism/bulk-downloader/internal/mode"
	"github.com/handiism/bulk-downloader/internal/report"
	"github.com/handiism/bulk-downloader/internal/utils"
)

// App holds everything a run needs. Create it with New.
type App struct {
	settings   *config.Settings
	logger     logrus.FieldLogger
	fetcher    download.Fetcher
	discoverer mode.Discoverer
	metrics    *metrics.Collector
	onProgress func(download.ProgressEvent)

	manager atomic.Pointer[download.Manager]
}

// Option customizes an App.
type Option func(*App)

// WithFetcher replaces the HTTP client built from the settings.
func WithFetcher(f download.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// WithProgress receives transfer progress events. fn must be safe for concurrent use.
func WithProgress(fn func(download.ProgressEvent)) Option {
	return func(a *App) { a.onProgress = fn }
}

// New creates an App. settings must already be validated.
func New(settings *config.Settings, logger logrus.FieldLogger, opts ...Option) (*App, error) {
	a := &App{
		settings:   settings,
		logger:     logger,
		discoverer: discover.NewDiscoverer(logger),
		metrics:    metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.fetcher == nil {
		timeout, err := settings.Timeout()
		if err != nil {
			return nil, err
		}
		limit, err := settings.RateLimitBytes()
		if err != nil {
			return nil, err
		}
		a.fetcher = http.NewClient(http.Options{
			Timeout:   timeout,
			UserAgent: settings.UserAgent,
			RateLimit: limit,
		})
	}

	return a, nil
}

// Metrics returns the collector fed by this App.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// Plan selects the mode for in and resolves it into descriptors. No transfer starts here.
func (a *App) Plan(ctx context.Context, in mode.Inputs) (*mode.Plan, error) {
	src := mode.Select(in)
	a.logger.WithField("mode", src.Name()).Debug("mode selected")

	plan, err := mode.Resolve(ctx, src, a.discoverer)
	if err != nil {
		return nil, err
	}

	a.metrics.RecordDiscovered(len(plan.Descriptors))
	a.logger.WithFields(logrus.Fields{
		"mode":       plan.Mode,
		"downloads":  len(plan.Descriptors),
		"output_dir": plan.OutputDir,
	}).Info("plan ready")
	return plan, nil
}

// Transfer downloads every descriptor of plan and returns the aggregated report.
// The metrics file is written afterwards when one is configured.
func (a *App) Transfer(ctx context.Context, plan *mode.Plan) report.Report {
	manager := download.NewManager(a.fetcher, download.Options{
		OutputDir:     plan.OutputDir,
		Retries:       a.settings.Retries,
		Concurrency:   a.settings.Concurrency,
		RetryCooldown: a.settings.RetryCooldown,
		RetryExponent: a.settings.RetryExponent,
	}, a.onProgress).WithRecorder(a.metrics)
	a.manager.Store(manager)

	summaries := manager.Download(ctx, plan.Descriptors)
	r := report.Aggregate(summaries)

	a.logger.WithFields(logrus.Fields{
		"total":      r.Total,
		"succeeded":  r.Succeeded,
		"failed":     len(r.Failures),
		"downloaded": utils.HumanBytes(r.Bytes),
	}).Info("transfer complete")

	if path := a.settings.MetricsFile; path != "" {
		if err := a.metrics.WriteFile(path); err != nil {
			a.logger.WithError(err).Warnf("Failed to write metrics to %s", path)
		} else {
			a.logger.WithField("path", path).Debug("metrics written")
		}
	}

	return r
}

// Run plans and transfers in one go. The error is the planning error, if any.
func (a *App) Run(ctx context.Context, in mode.Inputs) (report.Report, error) {
	plan, err := a.Plan(ctx, in)
	if err != nil {
		return report.Report{}, err
	}
	return a.Transfer(ctx, plan), nil
}

// Progress reports the state of the running transfer. All values are zero before Transfer starts.
func (a *App) Progress() (received int64, finished, failed, total int32) {
	m := a.manager.Load()
	if m == nil {
		return 0, 0, 0, 0
	}
	return m.GetProgress()
}
