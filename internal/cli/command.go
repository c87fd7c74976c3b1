// Package cli defines the command line shared by bulk-dl and bulk-dl-tui.
package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/handiism/bulk-downloader/internal/config"
	"github.com/handiism/bulk-downloader/internal/mode"
)

var errOutputDirWithURL = errors.New("the argument <output_dir> cannot be used with --url")

// Invocation is a fully resolved command line.
type Invocation struct {
	Inputs   mode.Inputs
	Settings *config.Settings
	Quiet    bool
}

// RunFunc executes a resolved invocation.
type RunFunc func(cmd *cobra.Command, inv *Invocation) error

type flags struct {
	configPath  string
	retries     uint
	concurrency int
	url         string
	verbose     bool
	logLevel    string
	logFormat   string
	limit       string
	timeout     string
	metricsFile string
	quiet       bool

	// Accepted for ChRIS plugin compatibility, ignored.
	dummySelfexec  bool
	saveInputMeta  bool
	saveOutputMeta bool
}

// NewCommand builds the root command. run is called once the flags are parsed
// and the settings are resolved and validated.
func NewCommand(use, version string, run RunFunc) *cobra.Command {
	f := &flags{}
	defaults := config.DefaultSettings()

	cmd := &cobra.Command{
		Use:   use + " [flags] <dir> [output_dir]",
		Short: "Download every URL listed in the text files of a directory",
		Long: `Download files concurrently.

In bulk mode, <dir> is scanned recursively for text files containing URLs separated
by whitespace. Each file is saved under [output_dir] (default <dir>) at the same
relative directory as the text file that listed it.

In single mode (--url), exactly one URL is downloaded into <dir>.`,
		Version:       version,
		Args:          f.validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd, inv)
		},
	}

	fs := cmd.Flags()
	fs.UintVarP(&f.retries, "retries", "r", defaults.Retries, "Number of retries per download")
	fs.IntVarP(&f.concurrency, "concurrency", "J", defaults.Concurrency, "Maximum number of concurrent downloads")
	fs.StringVarP(&f.url, "url", "u", "", `URL to download. If specified, activate "single" mode`)
	fs.StringVar(&f.configPath, "config", "", "Path to a JSON settings file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log at debug level")
	fs.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	fs.StringVar(&f.limit, "limit", "", "Global bandwidth cap per second, e.g. 4MB")
	fs.StringVar(&f.timeout, "timeout", "", "Timeout for a single request, e.g. 10m (default none)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "Do not show progress")

	fs.BoolVar(&f.dummySelfexec, "/dummy_selfexec", false, "Dummy flag for compatibility as ChRIS plugin. Does nothing.")
	fs.BoolVar(&f.saveInputMeta, "saveinputmeta", false, "Required useless ChRIS plugin flag. Does nothing.")
	fs.BoolVar(&f.saveOutputMeta, "saveoutputmeta", false, "Required useless ChRIS plugin flag. Does nothing.")
	for _, name := range []string{"/dummy_selfexec", "saveinputmeta", "saveoutputmeta"} {
		_ = fs.MarkHidden(name)
	}

	return cmd
}

func (f *flags) validateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return err
	}
	if len(args) == 2 && cmd.Flags().Changed("url") {
		return errOutputDirWithURL
	}
	return nil
}

// resolve layers defaults, config file, environment and explicitly set flags.
func (f *flags) resolve(cmd *cobra.Command, args []string) (*Invocation, error) {
	settings := config.DefaultSettings()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		settings = loaded
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("retries") {
		settings.Retries = f.retries
	}
	if fs.Changed("concurrency") {
		settings.Concurrency = f.concurrency
	}
	if fs.Changed("log-level") {
		settings.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		settings.LogFormat = f.logFormat
	}
	if fs.Changed("limit") {
		settings.RateLimit = f.limit
	}
	if fs.Changed("timeout") {
		settings.RequestTimeout = f.timeout
	}
	if fs.Changed("metrics-file") {
		settings.MetricsFile = f.metricsFile
	}
	if f.verbose {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	inv := &Invocation{Settings: settings, Quiet: f.quiet}
	inv.Inputs.Dir = args[0]
	if len(args) > 1 {
		inv.Inputs.OutputDir = args[1]
	}

	if fs.Changed("url") {
		u, err := parseURL(f.url)
		if err != nil {
			return nil, err
		}
		inv.Inputs.URL = u
	}

	return inv, nil
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q for --url: %w", raw, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("invalid value %q for --url: relative URL without a base", raw)
	}
	return u, nil
}
