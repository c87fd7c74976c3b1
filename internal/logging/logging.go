// Package logging builds the logrus logger used by the commands.
package logging

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out at the given level.
//
// format is "text" (the default when empty) or "json".
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return logger, nil
}

// WithRun tags every entry of logger with a fresh run_id.
func WithRun(logger logrus.FieldLogger) (*logrus.Entry, string) {
	id := uuid.NewString()
	return logger.WithField("run_id", id), id
}
