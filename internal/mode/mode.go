// Package mode turns the raw command line inputs into a download plan.
package mode

import (
	"context"
	"fmt"
	"net/url"

	"github.com/handiism/bulk-downloader/internal/model"
)

// Inputs are the values given on the command line.
type Inputs struct {
	// URL activates single mode when set.
	URL *url.URL

	// Dir is the scan root in bulk mode and the output directory in single mode.
	Dir string

	// OutputDir overrides the output directory in bulk mode.
	OutputDir string
}

// Source is where the downloads of a run come from. It is either SingleURL or BulkDirectory.
type Source interface {
	// Name returns "single" or "bulk".
	Name() string
	isSource()
}

// SingleURL downloads exactly one URL into OutputDir.
type SingleURL struct {
	URL       *url.URL
	OutputDir string
}

// BulkDirectory downloads every URL listed in text files below Root into OutputDir.
type BulkDirectory struct {
	Root      string
	OutputDir string
}

func (SingleURL) Name() string     { return "single" }
func (BulkDirectory) Name() string { return "bulk" }

func (SingleURL) isSource()     {}
func (BulkDirectory) isSource() {}

// Select picks the source for in. A URL means single mode, anything else is bulk mode.
func Select(in Inputs) Source {
	if in.URL != nil {
		return SingleURL{URL: in.URL, OutputDir: in.Dir}
	}

	out := in.OutputDir
	if out == "" {
		out = in.Dir
	}
	return BulkDirectory{Root: in.Dir, OutputDir: out}
}

// Discoverer lists the downloads found below a directory.
type Discoverer interface {
	Discover(ctx context.Context, root string) ([]model.Descriptor, error)
}

// Plan is the resolved work of a run.
type Plan struct {
	Mode        string
	Descriptors []model.Descriptor
	OutputDir   string
}

// Resolve builds the plan for src. Only bulk mode touches the file system.
func Resolve(ctx context.Context, src Source, d Discoverer) (*Plan, error) {
	switch s := src.(type) {
	case SingleURL:
		descriptor, err := model.NewDescriptor(s.URL)
		if err != nil {
			return nil, err
		}
		return &Plan{
			Mode:        s.Name(),
			Descriptors: []model.Descriptor{descriptor},
			OutputDir:   s.OutputDir,
		}, nil

	case BulkDirectory:
		descriptors, err := d.Discover(ctx, s.Root)
		if err != nil {
			return nil, err
		}
		return &Plan{
			Mode:        s.Name(),
			Descriptors: descriptors,
			OutputDir:   s.OutputDir,
		}, nil

	default:
		return nil, fmt.Errorf("unknown source %T", src)
	}
}
