package discover

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/bulk-downloader/internal/io"
	"github.com/handiism/bulk-downloader/internal/model"
)

// ReadConcurrency is the number of files read at the same time during discovery.
// It bounds open file descriptors and is unrelated to download concurrency.
const ReadConcurrency = 8

// Reserved metadata files written by the hosting environment. They are never URL lists.
const (
	InputMetaFile  = "input.meta.json"
	OutputMetaFile = "output.meta.json"
)

var errNotDirectory = errors.New("not a directory")

// IsReserved reports whether a base name is one of the reserved metadata files.
func IsReserved(name string) bool {
	return name == InputMetaFile || name == OutputMetaFile
}

// Discoverer finds every download listed in the text files of a directory tree.
type Discoverer struct {
	logger          logrus.FieldLogger
	readConcurrency int
	readText        func(ctx context.Context, path string) (string, error)
}

// NewDiscoverer creates a Discoverer that logs through logger.
// A nil logger discards all output.
func NewDiscoverer(logger logrus.FieldLogger) *Discoverer {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Discoverer{
		logger:          logger,
		readConcurrency: ReadConcurrency,
		readText:        ioutils.ReadTextFile,
	}
}

// Discover walks root and returns the descriptors from every regular,
// non-reserved file below it.
//
// The walk runs in one goroutine and feeds paths to a fixed pool of readers.
// Readers finish in any order, so the order of the returned descriptors is
// only stable within a single file.
//
// The first error stops the whole pass: an unreadable directory or file, a
// path that is not UTF-8, or a token that is not a valid URL. No descriptors
// are returned in that case.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]model.Descriptor, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	paths := make(chan string, d.readConcurrency)
	found := make(chan []model.Descriptor)

	g.Go(func() error {
		defer close(paths)
		return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return &FileReadError{Path: path, Err: err}
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			if err := ioutils.ValidatePath(path); err != nil {
				return &PathEncodingError{Path: path}
			}
			if IsReserved(entry.Name()) {
				d.logger.WithField("path", path).Debug("skipping metadata file")
				return nil
			}

			select {
			case paths <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var readers sync.WaitGroup
	for i := 0; i < d.readConcurrency; i++ {
		readers.Add(1)
		g.Go(func() error {
			defer readers.Done()
			for path := range paths {
				descriptors, err := d.readFile(ctx, root, path)
				if err != nil {
					return err
				}

				select {
				case found <- descriptors:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		readers.Wait()
		close(found)
	}()

	var (
		all   []model.Descriptor
		files int
	)
	for descriptors := range found {
		files++
		all = append(all, descriptors...)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"root":  root,
		"files": files,
		"urls":  len(all),
	}).Info("discovery complete")

	return all, nil
}

// resolveRoot cleans root and follows it when it is a symlink, so the walk
// starts inside the directory it points to.
func resolveRoot(root string) (string, error) {
	root = filepath.Clean(root)

	info, err := os.Lstat(root)
	if err != nil {
		return "", &FileReadError{Path: root, Err: err}
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(root)
		if err != nil {
			return "", &FileReadError{Path: root, Err: err}
		}
		if info, err = os.Stat(target); err != nil {
			return "", &FileReadError{Path: target, Err: err}
		}
		root = target
	}
	if !info.IsDir() {
		return "", &FileReadError{Path: root, Err: errNotDirectory}
	}

	return root, nil
}

// readFile reads one URL list and extracts its descriptors, stopping at the first bad token.
func (d *Discoverer) readFile(ctx context.Context, root, path string) ([]model.Descriptor, error) {
	text, err := d.readText(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FileReadError{Path: path, Err: err}
	}

	results := Extract(root, path, text)
	descriptors := make([]model.Descriptor, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		descriptors = append(descriptors, r.Descriptor)
	}

	d.logger.WithFields(logrus.Fields{
		"path": path,
		"urls": len(descriptors),
	}).Debug("read URL list")

	return descriptors, nil
}
