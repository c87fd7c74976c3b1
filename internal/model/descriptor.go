package model

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	ioutils "github.com/handiism/bulk-downloader/internal/io"
)

var (
	// ErrNotAbsolute is returned for URLs without a scheme.
	ErrNotAbsolute = errors.New("URL must be absolute")

	// ErrNoFilename is returned for opaque URLs (such as "mailto:x@example.org")
	// whose path has no segments to take a filename from.
	ErrNoFilename = errors.New("cannot derive a filename from URL")
)

// Descriptor is a download waiting to be transferred.
//
// Descriptor contains:
//   - The source URL
//   - The destination filename, relative to the output directory
//
// Filename is empty when the URL path ends without a usable segment, as in
// "https://example.org/dir/". Such a descriptor is still valid input: it is
// rejected by the transfer engine, which never writes outside the output
// directory (see IsLocal). Descriptors are values and are not modified after
// construction; WithDir returns a copy.
type Descriptor struct {
	// URL is the resource to download.
	URL *url.URL

	// Filename is the relative destination path under the output directory.
	Filename string
}

// NewDescriptor creates a Descriptor for u.
//
// The filename is the last segment of the URL path, percent-decoded and
// sanitized. Only URLs without a scheme or without path segments at all are
// rejected; any other URL yields a descriptor, possibly with an empty filename.
func NewDescriptor(u *url.URL) (Descriptor, error) {
	if u.Scheme == "" {
		return Descriptor{}, fmt.Errorf("%q: %w", u.String(), ErrNotAbsolute)
	}
	if u.Opaque != "" {
		return Descriptor{}, fmt.Errorf("%q: %w", u.String(), ErrNoFilename)
	}

	return Descriptor{URL: u, Filename: fileNameFromPath(u)}, nil
}

// ParseDescriptor parses raw as a URL and creates a Descriptor for it.
func ParseDescriptor(raw string) (Descriptor, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Descriptor{}, err
	}
	return NewDescriptor(u)
}

// WithDir returns a copy of d whose filename is placed under dir.
//
// An empty dir or "." leaves the filename unchanged, and so does an empty
// filename, which must stay empty for the transfer engine to reject it.
func (d Descriptor) WithDir(dir string) Descriptor {
	if dir == "" || dir == "." || d.Filename == "" {
		return d
	}
	d.Filename = filepath.Join(dir, d.Filename)
	return d
}

// Destination returns the absolute or working-directory-relative path of d under outputDir.
func (d Descriptor) Destination(outputDir string) string {
	return filepath.Join(outputDir, d.Filename)
}

// IsLocal reports whether the filename names a file inside the output directory.
// An empty filename is not local.
func (d Descriptor) IsLocal() bool {
	return filepath.IsLocal(d.Filename)
}

// String returns the URL of the descriptor.
func (d Descriptor) String() string {
	if d.URL == nil {
		return ""
	}
	return d.URL.String()
}

// fileNameFromPath computes the filename from the last URL path segment.
func fileNameFromPath(u *url.URL) string {
	escaped := u.EscapedPath()
	if escaped == "" || escaped[len(escaped)-1] == '/' {
		return ""
	}

	segment := path.Base(escaped)
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}

	return ioutils.SanitizeFileName(segment)
}
