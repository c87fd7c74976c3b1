// Package ioutils provides file system utilities for the bulk-downloader.
//
// This package contains functions for:
//   - Reading URL list files as UTF-8 text
//   - Validating that discovered paths are representable as UTF-8
//   - Filename sanitization
//   - Directory creation and part-file handling
//
// All functions that accept a context.Context respect cancellation,
// though file operations themselves may not be interruptible.
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PartSuffix ends the name of a file whose content is still being written.
const PartSuffix = ".part"

var (
	// ErrInvalidUTF8 is returned when a path or file content is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("not valid UTF-8")

	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// ValidatePath reports whether path can be represented as UTF-8.
//
// Paths on most Unix file systems are arbitrary byte strings, so a directory
// tree may contain entries whose names cannot be converted to text.
//
// Example:
//
//	if err := ValidatePath(path); err != nil {
//	    return err // wraps ErrInvalidUTF8
//	}
func ValidatePath(path string) error {
	if !utf8.ValidString(path) {
		return fmt.Errorf("path %q: %w", path, ErrInvalidUTF8)
	}
	return nil
}

// ReadTextFile reads the whole file at path and returns it as a string.
//
// The context is checked before the read starts. Content that is not valid
// UTF-8 is rejected with an error wrapping ErrInvalidUTF8, since the caller
// treats the file as text.
//
// Example:
//
//	text, err := ReadTextFile(ctx, "/data/urls/list.txt")
func ReadTextFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("content of %s: %w", path, ErrInvalidUTF8)
	}

	return string(data), nil
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// This function ensures filenames are valid across different operating systems,
// particularly Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("data: part 1/2.csv") // Returns "data_ part 1_2.csv"
//	SanitizeFileName("archive...")         // Returns "archive"
//	SanitizeFileName("..")                 // Returns ""
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	name = strings.TrimRight(name, " ")

	return name
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	return EnsureDir(filepath.Dir(path))
}

// CreatePartFile creates an empty part file next to dest and returns its path.
//
// Every call gets its own file ("<name>.<random>.part"), so concurrent
// transfers to the same destination never share one.
func CreatePartFile(dest string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*"+PartSuffix)
	if err != nil {
		return "", err
	}
	name := f.Name()

	err = f.Chmod(0644)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// CommitPartFile moves the finished part file into place at dest, replacing
// any existing file.
func CommitPartFile(part, dest string) error {
	return os.Rename(part, dest)
}

// RemovePartFile deletes a part file. A missing file is not an error.
func RemovePartFile(part string) error {
	err := os.Remove(part)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
