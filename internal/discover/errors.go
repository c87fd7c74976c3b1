package discover

import "fmt"

// PathEncodingError is returned when a discovered file path is not valid UTF-8.
type PathEncodingError struct {
	Path string
}

func (e *PathEncodingError) Error() string {
	return fmt.Sprintf("path contains non-UTF-8 bytes: %q", e.Path)
}

// FileReadError is returned when the tree cannot be walked or a file cannot be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// MalformedURLError is returned for a token that cannot be turned into a download.
type MalformedURLError struct {
	Path  string
	Token string
	Err   error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("invalid URL %q in %s: %v", e.Token, e.Path, e.Err)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Err
}
