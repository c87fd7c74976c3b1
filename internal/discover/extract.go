package discover

import (
	"path/filepath"
	"strings"

	"github.com/handiism/bulk-downloader/internal/model"
)

// Result is one entry produced by Extract: either a descriptor or the error
// for the token that could not be parsed.
type Result struct {
	Descriptor model.Descriptor
	Err        error
}

// Extract parses the text of one URL list file.
//
// The text is split on runs of ASCII whitespace and every token is parsed as
// a URL. Each descriptor's filename is moved under the directory of filePath
// relative to root, so a file at root/sub/dir/list.txt produces filenames
// like "sub/dir/a.dat" while a file directly in root produces "a.dat".
//
// Token order is kept. Bad tokens produce a Result with a *MalformedURLError
// in place, they are never dropped.
func Extract(root, filePath, text string) []Result {
	relDir := relativeDir(root, filePath)

	tokens := strings.FieldsFunc(text, isASCIISpace)
	results := make([]Result, 0, len(tokens))
	for _, token := range tokens {
		d, err := model.ParseDescriptor(token)
		if err != nil {
			results = append(results, Result{Err: &MalformedURLError{Path: filePath, Token: token, Err: err}})
			continue
		}
		results = append(results, Result{Descriptor: d.WithDir(relDir)})
	}

	return results
}

// relativeDir returns the parent directory of filePath relative to root.
// A file directly inside root yields ".".
func relativeDir(root, filePath string) string {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Dir(filePath))
	if err != nil {
		return "."
	}
	return rel
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
