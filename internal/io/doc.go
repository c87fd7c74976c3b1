// Package ioutils provides the file system access used by URL discovery and
// by the transfer engine.
//
// # Reading URL Lists
//
//	if err := ioutils.ValidatePath(path); err != nil {
//	    // path contains bytes that are not UTF-8
//	}
//	text, err := ioutils.ReadTextFile(ctx, path)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from names derived from URLs:
//
//	safe := ioutils.SanitizeFileName("report: 2024.pdf") // Returns "report_ 2024.pdf"
//
// # Part Files
//
// Each transfer attempt writes to its own part file next to the destination
// and moves it into place once complete:
//
//	_ = ioutils.EnsureParentDir(dest)
//	part, err := ioutils.CreatePartFile(dest)
//	// ... stream into part ...
//	err = ioutils.CommitPartFile(part, dest)
package ioutils
