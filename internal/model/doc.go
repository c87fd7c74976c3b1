// Package model defines the core data structures used throughout
// the bulk-downloader application.
//
// # Descriptor
//
// Descriptor pairs a source URL with the relative path it is saved under:
//
//	d, err := model.ParseDescriptor("https://example.org/data/a.dat")
//	fmt.Println(d.Filename) // "a.dat"
//	d = d.WithDir("sub/dir")
//	fmt.Println(d.Filename) // "sub/dir/a.dat"
//
// # Summary
//
// Summary is the outcome of transferring one descriptor:
//
//	if s.Failed() {
//	    fmt.Printf("%s: %v\n", s.Descriptor.URL, s.Reason)
//	}
package model
