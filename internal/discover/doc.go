// Package discover finds downloads listed in text files under a directory tree.
//
// Every regular file below the scan root is read as text and split on ASCII
// whitespace; each token must be an absolute URL. Files named input.meta.json
// or output.meta.json are ignored.
//
//	d := discover.NewDiscoverer(logger)
//	descriptors, err := d.Discover(ctx, "/data/in")
//
// A file at /data/in/sub/list.txt listing https://example.org/a.dat yields a
// descriptor whose filename is "sub/a.dat", so the output directory mirrors
// the input tree.
//
// # Failure Policy
//
// Discovery is all-or-nothing. The first unreadable file, non-UTF-8 path or
// malformed URL stops the walk and Discover returns that error:
//
//	var bad *discover.MalformedURLError
//	if errors.As(err, &bad) {
//	    fmt.Printf("%s: %q\n", bad.Path, bad.Token)
//	}
package discover
