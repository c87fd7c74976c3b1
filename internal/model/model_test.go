package model

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseDescriptor_Filename(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.org/a.dat", "a.dat"},
		{"https://example.org/data/sets/b.tar.gz", "b.tar.gz"},
		{"https://example.org/file.bin?token=abc#frag", "file.bin"},
		{"https://example.org/my%20file.txt", "my file.txt"},
		{"https://example.org/a%2Fb.dat", "a_b.dat"},
		{"http://example.org:8080/x/y/z.json", "z.json"},
		{"file:///tmp/a.dat", "a.dat"},
		{"https://example.org/", ""},
		{"https://example.org", ""},
		{"https://example.org/dir/", ""},
		{"https://example.org/..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := ParseDescriptor(tt.raw)
			if err != nil {
				t.Fatalf("ParseDescriptor(%q) unexpected error: %v", tt.raw, err)
			}
			if d.Filename != tt.want {
				t.Errorf("Filename = %q, want %q", d.Filename, tt.want)
			}
			if d.String() != tt.raw {
				t.Errorf("String() = %q, want %q", d.String(), tt.raw)
			}
		})
	}
}

func TestParseDescriptor_Errors(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr error
	}{
		{"mailto:someone@example.org", ErrNoFilename},
		{"not-a-url", ErrNotAbsolute},
		{"/just/a/path.dat", ErrNotAbsolute},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseDescriptor(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseDescriptor(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}

	if _, err := ParseDescriptor("http://[::1"); err == nil {
		t.Error("expected parse error for malformed host")
	}
}

func TestDescriptor_WithDir(t *testing.T) {
	d, err := ParseDescriptor("https://example.org/x.dat")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		dir  string
		want string
	}{
		{"", "x.dat"},
		{".", "x.dat"},
		{"subdir", filepath.Join("subdir", "x.dat")},
		{filepath.Join("sub", "dir"), filepath.Join("sub", "dir", "x.dat")},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got := d.WithDir(tt.dir)
			if got.Filename != tt.want {
				t.Errorf("WithDir(%q).Filename = %q, want %q", tt.dir, got.Filename, tt.want)
			}
			if !got.IsLocal() {
				t.Errorf("WithDir(%q) produced non-local filename %q", tt.dir, got.Filename)
			}
		})
	}

	if d.Filename != "x.dat" {
		t.Errorf("WithDir modified the original descriptor: %q", d.Filename)
	}
}

func TestDescriptor_EmptyFilenameStaysEmpty(t *testing.T) {
	d, err := ParseDescriptor("https://example.org/dir/")
	if err != nil {
		t.Fatal(err)
	}

	got := d.WithDir("subdir")
	if got.Filename != "" {
		t.Errorf("WithDir on empty filename = %q, want empty", got.Filename)
	}
	if got.IsLocal() {
		t.Error("empty filename reported as local")
	}
}

func TestDescriptor_Destination(t *testing.T) {
	d, _ := ParseDescriptor("https://example.org/x.dat")
	d = d.WithDir("subdir")

	want := filepath.Join("out", "subdir", "x.dat")
	if got := d.Destination("out"); got != want {
		t.Errorf("Destination() = %q, want %q", got, want)
	}
}

func TestStatus(t *testing.T) {
	if !StatusSuccess.IsSuccess() {
		t.Error("StatusSuccess.IsSuccess() = false")
	}
	if StatusFail.IsSuccess() {
		t.Error("StatusFail.IsSuccess() = true")
	}
	if StatusFail.String() != "Fail" {
		t.Errorf("StatusFail.String() = %q", StatusFail.String())
	}
}

func TestSummary_Failed(t *testing.T) {
	d, _ := ParseDescriptor("https://example.org/x.dat")

	ok := SuccessSummary(d, 1, 10, 0)
	if ok.Failed() || ok.Reason != nil {
		t.Errorf("success summary reported as failed: %+v", ok)
	}

	bad := FailureSummary(d, 4, errors.New("HTTP 404: 404 Not Found"), 0)
	if !bad.Failed() {
		t.Error("failure summary not reported as failed")
	}
	if bad.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", bad.Attempts)
	}
}
