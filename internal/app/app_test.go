package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bulk-downloader/internal/config"
	"github.com/handiism/bulk-downloader/internal/discover"
	"github.com/handiism/bulk-downloader/internal/download"
	"github.com/handiism/bulk-downloader/internal/mode"
	"github.com/handiism/bulk-downloader/internal/report"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Retries = 1
	s.RetryCooldown = 0
	s.Concurrency = 4
	return s
}

// newServer serves "content of <path>" for every path except those containing "missing".
func newServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "content of %s", r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRun_BulkMode(t *testing.T) {
	srv, _ := newServer(t)
	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(in, "a.txt"), srv.URL+"/a.dat\n"+srv.URL+"/b.dat")
	writeFile(t, filepath.Join(in, "subdir", "x.txt"), srv.URL+"/x.dat "+srv.URL+"/y.dat")
	writeFile(t, filepath.Join(in, "input.meta.json"), `{"not": "urls"}`)

	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	r, err := a.Run(context.Background(), mode.Inputs{Dir: in, OutputDir: out})
	require.NoError(t, err)

	assert.True(t, r.OK(), r.Failures)
	assert.Equal(t, 4, r.Total)

	for _, rel := range []string{"a.dat", "b.dat", filepath.Join("subdir", "x.dat"), filepath.Join("subdir", "y.dat")} {
		data, err := os.ReadFile(filepath.Join(out, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, "content of /"+filepath.Base(rel), string(data))
	}

	received, finished, failed, total := a.Progress()
	assert.Equal(t, int32(4), finished)
	assert.Zero(t, failed)
	assert.Equal(t, int32(4), total)
	assert.Positive(t, received)
}

func TestRun_SingleModeWritesIntoDir(t *testing.T) {
	srv, hits := newServer(t)
	dir := t.TempDir()
	u, err := url.Parse(srv.URL + "/only.dat")
	require.NoError(t, err)

	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	r, err := a.Run(context.Background(), mode.Inputs{URL: u, Dir: dir})
	require.NoError(t, err)

	assert.True(t, r.OK())
	assert.Equal(t, 1, r.Total)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.FileExists(t, filepath.Join(dir, "only.dat"))
}

func TestRun_OneOfThreeFails(t *testing.T) {
	srv, _ := newServer(t)
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "list.txt"), strings.Join([]string{
		srv.URL + "/a.dat",
		srv.URL + "/missing.dat",
		srv.URL + "/c.dat",
	}, "\n"))

	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	r, err := a.Run(context.Background(), mode.Inputs{Dir: in})
	require.NoError(t, err)

	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err(), report.ErrSomeFailed)
	require.Len(t, r.Failures, 1)
	assert.True(t, strings.HasPrefix(r.Failures[0], "Failed to download "+srv.URL+"/missing.dat: HTTP 404"), r.Failures[0])

	// Bulk mode without an output dir writes next to the lists.
	assert.FileExists(t, filepath.Join(in, "a.dat"))
	assert.NoFileExists(t, filepath.Join(in, "missing.dat"))
}

func TestRun_URLWithoutFilenameFailsAtTransfer(t *testing.T) {
	srv, hits := newServer(t)
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "sub", "list.txt"), srv.URL+"/ok.dat "+srv.URL+"/dir/")

	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	r, err := a.Run(context.Background(), mode.Inputs{Dir: in, OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Succeeded)
	require.Len(t, r.Failures, 1)
	assert.Equal(t, "Failed to download "+srv.URL+"/dir/: cannot derive a filename from URL", r.Failures[0])

	// Only the sibling reaches the server.
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.FileExists(t, filepath.Join(out, "sub", "ok.dat"))
}

func TestRun_MalformedURLAbortsBeforeTransfer(t *testing.T) {
	srv, hits := newServer(t)
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "good.txt"), srv.URL+"/a.dat")
	writeFile(t, filepath.Join(in, "bad.txt"), "not-a-url")

	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	_, err = a.Run(context.Background(), mode.Inputs{Dir: in})

	var malformed *discover.MalformedURLError
	require.ErrorAs(t, err, &malformed)
	assert.Zero(t, atomic.LoadInt32(hits))
}

type recordingFetcher struct{ urls []string }

func (f *recordingFetcher) DownloadFile(_ context.Context, url, dest string, _ func(int64, int64)) error {
	f.urls = append(f.urls, url)
	return os.WriteFile(dest, nil, 0644)
}

func TestRun_WithFetcherAndMetricsFile(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "list.txt"), "https://example.org/a.dat")

	settings := testSettings()
	settings.Concurrency = 1
	settings.MetricsFile = filepath.Join(t.TempDir(), "run.prom")

	fetcher := &recordingFetcher{}
	var events int32
	a, err := New(settings, quietLogger(),
		WithFetcher(fetcher),
		WithProgress(func(e download.ProgressEvent) {
			if e.Level == download.LevelSuccess {
				atomic.AddInt32(&events, 1)
			}
		}),
	)
	require.NoError(t, err)

	r, err := a.Run(context.Background(), mode.Inputs{Dir: in})
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, []string{"https://example.org/a.dat"}, fetcher.urls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&events))

	data, err := os.ReadFile(settings.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bulkdl_discovered_total 1")
	assert.Contains(t, string(data), `bulkdl_processed_total{status="Success"} 1`)
}

func TestNew_InvalidSettings(t *testing.T) {
	s := testSettings()
	s.RateLimit = "fast"
	_, err := New(s, quietLogger())
	assert.Error(t, err)
}

func TestProgress_BeforeTransfer(t *testing.T) {
	a, err := New(testSettings(), quietLogger())
	require.NoError(t, err)

	received, finished, failed, total := a.Progress()
	assert.Zero(t, received)
	assert.Zero(t, finished)
	assert.Zero(t, failed)
	assert.Zero(t, total)
}
