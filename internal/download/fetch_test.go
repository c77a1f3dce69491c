package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordedDownload struct {
	url     string
	success bool
}

// downloadRecorder swaps the session callbacks out so tests never touch the
// real log directory.
type downloadRecorder struct {
	mu      sync.Mutex
	started bool
	ended   bool
	logged  []recordedDownload
}

func (r *downloadRecorder) funcs() FetchFuncs {
	return FetchFuncs{
		StartSession: func(string, []string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.started = true
			return nil
		},
		EndSession: func() error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ended = true
			return nil
		},
		LogDownload: func(url, destPath string, success bool, _ error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.logged = append(r.logged, recordedDownload{url: url, success: success})
		},
	}
}

func fileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, content := range files {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(content))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDownloadsAll(t *testing.T) {
	t.Parallel()

	srv := fileServer(t, map[string]string{
		"/a.pdf": "alpha",
		"/b.pdf": "beta",
	})
	dir := t.TempDir()
	rec := &downloadRecorder{}

	items := []Item{
		{URL: srv.URL + "/a.pdf"},
		{URL: srv.URL + "/b.pdf"},
	}
	report, err := Fetch(context.Background(), items, dir, FetchConfig{
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if report.Downloaded != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("Fetch() report = %+v, want 2 downloaded", report)
	}
	if report.Err() != nil {
		t.Errorf("Report.Err() = %v, want nil", report.Err())
	}

	for name, want := range map[string]string{"a.pdf": "alpha", "b.pdf": "beta"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", name, err)
		}
		if string(data) != want {
			t.Errorf("content of %s = %q, want %q", name, data, want)
		}
	}

	if !rec.started || !rec.ended {
		t.Errorf("Fetch() session started = %t ended = %t, want both", rec.started, rec.ended)
	}
	if len(rec.logged) != 2 {
		t.Fatalf("Fetch() logged %d downloads, want 2", len(rec.logged))
	}
	for _, l := range rec.logged {
		if !l.success {
			t.Errorf("Fetch() logged failure for %s, want success", l.url)
		}
	}
}

func TestFetchSkipsExisting(t *testing.T) {
	t.Parallel()

	srv := fileServer(t, map[string]string{"/a.pdf": "fresh"})
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &downloadRecorder{}
	report, err := Fetch(context.Background(), []Item{{URL: srv.URL + "/a.pdf"}}, dir, FetchConfig{
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if report.Skipped != 1 || report.Downloaded != 0 {
		t.Errorf("Fetch() report = %+v, want 1 skipped", report)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("existing file overwritten: content = %q, want %q", data, "original")
	}
	if len(rec.logged) != 0 {
		t.Errorf("Fetch() logged %d operations for skipped file, want 0", len(rec.logged))
	}
}

func TestFetchReportsFailures(t *testing.T) {
	t.Parallel()

	srv := fileServer(t, map[string]string{"/a.pdf": "alpha"})
	dir := t.TempDir()
	rec := &downloadRecorder{}

	items := []Item{
		{URL: srv.URL + "/a.pdf"},
		{URL: srv.URL + "/missing.pdf"},
	}
	report, err := Fetch(context.Background(), items, dir, FetchConfig{
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if report.Downloaded != 1 || report.Failed != 1 {
		t.Errorf("Fetch() report = %+v, want 1 downloaded 1 failed", report)
	}
	if report.Err() == nil {
		t.Error("Report.Err() = nil, want error for partial failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.pdf")); !os.IsNotExist(err) {
		t.Errorf("failed download left a file behind: stat error = %v", err)
	}

	var failures int
	for _, l := range rec.logged {
		if !l.success {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Fetch() logged %d failures, want 1", failures)
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/a.pdf", func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("alpha"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	rec := &downloadRecorder{}
	_, err := Fetch(context.Background(), []Item{{URL: srv.URL + "/a.pdf"}}, t.TempDir(), FetchConfig{
		UserAgent: "mediabatch-test/1.0",
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if gotAgent != "mediabatch-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "mediabatch-test/1.0")
	}
}

func TestFetchDuplicateTargetNames(t *testing.T) {
	t.Parallel()

	srv := fileServer(t, map[string]string{
		"/a.pdf": "alpha",
		"/b.pdf": "beta",
	})
	dir := t.TempDir()
	rec := &downloadRecorder{}

	items := []Item{
		{URL: srv.URL + "/a.pdf", NameHint: "same"},
		{URL: srv.URL + "/b.pdf", NameHint: "same"},
	}
	report, err := Fetch(context.Background(), items, dir, FetchConfig{
		Workers:   1,
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if report.Downloaded != 1 || report.Failed != 1 {
		t.Errorf("Fetch() report = %+v, want 1 downloaded 1 failed", report)
	}
	if !strings.Contains(report.Results[1].Reason, "already claimed") {
		t.Errorf("Result.Reason = %q, want claim conflict", report.Results[1].Reason)
	}
	data, err := os.ReadFile(filepath.Join(dir, "same.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alpha" {
		t.Errorf("content of same.pdf = %q, want first claimant's %q", data, "alpha")
	}
}

func TestFetchCanceled(t *testing.T) {
	t.Parallel()

	srv := fileServer(t, map[string]string{"/a.pdf": "alpha"})
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &downloadRecorder{}
	report, err := Fetch(ctx, []Item{{URL: srv.URL + "/a.pdf"}}, dir, FetchConfig{
		Functions: rec.funcs(),
		Out:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	want := []Result{{
		URL:      srv.URL + "/a.pdf",
		Filename: "a.pdf",
		Outcome:  OutcomeSkipped,
		Reason:   "canceled",
	}}
	if diff := cmp.Diff(want, report.Results); diff != "" {
		t.Errorf("Fetch() results mismatch (-want +got):\n%s", diff)
	}
}
