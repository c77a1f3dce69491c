package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediabatch/internal/oplog"

	"github.com/mhmtszr/concurrent-swiss-map"
	"golang.org/x/sync/errgroup"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetchFuncs bundles the logging callbacks used during a fetch run. Tests
// can override any subset.
type FetchFuncs struct {
	StartSession func(command string, args []string) error
	EndSession   func() error
	LogDownload  func(url, destPath string, success bool, err error)
}

func (f FetchFuncs) withDefaults() FetchFuncs {
	if f.StartSession == nil {
		f.StartSession = oplog.StartSession
	}
	if f.EndSession == nil {
		f.EndSession = oplog.EndSession
	}
	if f.LogDownload == nil {
		f.LogDownload = oplog.LogDownload
	}
	return f
}

// FetchConfig configures a fetch run.
type FetchConfig struct {
	Timeout     time.Duration
	UserAgent   string
	Workers     int
	Command     string
	CommandArgs []string
	Functions   FetchFuncs
	Client      *http.Client
	Out         io.Writer
	Stderr      io.Writer
}

func (c FetchConfig) withDefaults() FetchConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	c.Functions = c.Functions.withDefaults()
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	return c
}

// Outcome classifies the result of one download.
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// Result records the outcome for a single URL.
type Result struct {
	URL      string  `json:"url"`
	Filename string  `json:"filename"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// Report aggregates the outcomes of a fetch run.
type Report struct {
	Results    []Result
	Downloaded int
	Skipped    int
	Failed     int
}

// Err returns a non-nil error when any download failed, so callers can
// exit non-zero on partial failure.
func (r *Report) Err() error {
	if r.Failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", r.Failed, len(r.Results))
	}
	return nil
}

type fetcher struct {
	cfg     FetchConfig
	destDir string
	total   int

	// claims maps target filenames to the URL that claimed them, so two
	// workers never write the same file.
	claims *csmap.CsMap[string, string]

	outMu sync.Mutex
}

// Fetch downloads every item into destDir, creating it when missing. Files
// that already exist are skipped; a failed download does not stop the run.
func Fetch(ctx context.Context, items []Item, destDir string, cfg FetchConfig) (*Report, error) {
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}

	f := &fetcher{
		cfg:     cfg,
		destDir: destDir,
		total:   len(items),
		claims:  csmap.Create[string, string](),
	}

	if err := cfg.Functions.StartSession(cfg.Command, cfg.CommandArgs); err != nil {
		fmt.Fprintf(cfg.Stderr, "Warning: Failed to start operation log: %v\n", err)
	}

	results := make([]Result, len(items))
	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)
	for i, item := range items {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, i, item)
			return nil
		})
	}
	g.Wait()

	if err := cfg.Functions.EndSession(); err != nil {
		fmt.Fprintf(cfg.Stderr, "Warning: Failed to save operation log: %v\n", err)
	}

	report := &Report{Results: results}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeDownloaded:
			report.Downloaded++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
		}
	}
	return report, nil
}

func (f *fetcher) fetchOne(ctx context.Context, i int, item Item) Result {
	name := TargetName(item)
	res := Result{URL: item.URL, Filename: name}

	claimed := false
	f.claims.SetIf(name, func(previous string, found bool) (string, bool) {
		if found {
			return previous, false
		}
		claimed = true
		return item.URL, true
	})
	if !claimed {
		res.Outcome = OutcomeFailed
		res.Reason = fmt.Sprintf("target name %s already claimed by another URL", name)
		f.printf("Error downloading %s: %s\n", item.URL, res.Reason)
		return res
	}

	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = "canceled"
		return res
	}

	f.printf("[%d/%d] Processing: %s\n", i+1, f.total, item.URL)

	destPath := filepath.Join(f.destDir, name)
	if _, err := os.Stat(destPath); err == nil {
		res.Outcome = OutcomeSkipped
		res.Reason = "already exists"
		f.printf("Skipped (already exists): %s\n", name)
		return res
	}

	err := f.download(ctx, item.URL, destPath)
	f.cfg.Functions.LogDownload(item.URL, destPath, err == nil, err)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Reason = err.Error()
		f.printf("Error downloading %s: %v\n", item.URL, err)
		return res
	}

	res.Outcome = OutcomeDownloaded
	f.printf("Downloaded: %s\n", name)
	return res
}

func (f *fetcher) download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.cfg.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", destPath, err)
	}
	return nil
}

func (f *fetcher) printf(format string, args ...any) {
	f.outMu.Lock()
	defer f.outMu.Unlock()
	fmt.Fprintf(f.cfg.Out, format, args...)
}
