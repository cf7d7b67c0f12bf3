// Package validator concurrently probes candidate endpoints for liveness and
// ranks the survivors by round-trip latency.
package validator

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamseek/iptv-seeker/internal/httpclient"
	"github.com/streamseek/iptv-seeker/internal/safeurl"
)

// Status classifies the outcome of one liveness probe. The pipeline stage
// filters on it; individual failures are never propagated as errors.
type Status string

const (
	StatusOK        Status = "ok"
	StatusBadStatus Status = "bad_status"
	StatusTimeout   Status = "timeout"
	StatusError     Status = "error"
)

// Result is the outcome of probing one candidate.
type Result struct {
	URL        string // the candidate, as discovered
	Target     string // the URL actually probed
	Status     Status
	StatusCode int
	LatencyMs  int64
}

// OK reports whether the candidate passed the probe.
func (r Result) OK() bool { return r.Status == StatusOK }

// Source is a validated endpoint with its measured probe latency.
type Source struct {
	URL       string
	LatencyMs int64
}

const userAgent = "iptv-seeker/1.0"

var playlistExts = []string{".m3u", ".m3u8", ".txt"}

// ProbeTarget derives the URL to probe: a playlist document is fetched as-is,
// anything else is assumed to be a udpxy-style gateway and probed on /stat.
func ProbeTarget(candidate string) string {
	lower := strings.ToLower(candidate)
	for _, ext := range playlistExts {
		if strings.HasSuffix(lower, ext) {
			return candidate
		}
	}
	return strings.TrimSuffix(candidate, "/") + "/stat"
}

// ProbeOne issues a single GET against the candidate's probe target and
// classifies the outcome. Latency is wall clock from request start to
// response headers, in milliseconds. client may be nil.
func ProbeOne(ctx context.Context, candidate string, client *http.Client) Result {
	if !safeurl.IsHTTPOrHTTPS(candidate) {
		return Result{URL: candidate, Status: StatusError}
	}
	target := ProbeTarget(candidate)
	if client == nil {
		client = httpclient.WithTimeout(5 * time.Second)
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{URL: candidate, Target: target, Status: StatusError}
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
			return Result{URL: candidate, Target: target, Status: StatusTimeout, LatencyMs: latency}
		}
		return Result{URL: candidate, Target: target, Status: StatusError, LatencyMs: latency}
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{URL: candidate, Target: target, Status: StatusBadStatus, StatusCode: resp.StatusCode, LatencyMs: latency}
	}
	return Result{URL: candidate, Target: target, Status: StatusOK, StatusCode: resp.StatusCode, LatencyMs: latency}
}

// ValidateAll probes every candidate concurrently (no in-flight cap; each
// probe is bounded only by timeout) and returns the candidates that answered
// HTTP 200, sorted ascending by latency. Ties keep candidate order, so the
// sort is reproducible. Failures are logged per candidate and dropped.
func ValidateAll(ctx context.Context, candidates []string, client *http.Client, timeout time.Duration, log *logrus.Entry) []Source {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = httpclient.WithTimeout(timeout)
	}

	// Indexed results keep submission order for the stable tie-break below.
	results := make([]Result, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c string) {
			defer wg.Done()
			results[i] = ProbeOne(ctx, c, client)
		}(i, c)
	}
	wg.Wait()

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			log.WithFields(logrus.Fields{"url": r.URL, "status": r.Status, "code": r.StatusCode}).
				Debug("probe failed")
			continue
		}
		sources = append(sources, Source{URL: r.URL, LatencyMs: r.LatencyMs})
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].LatencyMs < sources[j].LatencyMs
	})
	log.Infof("validated %d/%d candidates", len(sources), len(candidates))
	return sources
}
