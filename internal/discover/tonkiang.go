package discover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamseek/iptv-seeker/internal/httpclient"
)

const (
	// DefaultSearchURL is the public hotel-IPTV search page scraped by
	// TonkiangBackend. Often flaky due to anti-scraping; failures are
	// per-keyword and non-fatal.
	DefaultSearchURL = "http://tonkiang.us/hoteliptv.php"

	scrapeTimeout = 10 * time.Second
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"

	// maxScrapeBody bounds how much of the response page is read.
	maxScrapeBody = 2 << 20
)

// endpointRe matches bare stream-gateway endpoints (scheme://ip-or-host:port)
// in raw page text. This is deliberately not an HTML parser: the extraction
// contract is "every endpoint-looking token in the body", nothing structural.
var endpointRe = regexp.MustCompile(`https?://[0-9A-Za-z\.\-]+:\d+`)

// TonkiangBackend scrapes the unauthenticated search page with one GET per
// keyword. All requests share one limiter so repeated keywords don't hammer
// the single upstream host.
type TonkiangBackend struct {
	BaseURL string       // defaults to DefaultSearchURL
	Client  *http.Client // defaults to the shared pool with scrapeTimeout
	Limiter *rate.Limiter
}

// NewTonkiangBackend returns a backend, limited to one request per second
// against baseURL ("" = DefaultSearchURL).
func NewTonkiangBackend(baseURL string) *TonkiangBackend {
	return &TonkiangBackend{
		BaseURL: baseURL,
		Limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (t *TonkiangBackend) Name() string { return "tonkiang" }

// Search GETs the search page with the keyword in the query string and
// extracts endpoint URLs from the raw body.
func (t *TonkiangBackend) Search(ctx context.Context, keyword string) ([]string, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	base := t.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	searchURL := base + "?s=" + url.QueryEscape(keyword)

	client := t.Client
	if client == nil {
		client = httpclient.WithTimeout(scrapeTimeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBody))
	if err != nil {
		return nil, err
	}
	return ExtractEndpoints(string(body)), nil
}

// ExtractEndpoints returns every scheme://host:port occurrence in text, in
// first-seen order with exact-string duplicates removed.
func ExtractEndpoints(text string) []string {
	matches := endpointRe.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
