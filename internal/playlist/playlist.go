// Package playlist fetches validated playlist sources and parses them into
// channel records. Parsing is line-oriented over the extended-M3U convention:
// an #EXTINF line opens pending metadata, the next non-comment line is the
// stream URL that closes the record.
package playlist

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamseek/iptv-seeker/internal/config"
	"github.com/streamseek/iptv-seeker/internal/httpclient"
)

// Unknown is the sentinel for channel metadata absent from the source.
const Unknown = "Unknown"

// Channel is one parsed playlist entry. Channels are not deduplicated across
// sources; duplicates are preserved and exported as-is.
type Channel struct {
	Name  string
	Group string
	URL   string
}

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "iptv-seeker/1.0"
	maxLineSize  = 1 << 20 // 1 MiB per line
)

var groupTitleRe = regexp.MustCompile(`group-title="([^"]*)"`)

// IsPlaylistURL reports whether u points at a playlist document rather than a
// stream gateway.
func IsPlaylistURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasSuffix(lower, ".m3u") ||
		strings.HasSuffix(lower, ".m3u8") ||
		strings.HasSuffix(lower, ".txt")
}

// Fetch downloads and parses one playlist source. client may be nil.
func Fetch(ctx context.Context, sourceURL string, client *http.Client) ([]Channel, error) {
	if client == nil {
		client = httpclient.WithTimeout(fetchTimeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
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
		return nil, errStatusCode(resp.StatusCode)
	}
	return ParseReader(resp.Body)
}

// ParseBytes parses playlist text from memory. Used by tests and the export
// round-trip.
func ParseBytes(data []byte) ([]Channel, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader scans playlist text line by line. #EXTINF opens pending
// metadata; the following non-comment, non-blank line is taken as the stream
// URL and emits one channel. Metadata resets after every URL line, so a bare
// URL with no preceding #EXTINF gets both sentinels. Other # lines and blank
// lines are ignored.
func ParseReader(r io.Reader) ([]Channel, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	var channels []Channel
	name, group := "", ""
	pending := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF") {
			name, group = parseEXTINF(line)
			pending = true
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		ch := Channel{Name: Unknown, Group: Unknown, URL: line}
		if pending {
			ch.Name, ch.Group = name, group
		}
		channels = append(channels, ch)
		name, group = "", ""
		pending = false
	}
	return channels, sc.Err()
}

// parseEXTINF extracts the group-title attribute and the display name (the
// substring after the last comma). Either falls back to Unknown.
func parseEXTINF(line string) (name, group string) {
	name, group = Unknown, Unknown
	if m := groupTitleRe.FindStringSubmatch(line); m != nil {
		if g := strings.TrimSpace(m[1]); g != "" {
			group = g
		}
	}
	if i := strings.LastIndex(line, ","); i >= 0 {
		if n := strings.TrimSpace(line[i+1:]); n != "" {
			name = n
		}
	}
	return name, group
}

// ParseAll walks the validated sources in order, sequentially. Playlist
// sources are fetched and parsed; a failing source contributes zero channels
// and is logged, never aborting the batch. Non-playlist (gateway) sources
// are skipped or emitted as one synthetic entry, per gatewayMode.
func ParseAll(ctx context.Context, sources []string, client *http.Client, gatewayMode string, log *logrus.Entry) []Channel {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if client == nil {
		client = httpclient.WithTimeout(fetchTimeout)
	}
	var channels []Channel
	for i, src := range sources {
		if !IsPlaylistURL(src) {
			if gatewayMode == config.GatewaySkip {
				continue
			}
			channels = append(channels, Channel{
				Name:  "Source " + strconv.Itoa(i+1),
				Group: "Live",
				URL:   src,
			})
			continue
		}
		parsed, err := Fetch(ctx, src, client)
		if err != nil {
			log.WithField("url", src).Warnf("playlist fetch failed: %v", err)
			continue
		}
		channels = append(channels, parsed...)
	}
	return channels
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return "unexpected status: " + strconv.Itoa(int(e))
}
