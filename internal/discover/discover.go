// Package discover finds candidate IPTV source endpoints by querying search
// backends per keyword and merging the results into one deduplicated set.
// Backends are pluggable: an authenticated API backend (FOFA) and an
// unauthenticated text-scraping backend are provided. A failing backend or
// keyword never aborts discovery for the others.
package discover

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Backend is one searchable source of candidate endpoint URLs.
type Backend interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]string, error)
}

// Discoverer queries every backend for every keyword and unions the results.
type Discoverer struct {
	Backends []Backend
	// FallbackFile is a local candidate list (one URL per line) merged in
	// unconditionally; "" disables it.
	FallbackFile string
	// MaxPerKeyword caps how many candidates are taken from one backend for
	// one keyword; 0 = no cap.
	MaxPerKeyword int
	Log           *logrus.Entry
}

// Discover returns the merged candidate set: exact-string deduplicated and
// sorted so runs are deterministic. Per-keyword backend failures are logged
// and swallowed.
func (d *Discoverer) Discover(ctx context.Context, keywords []string) []string {
	log := d.logger()
	var all []string
	for _, kw := range keywords {
		for _, b := range d.Backends {
			found, err := b.Search(ctx, kw)
			if err != nil {
				log.WithFields(logrus.Fields{"backend": b.Name(), "keyword": kw}).
					Warnf("search failed: %v", err)
				continue
			}
			if d.MaxPerKeyword > 0 && len(found) > d.MaxPerKeyword {
				found = found[:d.MaxPerKeyword]
			}
			log.WithFields(logrus.Fields{"backend": b.Name(), "keyword": kw}).
				Debugf("%d candidates", len(found))
			all = append(all, found...)
		}
	}
	all = append(all, d.fallback()...)
	all = lo.Uniq(all)
	sort.Strings(all)
	return all
}

// fallback reads FallbackFile; lines not starting with "http" are ignored.
// A missing or unreadable file degrades to no extra candidates.
func (d *Discoverer) fallback() []string {
	if d.FallbackFile == "" {
		return nil
	}
	f, err := os.Open(filepath.Clean(d.FallbackFile))
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger().Warnf("fallback file %s: %v", d.FallbackFile, err)
		}
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "http") {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		d.logger().Warnf("fallback file %s: %v", d.FallbackFile, err)
	}
	return out
}

func (d *Discoverer) logger() *logrus.Entry {
	if d.Log != nil {
		return d.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
