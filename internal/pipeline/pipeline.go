// Package pipeline wires the four stages together: discover → validate →
// parse → export. Data flows strictly forward; each stage hands a fully
// materialized result to the next.
package pipeline

import (
	"context"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/streamseek/iptv-seeker/internal/config"
	"github.com/streamseek/iptv-seeker/internal/discover"
	"github.com/streamseek/iptv-seeker/internal/export"
	"github.com/streamseek/iptv-seeker/internal/playlist"
	"github.com/streamseek/iptv-seeker/internal/validator"
)

// Stats summarizes one run for the CLI.
type Stats struct {
	Candidates int
	Validated  int
	Channels   int
	Profiles   int
}

// Backends builds the discovery backend set from config. The FOFA backend is
// only present when credentials are configured; its absence is a documented
// degrade, not an error.
func Backends(cfg *config.Config, log *logrus.Entry) []discover.Backend {
	var backends []discover.Backend
	if fofa := discover.NewFofaBackend(cfg.FofaEmail, cfg.FofaKey); fofa != nil {
		backends = append(backends, fofa)
	} else {
		log.Info("FOFA credentials not set; skipping FOFA search")
	}
	backends = append(backends, discover.NewTonkiangBackend(cfg.SearchURL))
	return backends
}

// Profiles loads the configured profile file, degrading to the single default
// profile (fed by the legacy include/exclude lists) when the file is missing
// or malformed.
func Profiles(cfg *config.Config, log *logrus.Entry) []export.Profile {
	profiles, err := export.LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		log.Warnf("profiles unusable, using default: %v", err)
	}
	if len(profiles) == 0 {
		profiles = []export.Profile{export.DefaultProfile(cfg.FilterInclude, cfg.FilterExclude)}
	}
	return profiles
}

// Run executes the whole batch once. The only returned error is a failed
// output write; every per-item failure upstream is logged and dropped.
func Run(ctx context.Context, cfg *config.Config, log *logrus.Entry) (Stats, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	var stats Stats

	d := &discover.Discoverer{
		Backends:      Backends(cfg, log),
		FallbackFile:  cfg.FallbackFile,
		MaxPerKeyword: cfg.MaxSources,
		Log:           log,
	}
	candidates := d.Discover(ctx, cfg.Keywords)
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Warn("no candidates found; check keywords or search sources")
	} else {
		log.Infof("found %d candidates", len(candidates))
	}

	sources := validator.ValidateAll(ctx, candidates, nil, cfg.ProbeTimeout, log)
	stats.Validated = len(sources)

	urls := lo.Map(sources, func(s validator.Source, _ int) string { return s.URL })
	channels := playlist.ParseAll(ctx, urls, nil, cfg.GatewayMode, log)
	stats.Channels = len(channels)
	log.Infof("parsed %d channels from %d sources", len(channels), len(sources))

	profiles := Profiles(cfg, log)
	stats.Profiles = len(profiles)
	if err := export.Export(channels, profiles, cfg.OutputDir, log); err != nil {
		return stats, err
	}
	return stats, nil
}
