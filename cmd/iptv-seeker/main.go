// Command iptv-seeker: scheduled batch pipeline that discovers candidate
// live-stream sources, validates their reachability, parses playlist sources
// into channels, and exports filtered playlists.
//
//	run       Full pipeline: discover → validate → parse → export. For cron/systemd timers.
//	discover  Print the merged candidate set for the configured keywords and exit.
//	probe     Validate given URLs (or the discovered set) and report status + latency.
//	export    Re-filter a local playlist file through the configured profiles.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/streamseek/iptv-seeker/internal/config"
	"github.com/streamseek/iptv-seeker/internal/discover"
	"github.com/streamseek/iptv-seeker/internal/export"
	"github.com/streamseek/iptv-seeker/internal/pipeline"
	"github.com/streamseek/iptv-seeker/internal/playlist"
	"github.com/streamseek/iptv-seeker/internal/validator"
)

func newLogger(level string) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return logrus.NewEntry(l)
}

func main() {
	_ = config.LoadEnvFile(".env")

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	runOutput := runCmd.String("output", "", "Output directory (default: IPTV_SEEKER_OUTPUT_DIR)")
	runTimeout := runCmd.Duration("timeout", 0, "Per-probe timeout (default: IPTV_SEEKER_TIMEOUT)")
	runProfiles := runCmd.String("profiles", "", "Filter profiles JSON (default: IPTV_SEEKER_PROFILES_FILE)")

	discoverCmd := flag.NewFlagSet("discover", flag.ExitOnError)
	discoverKeywords := discoverCmd.String("keywords", "", "Comma-separated keywords (default: IPTV_SEEKER_KEYWORDS)")

	probeCmd := flag.NewFlagSet("probe", flag.ExitOnError)
	probeURLs := probeCmd.String("urls", "", "Comma-separated URLs to probe (default: discover first)")
	probeTimeout := probeCmd.Duration("timeout", 0, "Per-probe timeout (default: IPTV_SEEKER_TIMEOUT)")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportIn := exportCmd.String("in", "", "Local playlist file to re-filter (required)")
	exportOutput := exportCmd.String("output", "", "Output directory (default: IPTV_SEEKER_OUTPUT_DIR)")

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <run|discover|probe|export> [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  run       Full pipeline (for cron/systemd timers)\n")
		fmt.Fprintf(os.Stderr, "  discover  Print the merged candidate set\n")
		fmt.Fprintf(os.Stderr, "  probe     Validate URLs, report status and latency\n")
		fmt.Fprintf(os.Stderr, "  export    Re-filter a local playlist through the profiles\n")
		os.Exit(1)
	}

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	ctx := context.Background()

	switch os.Args[1] {
	case "run":
		_ = runCmd.Parse(os.Args[2:])
		if *runOutput != "" {
			cfg.OutputDir = *runOutput
		}
		if *runTimeout > 0 {
			cfg.ProbeTimeout = *runTimeout
		}
		if *runProfiles != "" {
			cfg.ProfilesFile = *runProfiles
		}
		stats, err := pipeline.Run(ctx, cfg, log)
		if err != nil {
			log.Errorf("run failed: %v", err)
			os.Exit(1)
		}
		log.Infof("done: %d candidates, %d validated, %d channels, %d profiles exported to %s",
			stats.Candidates, stats.Validated, stats.Channels, stats.Profiles, cfg.OutputDir)

	case "discover":
		_ = discoverCmd.Parse(os.Args[2:])
		keywords := cfg.Keywords
		if *discoverKeywords != "" {
			keywords = splitCSV(*discoverKeywords)
		}
		d := &discover.Discoverer{
			Backends:      pipeline.Backends(cfg, log),
			FallbackFile:  cfg.FallbackFile,
			MaxPerKeyword: cfg.MaxSources,
			Log:           log,
		}
		for _, c := range d.Discover(ctx, keywords) {
			fmt.Println(c)
		}

	case "probe":
		_ = probeCmd.Parse(os.Args[2:])
		timeout := cfg.ProbeTimeout
		if *probeTimeout > 0 {
			timeout = *probeTimeout
		}
		candidates := splitCSV(*probeURLs)
		if len(candidates) == 0 {
			d := &discover.Discoverer{
				Backends:      pipeline.Backends(cfg, log),
				FallbackFile:  cfg.FallbackFile,
				MaxPerKeyword: cfg.MaxSources,
				Log:           log,
			}
			candidates = d.Discover(ctx, cfg.Keywords)
		}
		if len(candidates) == 0 {
			log.Error("nothing to probe; pass -urls or configure keywords")
			os.Exit(1)
		}
		sources := validator.ValidateAll(ctx, candidates, nil, timeout, log)
		for _, s := range sources {
			fmt.Printf("%s\t%dms\n", s.URL, s.LatencyMs)
		}
		if len(sources) == 0 {
			log.Warn("no candidate passed the liveness probe")
		}

	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if *exportIn == "" {
			log.Error("set -in=/path/to/playlist.m3u")
			os.Exit(1)
		}
		if *exportOutput != "" {
			cfg.OutputDir = *exportOutput
		}
		data, err := os.ReadFile(*exportIn)
		if err != nil {
			log.Errorf("read %s: %v", *exportIn, err)
			os.Exit(1)
		}
		channels, err := playlist.ParseBytes(data)
		if err != nil {
			log.Errorf("parse %s: %v", *exportIn, err)
			os.Exit(1)
		}
		profiles := pipeline.Profiles(cfg, log)
		if err := export.Export(channels, profiles, cfg.OutputDir, log); err != nil {
			log.Errorf("export failed: %v", err)
			os.Exit(1)
		}
		log.Infof("exported %d channels through %d profiles to %s", len(channels), len(profiles), cfg.OutputDir)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
