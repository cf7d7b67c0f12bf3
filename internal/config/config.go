package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Gateway modes for validated sources that are not playlist documents.
const (
	GatewaySynth = "synth" // export one synthetic "Source N" entry per gateway
	GatewaySkip  = "skip"  // drop gateways from the export entirely
)

// Config holds every pipeline setting. Built once at process start from the
// environment and passed into each component; no package reads env on its own.
type Config struct {
	// Discovery
	Keywords     []string // search terms, e.g. region + carrier
	FofaEmail    string   // FOFA credentials; both empty = backend disabled
	FofaKey      string
	SearchURL    string   // scrape endpoint base; keyword goes into the query string
	FallbackFile string   // local candidate file, one URL per line; "" = disabled
	MaxSources   int      // cap candidates taken per keyword from each backend; 0 = no cap

	// Validation
	ProbeTimeout time.Duration // per-candidate liveness probe timeout

	// Parse / export
	GatewayMode   string   // GatewaySynth or GatewaySkip
	OutputDir     string
	ProfilesFile  string   // JSON filter profiles; missing file = single default profile
	FilterInclude []string // legacy single-profile include list
	FilterExclude []string // legacy single-profile exclude list

	LogLevel string
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load()
// to use a .env file.
func Load() *Config {
	c := &Config{
		Keywords:      splitList(getEnv("IPTV_SEEKER_KEYWORDS", "北京,联通")),
		FofaEmail:     os.Getenv("IPTV_SEEKER_FOFA_EMAIL"),
		FofaKey:       os.Getenv("IPTV_SEEKER_FOFA_KEY"),
		SearchURL:     getEnv("IPTV_SEEKER_SEARCH_URL", "http://tonkiang.us/hoteliptv.php"),
		FallbackFile:  getEnv("IPTV_SEEKER_FALLBACK_FILE", "subs.txt"),
		MaxSources:    getEnvInt("IPTV_SEEKER_MAX_SOURCES", 10),
		ProbeTimeout:  getEnvSeconds("IPTV_SEEKER_TIMEOUT", 5*time.Second),
		GatewayMode:   getEnvGatewayMode("IPTV_SEEKER_GATEWAY_MODE", GatewaySynth),
		OutputDir:     getEnv("IPTV_SEEKER_OUTPUT_DIR", "output"),
		ProfilesFile:  getEnv("IPTV_SEEKER_PROFILES_FILE", "profiles.json"),
		FilterInclude: splitList(os.Getenv("IPTV_SEEKER_FILTER_INCLUDE")),
		FilterExclude: splitList(os.Getenv("IPTV_SEEKER_FILTER_EXCLUDE")),
		LogLevel:      getEnv("IPTV_SEEKER_LOG_LEVEL", "info"),
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.MaxSources < 0 {
		c.MaxSources = 0
	}
	return c
}

// splitList splits a comma-separated value, trimming blanks. Empty input
// yields nil, not [""].
func splitList(s string) []string {
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
	if len(out) == 0 {
		return nil
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, _ := strconv.Atoi(v)
		return n
	}
	return defaultVal
}

// getEnvSeconds accepts either a Go duration ("8s", "1m") or a bare integer
// seconds value ("8"), for compatibility with TIMEOUT-style integer settings.
func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

func getEnvGatewayMode(key, defaultVal string) string {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case GatewaySynth:
		return GatewaySynth
	case GatewaySkip:
		return GatewaySkip
	}
	return defaultVal
}
