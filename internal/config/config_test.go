package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", c.ProbeTimeout)
	}
	if c.GatewayMode != GatewaySynth {
		t.Errorf("GatewayMode = %q, want synth", c.GatewayMode)
	}
	if c.OutputDir != "output" {
		t.Errorf("OutputDir = %q", c.OutputDir)
	}
	if len(c.Keywords) != 2 {
		t.Errorf("Keywords = %v, want 2 defaults", c.Keywords)
	}
	if c.FofaEmail != "" || c.FofaKey != "" {
		t.Errorf("FOFA creds should default empty")
	}
}

func TestLoad_timeoutIntegerSeconds(t *testing.T) {
	os.Clearenv()
	os.Setenv("IPTV_SEEKER_TIMEOUT", "8")
	c := Load()
	if c.ProbeTimeout != 8*time.Second {
		t.Errorf("ProbeTimeout = %v, want 8s", c.ProbeTimeout)
	}
}

func TestLoad_timeoutDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("IPTV_SEEKER_TIMEOUT", "1500ms")
	c := Load()
	if c.ProbeTimeout != 1500*time.Millisecond {
		t.Errorf("ProbeTimeout = %v, want 1.5s", c.ProbeTimeout)
	}
}

func TestLoad_filterLists(t *testing.T) {
	os.Clearenv()
	os.Setenv("IPTV_SEEKER_FILTER_INCLUDE", "CCTV, 卫视 ,")
	c := Load()
	if len(c.FilterInclude) != 2 || c.FilterInclude[0] != "CCTV" || c.FilterInclude[1] != "卫视" {
		t.Errorf("FilterInclude = %v", c.FilterInclude)
	}
	if c.FilterExclude != nil {
		t.Errorf("FilterExclude = %v, want nil", c.FilterExclude)
	}
}

func TestLoad_gatewayModeInvalidFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("IPTV_SEEKER_GATEWAY_MODE", "bogus")
	c := Load()
	if c.GatewayMode != GatewaySynth {
		t.Errorf("GatewayMode = %q, want default synth", c.GatewayMode)
	}
	os.Setenv("IPTV_SEEKER_GATEWAY_MODE", "SKIP")
	c = Load()
	if c.GatewayMode != GatewaySkip {
		t.Errorf("GatewayMode = %q, want skip", c.GatewayMode)
	}
}

func TestLoadEnvFile(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nIPTV_SEEKER_KEYWORDS=\"上海,电信\"\nIPTV_SEEKER_TIMEOUT=3\n\nBADLINE\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	c := Load()
	if len(c.Keywords) != 2 || c.Keywords[0] != "上海" {
		t.Errorf("Keywords = %v", c.Keywords)
	}
	if c.ProbeTimeout != 3*time.Second {
		t.Errorf("ProbeTimeout = %v", c.ProbeTimeout)
	}
}

func TestLoadEnvFile_missingIsNil(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing .env should not error: %v", err)
	}
}
