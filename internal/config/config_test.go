package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `
[processWatchdog]
udp_port = 12345
periodic_reboot = 04:00

[app:Worker]
start_delay = 1
heartbeat_delay = 5
heartbeat_interval = 2
cmd = /usr/bin/worker --flag
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UDPPort != 12345 {
		t.Errorf("udp_port = %d, want 12345", cfg.UDPPort)
	}
	if len(cfg.Apps) != 1 || cfg.Apps[0].Name != "Worker" {
		t.Fatalf("apps = %+v", cfg.Apps)
	}
	if cfg.Apps[0].Command != "/usr/bin/worker --flag" {
		t.Errorf("cmd = %q", cfg.Apps[0].Command)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := writeTemp(t, `
[processWatchdog]
udp_port = 70000
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for out-of-range udp_port")
	}
}

func TestLoadRejectsOversizedName(t *testing.T) {
	longName := ""
	for i := 0; i < 40; i++ {
		longName += "x"
	}
	path := writeTemp(t, `
[processWatchdog]
udp_port = 1000

[app:`+longName+`]
cmd = /bin/true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for oversized app name")
	}
}

func TestLoadRejectsTooManyApps(t *testing.T) {
	body := "[processWatchdog]\nudp_port = 1000\n"
	for i := 0; i < 7; i++ {
		body += fmt.Sprintf("\n[app:App%d]\ncmd = /bin/true\n", i)
	}
	path := writeTemp(t, body)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for too many declared apps")
	}
}

func TestLoadRejectsLegacyGrammar(t *testing.T) {
	path := writeTemp(t, `
n_apps = 1
1_name = Worker
1_cmd = /bin/true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for legacy positional grammar")
	}
}

func TestLoadIgnoresUnknownSectionsAndKeys(t *testing.T) {
	path := writeTemp(t, `
[processWatchdog]
udp_port = 1000
bogus_key = ignored

[unknown_section]
whatever = 1

[app:Worker]
cmd = /bin/true
extra_key = ignored
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Apps) != 1 {
		t.Fatalf("apps = %+v, want exactly one", cfg.Apps)
	}
}
