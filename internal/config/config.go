// Package config loads the supervisor's INI configuration file: a
// [processWatchdog] section and a repeating [app:Name] section. Parsing
// uses gopkg.in/ini.v1; validation errors are explicit and named.
package config

import (
	"fmt"

	"github.com/diffstorm/processWatchdog/internal/child"
	"gopkg.in/ini.v1"
)

const (
	maxNameLen = 31
	maxCmdLen  = 255
)

// AppConfig is one [app:Name] section.
type AppConfig struct {
	Name               string
	Command            string
	StartDelayS        int
	HeartbeatDelayS    int
	HeartbeatIntervalS int
}

// Config is the fully parsed, validated configuration.
type Config struct {
	UDPPort        int
	PeriodicReboot string
	Apps           []AppConfig
}

// InvalidError wraps a config validation failure.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string { return "config invalid: " + e.Reason }

// Load reads and validates the INI file at path.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, &InvalidError{Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
	}

	if err := rejectLegacyGrammar(f); err != nil {
		return nil, err
	}

	cfg := &Config{}

	main, err := f.GetSection("processWatchdog")
	if err != nil {
		return nil, &InvalidError{Reason: "missing [processWatchdog] section"}
	}

	cfg.UDPPort = main.Key("udp_port").MustInt(0)
	if cfg.UDPPort < 1 || cfg.UDPPort > 65535 {
		return nil, &InvalidError{Reason: fmt.Sprintf("udp_port %d out of range 1..65535", cfg.UDPPort)}
	}
	cfg.PeriodicReboot = main.Key("periodic_reboot").String()

	for _, sec := range f.Sections() {
		name, ok := appSectionName(sec.Name())
		if !ok {
			continue
		}
		app, err := parseAppSection(name, sec)
		if err != nil {
			return nil, err
		}
		cfg.Apps = append(cfg.Apps, app)
	}

	if len(cfg.Apps) > child.MaxApps {
		return nil, &InvalidError{Reason: fmt.Sprintf("too many apps: %d declared, max %d", len(cfg.Apps), child.MaxApps)}
	}

	return cfg, nil
}

// appSectionName extracts Name from an "app:Name" section header.
func appSectionName(sectionName string) (string, bool) {
	const prefix = "app:"
	if len(sectionName) <= len(prefix) || sectionName[:len(prefix)] != prefix {
		return "", false
	}
	return sectionName[len(prefix):], true
}

func parseAppSection(name string, sec *ini.Section) (AppConfig, error) {
	if len(name) == 0 || len(name) > maxNameLen {
		return AppConfig{}, &InvalidError{Reason: fmt.Sprintf("app name %q exceeds %d characters", name, maxNameLen)}
	}

	cmd := sec.Key("cmd").String()
	if len(cmd) == 0 {
		return AppConfig{}, &InvalidError{Reason: fmt.Sprintf("app %q: cmd is required", name)}
	}
	if len(cmd) > maxCmdLen {
		return AppConfig{}, &InvalidError{Reason: fmt.Sprintf("app %q: cmd exceeds %d characters", name, maxCmdLen)}
	}

	startDelay := sec.Key("start_delay").MustInt(0)
	heartbeatDelay := sec.Key("heartbeat_delay").MustInt(0)
	heartbeatInterval := sec.Key("heartbeat_interval").MustInt(0)
	if startDelay < 0 || heartbeatDelay < 0 || heartbeatInterval < 0 {
		return AppConfig{}, &InvalidError{Reason: fmt.Sprintf("app %q: delay/interval fields must be non-negative", name)}
	}

	return AppConfig{
		Name:               name,
		Command:            cmd,
		StartDelayS:        startDelay,
		HeartbeatDelayS:    heartbeatDelay,
		HeartbeatIntervalS: heartbeatInterval,
	}, nil
}

// rejectLegacyGrammar refuses the older positional grammar (n_apps,
// 1_name=, 1_cmd=, ...) rather than attempting to support both forms mixed
// in one file.
func rejectLegacyGrammar(f *ini.File) error {
	def := f.Section(ini.DefaultSection)
	if def.HasKey("n_apps") {
		return &InvalidError{Reason: "legacy positional grammar (n_apps=...) is not supported; use [app:Name] sections"}
	}
	for _, key := range def.Keys() {
		if len(key.Name()) > 2 && key.Name()[1] == '_' {
			return &InvalidError{Reason: fmt.Sprintf("legacy positional grammar (%s) is not supported; use [app:Name] sections", key.Name())}
		}
	}
	return nil
}

// ToSpecs converts parsed app configs into child.Spec values in declaration
// order.
func (c *Config) ToSpecs() []child.Spec {
	specs := make([]child.Spec, len(c.Apps))
	for i, a := range c.Apps {
		specs[i] = child.Spec{
			Name:               a.Name,
			Command:            a.Command,
			StartDelayS:        a.StartDelayS,
			HeartbeatDelayS:    a.HeartbeatDelayS,
			HeartbeatIntervalS: a.HeartbeatIntervalS,
		}
	}
	return specs
}
