package config

import (
	"strings"
)

// ControllerConfig holds configuration for the Huma control API.
type ControllerConfig struct {
	*Config

	BindAddr          string
	PortCandidates    []string
	PortAutoFallback  bool
	SnapshotRetention int
}

// LoadController reads the run configuration plus controller settings.
func LoadController() (*ControllerConfig, error) {
	base, err := Load()
	if err != nil {
		return nil, err
	}
	cfg := &ControllerConfig{
		Config:            base,
		BindAddr:          getEnvOrDefault("CONTROLLER_BIND_ADDR", "127.0.0.1:8189"),
		PortCandidates:    splitList(getEnvOrDefault("CONTROLLER_PORT_CANDIDATES", "127.0.0.1:8189,127.0.0.1:8190,127.0.0.1:8191")),
		PortAutoFallback:  getEnvBoolOrDefault("CONTROLLER_PORT_AUTO_FALLBACK", true),
		SnapshotRetention: getEnvIntOrDefault("CONTROLLER_SNAPSHOT_RETENTION", 200),
	}
	if cfg.SnapshotRetention < 0 {
		cfg.SnapshotRetention = 0
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
