package config

import "strings"

// ControllerConfig holds configuration for the controller daemon on top of
// the shared runner config.
type ControllerConfig struct {
	Runner *Config

	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Optional cron expression for recurring suite runs.
	Schedule string
}

// LoadController reads controller configuration from environment variables.
func LoadController() (*ControllerConfig, error) {
	runner, err := Load()
	if err != nil {
		return nil, err
	}

	cfg := &ControllerConfig{
		Runner:           runner,
		BindAddr:         getEnvOrDefault("FLEETPROBE_BIND_ADDR", "127.0.0.1:8190"),
		PortAutoFallback: getEnvBoolOrDefault("FLEETPROBE_PORT_AUTO_FALLBACK", true),
		Schedule:         getEnvOrDefault("FLEETPROBE_SCHEDULE", ""),
	}

	candidates := getEnvOrDefault("FLEETPROBE_PORT_CANDIDATES", "127.0.0.1:8190,127.0.0.1:8191,127.0.0.1:8192")
	for _, addr := range strings.Split(candidates, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.PortCandidates = append(cfg.PortCandidates, addr)
		}
	}

	return cfg, nil
}
