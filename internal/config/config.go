package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials is one role-based login pair for the application under test.
type Credentials struct {
	Email    string
	Password string
}

// Config holds all configuration for the scenario runner.
type Config struct {
	// Target application
	BaseURL  string
	Manager  Credentials
	Employee Credentials

	// Browser / CDP settings
	CDPAddress string
	CDPPort    int
	Headless   bool
	WindowSize string

	// Step timing defaults (milliseconds)
	StepTimeoutMS   int
	NavTimeoutMS    int
	LoadWaitMS      int
	AssertTimeoutMS int
	SettleMS        int

	// Suite and result locations
	SuiteDir  string
	ResultDir string

	// Logging
	LogLevel string
	LogFile  string

	// Optional run-summary notification endpoint
	NotifyEndpoint string
}

// Load reads runner configuration from environment variables and an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BaseURL: getEnvOrDefault("FLEETPROBE_BASE_URL", "http://localhost:3000/fleet"),
		Manager: Credentials{
			Email:    getEnvOrDefault("FLEETPROBE_MANAGER_EMAIL", "admin@mpdee.co.uk"),
			Password: getEnvOrDefault("FLEETPROBE_MANAGER_PASSWORD", "Q-0ww9qe?"),
		},
		CDPAddress:      getEnvOrDefault("FLEETPROBE_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:         getEnvIntOrDefault("FLEETPROBE_CDP_PORT", 9222),
		Headless:        getEnvBoolOrDefault("FLEETPROBE_HEADLESS", true),
		WindowSize:      getEnvOrDefault("FLEETPROBE_WINDOW_SIZE", "1280,720"),
		StepTimeoutMS:   getEnvIntOrDefault("FLEETPROBE_STEP_TIMEOUT_MS", 5000),
		NavTimeoutMS:    getEnvIntOrDefault("FLEETPROBE_NAV_TIMEOUT_MS", 10000),
		LoadWaitMS:      getEnvIntOrDefault("FLEETPROBE_LOAD_WAIT_MS", 3000),
		AssertTimeoutMS: getEnvIntOrDefault("FLEETPROBE_ASSERT_TIMEOUT_MS", 30000),
		SettleMS:        getEnvIntOrDefault("FLEETPROBE_SETTLE_MS", 0),
		SuiteDir:        getEnvOrDefault("FLEETPROBE_SUITE_DIR", "./scenarios"),
		ResultDir:       getEnvOrDefault("FLEETPROBE_RESULT_DIR", "./results"),
		LogLevel:        strings.ToLower(getEnvOrDefault("FLEETPROBE_LOG_LEVEL", "info")),
		LogFile:         getEnvOrDefault("FLEETPROBE_LOG_FILE", "logs/fleetprobe.log"),
		NotifyEndpoint:  getEnvOrDefault("FLEETPROBE_NOTIFY_ENDPOINT", ""),
	}

	// The source suite only ever exercised one account; the employee pair
	// falls back to the manager pair unless overridden.
	cfg.Employee = Credentials{
		Email:    getEnvOrDefault("FLEETPROBE_EMPLOYEE_EMAIL", cfg.Manager.Email),
		Password: getEnvOrDefault("FLEETPROBE_EMPLOYEE_PASSWORD", cfg.Manager.Password),
	}

	if cfg.StepTimeoutMS < 100 {
		cfg.StepTimeoutMS = 100
	}
	if cfg.NavTimeoutMS < 1000 {
		cfg.NavTimeoutMS = 1000
	}

	return cfg, nil
}

// CDPURL returns the DevTools HTTP endpoint the session manager dials.
func (c *Config) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

// Placeholders returns the variable map used to expand ${...} references in
// scenarios.
func (c *Config) Placeholders() map[string]string {
	return map[string]string{
		"base_url":          c.BaseURL,
		"manager.email":     c.Manager.Email,
		"manager.password":  c.Manager.Password,
		"employee.email":    c.Employee.Email,
		"employee.password": c.Employee.Password,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
