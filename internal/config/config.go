// Package config loads monitor settings: built-in defaults, then an
// optional YAML file, then MONITOR_* environment variables. Command-line
// flags are applied last by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/synheart/synheart-monitor/internal/encoding"
	"github.com/synheart/synheart-monitor/internal/rhythm"
)

// Config is the complete monitor configuration
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Alarm   AlarmConfig   `yaml:"alarm"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// MonitorConfig drives the simulation and the display cadence
type MonitorConfig struct {
	TickInterval    time.Duration `yaml:"tick_interval"`
	FrameInterval   time.Duration `yaml:"frame_interval"`
	ReviewInterval  time.Duration `yaml:"review_interval"`
	ReviewSize      int           `yaml:"review_size"`
	VariationFactor float64       `yaml:"variation_factor"`
	// Seed 0 picks a time-based seed at startup
	Seed         int64   `yaml:"seed"`
	Rhythm       string  `yaml:"rhythm"`
	ProfilesFile string  `yaml:"profiles_file"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// AlarmConfig configures the audible alarm
type AlarmConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Period   time.Duration `yaml:"period"`
	Throttle time.Duration `yaml:"throttle"`
}

// ServerConfig configures the local display feeds
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	SSEPort  int    `yaml:"sse_port"`
	Encoding string `yaml:"encoding"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			TickInterval:    time.Second,
			FrameInterval:   40 * time.Millisecond,
			ReviewInterval:  30 * time.Second,
			ReviewSize:      5,
			VariationFactor: 0.5,
			Rhythm:          string(rhythm.Default),
			SampleRate:      250,
		},
		Alarm: AlarmConfig{
			Enabled:  true,
			Period:   time.Second,
			Throttle: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8787,
			SSEPort:  8788,
			Encoding: string(encoding.FormatJSON),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the environment, then validates it
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	m := &c.Monitor

	if m.TickInterval, err = getEnvDuration("MONITOR_TICK_INTERVAL", m.TickInterval); err != nil {
		return err
	}
	if m.FrameInterval, err = getEnvDuration("MONITOR_FRAME_INTERVAL", m.FrameInterval); err != nil {
		return err
	}
	if m.ReviewInterval, err = getEnvDuration("MONITOR_REVIEW_INTERVAL", m.ReviewInterval); err != nil {
		return err
	}
	if m.ReviewSize, err = getEnvInt("MONITOR_REVIEW_SIZE", m.ReviewSize); err != nil {
		return err
	}
	if m.VariationFactor, err = getEnvFloat("MONITOR_VARIATION_FACTOR", m.VariationFactor); err != nil {
		return err
	}
	if m.Seed, err = getEnvInt64("MONITOR_SEED", m.Seed); err != nil {
		return err
	}
	m.Rhythm = getEnv("MONITOR_RHYTHM", m.Rhythm)
	m.ProfilesFile = getEnv("MONITOR_PROFILES_FILE", m.ProfilesFile)

	if c.Alarm.Throttle, err = getEnvDuration("MONITOR_ALARM_THROTTLE", c.Alarm.Throttle); err != nil {
		return err
	}
	if c.Alarm.Enabled, err = getEnvBool("MONITOR_ALARM_ENABLED", c.Alarm.Enabled); err != nil {
		return err
	}

	c.Server.Host = getEnv("MONITOR_HOST", c.Server.Host)
	if c.Server.Port, err = getEnvInt("MONITOR_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Server.SSEPort, err = getEnvInt("MONITOR_SSE_PORT", c.Server.SSEPort); err != nil {
		return err
	}
	c.Server.Encoding = getEnv("MONITOR_ENCODING", c.Server.Encoding)

	c.Log.Level = getEnv("MONITOR_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("MONITOR_LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate rejects settings the monitor cannot run with
func (c *Config) Validate() error {
	var errs []error
	m := c.Monitor

	if m.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", m.TickInterval))
	}
	if m.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be positive, got %s", m.FrameInterval))
	}
	if m.ReviewInterval <= 0 {
		errs = append(errs, fmt.Errorf("review_interval must be positive, got %s", m.ReviewInterval))
	}
	if m.ReviewSize <= 0 {
		errs = append(errs, fmt.Errorf("review_size must be positive, got %d", m.ReviewSize))
	}
	if m.VariationFactor < 0 {
		errs = append(errs, fmt.Errorf("variation_factor must not be negative, got %g", m.VariationFactor))
	}
	if m.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %g", m.SampleRate))
	}
	if _, err := rhythm.Parse(m.Rhythm); err != nil {
		errs = append(errs, err)
	}
	if c.Alarm.Enabled && (c.Alarm.Period <= 0 || c.Alarm.Throttle < 0) {
		errs = append(errs, fmt.Errorf("alarm period must be positive and throttle not negative"))
	}
	for name, port := range map[string]int{"port": c.Server.Port, "sse_port": c.Server.SSEPort} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s out of range: %d", name, port))
		}
	}
	if c.Server.Port == c.Server.SSEPort {
		errs = append(errs, fmt.Errorf("port and sse_port must differ"))
	}
	if _, err := encoding.ParseFormat(c.Server.Encoding); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
