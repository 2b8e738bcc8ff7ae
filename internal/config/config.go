package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ICSConfig describes a feed whose events are mirrored into the calendar.
type ICSConfig struct {
	// ID is an internal identifier; it prefixes imported event IDs.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// URL is a remote ICS endpoint.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Path is a local .ics file; takes precedence over URL.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CaptureConfig controls headless snapshots of the rendered calendar page.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Output  string `yaml:"output" json:"output"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
	// Mode is the view captured: month, week, day or agenda.
	Mode string `yaml:"mode" json:"mode"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and calendar page.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used for all calendar arithmetic. "Local"
	// uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultView is the view mode served when a request does not name one.
	DefaultView string `yaml:"default_view" json:"default_view"`

	// RefreshCron is a standard 5-field cron spec for re-importing feeds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// SeedMock loads the demo dataset at startup.
	SeedMock bool `yaml:"seed_mock" json:"seed_mock"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`
}

const (
	defaultListen  = "127.0.0.1:8080"
	defaultRefresh = "*/15 * * * *"
	defaultOutput  = "./cache/preview.png"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    "Local",
		DefaultView: "month",
		RefreshCron: defaultRefresh,
		SeedMock:    true,
		LogLevel:    "info",
		CORSOrigins: []string{"http://localhost:3000"},
		ICS:         []ICSConfig{},
		Capture: CaptureConfig{
			Output: defaultOutput,
			Width:  1304,
			Height: 984,
			Mode:   "week",
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// behave like the defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch strings.ToLower(c.DefaultView) {
	case "month", "week", "day", "agenda":
		c.DefaultView = strings.ToLower(c.DefaultView)
	default:
		c.DefaultView = "month"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			switch {
			case c.ICS[i].Name != "":
				c.ICS[i].ID = c.ICS[i].Name
			case c.ICS[i].Path != "":
				c.ICS[i].ID = filepath.Base(c.ICS[i].Path)
			default:
				c.ICS[i].ID = c.ICS[i].URL
			}
		}
	}
	if c.Capture.Output == "" {
		c.Capture.Output = defaultOutput
	}
	if c.Capture.Mode == "" {
		c.Capture.Mode = "week"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     permissions and returned.
//   - Otherwise the YAML is decoded and normalized.
//
// Environment overrides (see ApplyEnv) are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return cfg, nil
}

// LoadDotEnv reads a .env file into the process environment if one exists.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from DASHCAL_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DASHCAL_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DASHCAL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("DASHCAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DASHCAL_REFRESH"); v != "" {
		c.RefreshCron = v
	}
	if u, p := os.Getenv("DASHCAL_AUTH_USER"), os.Getenv("DASHCAL_AUTH_PASSWORD"); u != "" && p != "" {
		c.BasicAuth = &BasicAuthConfig{Username: u, Password: p}
	}
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory with 0700.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dashcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
