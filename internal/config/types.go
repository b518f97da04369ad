package config

import "time"

// Config is the top-level panotour configuration, corresponding to .panotour.yml.
type Config struct {
	// APIBaseURL is the backend serving /api/tour and /api/assistant.
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`
	// AssetBaseURL prefixes /static asset paths. Empty means same origin.
	AssetBaseURL string `yaml:"asset_base_url" koanf:"asset_base_url"`
	// ToursDir, when set, loads tours from local descriptor files instead
	// of the tour service.
	ToursDir              string  `yaml:"tours_dir" koanf:"tours_dir"`
	Port                  int     `yaml:"port" koanf:"port"`
	AnnouncementSeconds   float64 `yaml:"announcement_seconds" koanf:"announcement_seconds"`
	RequestTimeoutSeconds float64 `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	LogLevel              string  `yaml:"log_level" koanf:"log_level"`
	AllowAllOrigins       bool    `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:5000",
		Port:                  8090,
		AnnouncementSeconds:   6,
		RequestTimeoutSeconds: 30,
		LogLevel:              "info",
	}
}

// AnnouncementDuration is how long scene descriptions stay on screen.
func (c *Config) AnnouncementDuration() time.Duration {
	return time.Duration(c.AnnouncementSeconds * float64(time.Second))
}

// RequestTimeout bounds each assistant request; zero disables it.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds * float64(time.Second))
}
