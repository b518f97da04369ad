package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/panotour/internal/assistant"
	"github.com/ziadkadry99/panotour/internal/config"
	"github.com/ziadkadry99/panotour/internal/logging"
	"github.com/ziadkadry99/panotour/internal/session"
	"github.com/ziadkadry99/panotour/internal/tour"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `panotour init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(os.Stderr, cfg.LogLevel, verbose)
}

// newTourRepository picks the file repository when a tours directory is
// configured and the tour service otherwise.
func newTourRepository(cfg *config.Config) tour.Repository {
	if cfg.ToursDir != "" {
		return tour.NewFileRepository(cfg.ToursDir)
	}
	return tour.NewHTTPRepository(cfg.APIBaseURL, &http.Client{})
}

func newAssistantClient(cfg *config.Config) assistant.Client {
	return assistant.NewHTTPClient(cfg.APIBaseURL, &http.Client{})
}

func sessionOptions(cfg *config.Config, logger *zerolog.Logger) session.Options {
	return session.Options{
		AssetBase:            cfg.AssetBaseURL,
		AnnouncementDuration: cfg.AnnouncementDuration(),
		RequestTimeout:       cfg.RequestTimeout(),
		Logger:               logger,
	}
}
