package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to panotour! Let's configure your tour host.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Where tours come from.
	sourcePrompt := promptui.Select{
		Label: "Where are tours loaded from",
		Items: []string{
			"service: GET /api/tour/{id} on the backend",
			"files  : a local directory of tour descriptors",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tour source selection: %w", err)
	}

	// 2. Backend URL.
	apiPrompt := promptui.Prompt{
		Label:   "Backend base URL (serves /api/assistant)",
		Default: defaults.APIBaseURL,
		Validate: func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("must be an absolute URL")
			}
			return nil
		},
	}
	apiBase, err := apiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}

	// 3. Tours directory, only for file-backed tours.
	toursDir := ""
	if sourceIdx == 1 {
		dirPrompt := promptui.Prompt{
			Label:   "Tours directory",
			Default: "data/tours",
		}
		toursDir, err = dirPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("tours dir: %w", err)
		}
	}

	// 4. Listen port for `panotour serve`.
	portPrompt := promptui.Prompt{
		Label:   "Port for the session host",
		Default: strconv.Itoa(defaults.Port),
		Validate: func(s string) error {
			if p, err := strconv.Atoi(s); err != nil || p < 0 || p > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.APIBaseURL = apiBase
	cfg.ToursDir = toursDir
	cfg.Port = port

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
