package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/codychat/chat-web-ui/internal/models"
	"gopkg.in/yaml.v3"
)

type config struct {
	Port          string `yaml:"port"`
	StorePath     string `yaml:"storePath"`
	ResponseDelay string `yaml:"responseDelay"`
	DefaultModel  string `yaml:"defaultModel"`
}

// loadConfig reads the YAML config file at the given path. A missing file is not an error; the
// defaults are used instead.
func loadConfig(path string) (config, error) {
	cfg := config{}

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return config{}, fmt.Errorf("error opening config file: %w", err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ResponseDelay == "" {
		cfg.ResponseDelay = "3s"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.DefaultModelID
	}

	return cfg, nil
}

func (c config) responseDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.ResponseDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid responseDelay: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("responseDelay must be positive, got %s", c.ResponseDelay)
	}
	return d, nil
}
