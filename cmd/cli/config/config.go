package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL = "http://localhost:8080"
	fileName      = ".landlab.yaml"
)

// File is the CLI state kept in ~/.landlab.yaml.
type File struct {
	APIURL   string `yaml:"api_url,omitempty"`
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// Path returns the config file location. LANDLAB_CONFIG overrides the default
// in the home directory.
func Path() (string, error) {
	if p := os.Getenv("LANDLAB_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, fileName), nil
}

// Load reads the config file. A missing file yields an empty File.
func Load() (File, error) {
	var f File
	path, err := Path()
	if err != nil {
		return f, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Save writes f with owner-only permissions since it holds the bearer token.
func Save(f File) error {
	path, err := Path()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// APIURL returns the base URL for the Landscape Lab API.
// It can be overridden with the LANDLAB_API_URL environment variable.
func APIURL(f File) string {
	if v := os.Getenv("LANDLAB_API_URL"); v != "" {
		return v
	}
	if f.APIURL != "" {
		return f.APIURL
	}
	return defaultAPIURL
}
