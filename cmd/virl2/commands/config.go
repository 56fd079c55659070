package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/virl2-client/internal/constants"
)

// Config is the persisted CLI configuration. Passwords are never stored;
// they come from flags, the environment, or an interactive prompt.
type Config struct {
	URL        string `yaml:"url,omitempty"`
	Username   string `yaml:"username,omitempty"`
	CABundle   string `yaml:"ca-bundle,omitempty"`
	SkipVerify bool   `yaml:"insecure,omitempty"`
	AllowHTTP  bool   `yaml:"allow-http,omitempty"`
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, ".virl2", "config.yml"), nil
}

// loadConfigFile reads the persisted configuration, returning an empty
// config when none exists yet.
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// saveConfigFile writes the configuration, creating the directory on first
// use.
func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
