package config

import (
	"os"

	"github.com/imdario/mergo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nibbabob/portdog/internal/portspec"
)

// Scan holds the persisted per-run defaults a user can override with
// flags. Timing is a pointer so an explicit 0 (Paranoid) in the file
// survives merging with defaults.
type Scan struct {
	Timing   *int   `yaml:"timing"`
	Ports    string `yaml:"ports"`
	Progress *bool  `yaml:"progress"`
}

// Config represents the data structure of our user provided yaml
// configuration
type Config struct {
	Scan Scan `yaml:"scan"`
}

// New returns the user's config file merged over the static defaults;
// fields missing from the file keep their default values
func New(confPath string) (*Config, error) {
	var config Config

	raw, err := os.ReadFile(confPath)

	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&config, Default()); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the static configuration defaults
func Default() *Config {
	timing := 3
	progress := true

	return &Config{
		Scan: Scan{
			Timing:   &timing,
			Ports:    portspec.DefaultSpec,
			Progress: &progress,
		},
	}
}

// Write persists conf to the config file location shared via viper
func Write(conf Config) error {
	configFile := viper.Get("config-file").(string)

	file, err := os.Create(configFile)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}
