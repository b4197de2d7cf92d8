// Package config loads scpgen's scheduler defaults: an optional YAML file
// supplies values that cmd/scpgen's flags then override for anything the
// user actually set on the command line. This keeps the teacher UDP
// relay's load-file-then-let-flags-win shape, retargeted from listen/
// target network settings to the scheduler knobs this system needs
// (cutoff, parallelism, tl-limit, xpc, ...).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the scheduler defaults that may come from a file, before
// CLI flags (§6) are applied on top.
type Config struct {
	CutoffLimit int    `yaml:"cutoff_limit" mapstructure:"cutoff_limit"`
	Parallelism int    `yaml:"parallelism" mapstructure:"parallelism"`
	TLLimit     int    `yaml:"tl_limit" mapstructure:"tl_limit"`
	XPercent    int    `yaml:"xpercent" mapstructure:"xpercent"`
	Extended    bool   `yaml:"extended" mapstructure:"extended"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
	EchoBadQSOs bool   `yaml:"echo_bad_qsos" mapstructure:"echo_bad_qsos"`
	Trace       string `yaml:"trace" mapstructure:"trace"`
}

// Load loads the configuration from file or creates default configuration,
// matching spec.md §6's documented flag defaults.
func Load(configFile string) (*Config, error) {
	cfg := &Config{
		CutoffLimit: 1,
		Parallelism: 1,
		TLLimit:     1,
		XPercent:    100,
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Look for config in home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Return defaults if can't find home
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".scpgen")
	}

	// Environment variable support
	viper.SetEnvPrefix("SCPGEN")
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			// Config file not found, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// SaveDefault saves a default configuration file to the user's home directory
func SaveDefault() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to find home directory: %w", err)
	}

	configPath := filepath.Join(home, ".scpgen.yaml")

	defaultConfig := `# scpgen scheduler configuration
cutoff_limit: 1
parallelism: 1
tl_limit: 1
xpercent: 100
extended: false
verbose: false
echo_bad_qsos: false
trace: ""
`

	return os.WriteFile(configPath, []byte(defaultConfig), 0644)
}
