// Config loading for the strata CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyAddress     = "address"
	cfgKeyEnvironment = "environment"
	cfgKeyUsername    = "username"
	cfgKeyPassword    = "password"
	cfgKeyDataDir     = "data_dir"

	defaultAddress = "127.0.0.1:7817"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Strata CLI configuration

# Server address
address: 127.0.0.1:7817

# Environment to operate in
# environment: default

# Login credentials
# username:
# password:

# Data directory used by "strata serve"
# data_dir: .strata-db
`

// connConfig is the resolved connection configuration.
type connConfig struct {
	Address     string
	Environment string
	Username    string
	Password    string
	DataDir     string
}

// loadConfig reads config.yaml from the config directory using Viper. It
// creates the directory and a default config.yaml on first run; a missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyAddress, defaultAddress)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveConn merges flag values over config.yaml values.
func resolveConn(v *viper.Viper) connConfig {
	cfg := connConfig{
		Address:     v.GetString(cfgKeyAddress),
		Environment: v.GetString(cfgKeyEnvironment),
		Username:    v.GetString(cfgKeyUsername),
		Password:    v.GetString(cfgKeyPassword),
		DataDir:     v.GetString(cfgKeyDataDir),
	}
	if flagAddress != "" {
		cfg.Address = flagAddress
	}
	if flagEnvironment != "" {
		cfg.Environment = flagEnvironment
	}
	if flagUsername != "" {
		cfg.Username = flagUsername
	}
	if flagPassword != "" {
		cfg.Password = flagPassword
	}
	return cfg
}
