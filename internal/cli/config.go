// Config loading for the relmap CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/relmap/internal/logging"
	"github.com/mesh-intelligence/relmap/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// envPrefix prefixes the environment overrides, e.g. RELMAP_LOG_LEVEL.
	envPrefix = "RELMAP"

	cfgKeyStorePath       = "store_path"
	cfgKeyCreateIfMissing = "create_if_missing"
	cfgKeyIndent          = "indent"
	cfgKeyLogLevel        = "log_level"
	cfgKeyLogFormat       = "log_format"
)

// settings is the merged result of defaults, config.yaml and environment.
type settings struct {
	StorePath       string
	CreateIfMissing bool
	Indent          int
	LogLevel        string
	LogFormat       string
}

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	StorePath       string `yaml:"store_path,omitempty"`
	CreateIfMissing bool   `yaml:"create_if_missing"`
	Indent          int    `yaml:"indent"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
}

// loadSettings reads config.yaml from configDir using Viper. A missing
// config.yaml or config directory is not an error. Environment variables
// override log_level, log_format, create_if_missing and indent; the store
// path env override is resolved by the paths package so that config.yaml
// keeps precedence over it.
func loadSettings(configDir string) (settings, error) {
	v := viper.New()
	v.SetDefault(cfgKeyCreateIfMissing, true)
	v.SetDefault(cfgKeyIndent, types.DefaultIndent)
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetDefault(cfgKeyLogFormat, logging.FormatConsole)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyCreateIfMissing, cfgKeyIndent, cfgKeyLogLevel, cfgKeyLogFormat} {
		if err := v.BindEnv(key); err != nil {
			return settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, &userError{fmt.Errorf("read config: %w", err)}
		}
	}

	return settings{
		StorePath:       v.GetString(cfgKeyStorePath),
		CreateIfMissing: v.GetBool(cfgKeyCreateIfMissing),
		Indent:          v.GetInt(cfgKeyIndent),
		LogLevel:        v.GetString(cfgKeyLogLevel),
		LogFormat:       v.GetString(cfgKeyLogFormat),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
// It reports whether it wrote the file.
func writeConfigIfMissing(configDir, storePath string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	cfg := configFile{
		StorePath:       storePath,
		CreateIfMissing: true,
		Indent:          types.DefaultIndent,
		LogLevel:        logging.DefaultLevel,
		LogFormat:       logging.FormatConsole,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	header := []byte("# relmap configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
