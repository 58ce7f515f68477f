package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/go-delve/uleb128/pkg/leb128"
	"github.com/go-delve/uleb128/pkg/logflags"
)

const (
	configDir       string = "uleb128"
	configDirHidden string = ".uleb128"
	configFile      string = "config.yml"
)

// Output formats understood by the command line tools.
const (
	FormatHex = "hex"
	FormatGo  = "go"
	FormatRaw = "raw"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Commands aliases for the interactive terminal.
	Aliases map[string][]string `yaml:"aliases"`

	// Width is the default target width, one of 8, 16, 32, 64 or ptr.
	Width string `yaml:"width,omitempty" cfgName:"width"`

	// Canonical rejects encodings padded with redundant zero groups.
	Canonical bool `yaml:"canonical" cfgName:"canonical"`

	// OutputFormat selects how encoded bytes are printed: hex, go or raw.
	OutputFormat string `yaml:"output-format,omitempty" cfgName:"output-format"`

	// Result color for the interactive terminal (3/4 bit color codes as
	// defined here: https://en.wikipedia.org/wiki/ANSI_escape_code#Colors)
	ResultColor int `yaml:"result-color" cfgName:"result-color"`
}

// DecodeWidth returns the configured width, or leb128.W64 if the width is
// unset or invalid.
func (c *Config) DecodeWidth() leb128.Width {
	if c == nil || c.Width == "" {
		return leb128.W64
	}
	w, err := leb128.ParseWidth(c.Width)
	if err != nil {
		logflags.ConfigLogger().Errorf("ignoring configured width: %v", err)
		return leb128.W64
	}
	return w
}

// Format returns the configured output format, defaulting to hex.
func (c *Config) Format() string {
	if c == nil {
		return FormatHex
	}
	switch c.OutputFormat {
	case FormatGo, FormatRaw:
		return c.OutputFormat
	}
	return FormatHex
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() (*Config, error) {
	logger := logflags.ConfigLogger()
	err := createConfigPath()
	if err != nil {
		return &Config{}, fmt.Errorf("could not create config directory: %v", err)
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to get config file path: %v", err)
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		logger.Debugf("creating default config file %s", fullConfigFile)
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			return &Config{}, fmt.Errorf("error creating default config file: %v", err)
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			logger.Errorf("closing config file failed: %v", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to decode config file: %v", err)
	}

	if len(c.Aliases) == 0 {
		c.Aliases = make(map[string][]string)
	}
	logger.Debugf("loaded %s", fullConfigFile)

	return &c, nil
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	if err := createConfigPath(); err != nil {
		return err
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	if err == nil {
		logflags.ConfigLogger().Debugf("saved %s", fullConfigFile)
	}
	return err
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for the uleb128 tools.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Default target width for encode and decode: 8, 16, 32, 64 or ptr.
# width: 64

# Uncomment the following line to reject encodings padded with redundant
# zero groups (for example 0x80 0x00 for the value 0).
# canonical: true

# How encoded bytes are printed: hex (e5 8e 26), go ([]byte{0xe5, 0x8e, 0x26})
# or raw (binary, only when stdout is not a terminal).
# output-format: hex

# Uncomment the following line and set your preferred ANSI foreground color
# for results in the interactive terminal (if unset, default is 32, green).
# See https://en.wikipedia.org/wiki/ANSI_escape_code#3/4_bit
# result-color: 32

# Provided aliases will be added to the default aliases for a given command.
aliases:
  # command: ["alias1", "alias2"]
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
// The directory is $XDG_CONFIG_HOME/uleb128 if XDG_CONFIG_HOME is set and
// ~/.uleb128 otherwise.
func GetConfigFilePath(file string) (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDir, file), nil
	}
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	return filepath.Join(userHomeDir, configDirHidden, file), nil
}
