package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-delve/uleb128/pkg/leb128"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	conf, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, leb128.W64, conf.DecodeWidth())
	assert.False(t, conf.Canonical)
	assert.Equal(t, FormatHex, conf.Format())
	assert.NotNil(t, conf.Aliases)

	data, err := os.ReadFile(filepath.Join(dir, configDir, configFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Configuration file for the uleb128 tools."))
}

func TestCreateDefaultConfigWriteError(t *testing.T) {
	// writes to /dev/full fail with ENOSPC
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	f, err := createDefaultConfig("/dev/full")
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), "unable to write default configuration")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := LoadConfig()
	require.NoError(t, err)

	conf := &Config{
		Aliases:      map[string][]string{"decode": {"dd"}},
		Width:        "32",
		Canonical:    true,
		OutputFormat: FormatGo,
		ResultColor:  36,
	}
	require.NoError(t, SaveConfig(conf))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
	assert.Equal(t, leb128.W32, loaded.DecodeWidth())
	assert.Equal(t, FormatGo, loaded.Format())
}

func TestLoadConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, configDir), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configDir, configFile), []byte("width: [\n"), 0600))

	conf, err := LoadConfig()
	require.Error(t, err)
	require.NotNil(t, conf)
}

func TestDecodeWidthFallback(t *testing.T) {
	var nilConf *Config
	assert.Equal(t, leb128.W64, nilConf.DecodeWidth())
	assert.Equal(t, leb128.W64, (&Config{Width: "12"}).DecodeWidth())
	assert.Equal(t, leb128.W8, (&Config{Width: "8"}).DecodeWidth())
	assert.Equal(t, leb128.PtrWidth, (&Config{Width: "ptr"}).DecodeWidth())
	assert.Equal(t, FormatHex, (&Config{OutputFormat: "base64"}).Format())
}

func TestGetConfigFilePathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	p, err := GetConfigFilePath(configFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, configDirHidden, configFile), p)
}

func TestConfigureSetSimple(t *testing.T) {
	conf := &Config{}
	set := func(name, value string) error {
		it := IterateConfiguration(conf, "cfgName")
		for it.Next() {
			fieldName, field := it.Field()
			if fieldName == name {
				return ConfigureSetSimple(value, name, field)
			}
		}
		t.Fatalf("no field %q", name)
		return nil
	}

	require.NoError(t, set("canonical", "on"))
	require.NoError(t, set("width", "16"))
	require.NoError(t, set("result-color", "35"))
	assert.True(t, conf.Canonical)
	assert.Equal(t, "16", conf.Width)
	assert.Equal(t, 35, conf.ResultColor)

	assert.Error(t, set("canonical", "maybe"))
	assert.Error(t, set("result-color", "red"))
	assert.Error(t, set("result-color", "-1"))
}

func TestConfigureList(t *testing.T) {
	conf := &Config{Width: "32", Canonical: true}
	var buf bytes.Buffer
	ConfigureList(&buf, conf, "cfgName")
	out := buf.String()
	for _, want := range []string{"width", "32", "canonical", "true", "output-format", "<not defined>", "result-color"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "aliases")

	assert.Equal(t, "width\t32\n", ConfigureListByName(conf, "width", "cfgName"))
}
