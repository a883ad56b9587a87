package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "headless", c.Browser.Stealth)
	assert.Equal(t, ":99", c.Browser.XvfbDisplay)
	assert.Equal(t, 1440, c.Browser.ViewportWidth)
	assert.Equal(t, 30*time.Second, c.Page.NavigateTimeout)
	assert.Equal(t, "slotdiff.db", c.Store.Path)
	assert.Equal(t, "127.0.0.1:7410", c.Server.Addr)
	assert.Equal(t, "en", c.Locale)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slotdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
browser:
  stealth: headful
  resource_blocking: [images, fonts]
  viewport_width: 1920
page:
  url: https://plant.example.com/gantt
  settle: 1500ms
bridge:
  endpoint: http://10.0.0.7:7410/bridge
  timeout: 45s
locale: zh
`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "headful", c.Browser.Stealth)
	assert.Equal(t, []string{"images", "fonts"}, c.Browser.ResourceBlocking)
	assert.Equal(t, 1920, c.Browser.ViewportWidth)
	assert.Equal(t, 900, c.Browser.ViewportHeight, "unset fields keep defaults")
	assert.Equal(t, 1500*time.Millisecond, c.Page.Settle)
	assert.Equal(t, 45*time.Second, c.Bridge.Timeout)
	assert.Equal(t, "zh", c.Locale)
	require.NoError(t, c.Validate())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("browser: [not, a, map]"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyEnv(env(map[string]string{
		"SLOTDIFF_PAGE_URL":          "http://localhost:8080/plan",
		"SLOTDIFF_BRIDGE_TIMEOUT":    "5s",
		"SLOTDIFF_RESOURCE_BLOCKING": "images, media ,",
		"SLOTDIFF_VIEWPORT":          "1280x720",
		"SLOTDIFF_LOG_LEVEL":         "debug",
	})))
	assert.Equal(t, "http://localhost:8080/plan", c.Page.URL)
	assert.Equal(t, 5*time.Second, c.Bridge.Timeout)
	assert.Equal(t, []string{"images", "media"}, c.Browser.ResourceBlocking)
	assert.Equal(t, 1280, c.Browser.ViewportWidth)
	assert.Equal(t, 720, c.Browser.ViewportHeight)
	assert.Equal(t, "debug", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestApplyEnv_Invalid(t *testing.T) {
	assert.Error(t, Default().ApplyEnv(env(map[string]string{"SLOTDIFF_PAGE_SETTLE": "soon"})))
	assert.Error(t, Default().ApplyEnv(env(map[string]string{"SLOTDIFF_VIEWPORT": "wide"})))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"locale":    func(c *Config) { c.Locale = "fr" },
		"stealth":   func(c *Config) { c.Browser.Stealth = "invisible" },
		"blocking":  func(c *Config) { c.Browser.ResourceBlocking = []string{"scripts"} },
		"page url":  func(c *Config) { c.Page.URL = "not a url" },
		"addr":      func(c *Config) { c.Server.Addr = "nohostport" },
		"viewport":  func(c *Config) { c.Browser.ViewportWidth = 10 },
		"log level": func(c *Config) { c.LogLevel = "trace" },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		err := c.Validate()
		assert.Error(t, err, name)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: en\n"), 0o644))
	t.Setenv("SLOTDIFF_LOCALE", "zh")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zh", c.Locale)

	t.Setenv("SLOTDIFF_LOCALE", "xx")
	_, err = Load(path)
	assert.Error(t, err)
}
