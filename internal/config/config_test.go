package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 30*time.Second, cfg.Crawler.Timeout())
	assert.Equal(t, 64, cfg.Search.MaxResults)
	assert.Equal(t, uint64(100000), cfg.Updater.MaxDocs)
	assert.NotEmpty(t, cfg.Updater.Feeds)
	assert.NotEmpty(t, cfg.Crawler.UserAgent)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newscrawl.yaml")
	content := `
crawler:
  timeout_seconds: 10
  seeds:
    - https://news.example.com/business
search:
  max_results: 24
policy:
  news.example.com:
    index_dash_words: true
    recurse_prefixes: ["/business"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Crawler.Timeout())
	assert.Equal(t, []string{"https://news.example.com/business"}, cfg.Crawler.Seeds)
	assert.Equal(t, 24, cfg.Search.MaxResults)

	table, err := cfg.PolicyTable()
	require.NoError(t, err)
	assert.Equal(t, 1, table.Hosts())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := cfg
	bad.Crawler.TimeoutSeconds = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Search.MaxResults = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Remove.PurgeProbabilities = map[string]float64{"x.org": 1.5}
	assert.Error(t, bad.Validate())
}
