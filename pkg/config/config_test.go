package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8421", cfg.Addr)
	assert.Equal(t, "notices.db", cfg.DB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20.0, cfg.RatePerSecond)
	assert.Equal(t, 40, cfg.RateBurst)
	assert.True(t, cfg.NormalizeDates)
	assert.Equal(t, 10*time.Minute, cfg.DateCacheTTL)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileEnvFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`addr: ":9000"
db: /tmp/x.db
log_level: debug
normalize_dates: false
partial_dates: first_day
date_cache_ttl: 30s
`), 0o644))

	t.Setenv("NOTICES_DB", "/var/lib/notices.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "warn"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr, "unchanged flag does not override the file")
	assert.Equal(t, "/var/lib/notices.db", cfg.DB, "env overrides the file")
	assert.Equal(t, "warn", cfg.LogLevel, "flag overrides the file")
	assert.False(t, cfg.NormalizeDates)
	assert.Equal(t, "first_day", cfg.PartialDates)
	assert.Equal(t, 30*time.Second, cfg.DateCacheTTL)

	assert.Equal(t, "01/03/1900", cfg.Normalizer().Normalize("mars 1900", datenorm.Passthrough))
}

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notices.yaml"), []byte("addr: \":7000\"\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	_, err = Load(path, nil)
	assert.ErrorContains(t, err, "unknown log level")

	require.NoError(t, os.WriteFile(path, []byte("partial_dates: guess\n"), 0o644))
	_, err = Load(path, nil)
	assert.ErrorContains(t, err, "partial_dates")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn"}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")
}

func TestPipeline_Vocabulary(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "vocabulary.yaml")
	require.NoError(t, os.WriteFile(vocab, []byte(`inherit_defaults: true
labels:
  - field: profession
    kind: block
    patterns: ["Métier"]
`), 0o644))

	cfg := Config{Vocabulary: vocab, NormalizeDates: true}
	p, err := cfg.Pipeline(nil)
	require.NoError(t, err)
	recs := p.Rows("DUPONT, Jean (1900 – 1980)\nMétier\nOrfèvre\nAutres activités\nÉmailleur", 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "Orfèvre", recs[0].Profession)
	assert.Equal(t, "Émailleur", recs[0].OtherActivities)

	_, err = Config{Vocabulary: filepath.Join(dir, "missing.yaml")}.Pipeline(nil)
	assert.Error(t, err)
}
