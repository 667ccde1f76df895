package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doitip/internal/doira"
	"doitip/internal/identifier"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "https://doi.org", cfg.Endpoints.DOI)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RACacheTTL)
}

func TestDefaults_RALookupsNotCached(t *testing.T) {
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"DOI":"10.5281/zenodo.1","RA":"DataCite"}]`))
	}))
	t.Cleanup(srv.Close)

	d := Defaults()
	client := doira.NewClient(
		doira.WithHTTPClient(srv.Client()),
		doira.WithEndpoints(doira.Endpoints{DOI: srv.URL}),
	)
	router := doira.NewRouter(client, doira.WithRACache(d.RACacheTTL))

	id, err := identifier.RequireDOI("10.5281/zenodo.1")
	require.NoError(t, err)
	for range 2 {
		a, err := router.DOIRA(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, doira.DataCite, a.Kind())
	}
	assert.Equal(t, int32(2), lookups.Load())
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "doitip.yaml")
	data := []byte(`doi_url: http://localhost:8080
timeout: 3s
output: yaml
log:
  level: debug
  format: json
tracing:
  enabled: true
  exporter: none
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Endpoints.DOI)
	assert.Equal(t, "https://api.crossref.org", cfg.Endpoints.CrossrefAPI)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoad_DefaultFileLocation(t *testing.T) {
	isolate(t)
	path := DefaultPath()
	require.NotEmpty(t, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("datacite_api_url: http://datacite.test\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://datacite.test", cfg.Endpoints.DataCiteAPI)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("DOITIP_MEDRA_API_URL", "http://medra.test")
	t.Setenv("DOITIP_LOG_LEVEL", "error")
	t.Setenv("DOITIP_RA_CACHE_TTL", "5m")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://medra.test", cfg.Endpoints.MEDRAAPI)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.RACacheTTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Output = "xml"
	require.ErrorContains(t, cfg.Validate(), "output")

	cfg = Defaults()
	cfg.Log.Level = "chatty"
	require.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = Defaults()
	cfg.Log.Format = "logfmt"
	require.ErrorContains(t, cfg.Validate(), "log.format")

	cfg = Defaults()
	cfg.Timeout = -time.Second
	require.ErrorContains(t, cfg.Validate(), "timeout")

	cfg = Defaults()
	cfg.RACacheTTL = -time.Minute
	require.ErrorContains(t, cfg.Validate(), "ra_cache_ttl")

	cfg = Defaults()
	cfg.Tracing.Exporter = "zipkin"
	require.ErrorContains(t, cfg.Validate(), "exporter")
}
