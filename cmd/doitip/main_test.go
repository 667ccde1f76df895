package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doitip/internal/doira"
	"doitip/internal/identifier"
)

// fakeServices serves doi.org and all three agency APIs from one server and
// points the DOITIP_* base URLs at it.
func fakeServices(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	mux := http.NewServeMux()
	mux.HandleFunc("/doiRA/", func(w http.ResponseWriter, r *http.Request) {
		doi := strings.TrimPrefix(r.URL.Path, "/doiRA/")
		ra := map[string]string{
			"10.1000/xyz":       "Crossref",
			"10.5281/zenodo.1":  "DataCite",
			"10.1392/onix-dna":  "mEDRA",
			"10.1234/kisti.001": "KISTI",
		}[doi]
		if ra == "" {
			writeJSON(w, []map[string]string{{"DOI": doi, "status": "DOI does not exist"}})
			return
		}
		writeJSON(w, []map[string]string{{"DOI": doi, "RA": ra}})
	})
	mux.HandleFunc("/api/handles/10.1/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	mux.HandleFunc("/api/handles/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "doitip/"+version {
			http.Error(w, "bad user agent "+got, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"responseCode": 1, "handle": strings.TrimPrefix(r.URL.Path, "/api/handles/")})
	})
	mux.HandleFunc("/10.1000/xyz", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing/xyz", http.StatusFound)
	})
	mux.HandleFunc("/landing/xyz", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/crossref/getPrefixPublisher/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"prefix": r.URL.Query().Get("prefix"), "name": "Example Press"}})
	})
	mux.HandleFunc("/crossref-api/works/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "ok", "message": map[string]any{"DOI": "10.1000/xyz"}})
	})
	mux.HandleFunc("/datacite/dois/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "DOI not found", http.StatusNotFound)
	})
	mux.HandleFunc("/datacite/prefixes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]string{{"id": "10.5281"}}})
	})
	mux.HandleFunc("/datacite/providers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]string{{"id": "cern"}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("DOITIP_DOI_URL", srv.URL)
	t.Setenv("DOITIP_CROSSREF_URL", srv.URL+"/crossref")
	t.Setenv("DOITIP_CROSSREF_API_URL", srv.URL+"/crossref-api")
	t.Setenv("DOITIP_DATACITE_API_URL", srv.URL+"/datacite")
	t.Setenv("DOITIP_MEDRA_API_URL", srv.URL+"/medra")
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// resetFlags puts every flag back to its default; cobra keeps flag values
// between Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func decode(t *testing.T, out string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestRAs(t *testing.T) {
	fakeServices(t)
	out, err := execute(t, "ras")
	require.NoError(t, err)
	assert.Equal(t, []any{"crossref", "datacite", "medra"}, decode(t, out))

	out, err = execute(t, "ras", "--output", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- crossref\n- datacite\n- medra\n", out)

	// every listed name is accepted by prefixes
	for _, name := range []string{"crossref", "datacite", "medra"} {
		_, err := execute(t, "prefixes", name)
		require.NoError(t, err, name)
	}
}

func TestRA(t *testing.T) {
	fakeServices(t)
	out, err := execute(t, "ra", "doi:10.5281/zenodo.1")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"DOI": "10.5281/zenodo.1", "RA": "DataCite"}}, decode(t, out))
}

func TestInfo(t *testing.T) {
	fakeServices(t)
	out, err := execute(t, "info", "10.1000/xyz")
	require.NoError(t, err)
	doc := decode(t, out).(map[string]any)
	assert.Equal(t, "10.1000/xyz", doc["handle"])
}

func TestInfo_NotRegistered(t *testing.T) {
	fakeServices(t)
	_, err := execute(t, "info", "10.1/gone")
	require.Error(t, err)
	assert.True(t, doira.IsNotFound(err), "expected a 404 API error, got %v", err)
	assert.Contains(t, err.Error(), "doi doi:10.1/gone is not registered")
}

func TestResolve(t *testing.T) {
	srv := fakeServices(t)
	out, err := execute(t, "resolve", "10.1000/xyz", "-a", "text/html")
	require.NoError(t, err)

	var hops []doira.Hop
	require.NoError(t, json.Unmarshal([]byte(out), &hops))
	require.Len(t, hops, 2)
	assert.Equal(t, srv.URL+"/10.1000/xyz", hops[0].URL)
	assert.Equal(t, http.StatusFound, hops[0].Status)
	assert.Equal(t, srv.URL+"/landing/xyz", hops[1].URL)
	assert.Equal(t, http.StatusOK, hops[1].Status)

	out, err = execute(t, "resolve", "10.1000/xyz", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "/landing/xyz")
	assert.Contains(t, out, "Elapsed (ms)")
}

func TestMeta_Crossref(t *testing.T) {
	fakeServices(t)
	out, err := execute(t, "meta", "10.1000/xyz")
	require.NoError(t, err)

	doc := decode(t, out).(map[string]any)
	assert.Equal(t, []any{map[string]any{"prefix": "10.1000", "name": "Example Press"}}, doc["prefix"])
	assert.Equal(t, "ok", doc["metadata"].(map[string]any)["status"])
	assert.Equal(t, float64(1), doc["handle"].(map[string]any)["responseCode"])
}

func TestMeta_DataCiteFailureStaysInSlot(t *testing.T) {
	fakeServices(t)
	out, err := execute(t, "meta", "10.5281/zenodo.1")
	require.NoError(t, err)

	doc := decode(t, out).(map[string]any)
	assert.Equal(t, map[string]any{"status": float64(404), "message": "DOI not found"}, doc["metadata"])
	assert.Equal(t, map[string]any{"note": "Datacite publisher info is in metadata record."}, doc["prefix"])
}

func TestMeta_Errors(t *testing.T) {
	fakeServices(t)

	_, err := execute(t, "meta", "10.1234/kisti.001")
	require.Error(t, err)
	assert.ErrorIs(t, err, doira.ErrUnknownRegistrar)
	assert.Contains(t, err.Error(), "kisti")

	_, err = execute(t, "meta", "10.9999/missing")
	assert.ErrorIs(t, err, doira.ErrUnknownRegistrar)

	_, err = execute(t, "meta", "hdl:20.500/abc")
	assert.ErrorIs(t, err, identifier.ErrInvalidIdentifier)

	_, err = execute(t, "meta", "doi:")
	assert.ErrorIs(t, err, identifier.ErrInvalidIdentifier)
}

func TestPrefixes(t *testing.T) {
	fakeServices(t)

	out, err := execute(t, "prefixes", "DataCite")
	require.NoError(t, err)
	assert.Contains(t, out, "10.5281")

	out, err = execute(t, "prefixes", "crossref")
	require.NoError(t, err)
	assert.Contains(t, out, `"prefix": "all"`)

	out, err = execute(t, "prefixes", "medra")
	require.NoError(t, err)
	doc := decode(t, out).(map[string]any)
	assert.Equal(t, float64(http.StatusNotImplemented), doc["status"])

	_, err = execute(t, "prefixes", "kisti")
	assert.ErrorIs(t, err, doira.ErrUnknownRegistrar)
}

func TestProviders(t *testing.T) {
	fakeServices(t)

	out, err := execute(t, "providers", "datacite")
	require.NoError(t, err)
	assert.Contains(t, out, "cern")

	out, err = execute(t, "providers", "crossref")
	require.NoError(t, err)
	assert.Equal(t, float64(http.StatusNotImplemented), decode(t, out).(map[string]any)["status"])
}

func TestInvalidOutputFormat(t *testing.T) {
	fakeServices(t)
	_, err := execute(t, "ras", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}
