/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sources_test.go
Description: Tests for file, API, HTML table and SQL record sources and the config builder.
*/

package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSourceJSON(t *testing.T) {
	path := writeFile(t, "minerals.json", `{"results": [
		{"id": 1, "name": "Quartz", "hardness": 7.0},
		{"id": 2, "name": "Halite", "hardness": "soft"}
	]}`)

	ds, err := NewFileSource("minerals", path, "").FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"id", "name", "hardness"}, ds.Fields())

	h, _ := ds[0].Get("hardness")
	assert.Equal(t, 7.0, h)
}

func TestFileSourceCSV(t *testing.T) {
	path := writeFile(t, "minerals.csv", "id,name,hardness,approved\n1,Quartz,7,true\n2,Halite,,false\n\n3,\"Gold, native\",2.5,\n")

	ds, err := NewFileSource("csv", path, "").FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 3)

	id, _ := ds[0].Get("id")
	assert.Equal(t, int64(1), id)
	approved, _ := ds[0].Get("approved")
	assert.Equal(t, true, approved)
	assert.False(t, ds[1].Has("hardness"))
	name, _ := ds[2].Get("name")
	assert.Equal(t, "Gold, native", name)
	hardness, _ := ds[2].Get("hardness")
	assert.Equal(t, 2.5, hardness)
}

func TestFileSourceXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minerals.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"id", "name", "density"},
		{1, "Quartz", 2.65},
		{2, "Halite", 2.17},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := NewFileSource("xlsx", path, "").FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"id", "name", "density"}, ds.Fields())
	name, _ := ds[1].Get("name")
	assert.Equal(t, "Halite", name)
	density, _ := ds[0].Get("density")
	assert.Equal(t, 2.65, density)
}

func TestFileSourceUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")
	_, err := NewFileSource("txt", path, "").FetchRecords(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestHeaderNames(t *testing.T) {
	assert.Equal(t, []string{"a", "column_2", "a_2"}, headerNames([]string{" a ", "", "a"}))
}

func paginatedServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "APPROVED", r.URL.Query().Get("ima_status"))
			fmt.Fprintf(w, `{"next": "%s/geomaterials/?page=2", "results": [{"id": 1, "name": "Quartz"}]}`, srv.URL)
		case "2":
			fmt.Fprint(w, `{"next": null, "results": [{"id": 2, "name": "Halite"}, null]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPISourceFollowsPagesAndCaches(t *testing.T) {
	var hits int32
	srv := paginatedServer(t, &hits)
	cache := filepath.Join(t.TempDir(), "cache", "ima_minerals.json")

	src := NewAPISource("mindat", srv.URL+"/geomaterials/", map[string]string{"ima_status": "APPROVED"}, 0)
	src.Token = "secret"
	src.CachePath = cache

	ds, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	name, _ := ds[1].Get("name")
	assert.Equal(t, "Halite", name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.FileExists(t, cache)

	again, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	id, _ := again[0].Get("id")
	assert.Equal(t, int64(1), id)
}

func TestAPISourceMaxPages(t *testing.T) {
	var hits int32
	srv := paginatedServer(t, &hits)

	src := NewAPISource("mindat", srv.URL+"/geomaterials/", map[string]string{"ima_status": "APPROVED"}, 0)
	src.Token = "secret"
	src.MaxPages = 1

	ds, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 1)
}

func TestAPISourceRejectsErrorStatus(t *testing.T) {
	var hits int32
	srv := paginatedServer(t, &hits)

	src := NewAPISource("mindat", srv.URL+"/geomaterials/", nil, 0)
	_, err := src.FetchRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDecodePageAcceptsBareArray(t *testing.T) {
	p, err := decodePage([]byte(`[{"id": 1}, {"id": 2}]`))
	require.NoError(t, err)
	assert.Len(t, p.Results, 2)
	assert.Empty(t, p.Next)
}

const mineralTable = `<html><body>
<table id="other"><tr><td>ignore</td></tr></table>
<table class="minerals">
  <thead><tr><th>id</th><th>name</th><th>hardness</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>Quartz</td><td>7</td></tr>
    <tr><td>2</td><td> Halite </td><td>soft</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseHTMLTable(t *testing.T) {
	ds, err := ParseHTMLTable(mineralTable, "table.minerals", 0)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"id", "name", "hardness"}, ds.Fields())

	name, _ := ds[1].Get("name")
	assert.Equal(t, "Halite", name)
	hardness, _ := ds[1].Get("hardness")
	assert.Equal(t, "soft", hardness)

	_, err = ParseHTMLTable(mineralTable, "table.missing", 0)
	assert.Error(t, err)
}

func TestHTMLTableSourceOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ontoforge", r.Header.Get("User-Agent"))
		fmt.Fprint(w, mineralTable)
	}))
	defer srv.Close()

	src := NewHTMLTableSource("table", srv.URL, "table", &HTTPFetcher{Headers: map[string]string{"User-Agent": "ontoforge"}})
	src.Index = 1

	ds, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 2)
}

func TestSQLSourceSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "minerals.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE minerals (id INTEGER, name TEXT, hardness REAL, streak TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO minerals VALUES (1, 'Quartz', 7.0, 'white'), (2, 'Halite', 2.5, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src := NewSQLSource("db", "sqlite", dsn, "SELECT id, name, hardness, streak FROM minerals ORDER BY id")
	require.NoError(t, Check(context.Background(), src))

	ds, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)

	id, _ := ds[0].Get("id")
	assert.Equal(t, int64(1), id)
	hardness, _ := ds[0].Get("hardness")
	assert.Equal(t, 7.0, hardness)
	name, _ := ds[1].Get("name")
	assert.Equal(t, "Halite", name)
	assert.False(t, ds[1].Has("streak"))
}

func TestSQLSourceUnknownDriver(t *testing.T) {
	_, err := NewSQLSource("db", "oracle", "x", "SELECT 1").FetchRecords(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestBuildSources(t *testing.T) {
	t.Setenv("TEST_MINDAT_KEY", "from-env")

	srcs, err := BuildSources([]SourceConfig{
		{Type: "file", Path: "minerals.json"},
		{Type: "api", Name: "mindat", URL: "https://api.mindat.org/geomaterials/", TokenEnv: "TEST_MINDAT_KEY"},
		{Type: "html", URL: "https://example.org", Browser: true},
		{Type: "sql", Driver: "sqlite", DSN: ":memory:", Query: "SELECT 1"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, srcs, 4)

	assert.Equal(t, "file-1", srcs[0].Name())
	api, ok := srcs[1].(*APISource)
	require.True(t, ok)
	assert.Equal(t, "from-env", api.Token)
	html, ok := srcs[2].(*HTMLTableSource)
	require.True(t, ok)
	assert.IsType(t, &BrowserFetcher{}, html.Fetcher)
	assert.IsType(t, &SQLSource{}, srcs[3])

	_, err = BuildSources([]SourceConfig{{Type: "ftp"}}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = BuildSources([]SourceConfig{{Type: "sql", Driver: "sqlite"}}, nil)
	assert.Error(t, err)

	_, err = BuildSources(nil, nil)
	assert.Error(t, err)
}

func TestMindatSourceConfig(t *testing.T) {
	cfg := MindatSourceConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "APPROVED", cfg.Params["ima_status"])
	assert.Equal(t, "MINDAT_API_KEY", cfg.TokenEnv)
}

func TestCheckSources(t *testing.T) {
	ctx := context.Background()

	path := writeFile(t, "minerals.csv", "id,name\n1,Quartz\n")
	assert.NoError(t, Check(ctx, NewFileSource("csv", path, "")))
	assert.Error(t, Check(ctx, NewFileSource("missing", filepath.Join(t.TempDir(), "x.csv"), "")))
	assert.True(t, errors.Is(Check(ctx, NewFileSource("txt", path, "txt")), ErrUnsupportedFormat))

	var hits int32
	srv := paginatedServer(t, &hits)
	api := NewAPISource("mindat", srv.URL+"/geomaterials/", map[string]string{"ima_status": "APPROVED"}, 0)
	assert.Error(t, Check(ctx, api))
	api.Token = "secret"
	assert.NoError(t, Check(ctx, api))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	api.Token = ""
	api.CachePath = writeFile(t, "cache.json", `{"results": []}`)
	assert.NoError(t, Check(ctx, api))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestAPICacheKeepsValueKinds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": 1, "name": "Quartz", "hardness": 7.0, "density": 2.65e0},
			{"id": 2, "name": "Halite", "hardness": "soft", "density": 2}]`)
	}))
	t.Cleanup(srv.Close)

	src := NewAPISource("mindat", srv.URL+"/geomaterials/", nil, 0)
	src.CachePath = filepath.Join(t.TempDir(), "ima_minerals.json")

	fromNetwork, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	fromCache, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	require.Len(t, fromCache, len(fromNetwork))
	for i := range fromNetwork {
		assert.Equal(t, fromNetwork[i].Fields(), fromCache[i].Fields())
		for _, field := range fromNetwork[i].Fields() {
			want, _ := fromNetwork[i].Get(field)
			got, _ := fromCache[i].Get(field)
			assert.Equal(t, records.KindOf(want), records.KindOf(got), "record %d field %s", i, field)
			assert.Equal(t, want, got, "record %d field %s", i, field)
		}
	}

	engine := inference.NewEngine(inference.DefaultCandidates())
	first, err := engine.Infer(fromNetwork)
	require.NoError(t, err)
	second, err := engine.Infer(fromCache)
	require.NoError(t, err)
	for _, p := range first.Profiles() {
		cached, ok := second.Lookup(p.Name)
		require.True(t, ok, p.Name)
		assert.Equal(t, p.Datatype, cached.Datatype, p.Name)
		assert.Equal(t, p.ConfidenceRatio(), cached.ConfidenceRatio(), p.Name)
	}
	hardness, _ := second.Lookup("hardness")
	assert.Equal(t, "xsd:float", hardness.Datatype.Range())
}
