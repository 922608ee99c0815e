package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"towncore/internal/blob"
	"towncore/internal/config"
	"towncore/pkg/domain"
)

const sampleDataset = `{
  "towns": [
    {"id": "r", "name": "Root", "x": 0, "y": 0, "tax": 100},
    {"id": "v", "name": "Vassal", "x": 3, "y": 4, "tax": 50},
    {"id": "w", "name": "Alder", "x": -1, "y": 0, "tax": 0}
  ],
  "vassalships": [
    {"vassal": "v", "master": "r"},
    {"vassal": "r", "master": "v"}
  ]
}`

// isolate points configuration at an empty working directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("TOWNCORE_LOG_LEVEL", "error")
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportFromBlobDataset(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "towns.json"), sampleDataset)
	t.Setenv("TOWNCORE_DATASET_BLOB_ROOT", dir)

	out, err := execute(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Source != "blob:fs/towns.json" || got.Load.Towns != 3 || got.Load.Vassalships != 1 || len(got.Load.Skipped) != 1 {
		t.Fatalf("unexpected load summary %+v", got)
	}
	if !slices.Equal(got.ByName, []domain.TownID{"w", "r", "v"}) || !slices.Equal(got.ByDistance, []domain.TownID{"r", "w", "v"}) {
		t.Fatalf("unexpected orderings %v %v", got.ByName, got.ByDistance)
	}
	if got.Nearest != "r" || got.Farthest != "v" || got.Taxes["r"] != 105 || got.Taxes["v"] != 45 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if !slices.Equal(got.Deepest["r"], []domain.TownID{"r", "v"}) || got.Deepest["v"] != nil {
		t.Fatalf("unexpected deepest paths %v", got.Deepest)
	}
	if got.Metrics.Operations["load"].Success != 1 {
		t.Fatalf("expected load metrics, got %+v", got.Metrics.Operations)
	}
}

func TestReportEmptyDataset(t *testing.T) {
	isolate(t)
	t.Setenv("TOWNCORE_DATASET_DRIVER", "none")
	out, err := execute(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "none" || got.Stats.Towns != 0 || got.Nearest != "" {
		t.Fatalf("unexpected empty summary %+v", got)
	}
}

func TestImportThenReportFromSQLite(t *testing.T) {
	dir := isolate(t)
	csvPath := filepath.Join(dir, "towns.csv")
	writeFile(t, csvPath, "id,name,x,y,tax\nr,Root,0,0,100\nv,Vassal,3,4,50\n")
	t.Setenv("TOWNCORE_DATASET_DRIVER", "sqlite")
	t.Setenv("TOWNCORE_DATASET_SQLITE_PATH", filepath.Join(dir, "towns.db"))

	out, err := execute(t, "import", csvPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 2 towns") {
		t.Fatalf("unexpected import output %q", out)
	}
	out, err = execute(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Load.Towns != 2 || got.Farthest != "v" {
		t.Fatalf("unexpected report %+v", got)
	}
}

func TestImportIntoBlobThenReport(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.json")
	writeFile(t, in, sampleDataset)
	t.Setenv("TOWNCORE_DATASET_BLOB_ROOT", filepath.Join(dir, "store"))
	t.Setenv("TOWNCORE_DATASET_BLOB_KEY", "north/towns.csv")

	out, err := execute(t, "import", in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 3 towns and 2 vassalships into blob:fs/north/towns.csv") {
		t.Fatalf("unexpected import output %q", out)
	}
	out, err = execute(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Load.Towns != 3 || got.Load.Vassalships != 1 || got.Taxes["r"] != 105 {
		t.Fatalf("unexpected report %+v", got)
	}

	out, err = execute(t, "datasets")
	if err != nil {
		t.Fatalf("datasets: %v", err)
	}
	var objs []blob.Object
	if err := json.Unmarshal([]byte(out), &objs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(objs) != 2 || objs[0].Key != "north/towns.csv" || objs[1].Key != "north/vassalships.csv" {
		t.Fatalf("unexpected objects %+v", objs)
	}
}

func TestImportAndListRejectEmptyDriver(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "in.json")
	writeFile(t, path, sampleDataset)
	t.Setenv("TOWNCORE_DATASET_DRIVER", "none")
	if _, err := execute(t, "import", path); err == nil || !strings.Contains(err.Error(), "does not accept imports") {
		t.Fatalf("expected import rejection, got %v", err)
	}
	if _, err := execute(t, "datasets"); err == nil || !strings.Contains(err.Error(), "cannot list") {
		t.Fatalf("expected list rejection, got %v", err)
	}
}

func TestRootErrors(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "report", "--log-level", "loud"); err == nil || !strings.Contains(err.Error(), "log level") {
		t.Fatalf("expected log level error, got %v", err)
	}
	if _, err := execute(t, "report", "--config", "missing.toml"); err == nil {
		t.Fatalf("expected missing config error")
	}
	t.Setenv("TOWNCORE_DATASET_BLOB_KEY", "absent.json")
	if _, err := execute(t, "report"); err == nil || !strings.Contains(err.Error(), "absent.json") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
}

func TestServerRoutes(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "towns.json"), sampleDataset)
	t.Setenv("TOWNCORE_DATASET_BLOB_ROOT", dir)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	a := &app{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	handler, err := a.newServer(context.Background(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}
	if w := get("/healthz"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"towns":3`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
	if w := get("/api/v1/towns/r/tax"); !strings.Contains(w.Body.String(), `"tax":105`) {
		t.Fatalf("unexpected tax response %s", w.Body.String())
	}
	w := get("/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "towncore_towns 3") || !strings.Contains(w.Body.String(), `towncore_operations_total{operation="load",status="success"} 1`) {
		t.Fatalf("unexpected metrics output %s", w.Body.String())
	}

	a.cfg.Metrics.Enabled = false
	handler, err = a.newServer(context.Background(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if w := get("/metrics"); w.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent, got %d", w.Code)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Debug("hello", "k", 1)
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("expected json debug line, got %q", buf.String())
	}
}
