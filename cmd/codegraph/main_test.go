package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DeusData/codebase-graph/internal/config"
	"github.com/DeusData/codebase-graph/internal/store"
)

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"src/app/app.controller.ts": `
import { AppService } from './app.service';

@Controller()
export class AppController {
  constructor(private readonly appService: AppService) {}

  @Get()
  hello() {
    return this.appService.hello();
  }
}
`,
		"src/app/app.service.ts": "export class AppService { hello() { return 'hi'; } }\n",
		"src/main.ts":            "export function bootstrap() {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// writeConfig writes a config selecting the SQLite backend and returns its
// path and the database directory.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dbDir := t.TempDir()
	path := filepath.Join(t.TempDir(), config.FileName)
	content := "graph_db:\n  backend: sqlite\n  sqlite_dir: " + dbDir + "\n  database: app\nlog:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path, dbDir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvBackend, config.EnvDatabase, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	clearEnv(t)
	dir := writeProject(t)
	output := filepath.Join(t.TempDir(), "kg.json")

	out, err := run(t, "extract", dir, "-o", output, "--log-level", "error")
	if err != nil {
		t.Fatalf("extract: %v\n%s", err, out)
	}
	var summary struct {
		Files int `json:"files"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("summary: %v\n%s", err, out)
	}
	if summary.Files != 3 {
		t.Errorf("files = %d, want 3", summary.Files)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("graph file: %v", err)
	}
}

func TestExtractThenIngest(t *testing.T) {
	clearEnv(t)
	cfgPath, dbDir := writeConfig(t)
	dir := writeProject(t)
	output := filepath.Join(t.TempDir(), "kg.json")

	if out, err := run(t, "extract", dir, "-o", output, "--config", cfgPath); err != nil {
		t.Fatalf("extract: %v\n%s", err, out)
	}
	out, err := run(t, "ingest", output, "--config", cfgPath, "--database", "from-file")
	if err != nil {
		t.Fatalf("ingest: %v\n%s", err, out)
	}

	r, err := store.NewRouter(dbDir)
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasDatabase("from-file") {
		t.Fatal("ingest did not create the database")
	}
}

func TestScanCommand(t *testing.T) {
	clearEnv(t)
	cfgPath, dbDir := writeConfig(t)

	out, err := run(t, "scan", writeProject(t), "--config", cfgPath)
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	var res struct {
		RunID  string `json:"run_id"`
		Ingest struct {
			Database string `json:"database"`
			Nodes    int    `json:"nodes"`
		} `json:"ingest"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("result: %v\n%s", err, out)
	}
	if res.RunID == "" || res.Ingest.Database != "app" || res.Ingest.Nodes == 0 {
		t.Errorf("result = %+v", res)
	}

	r, _ := store.NewRouter(dbDir)
	st, err := r.OpenStore("app")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	routes, _ := st.FindNodesByLabel(t.Context(), "Route")
	if len(routes) != 1 {
		t.Errorf("routes = %d, want 1", len(routes))
	}
}

func TestSubtypesCommand(t *testing.T) {
	clearEnv(t)
	dir := writeProject(t)

	out, err := run(t, "subtypes", dir, "--log-level", "error")
	if err != nil {
		t.Fatalf("subtypes: %v", err)
	}
	for _, want := range []string{"controller (1)", "service (1)", "src/app/app.service.ts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "main.ts") {
		t.Errorf("main.ts has no subtype:\n%s", out)
	}

	out, err = run(t, "subtypes", dir, "--subtype", "controller", "--log-level", "error")
	if err != nil {
		t.Fatalf("subtypes --subtype: %v", err)
	}
	if strings.TrimSpace(out) != "src/app/app.controller.ts" {
		t.Errorf("filtered output = %q", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	clearEnv(t)
	if _, err := run(t, "extract", writeProject(t), "--log-level", "loud"); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "scan", writeProject(t), "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for missing explicit config")
	}
}
