package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EffectiveSourceDir() != "src" || cfg.EffectiveTSConfig() != "tsconfig.json" || !cfg.EffectiveRespectGitignore() {
		t.Errorf("project defaults: %+v", cfg.Project)
	}
	if cfg.EffectiveBackend() != BackendNeo4j || cfg.EffectiveHost() != "bolt://localhost" || cfg.EffectivePort() != 7687 {
		t.Error("unexpected connection defaults")
	}
	if cfg.EffectiveUser() != "neo4j" || cfg.EffectivePassword() != "password" || cfg.EffectiveDatabase() != "neo4j" {
		t.Error("unexpected credential defaults")
	}
	opts := cfg.IngestOptions()
	if !opts.CreateDatabase || opts.Retries != 10 || opts.Delay != time.Second || opts.BatchSize != 500 {
		t.Errorf("ingest options = %+v", opts)
	}
	if cfg.EffectiveHashLength() != 8 || cfg.EffectiveLogLevel() != "info" {
		t.Error("unexpected id or log defaults")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
project:
  source_dir: app
  exclude: ["**/*.spec.ts"]
  respect_gitignore: false
ids:
  hash_length: 12
heuristics:
  model_suffixes: [Record]
  entity_suffixes: []
graph_db:
  backend: sqlite
  database: shop
  create_database: false
  ready_retries: 3
  ready_delay: 250ms
  batch_size: 100
  sqlite_dir: /tmp/graphs
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	popts := cfg.ProjectOptions()
	if popts.SourceDir != "app" || popts.RespectGitignore || !reflect.DeepEqual(popts.Exclude, []string{"**/*.spec.ts"}) {
		t.Errorf("project options = %+v", popts)
	}
	iopts := cfg.IngestOptions()
	if iopts.CreateDatabase || iopts.Retries != 3 || iopts.Delay != 250*time.Millisecond || iopts.BatchSize != 100 {
		t.Errorf("ingest options = %+v", iopts)
	}
	if cfg.EffectiveBackend() != BackendSQLite || cfg.EffectiveDatabase() != "shop" || cfg.GraphDB.SQLiteDir != "/tmp/graphs" {
		t.Errorf("graph_db = %+v", cfg.GraphDB)
	}

	eopts := cfg.ExtractOptions()
	if eopts.IDs.HashLen() != 12 {
		t.Errorf("hash length = %d", eopts.IDs.HashLen())
	}
	h := eopts.Heuristics
	if !h.IsModel("UserRecord") || h.IsModel("UserModel") || h.IsEntity("UserEntity") || !h.IsRepository("userRepository") {
		t.Error("heuristics overrides not applied")
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("not: [valid: yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, ""); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvHost, "neo4j://graph")
	t.Setenv(EnvPort, "7688")
	t.Setenv(EnvUser, "admin")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvDatabase, "catalog")
	t.Setenv(EnvBackend, "sqlite")
	t.Setenv(EnvLogLevel, "warn")

	cfg := &Config{GraphDB: GraphDBConfig{Host: "bolt://file", Database: "fromfile"}}
	cfg.ApplyEnv()

	n := cfg.Neo4j()
	if n.Host != "neo4j://graph" || n.Port != 7688 || n.User != "admin" || n.Password != "secret" {
		t.Errorf("neo4j config = %+v", n)
	}
	if cfg.EffectiveDatabase() != "catalog" || cfg.EffectiveBackend() != "sqlite" || cfg.EffectiveLogLevel() != "warn" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestApplyEnvInvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "seventy")
	cfg := &Config{}
	cfg.ApplyEnv()
	if cfg.EffectivePort() != 7687 {
		t.Errorf("invalid port should be ignored, got %d", cfg.EffectivePort())
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("GRAPH_DB_DATABASE=fromenvfile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDatabase, "")
	os.Unsetenv(EnvDatabase)
	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	cfg := &Config{}
	cfg.ApplyEnv()
	if cfg.EffectiveDatabase() != "fromenvfile" {
		t.Errorf("database = %q", cfg.EffectiveDatabase())
	}
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing explicit env file")
	}
}
