// Package config loads .codegraph.yaml and the GRAPH_DB_* environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/codebase-graph/internal/extract"
	"github.com/DeusData/codebase-graph/internal/ident"
	"github.com/DeusData/codebase-graph/internal/ingest"
	"github.com/DeusData/codebase-graph/internal/neo4jstore"
	"github.com/DeusData/codebase-graph/internal/project"
)

// FileName is the config file looked up in the project root.
const FileName = ".codegraph.yaml"

// Backends.
const (
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
)

// Config is the whole configuration. Unset fields fall back to the defaults
// returned by the Effective* accessors.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	IDs        IDConfig         `yaml:"ids"`
	Heuristics HeuristicsConfig `yaml:"heuristics"`
	GraphDB    GraphDBConfig    `yaml:"graph_db"`
	Log        LogConfig        `yaml:"log"`
}

type ProjectConfig struct {
	SourceDir        string   `yaml:"source_dir"`
	TSConfig         string   `yaml:"tsconfig"`
	Exclude          []string `yaml:"exclude"`
	RespectGitignore *bool    `yaml:"respect_gitignore"`
}

type IDConfig struct {
	// HashLength is the number of hex digits kept in ids (8 to 64).
	HashLength int `yaml:"hash_length"`
}

// HeuristicsConfig replaces the default naming suffixes. An absent list
// keeps the default; an empty list matches nothing.
type HeuristicsConfig struct {
	ModelSuffixes      []string `yaml:"model_suffixes"`
	EntitySuffixes     []string `yaml:"entity_suffixes"`
	RepositorySuffixes []string `yaml:"repository_suffixes"`
}

type GraphDBConfig struct {
	Backend        string        `yaml:"backend"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Database       string        `yaml:"database"`
	CreateDatabase *bool         `yaml:"create_database"`
	ReadyRetries   int           `yaml:"ready_retries"`
	ReadyDelay     time.Duration `yaml:"ready_delay"`
	BatchSize      int           `yaml:"batch_size"`
	SQLiteDir      string        `yaml:"sqlite_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the config. A non-empty explicit path must exist; otherwise
// FileName in dir is read when present. Invalid YAML is an error.
func Load(dir, explicit string) (*Config, error) {
	cfg := &Config{}
	path := explicit
	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit == "" && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) EffectiveSourceDir() string {
	if c.Project.SourceDir != "" {
		return c.Project.SourceDir
	}
	return "src"
}

func (c *Config) EffectiveTSConfig() string {
	if c.Project.TSConfig != "" {
		return c.Project.TSConfig
	}
	return "tsconfig.json"
}

func (c *Config) EffectiveRespectGitignore() bool {
	if c.Project.RespectGitignore != nil {
		return *c.Project.RespectGitignore
	}
	return true
}

func (c *Config) EffectiveHashLength() int {
	if c.IDs.HashLength > 0 {
		return c.IDs.HashLength
	}
	return ident.DefaultHashLen
}

func (c *Config) EffectiveBackend() string {
	if c.GraphDB.Backend != "" {
		return c.GraphDB.Backend
	}
	return BackendNeo4j
}

func (c *Config) EffectiveHost() string {
	if c.GraphDB.Host != "" {
		return c.GraphDB.Host
	}
	return "bolt://localhost"
}

func (c *Config) EffectivePort() int {
	if c.GraphDB.Port > 0 {
		return c.GraphDB.Port
	}
	return 7687
}

func (c *Config) EffectiveUser() string {
	if c.GraphDB.User != "" {
		return c.GraphDB.User
	}
	return "neo4j"
}

func (c *Config) EffectivePassword() string {
	if c.GraphDB.Password != "" {
		return c.GraphDB.Password
	}
	return "password"
}

func (c *Config) EffectiveDatabase() string {
	if c.GraphDB.Database != "" {
		return c.GraphDB.Database
	}
	return "neo4j"
}

func (c *Config) EffectiveCreateDatabase() bool {
	if c.GraphDB.CreateDatabase != nil {
		return *c.GraphDB.CreateDatabase
	}
	return true
}

func (c *Config) EffectiveReadyRetries() int {
	if c.GraphDB.ReadyRetries > 0 {
		return c.GraphDB.ReadyRetries
	}
	return ingest.DefaultRetries
}

func (c *Config) EffectiveReadyDelay() time.Duration {
	if c.GraphDB.ReadyDelay > 0 {
		return c.GraphDB.ReadyDelay
	}
	return ingest.DefaultDelay
}

func (c *Config) EffectiveBatchSize() int {
	if c.GraphDB.BatchSize > 0 {
		return c.GraphDB.BatchSize
	}
	return ingest.DefaultBatchSize
}

func (c *Config) EffectiveLogLevel() string {
	if c.Log.Level != "" {
		return c.Log.Level
	}
	return "info"
}

// ProjectOptions returns the project loader options.
func (c *Config) ProjectOptions() *project.Options {
	return &project.Options{
		SourceDir:        c.EffectiveSourceDir(),
		TSConfig:         c.EffectiveTSConfig(),
		Exclude:          c.Project.Exclude,
		RespectGitignore: c.EffectiveRespectGitignore(),
	}
}

// ExtractOptions returns the extractor options.
func (c *Config) ExtractOptions() extract.Options {
	h := extract.NewHeuristics(c.Heuristics.ModelSuffixes, c.Heuristics.EntitySuffixes, c.Heuristics.RepositorySuffixes)
	return extract.Options{
		IDs:        ident.New(c.EffectiveHashLength()),
		Heuristics: &h,
	}
}

// IngestOptions returns the ingestion engine options.
func (c *Config) IngestOptions() ingest.Options {
	return ingest.Options{
		CreateDatabase: c.EffectiveCreateDatabase(),
		Retries:        c.EffectiveReadyRetries(),
		Delay:          c.EffectiveReadyDelay(),
		BatchSize:      c.EffectiveBatchSize(),
	}
}

// Neo4j returns the Neo4j connection settings.
func (c *Config) Neo4j() neo4jstore.Config {
	return neo4jstore.Config{
		Host:     c.EffectiveHost(),
		Port:     c.EffectivePort(),
		User:     c.EffectiveUser(),
		Password: c.EffectivePassword(),
	}
}
