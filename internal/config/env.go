package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvHost     = "GRAPH_DB_HOST"
	EnvPort     = "GRAPH_DB_PORT"
	EnvUser     = "GRAPH_DB_USER"
	EnvPassword = "GRAPH_DB_PASSWORD"
	EnvDatabase = "GRAPH_DB_DATABASE"
	EnvBackend  = "GRAPH_DB_BACKEND"
	EnvLogLevel = "CODEGRAPH_LOG_LEVEL"
)

// LoadEnv loads a .env file into the process environment without
// overriding variables already set. An empty path tries ./.env, which may
// be absent; an explicit path must exist.
func LoadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("config.env.none")
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	setString(&c.GraphDB.Host, EnvHost)
	setString(&c.GraphDB.User, EnvUser)
	setString(&c.GraphDB.Password, EnvPassword)
	setString(&c.GraphDB.Database, EnvDatabase)
	setString(&c.GraphDB.Backend, EnvBackend)
	setString(&c.Log.Level, EnvLogLevel)
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			slog.Warn("config.env.invalid", "var", EnvPort, "value", v)
		} else {
			c.GraphDB.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
