// Package neo4jstore is the Neo4j ingestion backend.
package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

// codeAlreadyExists is the server status code for CREATE DATABASE on an
// existing name.
const codeAlreadyExists = "Neo.ClientError.Database.DatabaseAlreadyExists"

// Config holds connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
}

// URI composes the bolt URI from host and port. A host without a scheme
// gets bolt://; a host that already names a port is kept as is.
func (c Config) URI() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	if !strings.Contains(host, "://") {
		host = "bolt://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Port() != "" || c.Port == 0 {
		return host
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(c.Port))
	return u.String()
}

// Driver implements ingest.Driver over a Neo4j server.
type Driver struct {
	drv neo4j.DriverWithContext
}

// Open connects to the server and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	uri := cfg.URI()
	drv, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := drv.VerifyConnectivity(ctx); err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("neo4j connect %s: %w", uri, err)
	}
	slog.Info("neo4j.connected", "uri", uri)
	return &Driver{drv: drv}, nil
}

// Close closes the underlying driver.
func (d *Driver) Close(ctx context.Context) error {
	return d.drv.Close(ctx)
}

// EnsureDatabase creates the database from the system database.
func (d *Driver) EnsureDatabase(ctx context.Context, name string) error {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return err
	}
	sess := d.drv.NewSession(ctx, neo4j.SessionConfig{DatabaseName: "system", AccessMode: neo4j.AccessModeWrite})
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, createDatabaseQuery(name), nil)
	if err == nil {
		_, err = res.Consume(ctx)
	}
	if isAlreadyExists(err) {
		return fmt.Errorf("%s: %w", name, ingest.ErrAlreadyExists)
	}
	return err
}

// Open implements ingest.Driver.
func (d *Driver) Open(ctx context.Context, name string) (ingest.Session, error) {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return nil, err
	}
	sess := d.drv.NewSession(ctx, neo4j.SessionConfig{DatabaseName: name, AccessMode: neo4j.AccessModeWrite})
	return &session{sess: sess}, nil
}

func isAlreadyExists(err error) bool {
	var ne *neo4j.Neo4jError
	return errors.As(err, &ne) && ne.Code == codeAlreadyExists
}

func createDatabaseQuery(name string) string {
	return "CREATE DATABASE " + quote(name) + " IF NOT EXISTS"
}

// NodeMergeQuery merges a batch of {id, props} rows under label.
func NodeMergeQuery(label string) string {
	return "UNWIND $rows AS row MERGE (n:" + quote(label) + " {id: row.id}) SET n += row.props"
}

// RelationMergeQuery merges a batch of {from, to} rows as relType
// relations. Rows whose endpoints do not exist match nothing.
func RelationMergeQuery(relType string) string {
	return "UNWIND $rows AS row MATCH (a {id: row.from}) MATCH (b {id: row.to}) MERGE (a)-[r:" + quote(relType) + "]->(b)"
}

// quote backtick-quotes a schema name.
func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func nodeParams(rows []ingest.NodeRow) map[string]any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any{"id": r.ID, "props": r.Props}
	}
	return map[string]any{"rows": out}
}

func relationParams(rows []ingest.RelationRow) map[string]any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any{"from": r.From, "to": r.To}
	}
	return map[string]any{"rows": out}
}
