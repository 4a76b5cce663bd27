package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned by Driver.EnsureDatabase when the
	// database already exists. The engine treats it as success.
	ErrAlreadyExists = errors.New("database already exists")
	// ErrNotReady is returned when the database never answered a ping.
	ErrNotReady = errors.New("database not ready")
	// ErrInvalidName is returned for database names, labels and relation
	// types that cannot be used as identifiers.
	ErrInvalidName = errors.New("invalid name")
)

// Phase names the ingestion step that failed.
type Phase string

const (
	PhaseEnsureExists   Phase = "ensure-exists"
	PhaseWaitReady      Phase = "wait-ready"
	PhaseClean          Phase = "clean"
	PhaseNodeImport     Phase = "node-import"
	PhaseRelationImport Phase = "relation-import"
)

// PhaseError reports which phase of an ingestion failed.
type PhaseError struct {
	Phase    Phase
	Database string
	Err      error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.Database, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
