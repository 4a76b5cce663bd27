package ingest

import (
	"fmt"
	"regexp"
)

var (
	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	databaseRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ValidateIdentifier checks a node label or relation type. Backends splice
// these into query text, so only plain identifiers are accepted.
func ValidateIdentifier(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("%w: identifier %q", ErrInvalidName, s)
	}
	return nil
}

// ValidateDatabaseName checks a database name.
func ValidateDatabaseName(s string) error {
	if !databaseRe.MatchString(s) {
		return fmt.Errorf("%w: database %q", ErrInvalidName, s)
	}
	return nil
}
