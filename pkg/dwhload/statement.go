package dwhload

import "strings"

// Purpose says which phase a statement belongs to.
type Purpose string

const (
	PurposeDrop   Purpose = "drop"
	PurposeCreate Purpose = "create"
	PurposeCopy   Purpose = "copy"
	PurposeInsert Purpose = "insert"
	PurposeCount  Purpose = "count"
)

// Kind maps the purpose to its sentinel error.
func (p Purpose) Kind() error {
	switch p {
	case PurposeDrop, PurposeCreate:
		return ErrSchema
	case PurposeCopy:
		return ErrLoad
	case PurposeInsert:
		return ErrTransform
	default:
		return ErrExecution
	}
}

// Statement is one entry of an ordered statement list.
type Statement struct {
	Purpose Purpose
	Table   string
	Text    string

	// Source is set on copy statements and names where the staging data lives.
	Source *LoadSource
}

// LoadSource describes a staging bulk load.
type LoadSource struct {
	// URI is an s3:// prefix, a file:// URI or a local path.
	URI string

	// JSONPaths is either JSONPathsAuto or the URI of a JSONPaths descriptor.
	JSONPaths string

	// RoleARN is the delegated credential used to read the source.
	RoleARN string

	Region string
}

// AutoMapping reports whether fields map to columns by name rather than
// through a JSONPaths descriptor, and whether that match ignores case.
func (s LoadSource) AutoMapping() (auto, ignoreCase bool) {
	switch strings.ToLower(strings.TrimSpace(s.JSONPaths)) {
	case "", JSONPathsAuto:
		return true, false
	case JSONPathsAutoIgnoreCase:
		return true, true
	default:
		return false, false
	}
}
