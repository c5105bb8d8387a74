package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrInvalidCollection = errors.New("db: invalid collection name")
	ErrSnapshotConflict  = errors.New("db: collection replaced during read")
)

// Op constants name the failing storage command for error context.
const (
	OpMulti    = "MULTI"
	OpExec     = "EXEC"
	OpDel      = "DEL"
	OpGet      = "GET"
	OpIncr     = "INCR"
	OpJSONSet  = "JSON.SET"
	OpJSONGet  = "JSON.GET"
	OpLRange   = "LRANGE"
	OpLLen     = "LLEN"
	OpRPush    = "RPUSH"
	OpBoltView = "BOLT.VIEW"
	OpBoltPut  = "BOLT.PUT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ValidateCollection rejects empty names and names that would break key layouts.
func ValidateCollection(name string) error {
	if name == "" {
		return ErrInvalidCollection
	}
	for _, r := range name {
		if r == ':' || r == '*' || r == ' ' {
			return ErrInvalidCollection
		}
	}
	return nil
}
