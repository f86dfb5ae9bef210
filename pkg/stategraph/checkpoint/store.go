// Package checkpoint stores an append-only audit trail of post-node state
// snapshots for stategraph runs.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists audit checkpoints.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records a snapshot taken after nodeID finished.
	// Entries for a run are numbered 1, 2, 3... in append order.
	Append(runID, nodeID string, data []byte) error

	// Load returns the entry with the given sequence number.
	// Returns ErrNotFound if it doesn't exist.
	Load(runID string, sequence int) ([]byte, error)

	// Latest returns the most recent entry of a run.
	// Returns ErrNotFound if the run has no entries.
	Latest(runID string) ([]byte, error)

	// List returns entry metadata for a run, ordered by sequence.
	// Returns an empty slice (not an error) for an unknown run.
	List(runID string) ([]Info, error)

	// DeleteRun removes all entries for a run.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes an entry without loading its data.
type Info struct {
	RunID     string    `json:"run_id"`
	NodeID    string    `json:"node_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

var (
	// ErrNotFound indicates a checkpoint doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
