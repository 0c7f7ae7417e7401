// Package store persists research run history and the search-result cache.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// RunStatus tracks a research run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusResearching RunStatus = "researching"
	RunStatusAssembling  RunStatus = "assembling"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run is one research workflow execution.
type Run struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Status    RunStatus       `json:"status"`
	Report    json.RawMessage `json:"report,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Topic  string    `json:"topic,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// Store defines the persistence interface for the research workflow.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, topic string) (*Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) error
	SaveReport(ctx context.Context, runID string, report any) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Search cache. Keys are content hashes of the normalized query; a put
	// to an existing key overwrites it.
	CacheGet(ctx context.Context, key string) (json.RawMessage, bool, error)
	CachePut(ctx context.Context, key string, value json.RawMessage) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
