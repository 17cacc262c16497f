package library

import (
	"context"
	"time"
)

// RunRepository persists runs and the structures they produced.
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
	SaveStructures(ctx context.Context, runID string, structures []string) (int64, error)
	Structures(ctx context.Context, runID string) ([]string, error)
}

// ArtifactStore archives output files.
type ArtifactStore interface {
	// Upload stores the file at localPath under the run's key and returns
	// its URI.
	Upload(ctx context.Context, runID, fileName, localPath string) (string, error)
}

// GeneratedEvent announces a finished run.
type GeneratedEvent struct {
	RunID        string    `json:"run_id"`
	Name         string    `json:"name"`
	Skeleton     string    `json:"skeleton"`
	Template     string    `json:"template"`
	VacantSites  int       `json:"vacant_sites"`
	Combinations int       `json:"combinations"`
	ArtifactURI  string    `json:"artifact_uri,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher announces runs to downstream consumers.
type EventPublisher interface {
	PublishGenerated(ctx context.Context, evt *GeneratedEvent) error
}

// RequestedEvent asks a worker to generate a library.  Nil option fields fall
// back to the worker's configured defaults.
type RequestedEvent struct {
	Name          string   `json:"name"`
	Skeleton      string   `json:"skeleton"`
	Substituents  []string `json:"substituents"`
	NMax          *int     `json:"nmax,omitempty"`
	NConnect      *int     `json:"nconnect,omitempty"`
	ConnectAtom   string   `json:"connect_atom,omitempty"`
	AutoPlacement *bool    `json:"auto_placement,omitempty"`
}

// NewGeneratedEvent builds the event for a succeeded run.
func NewGeneratedEvent(r *Run) *GeneratedEvent {
	at := time.Now().UTC()
	if r.FinishedAt != nil {
		at = *r.FinishedAt
	}
	return &GeneratedEvent{
		RunID:        r.ID,
		Name:         r.Name,
		Skeleton:     r.Skeleton,
		Template:     r.Template,
		VacantSites:  r.VacantSites,
		Combinations: r.Combinations,
		ArtifactURI:  r.ArtifactURI,
		OccurredAt:   at,
	}
}

//Personal.AI order the ending
