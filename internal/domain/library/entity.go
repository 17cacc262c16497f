// Package library models one generation run of a substituent library: the
// request that produced it, its outcome, and the ports through which a run is
// persisted, archived and announced.
package library

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/smilescombine/pkg/errors"
)

// Status is the lifecycle state of a Run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// OutputExt is the extension of the plain-text structure list.
const OutputExt = ".smi"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Run is one library generation.
type Run struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Skeleton      string     `json:"skeleton"`
	Substituents  []string   `json:"substituents"`
	NMax          *int       `json:"nmax,omitempty"`
	NConnect      int        `json:"nconnect"`
	ConnectAtom   string     `json:"connect_atom"`
	AutoPlacement bool       `json:"auto_placement"`
	Template      string     `json:"template,omitempty"`
	VacantSites   int        `json:"vacant_sites"`
	Combinations  int        `json:"combinations"`
	OutputPath    string     `json:"output_path,omitempty"`
	ArtifactURI   string     `json:"artifact_uri,omitempty"`
	Status        Status     `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// NewRun starts a run with a fresh ID.
func NewRun(name, skeleton string, substituents []string) *Run {
	return &Run{
		ID:           uuid.New().String(),
		Name:         name,
		Skeleton:     skeleton,
		Substituents: append([]string(nil), substituents...),
		Status:       StatusRunning,
		StartedAt:    time.Now().UTC(),
	}
}

// Succeed records a finished run.
func (r *Run) Succeed(template string, vacantSites, combinations int) {
	now := time.Now().UTC()
	r.Template = template
	r.VacantSites = vacantSites
	r.Combinations = combinations
	r.Status = StatusSucceeded
	r.FinishedAt = &now
}

// Fail records a run that ended with err.
func (r *Run) Fail(err error) {
	now := time.Now().UTC()
	r.Status = StatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = &now
}

// Duration is zero until the run has finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ValidateName checks that a library name is usable as a file stem and an
// object key segment.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return errors.InvalidParam("library name must match " + namePattern.String()).WithDetail(name)
	}
	return nil
}

// OutputFile returns the file name of the structure list for name.
func OutputFile(name string) string {
	return name + OutputExt
}

//Personal.AI order the ending
