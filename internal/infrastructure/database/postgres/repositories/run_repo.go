// Package repositories holds the PostgreSQL implementations of the library
// domain's persistence ports.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/smilescombine/pkg/errors"
)

// querier is the subset of *pgxpool.Pool the repository uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

const uniqueViolation = "23505"

const runColumns = `id, name, skeleton, substituents, nmax, nconnect, connect_atom,
		       auto_placement, template, vacant_sites, combinations, output_path,
		       artifact_uri, status, error, started_at, finished_at`

// RunRepository is the PostgreSQL library.RunRepository.
type RunRepository struct {
	db     querier
	logger logging.Logger
}

// NewRunRepository accepts a *pgxpool.Pool or a pgx.Tx.
func NewRunRepository(db querier, log logging.Logger) *RunRepository {
	return &RunRepository{db: db, logger: log}
}

var _ library.RunRepository = (*RunRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Create / Update
// ─────────────────────────────────────────────────────────────────────────────

func (r *RunRepository) Create(ctx context.Context, run *library.Run) error {
	r.logger.Debug("RunRepository.Create", logging.String("run_id", run.ID))

	_, err := r.db.Exec(ctx, `
		INSERT INTO library_runs (
			id, name, skeleton, substituents, nmax, nconnect, connect_atom,
			auto_placement, template, vacant_sites, combinations, output_path,
			artifact_uri, status, error, started_at, finished_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		run.ID, run.Name, run.Skeleton, substituentsOrEmpty(run.Substituents), run.NMax, run.NConnect, run.ConnectAtom,
		run.AutoPlacement, run.Template, run.VacantSites, run.Combinations, run.OutputPath,
		run.ArtifactURI, string(run.Status), run.Error, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrCodeConflict, "library run already exists").WithDetail(run.ID)
		}
		r.logger.Error("RunRepository.Create", logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert library run")
	}
	return nil
}

// Update writes the outcome columns of a run.
func (r *RunRepository) Update(ctx context.Context, run *library.Run) error {
	r.logger.Debug("RunRepository.Update", logging.String("run_id", run.ID), logging.String("status", string(run.Status)))

	tag, err := r.db.Exec(ctx, `
		UPDATE library_runs
		SET template = $2, vacant_sites = $3, combinations = $4, output_path = $5,
		    artifact_uri = $6, status = $7, error = $8, finished_at = $9
		WHERE id = $1`,
		run.ID, run.Template, run.VacantSites, run.Combinations, run.OutputPath,
		run.ArtifactURI, string(run.Status), run.Error, run.FinishedAt,
	)
	if err != nil {
		r.logger.Error("RunRepository.Update", logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update library run")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.NotFound("library run not found").WithDetail(run.ID)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func (r *RunRepository) GetByID(ctx context.Context, id string) (*library.Run, error) {
	r.logger.Debug("RunRepository.GetByID", logging.String("run_id", id))

	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM library_runs WHERE id = $1`, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.NotFound("library run not found").WithDetail(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load library run")
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*library.Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `SELECT `+runColumns+` FROM library_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list library runs")
	}
	defer rows.Close()

	var runs []*library.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan library run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list library runs")
	}
	return runs, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Structures are bulk inserted with pgx.CopyFrom.
// ─────────────────────────────────────────────────────────────────────────────

// SaveStructures stores the ordered structure list of a run using the COPY
// protocol.
func (r *RunRepository) SaveStructures(ctx context.Context, runID string, structures []string) (int64, error) {
	if len(structures) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(structures))
	for i, s := range structures {
		rows[i] = []any{runID, i, s}
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"library_structures"},
		[]string{"run_id", "position", "smiles"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		r.logger.Error("RunRepository.SaveStructures", logging.Err(err))
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to copy library structures")
	}
	r.logger.Debug("RunRepository.SaveStructures: done", logging.String("run_id", runID), logging.Int64("inserted", n))
	return n, nil
}

// Structures returns the stored structures of a run in their output order.
func (r *RunRepository) Structures(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT smiles FROM library_structures WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query library structures")
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan library structures")
	}
	return out, nil
}

func scanRun(row pgx.Row) (*library.Run, error) {
	var (
		run    library.Run
		status string
	)
	err := row.Scan(
		&run.ID, &run.Name, &run.Skeleton, &run.Substituents, &run.NMax, &run.NConnect, &run.ConnectAtom,
		&run.AutoPlacement, &run.Template, &run.VacantSites, &run.Combinations, &run.OutputPath,
		&run.ArtifactURI, &status, &run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = library.Status(status)
	return &run, nil
}

func substituentsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

//Personal.AI order the ending
