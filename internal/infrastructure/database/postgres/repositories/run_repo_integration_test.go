//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/postgres"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/smilescombine/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container, migrates it and returns
// a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "smilescombine_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	conn, err := postgres.NewConnection(ctx, postgres.Config{
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "smilescombine_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, postgres.RunMigrations(conn.ConnString()))
	require.NoError(t, postgres.RunMigrations(conn.ConnString()))

	version, dirty, err := postgres.MigrationStatus(conn.ConnString())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, conn.HealthCheck(ctx))
	return conn.Pool()
}

func TestRunRepository_Lifecycle(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewRunRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	nmax := 2
	run := library.NewRun("benzene", "c1ccccc1", []string{"C", "N"})
	run.NMax = &nmax
	run.ConnectAtom = "Br"
	run.AutoPlacement = true
	require.NoError(t, repo.Create(ctx, run))

	err := repo.Create(ctx, run)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeConflict))

	run.Succeed("c1{}c{}c{}c{}c{}c1{}", 6, 3)
	run.OutputPath = "/tmp/benzene.smi"
	require.NoError(t, repo.Update(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, library.StatusSucceeded, got.Status)
	assert.Equal(t, []string{"C", "N"}, got.Substituents)
	require.NotNil(t, got.NMax)
	assert.Equal(t, 2, *got.NMax)
	assert.Equal(t, 6, got.VacantSites)
	require.NotNil(t, got.FinishedAt)

	structures := []string{"c1ccccc1", "Nc1ccccc1", "Cc1ccccc1"}
	n, err := repo.SaveStructures(ctx, run.ID, structures)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stored, err := repo.Structures(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, structures, stored)

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestWithTransaction_RollsBack(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	run := library.NewRun("rollback", "c1ccccc1", nil)
	err := postgres.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewRunRepository(tx, logging.NewNopLogger())
		if err := repo.Create(ctx, run); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	_, err = repositories.NewRunRepository(pool, logging.NewNopLogger()).GetByID(ctx, run.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

//Personal.AI order the ending
