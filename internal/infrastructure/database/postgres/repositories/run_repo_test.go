package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/smilescombine/pkg/errors"
)

type mockQuerier struct{ mock.Mock }

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := m.Called(ctx, sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := m.Called(ctx, sql, args)
	rows, _ := a.Get(0).(pgx.Rows)
	return rows, a.Error(1)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

func (m *mockQuerier) CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	a := m.Called(ctx, table, cols, src)
	return a.Get(0).(int64), a.Error(1)
}

// errRow is a pgx.Row whose Scan fails.
type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// runRow scans a fixed run into the repository's column order.
type runRow struct{ run library.Run }

func (r runRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.run.ID
	*dest[1].(*string) = r.run.Name
	*dest[2].(*string) = r.run.Skeleton
	*dest[3].(*[]string) = r.run.Substituents
	*dest[4].(**int) = r.run.NMax
	*dest[5].(*int) = r.run.NConnect
	*dest[6].(*string) = r.run.ConnectAtom
	*dest[7].(*bool) = r.run.AutoPlacement
	*dest[8].(*string) = r.run.Template
	*dest[9].(*int) = r.run.VacantSites
	*dest[10].(*int) = r.run.Combinations
	*dest[11].(*string) = r.run.OutputPath
	*dest[12].(*string) = r.run.ArtifactURI
	*dest[13].(*string) = string(r.run.Status)
	*dest[14].(*string) = r.run.Error
	*dest[15].(*time.Time) = r.run.StartedAt
	*dest[16].(**time.Time) = r.run.FinishedAt
	return nil
}

type RunRepoTestSuite struct {
	suite.Suite
	db   *mockQuerier
	repo *RunRepository
	ctx  context.Context
}

func (s *RunRepoTestSuite) SetupTest() {
	s.db = &mockQuerier{}
	s.repo = NewRunRepository(s.db, logging.NewNopLogger())
	s.ctx = context.Background()
}

func (s *RunRepoTestSuite) TearDownTest() {
	s.db.AssertExpectations(s.T())
}

func (s *RunRepoTestSuite) TestCreate_Success() {
	run := library.NewRun("benzene", "c1ccccc1", nil)
	s.db.On("Exec", s.ctx, mock.MatchedBy(containsSQL("INSERT INTO library_runs")), mock.MatchedBy(func(args []any) bool {
		subs, ok := args[3].([]string)
		return len(args) == 17 && args[0] == run.ID && ok && subs != nil
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	s.NoError(s.repo.Create(s.ctx, run))
}

func (s *RunRepoTestSuite) TestCreate_Duplicate() {
	run := library.NewRun("benzene", "c1ccccc1", nil)
	s.db.On("Exec", s.ctx, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"})

	err := s.repo.Create(s.ctx, run)
	s.True(appErrors.IsCode(err, appErrors.ErrCodeConflict))
}

func (s *RunRepoTestSuite) TestCreate_Error() {
	s.db.On("Exec", s.ctx, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := s.repo.Create(s.ctx, library.NewRun("x", "C", nil))
	s.True(appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func (s *RunRepoTestSuite) TestUpdate() {
	run := library.NewRun("benzene", "c1ccccc1", nil)
	run.Succeed("c1{}c{}c{}c{}c{}c1{}", 6, 13)
	s.db.On("Exec", s.ctx, mock.MatchedBy(containsSQL("UPDATE library_runs")), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil).Once()

	s.NoError(s.repo.Update(s.ctx, run))
}

func (s *RunRepoTestSuite) TestUpdate_NotFound() {
	s.db.On("Exec", s.ctx, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := s.repo.Update(s.ctx, library.NewRun("x", "C", nil))
	s.True(appErrors.IsNotFound(err))
}

func (s *RunRepoTestSuite) TestGetByID() {
	finished := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
	nmax := 2
	want := library.Run{
		ID:            "0b6c5b36-1c3f-4c53-9d67-3b8e08a1c001",
		Name:          "benzene",
		Skeleton:      "c1ccccc1",
		Substituents:  []string{"C", "N"},
		NMax:          &nmax,
		ConnectAtom:   "Br",
		AutoPlacement: true,
		Template:      "c1{}c{}c{}c{}c{}c1{}",
		VacantSites:   6,
		Combinations:  39,
		Status:        library.StatusSucceeded,
		StartedAt:     finished.Add(-5 * time.Second),
		FinishedAt:    &finished,
	}
	s.db.On("QueryRow", s.ctx, mock.MatchedBy(containsSQL("WHERE id = $1")), []any{want.ID}).
		Return(runRow{run: want})

	got, err := s.repo.GetByID(s.ctx, want.ID)
	s.Require().NoError(err)
	s.Equal(want, *got)
	s.Equal(5*time.Second, got.Duration())
}

func (s *RunRepoTestSuite) TestGetByID_NotFound() {
	s.db.On("QueryRow", s.ctx, mock.Anything, mock.Anything).Return(errRow{err: pgx.ErrNoRows})

	_, err := s.repo.GetByID(s.ctx, "missing")
	s.True(appErrors.IsNotFound(err))
}

func (s *RunRepoTestSuite) TestGetByID_ScanError() {
	s.db.On("QueryRow", s.ctx, mock.Anything, mock.Anything).Return(errRow{err: errors.New("bad column")})

	_, err := s.repo.GetByID(s.ctx, "id")
	s.True(appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func (s *RunRepoTestSuite) TestListRecent_QueryError() {
	s.db.On("Query", s.ctx, mock.MatchedBy(containsSQL("ORDER BY started_at DESC")), []any{50}).
		Return(nil, errors.New("timeout"))

	_, err := s.repo.ListRecent(s.ctx, 0)
	s.True(appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func (s *RunRepoTestSuite) TestSaveStructures() {
	s.db.On("CopyFrom", s.ctx, pgx.Identifier{"library_structures"}, []string{"run_id", "position", "smiles"}, mock.Anything).
		Return(int64(3), nil)

	n, err := s.repo.SaveStructures(s.ctx, "run", []string{"c1ccccc1", "Cc1ccccc1", "Nc1ccccc1"})
	s.NoError(err)
	s.Equal(int64(3), n)
}

func (s *RunRepoTestSuite) TestSaveStructures_Empty() {
	n, err := s.repo.SaveStructures(s.ctx, "run", nil)
	s.NoError(err)
	s.Zero(n)
	s.db.AssertNotCalled(s.T(), "CopyFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RunRepoTestSuite) TestSaveStructures_Error() {
	s.db.On("CopyFrom", s.ctx, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("copy failed"))

	_, err := s.repo.SaveStructures(s.ctx, "run", []string{"C"})
	s.True(appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func (s *RunRepoTestSuite) TestStructures_QueryError() {
	s.db.On("Query", s.ctx, mock.Anything, []any{"run"}).Return(nil, errors.New("timeout"))

	_, err := s.repo.Structures(s.ctx, "run")
	s.True(appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func TestRunRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RunRepoTestSuite))
}

func containsSQL(fragment string) func(string) bool {
	return func(sql string) bool { return strings.Contains(sql, fragment) }
}

//Personal.AI order the ending
