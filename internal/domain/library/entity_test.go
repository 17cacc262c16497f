package library

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

func TestNewRun(t *testing.T) {
	subs := []string{"C", "N"}
	r := NewRun("benzene", "c1ccccc1", subs)
	subs[0] = "O"

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)
	assert.Equal(t, []string{"C", "N"}, r.Substituents)
	assert.False(t, r.StartedAt.IsZero())
	assert.Nil(t, r.FinishedAt)
	assert.Zero(t, r.Duration())
}

func TestRun_Succeed(t *testing.T) {
	r := NewRun("benzene", "c1ccccc1", nil)
	r.Succeed("c1{}c{}c{}c{}c{}c1{}", 6, 13)

	assert.Equal(t, StatusSucceeded, r.Status)
	assert.Equal(t, 6, r.VacantSites)
	assert.Equal(t, 13, r.Combinations)
	require.NotNil(t, r.FinishedAt)
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))
}

func TestRun_Fail(t *testing.T) {
	r := NewRun("benzene", "c1ccccc1", nil)
	r.Fail(errors.New("boom"))

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.NotNil(t, r.FinishedAt)
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"benzene", "tri-azine_2", "lib.v1", "A"} {
		assert.NoError(t, ValidateName(ok), ok)
	}
	for _, bad := range []string{"", "-lead", "a/b", "a..b", "sp ace", "../etc"} {
		err := ValidateName(bad)
		assert.Error(t, err, bad)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest), bad)
	}
}

func TestOutputFile(t *testing.T) {
	assert.Equal(t, "benzene.smi", OutputFile("benzene"))
}

func TestNewGeneratedEvent(t *testing.T) {
	r := NewRun("benzene", "c1ccccc1", []string{"C"})
	r.ArtifactURI = "s3://libs/benzene.smi"
	r.Succeed("c1{}c{}c{}c{}c{}c1{}", 6, 13)

	evt := NewGeneratedEvent(r)
	assert.Equal(t, r.ID, evt.RunID)
	assert.Equal(t, "benzene", evt.Name)
	assert.Equal(t, 13, evt.Combinations)
	assert.Equal(t, "s3://libs/benzene.smi", evt.ArtifactURI)
	assert.Equal(t, *r.FinishedAt, evt.OccurredAt)
}

//Personal.AI order the ending
