package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendJobStatusConstants(t *testing.T) {
	assert.Equal(t, "running", string(ExtendJobRunning))
	assert.Equal(t, "done", string(ExtendJobDone))
	assert.Equal(t, "error", string(ExtendJobError))
}

func TestExtendJob_Complete(t *testing.T) {
	now := time.Now()
	j := NewExtendJob("j1", "f1", now)
	assert.Equal(t, ExtendJobRunning, j.Status)
	assert.Nil(t, j.Added)

	require.NoError(t, j.Complete(3, now.Add(time.Second)))
	assert.Equal(t, ExtendJobDone, j.Status)
	require.NotNil(t, j.Added)
	assert.Equal(t, 3, *j.Added)
	require.NotNil(t, j.FinishedAt)

	assert.Error(t, j.Complete(1, now))
	assert.Error(t, j.Fail("late", now))
	assert.Equal(t, 3, *j.Added)
}

func TestExtendJob_Fail(t *testing.T) {
	j := NewExtendJob("j1", "f1", time.Now())

	require.NoError(t, j.Fail("ollama down", time.Now()))
	assert.Equal(t, ExtendJobError, j.Status)
	assert.Equal(t, "ollama down", j.Error)
	assert.Nil(t, j.Added)
	assert.Error(t, j.Complete(2, time.Now()))
}

func TestExtendJob_Expired(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	j := NewExtendJob("j1", "f1", created)

	assert.False(t, j.Expired(created.Add(5*time.Minute)))
	assert.False(t, j.Expired(created.Add(ExtendJobTTL)))
	assert.True(t, j.Expired(created.Add(ExtendJobTTL+time.Second)))
}

func TestExtendJob_Clone(t *testing.T) {
	j := NewExtendJob("j1", "f1", time.Now())
	require.NoError(t, j.Complete(2, time.Now()))

	c := j.Clone()
	*c.Added = 9
	assert.Equal(t, 2, *j.Added)
}

func TestParseExtendJobStatus(t *testing.T) {
	st, err := ParseExtendJobStatus("done")
	require.NoError(t, err)
	assert.Equal(t, ExtendJobDone, st)

	_, err = ParseExtendJobStatus("queued")
	assert.ErrorIs(t, err, ErrInvalidJobStatus)
}

func TestValidateExtendJob(t *testing.T) {
	now := time.Now()
	assert.Error(t, ValidateExtendJob(nil))
	assert.Error(t, ValidateExtendJob(NewExtendJob("", "f1", now)))
	assert.Error(t, ValidateExtendJob(NewExtendJob("j1", "", now)))

	bad := NewExtendJob("j1", "f1", now)
	bad.Status = "paused"
	assert.Error(t, ValidateExtendJob(bad))

	assert.NoError(t, ValidateExtendJob(NewExtendJob("j1", "f1", now)))
}
