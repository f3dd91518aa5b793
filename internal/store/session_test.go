package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(exercise string) *Session {
	return &Session{
		Exercise:   exercise,
		Archetype:  "squat",
		UserEmail:  "athlete@example.com",
		TargetReps: 10,
		TotalSets:  3,
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := newSession("squats")
	require.NoError(t, repo.Create(sess))
	assert.Len(t, sess.ID, 36, "ID should be a UUID")
	assert.Equal(t, StatusActive, sess.Status)

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "squats", got.Exercise)
	assert.Equal(t, "athlete@example.com", got.UserEmail)
	assert.Equal(t, 10, got.TargetReps)
	assert.Equal(t, StatusActive, got.Status)
	assert.Nil(t, got.EndedAt)
	assert.WithinDuration(t, sess.StartedAt, got.StartedAt, time.Millisecond)
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Sessions().GetByID("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_Finish(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := newSession("squats")
	require.NoError(t, repo.Create(sess))
	require.NoError(t, repo.UpdateProgress(sess.ID, 10, 1, 1))

	ended := time.Now()
	require.NoError(t, repo.Finish(sess.ID, StatusCompleted, 30, 2, 3, ended))

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 30, got.TotalReps)
	assert.Equal(t, 2, got.PartialReps)
	assert.Equal(t, 3, got.SetsCompleted)
	require.NotNil(t, got.EndedAt)
	assert.WithinDuration(t, ended, *got.EndedAt, time.Millisecond)

	assert.ErrorIs(t, repo.Finish("nope", StatusStopped, 0, 0, 0, ended), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateProgress("nope", 1, 0, 0), ErrNotFound)
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	for _, name := range []string{"squats", "lunges", "plank"} {
		require.NoError(t, repo.Create(newSession(name)))
	}

	list, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "plank", list[0].Exercise)
	assert.Equal(t, "lunges", list[1].Exercise)

	all, err := repo.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSessionRepository_AbandonActive(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	active := newSession("squats")
	done := newSession("lunges")
	require.NoError(t, repo.Create(active))
	require.NoError(t, repo.Create(done))
	require.NoError(t, repo.Finish(done.ID, StatusCompleted, 30, 0, 3, time.Now()))

	n, err := repo.AbandonActive(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(active.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, got.Status)
	assert.NotNil(t, got.EndedAt)
}

func TestSetRepository(t *testing.T) {
	s := newTestStore(t)
	sess := newSession("plank")
	require.NoError(t, s.Sessions().Create(sess))

	sets := s.Sets()
	require.NoError(t, sets.Create(&SetResult{SessionID: sess.ID, SetIndex: 2, Reps: 30, Hold: 30500 * time.Millisecond}))
	first := &SetResult{SessionID: sess.ID, SetIndex: 1, Reps: 30, PartialReps: 1, Hold: 31 * time.Second}
	require.NoError(t, sets.Create(first))
	assert.NotZero(t, first.ID)

	// Each set index is stored once per session.
	assert.Error(t, sets.Create(&SetResult{SessionID: sess.ID, SetIndex: 1, Reps: 1}))

	list, err := sets.ListBySession(sess.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].SetIndex)
	assert.Equal(t, 1, list[0].PartialReps)
	assert.Equal(t, 31*time.Second, list[0].Hold)
	assert.Equal(t, 30500*time.Millisecond, list[1].Hold)

	// Deleting the session removes its sets.
	_, err = s.DB().Exec(`DELETE FROM sessions WHERE id = ?`, sess.ID)
	require.NoError(t, err)
	list, err = sets.ListBySession(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
