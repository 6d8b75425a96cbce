package debate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backdateSession(t *testing.T, mgr *Manager, debateID string, age time.Duration) {
	t.Helper()
	sess, err := mgr.store.Get(debateID)
	require.NoError(t, err)
	sess.stateMu.Lock()
	sess.lastActive = time.Now().Add(-age)
	sess.stateMu.Unlock()
}

func TestReaperSweepEndsIdleDebates(t *testing.T) {
	mgr := newTestManager(&stubProvider{}, Config{})
	ctx := context.Background()

	_, err := mgr.StartDebate(ctx, "idle", "topic", "pro")
	require.NoError(t, err)
	_, err = mgr.StartDebate(ctx, "fresh", "topic", "pro")
	require.NoError(t, err)

	backdateSession(t, mgr, "idle", 2*time.Hour)

	reaper := NewReaper(mgr, "", time.Hour)
	assert.Equal(t, 1, reaper.Sweep())

	_, err = mgr.History(ctx, "idle")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mgr.History(ctx, "fresh")
	assert.NoError(t, err)
}

func TestReaperSweepNothingIdle(t *testing.T) {
	mgr := newTestManager(&stubProvider{}, Config{})

	_, err := mgr.StartDebate(context.Background(), "d1", "topic", "pro")
	require.NoError(t, err)

	reaper := NewReaper(mgr, "", time.Hour)
	assert.Zero(t, reaper.Sweep())
}

func TestReaperSweepArchivesVictims(t *testing.T) {
	archived := make(chan *Snapshot, 1)
	mgr := newTestManager(&stubProvider{}, Config{})
	mgr.SetArchiver(archiverFunc(func(ctx context.Context, snap *Snapshot) error {
		archived <- snap
		return nil
	}))

	_, err := mgr.StartDebate(context.Background(), "idle", "topic", "pro")
	require.NoError(t, err)
	backdateSession(t, mgr, "idle", 2*time.Hour)

	reaper := NewReaper(mgr, "", time.Hour)
	require.Equal(t, 1, reaper.Sweep())
	assert.Equal(t, "idle", (<-archived).DebateID)
}

func TestReaperStartStop(t *testing.T) {
	mgr := newTestManager(&stubProvider{}, Config{})
	reaper := NewReaper(mgr, "@every 1h", time.Hour)

	assert.False(t, reaper.IsRunning())
	require.NoError(t, reaper.Start())
	assert.True(t, reaper.IsRunning())

	assert.Error(t, reaper.Start(), "double start must fail")

	require.NoError(t, reaper.Stop())
	assert.False(t, reaper.IsRunning())
	assert.Error(t, reaper.Stop(), "double stop must fail")
}

func TestReaperRejectsInvalidSchedule(t *testing.T) {
	mgr := newTestManager(&stubProvider{}, Config{})
	reaper := NewReaper(mgr, "not a schedule", time.Hour)

	assert.Error(t, reaper.Start())
	assert.False(t, reaper.IsRunning())
}

func TestReaperDefaults(t *testing.T) {
	mgr := newTestManager(&stubProvider{}, Config{})
	reaper := NewReaper(mgr, "", 0)

	assert.Equal(t, DefaultReapSchedule, reaper.schedule)
	assert.Equal(t, DefaultMaxIdle, reaper.maxIdle)
}
