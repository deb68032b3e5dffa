package jobs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/models"
	badgerstorage "github.com/ternarybob/ausculto/internal/storage/badger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	storage, err := badgerstorage.NewManager(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "jobs-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	return NewManager(storage, common.GetLogger())
}

func TestCreateDefaults(t *testing.T) {
	manager := newTestManager(t)

	job, err := manager.Create(context.Background(), models.JobTypeFetchEpisodes, models.TargetTypeSource, "src_1", CreateOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, "system", job.CreatedBy)
	assert.Equal(t, models.DefaultMaxRetries, job.MaxRetries)
	assert.False(t, job.ScheduledAt.IsZero())
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
}

func TestPatchStampsTimestamps(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	job, err := manager.Create(ctx, models.JobTypeProcessMentions, models.TargetTypeEpisode, "ep_1", CreateOptions{})
	require.NoError(t, err)

	running, err := manager.Patch(ctx, job.ID, StatusPatch{Status: models.JobStatusRunning})
	require.NoError(t, err)
	require.NotNil(t, running.StartedAt)
	startedAt := *running.StartedAt

	// A second running patch must not reset startedAt.
	again, err := manager.Patch(ctx, job.ID, StatusPatch{
		Status:   models.JobStatusRunning,
		Progress: IntPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, startedAt, *again.StartedAt)
	assert.Equal(t, 50, again.Progress)

	done, err := manager.Patch(ctx, job.ID, StatusPatch{Status: models.JobStatusCompleted})
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
}

func TestPatchRejectsTerminalTransition(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	job, err := manager.Create(ctx, models.JobTypeProcessMentions, models.TargetTypeEpisode, "ep_1", CreateOptions{})
	require.NoError(t, err)

	_, err = manager.Patch(ctx, job.ID, StatusPatch{Status: models.JobStatusFailed, ErrorMessage: StrPtr("boom")})
	require.NoError(t, err)

	_, err = manager.Patch(ctx, job.ID, StatusPatch{Status: models.JobStatusRunning})
	require.Error(t, err)

	// Non-status fields still apply without a transition.
	patched, err := manager.Patch(ctx, job.ID, StatusPatch{Progress: IntPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, patched.Progress)
	assert.Equal(t, models.JobStatusFailed, patched.Status)
}

func TestActiveForTarget(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	job, err := manager.Create(ctx, models.JobTypeFetchTranscription, models.TargetTypeEpisode, "ep_1", CreateOptions{})
	require.NoError(t, err)

	active, err := manager.ActiveForTarget(ctx, models.TargetTypeEpisode, "ep_1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, job.ID, active.ID)

	_, err = manager.Patch(ctx, job.ID, StatusPatch{Status: models.JobStatusCancelled})
	require.NoError(t, err)

	active, err = manager.ActiveForTarget(ctx, models.TargetTypeEpisode, "ep_1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestListForTarget(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := manager.Create(ctx, models.JobTypeFetchEpisodes, models.TargetTypeSource, "src_1", CreateOptions{})
		require.NoError(t, err)
	}

	jobs, err := manager.ListForTarget(ctx, models.TargetTypeSource, "src_1", 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
