package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
)

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) SweepAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func enabledConfig() common.VersionsConfig {
	return common.VersionsConfig{SweepEnabled: true, SweepSchedule: "0 3 * * *", MaxVersions: 100, RetentionDays: 30}
}

func TestRunSweepRecordsStatus(t *testing.T) {
	sweeper := new(mockSweeper)
	sweeper.On("SweepAll", mock.Anything).Return(7, nil).Once()
	sweeper.On("SweepAll", mock.Anything).Return(0, errors.New("disk full")).Once()

	svc := NewService(sweeper, enabledConfig(), arbor.NewLogger())

	deleted, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
	status := svc.Status()
	assert.Equal(t, 7, status.LastDeleted)
	assert.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastError)

	_, err = svc.RunSweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "disk full", svc.Status().LastError)

	sweeper.AssertExpectations(t)
}

func TestRunSweepRefusesOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	sweeper := new(mockSweeper)
	sweeper.On("SweepAll", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(1, nil).Once()

	svc := NewService(sweeper, enabledConfig(), arbor.NewLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.RunSweep(context.Background())
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not start")
	}

	assert.True(t, svc.Status().Running)
	_, err := svc.RunSweep(context.Background())
	assert.ErrorIs(t, err, ErrSweepRunning)

	close(release)
	wg.Wait()
	assert.False(t, svc.Status().Running)
	sweeper.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	svc := NewService(new(mockSweeper), enabledConfig(), arbor.NewLogger())

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())
	status := svc.Status()
	require.NotNil(t, status.NextRun)
	assert.Equal(t, 3, status.NextRun.Hour())
	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}

func TestRestartAfterStopRunsWithLiveContext(t *testing.T) {
	sweeper := new(mockSweeper)
	var ctxErr error
	sweeper.On("SweepAll", mock.Anything).Run(func(args mock.Arguments) {
		ctxErr = args.Get(0).(context.Context).Err()
	}).Return(2, nil).Once()

	svc := NewService(sweeper, enabledConfig(), arbor.NewLogger())
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Start())
	defer svc.Stop()

	entries := svc.cron.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()

	assert.NoError(t, ctxErr)
	assert.Equal(t, 2, svc.Status().LastDeleted)
	sweeper.AssertExpectations(t)
}

func TestStartDisabledOrInvalid(t *testing.T) {
	config := enabledConfig()
	config.SweepEnabled = false
	assert.NoError(t, NewService(new(mockSweeper), config, arbor.NewLogger()).Start())

	config = enabledConfig()
	config.SweepSchedule = "* * * * *"
	assert.Error(t, NewService(new(mockSweeper), config, arbor.NewLogger()).Start())
}
