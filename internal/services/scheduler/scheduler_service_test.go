package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestScheduler(t *testing.T) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return NewService(loc, arbor.NewLogger())
}

func TestRegisterJob_Validation(t *testing.T) {
	s := newTestScheduler(t)

	assert.Error(t, s.RegisterJob("bad", "not cron", "", func() error { return nil }))
	assert.Error(t, s.RegisterJob("nil", "0 9 * * *", "", nil))

	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error { return nil }))
	assert.Error(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error { return nil }), "duplicate name")
}

func TestGetJobStatus_NextRunInLocation(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error { return nil }))
	require.NoError(t, s.Start())
	defer s.Stop()

	status, err := s.GetJobStatus("alert")
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, "Asia/Kolkata", status.Timezone)
	require.NotNil(t, status.NextRun)

	next := status.NextRun.In(s.location)
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 0, next.Minute())

	_, err = s.GetJobStatus("missing")
	assert.Error(t, err)
}

func TestEnableDisableJob(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error { return nil }))

	require.NoError(t, s.DisableJob("alert"))
	status, err := s.GetJobStatus("alert")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)

	require.NoError(t, s.EnableJob("alert"))
	status, err = s.GetJobStatus("alert")
	require.NoError(t, err)
	assert.True(t, status.Enabled)

	assert.Error(t, s.EnableJob("missing"))
	assert.Error(t, s.DisableJob("missing"))
}

func TestTriggerJob_RecordsResult(t *testing.T) {
	s := newTestScheduler(t)
	var calls int32
	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error {
		atomic.AddInt32(&calls, 1)
		return errors.New("smtp down")
	}))

	require.NoError(t, s.TriggerJob("alert"))
	s.wg.Wait()

	status, err := s.GetJobStatus("alert")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "smtp down", status.LastError)
	assert.NotNil(t, status.LastRun)
	assert.False(t, status.IsRunning)

	assert.Error(t, s.TriggerJob("missing"))
}

func TestExecuteJob_RecoversPanic(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error {
		panic("boom")
	}))

	assert.NotPanics(t, func() { s.executeJob("alert") })

	status, err := s.GetJobStatus("alert")
	require.NoError(t, err)
	assert.Contains(t, status.LastError, "panic: boom")
	assert.False(t, status.IsRunning)
}

func TestExecuteJob_SkipsWhileRunning(t *testing.T) {
	s := newTestScheduler(t)
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	require.NoError(t, s.RegisterJob("alert", "0 9 * * *", "daily", func() error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return nil
	}))

	require.NoError(t, s.TriggerJob("alert"))
	<-started

	s.executeJob("alert")
	assert.Error(t, s.TriggerJob("alert"), "trigger refused while running")

	close(release)
	s.wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}
