package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// MockSchedulerService overrides the scheduler calls the alert handler makes
type MockSchedulerService struct {
	interfaces.SchedulerService
	mock.Mock
}

func (m *MockSchedulerService) TriggerJob(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockSchedulerService) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	args := m.Called(name)
	if v := args.Get(0); v != nil {
		return v.(*interfaces.JobStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubAlertJob struct {
	enabled bool
	last    *models.AlertRunResult
}

func (s *stubAlertJob) Enabled() bool { return s.enabled }
func (s *stubAlertJob) SetEnabled(enabled bool) { s.enabled = enabled }
func (s *stubAlertJob) LastResult() *models.AlertRunResult { return s.last }

func TestAlertHandler(t *testing.T) {
	scheduler := &MockSchedulerService{}
	job := &stubAlertJob{enabled: true, last: &models.AlertRunResult{Stage: "sent", Sent: 2}}
	h := NewAlertHandler(job, scheduler, "error_alert", arbor.NewLogger())

	scheduler.On("GetJobStatus", "error_alert").Return(&interfaces.JobStatus{Name: "error_alert", Schedule: "0 9 * * *", Timezone: "Asia/Kolkata"}, nil)
	rec := httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/api/alerts/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	decodeBody(t, rec, &status)
	assert.Equal(t, true, status["enabled"])
	assert.NotNil(t, status["last_result"])

	rec = httptest.NewRecorder()
	h.DisableHandler(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/disable", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, job.enabled)

	rec = httptest.NewRecorder()
	h.EnableHandler(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/enable", nil))
	assert.True(t, job.enabled)

	scheduler.On("TriggerJob", "error_alert").Return(nil).Once()
	rec = httptest.NewRecorder()
	h.RunHandler(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/run", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	scheduler.On("TriggerJob", "error_alert").Return(errors.New("job error_alert is already running")).Once()
	rec = httptest.NewRecorder()
	h.RunHandler(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/run", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
