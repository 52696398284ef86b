package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// MockLogRecordStorage overrides the queries the alert job issues
type MockLogRecordStorage struct {
	interfaces.LogRecordStorage
	mock.Mock
}

func (m *MockLogRecordStorage) DistinctErrorTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLogRecordStorage) CountByErrorType(ctx context.Context, errorType string) (int64, error) {
	args := m.Called(ctx, errorType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRecordStorage) FindLinkedToTicketsWithStatus(ctx context.Context, status models.TicketStatus) ([]*models.LogRecord, error) {
	args := m.Called(ctx, status)
	if v := args.Get(0); v != nil {
		return v.([]*models.LogRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserStorage overrides the admin lookup
type MockUserStorage struct {
	interfaces.UserStorage
	mock.Mock
}

func (m *MockUserStorage) FindAllByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if v := args.Get(0); v != nil {
		return v.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier records sends
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

func (m *MockNotifier) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return m.Called(ctx, to, subject, htmlBody, textBody).Error(0)
}

func (m *MockNotifier) IsConfigured() bool {
	return m.Called().Bool(0)
}

func strPtr(s string) *string { return &s }

type fixture struct {
	records  *MockLogRecordStorage
	users    *MockUserStorage
	notifier *MockNotifier
	job      *Job
}

func newFixture(t *testing.T, enabled bool) *fixture {
	t.Helper()
	f := &fixture{
		records:  &MockLogRecordStorage{},
		users:    &MockUserStorage{},
		notifier: &MockNotifier{},
	}
	cfg := common.AlertConfig{
		Enabled:         enabled,
		Threshold:       10,
		ApplicationName: "Log Analyzer",
	}
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	f.job = NewJob(f.records, f.users, f.notifier, nil, cfg, loc, arbor.NewLogger())
	f.job.now = func() time.Time { return time.Date(2025, 3, 1, 3, 30, 0, 0, time.UTC) }
	return f
}

func linked(types ...string) []*models.LogRecord {
	records := make([]*models.LogRecord, 0, len(types))
	for i, et := range types {
		records = append(records, &models.LogRecord{ID: "err_" + et, ErrorType: et, LinkedTicketID: "tkt_" + string(rune('a'+i))})
	}
	return records
}

func TestRun_RequiresThresholdAndOpenTicket(t *testing.T) {
	f := newFixture(t, true)
	ctx := mock.Anything

	f.records.On("DistinctErrorTypes", ctx).Return([]string{"A", "B", "C"}, nil)
	f.records.On("CountByErrorType", ctx, "A").Return(int64(11), nil)
	f.records.On("CountByErrorType", ctx, "B").Return(int64(50), nil)
	f.records.On("CountByErrorType", ctx, "C").Return(int64(10), nil)
	// B exceeds but has no open ticket, C has an open ticket but does not exceed
	f.records.On("FindLinkedToTicketsWithStatus", ctx, models.TicketStatusOpen).Return(linked("A", "C"), nil)
	f.users.On("FindAllByRole", ctx, models.RoleAdmin).Return([]*models.User{{ID: "usr_1", Email: strPtr("a@x.com"), Role: models.RoleAdmin}}, nil)
	f.notifier.On("SendHTMLEmail", ctx, "a@x.com", defaultSubject, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	result := f.job.Run(context.Background())

	assert.Equal(t, StageSent, result.Stage)
	require.Len(t, result.Types, 1)
	assert.Equal(t, models.AlertTypeCount{ErrorType: "A", Count: 11}, result.Types[0])
	assert.Equal(t, int64(11), result.Total)
	assert.Equal(t, 1, result.Sent)

	html := f.notifier.Calls[0].Arguments.String(3)
	assert.Contains(t, html, "Log Analyzer")
	assert.Contains(t, html, "A")
	assert.NotContains(t, html, ">B<")
	f.notifier.AssertNumberOfCalls(t, "SendHTMLEmail", 1)
}

func TestRun_NothingOverThresholdStops(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"A"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "A").Return(int64(10), nil)

	result := f.job.Run(context.Background())

	assert.Equal(t, StageBelowThreshold, result.Stage)
	f.records.AssertNotCalled(t, "FindLinkedToTicketsWithStatus", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "SendHTMLEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_NoOpenTicketsStops(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"A"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "A").Return(int64(20), nil)
	f.records.On("FindLinkedToTicketsWithStatus", mock.Anything, models.TicketStatusOpen).Return([]*models.LogRecord{}, nil)

	result := f.job.Run(context.Background())

	assert.Equal(t, StageNoOpenTickets, result.Stage)
	f.users.AssertNotCalled(t, "FindAllByRole", mock.Anything, mock.Anything)
}

func TestRun_SkipsBlankAdminEmails(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"A"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "A").Return(int64(20), nil)
	f.records.On("FindLinkedToTicketsWithStatus", mock.Anything, models.TicketStatusOpen).Return(linked("A"), nil)
	f.users.On("FindAllByRole", mock.Anything, models.RoleAdmin).Return([]*models.User{
		{ID: "usr_1", Email: strPtr("a@x.com")},
		{ID: "usr_2", Email: nil},
		{ID: "usr_3", Email: strPtr("   ")},
		{ID: "usr_4", Email: strPtr("b@x.com")},
	}, nil)
	f.notifier.On("SendHTMLEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := f.job.Run(context.Background())

	f.notifier.AssertNumberOfCalls(t, "SendHTMLEmail", 2)
	f.notifier.AssertCalled(t, "SendHTMLEmail", mock.Anything, "a@x.com", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertCalled(t, "SendHTMLEmail", mock.Anything, "b@x.com", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, result.Recipients)
	assert.Equal(t, 2, result.Sent)
}

func TestRun_NoAdminsStops(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"A"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "A").Return(int64(20), nil)
	f.records.On("FindLinkedToTicketsWithStatus", mock.Anything, models.TicketStatusOpen).Return(linked("A"), nil)
	f.users.On("FindAllByRole", mock.Anything, models.RoleAdmin).Return([]*models.User{{ID: "usr_2"}}, nil)

	result := f.job.Run(context.Background())

	assert.Equal(t, StageNoRecipients, result.Stage)
	f.notifier.AssertNotCalled(t, "SendHTMLEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_StorageFailureIsContained(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return(nil, errors.New("disk gone"))

	var result *models.AlertRunResult
	assert.NotPanics(t, func() { result = f.job.Run(context.Background()) })

	assert.Equal(t, StageFailed, result.Stage)
	assert.Contains(t, result.Error, "disk gone")
	f.notifier.AssertNotCalled(t, "SendHTMLEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, f.job.Handler()())
}

func TestRun_PanicIsRecovered(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Run(func(mock.Arguments) { panic("corrupt index") }).Return(nil, nil)

	var result *models.AlertRunResult
	assert.NotPanics(t, func() { result = f.job.Run(context.Background()) })
	assert.Equal(t, StageFailed, result.Stage)
	assert.Contains(t, result.Error, "corrupt index")
}

func TestRun_DisabledMakesNoCalls(t *testing.T) {
	f := newFixture(t, false)

	result := f.job.Run(context.Background())

	assert.True(t, result.Skipped)
	assert.Equal(t, StageDisabled, result.Stage)
	assert.Empty(t, f.records.Calls)
	assert.Empty(t, f.users.Calls)
	assert.Empty(t, f.notifier.Calls)
}

func TestRun_GateIsCheckedEachRun(t *testing.T) {
	f := newFixture(t, false)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{}, nil)

	assert.Equal(t, StageDisabled, f.job.Run(context.Background()).Stage)

	f.job.SetEnabled(true)
	assert.Equal(t, StageBelowThreshold, f.job.Run(context.Background()).Stage)
	assert.Equal(t, StageBelowThreshold, f.job.LastResult().Stage)
}

func TestRun_SendFailureDoesNotStopOtherRecipients(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"A"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "A").Return(int64(20), nil)
	f.records.On("FindLinkedToTicketsWithStatus", mock.Anything, models.TicketStatusOpen).Return(linked("A"), nil)
	f.users.On("FindAllByRole", mock.Anything, models.RoleAdmin).Return([]*models.User{
		{ID: "usr_1", Email: strPtr("a@x.com")},
		{ID: "usr_2", Email: strPtr("b@x.com")},
	}, nil)
	f.notifier.On("SendHTMLEmail", mock.Anything, "a@x.com", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailbox full"))
	f.notifier.On("SendHTMLEmail", mock.Anything, "b@x.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := f.job.Run(context.Background())

	assert.Equal(t, StageSent, result.Stage)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	f.notifier.AssertNumberOfCalls(t, "SendHTMLEmail", 2)
}

func TestRun_TypesSortedByCountThenName(t *testing.T) {
	f := newFixture(t, true)
	f.records.On("DistinctErrorTypes", mock.Anything).Return([]string{"Beta", "Alpha", "Gamma"}, nil)
	f.records.On("CountByErrorType", mock.Anything, "Alpha").Return(int64(15), nil)
	f.records.On("CountByErrorType", mock.Anything, "Beta").Return(int64(15), nil)
	f.records.On("CountByErrorType", mock.Anything, "Gamma").Return(int64(40), nil)
	f.records.On("FindLinkedToTicketsWithStatus", mock.Anything, models.TicketStatusOpen).Return(linked("Alpha", "Beta", "Gamma"), nil)
	f.users.On("FindAllByRole", mock.Anything, models.RoleAdmin).Return([]*models.User{{ID: "usr_1", Email: strPtr("a@x.com")}}, nil)
	f.notifier.On("SendHTMLEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := f.job.Run(context.Background())

	require.Len(t, result.Types, 3)
	assert.Equal(t, "Gamma", result.Types[0].ErrorType)
	assert.Equal(t, "Alpha", result.Types[1].ErrorType)
	assert.Equal(t, "Beta", result.Types[2].ErrorType)
	assert.Equal(t, int64(70), result.Total)

	text := f.notifier.Calls[0].Arguments.String(4)
	assert.Contains(t, text, "Total: 70")
	assert.Contains(t, text, "threshold of 10")
}
