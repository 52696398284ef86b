package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store}
}

func TestLogRecordInsertAssignsIDAndCreatedAt(t *testing.T) {
	storage := NewLogRecordStorage(openTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	record := &models.LogRecord{Level: "ERROR", Message: "boom", Timestamp: time.Now()}
	id, err := storage.Insert(ctx, record)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, record.CreatedAt.IsZero())

	got, err := storage.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Message)

	_, err = storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestLogRecordWindowAndGrouping(t *testing.T) {
	storage := NewLogRecordStorage(openTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	seed := []models.LogRecord{
		{Level: "ERROR", ErrorType: "NullPointerException", Timestamp: base},
		{Level: "ERROR", ErrorType: "NullPointerException", Timestamp: base.Add(-24 * time.Hour)},
		{Level: "WARN", ErrorType: "Network Timeout Error", Timestamp: base.Add(-48 * time.Hour)},
		{Level: "ERROR", ErrorType: "", Timestamp: base.Add(-10 * 24 * time.Hour)},
	}
	for i := range seed {
		_, err := storage.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}

	inWindow, err := storage.FindByTimeRange(ctx, base.Add(-3*24*time.Hour), base)
	require.NoError(t, err)
	require.Len(t, inWindow, 3)
	assert.Equal(t, base, inWindow[0].Timestamp.UTC(), "newest first")

	all, err := storage.CountGroupedByErrorType(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].ErrorType)
	assert.Equal(t, "NullPointerException", *all[0].ErrorType)
	assert.Equal(t, int64(2), all[0].Count)

	var sawNil bool
	for _, row := range all {
		if row.ErrorType == nil {
			sawNil = true
		}
	}
	assert.True(t, sawNil, "unclassified records group under a nil type")

	daily, err := storage.CountGroupedByDay(ctx, base.Add(-3*24*time.Hour), base, time.UTC)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.True(t, daily[0].Date.Before(daily[1].Date))

	count, err := storage.CountByErrorTypeBetween(ctx, "NullPointerException", base.Add(-time.Hour), base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	levels, err := storage.CountGroupedByLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), levels["ERROR"])
	assert.Equal(t, int64(1), levels["WARN"])

	types, err := storage.DistinctErrorTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Network Timeout Error", "NullPointerException"}, types)
}

func TestFindLinkedToTicketsWithStatus(t *testing.T) {
	db := openTestDB(t)
	logger := arbor.NewLogger()
	records := NewLogRecordStorage(db, logger)
	tickets := NewTicketStorage(db, logger)
	ctx := context.Background()

	open := &models.LogRecord{Level: "ERROR", ErrorType: "A", Timestamp: time.Now()}
	closed := &models.LogRecord{Level: "ERROR", ErrorType: "B", Timestamp: time.Now()}
	unlinked := &models.LogRecord{Level: "ERROR", ErrorType: "C", Timestamp: time.Now()}
	for _, r := range []*models.LogRecord{open, closed, unlinked} {
		_, err := records.Insert(ctx, r)
		require.NoError(t, err)
	}

	require.NoError(t, tickets.Save(ctx, &models.Ticket{ID: "t-open", Title: "a", Status: models.TicketStatusOpen}))
	require.NoError(t, tickets.Save(ctx, &models.Ticket{ID: "t-closed", Title: "b", Status: models.TicketStatusClosed}))
	require.NoError(t, records.LinkTicket(ctx, open.ID, "t-open"))
	require.NoError(t, records.LinkTicket(ctx, closed.ID, "t-closed"))

	linked, err := records.FindLinkedToTicketsWithStatus(ctx, models.TicketStatusOpen)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "A", linked[0].ErrorType)

	err = records.LinkTicket(ctx, "missing", "t-open")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestTicketListByAssigneeOrReviewer(t *testing.T) {
	tickets := NewTicketStorage(openTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, tickets.Save(ctx, &models.Ticket{ID: "1", AssignedTo: "u1", Status: models.TicketStatusOpen}))
	require.NoError(t, tickets.Save(ctx, &models.Ticket{ID: "2", Reviewer: "u1", Status: models.TicketStatusOpen}))
	require.NoError(t, tickets.Save(ctx, &models.Ticket{ID: "3", AssignedTo: "u2", Status: models.TicketStatusOpen}))

	mine, err := tickets.ListByAssigneeOrReviewer(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = tickets.Get(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestLoadUsersFromFile(t *testing.T) {
	users := NewUserStorage(openTestDB(t), arbor.NewLogger())
	ctx := context.Background()
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "users.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[[users]]
id = "u-1"
name = "Asha"
email = "asha@example.com"
role = "ADMIN"

[[users]]
id = "u-2"
name = "Ravi"
role = "DEVELOPER"
`), 0o644))

	count, err := LoadUsersFromFile(ctx, users, tomlPath, arbor.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	yamlPath := filepath.Join(dir, "more.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
users:
  - id: u-3
    name: Meera
    email: "   "
    role: ADMIN
`), 0o644))

	count, err = LoadUsersFromFile(ctx, users, yamlPath, arbor.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	admins, err := users.FindAllByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 2)

	var usable int
	for _, admin := range admins {
		if _, ok := admin.ContactEmail(); ok {
			usable++
		}
	}
	assert.Equal(t, 1, usable)

	count, err = LoadUsersFromFile(ctx, users, filepath.Join(dir, "absent.toml"), arbor.NewLogger())
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = LoadUsersFromFile(ctx, users, filepath.Join(dir, "users.json"), arbor.NewLogger())
	assert.NoError(t, err, "missing file is checked before format")
}
