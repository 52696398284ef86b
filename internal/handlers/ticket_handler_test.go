package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestTicketHandler_Lifecycle(t *testing.T) {
	logger := arbor.NewLogger()
	manager := newTestStorage(t)
	h := NewTicketHandler(tickets.NewService(manager.TicketStorage(), manager.LogRecordStorage(), nil, logger), logger)

	recordID, err := manager.LogRecordStorage().Insert(context.Background(), &models.LogRecord{
		Level:     models.LevelError,
		Message:   "Database Transaction Error: deadlock",
		Timestamp: time.Now(),
		ErrorType: "Database Transaction Error",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.CreateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/tickets",
		strings.NewReader(fmt.Sprintf(`{"title":"Deadlock","error_id":%q,"assigned_to":"usr_dev"}`, recordID))))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Ticket
	decodeBody(t, rec, &created)
	assert.Equal(t, models.TicketStatusOpen, created.Status)

	rec = httptest.NewRecorder()
	h.GetHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tickets/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateHandler(rec, httptest.NewRequest(http.MethodPut, "/api/tickets/"+created.ID,
		strings.NewReader(`{"status":"RESOLVED"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Ticket
	decodeBody(t, rec, &updated)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)

	rec = httptest.NewRecorder()
	h.ListForUserHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tickets/user/usr_dev", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.Ticket
	decodeBody(t, rec, &mine)
	assert.Len(t, mine, 1)

	rec = httptest.NewRecorder()
	h.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTicketHandler_Errors(t *testing.T) {
	logger := arbor.NewLogger()
	manager := newTestStorage(t)
	h := NewTicketHandler(tickets.NewService(manager.TicketStorage(), manager.LogRecordStorage(), nil, logger), logger)

	rec := httptest.NewRecorder()
	h.CreateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(`{"title":"x","error_id":"err_missing"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(`{"error_id":"err_missing"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.GetHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tickets/tkt_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
