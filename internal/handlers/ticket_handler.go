package handlers

import (
	"errors"
	"net/http"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/tickets"
	"github.com/ternarybob/arbor"
)

// TicketHandler serves ticket endpoints
type TicketHandler struct {
	tickets *tickets.Service
	logger  arbor.ILogger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *tickets.Service, logger arbor.ILogger) *TicketHandler {
	return &TicketHandler{
		tickets: ticketService,
		logger:  logger,
	}
}

// CreateHandler opens a ticket against an error record
func (h *TicketHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req tickets.CreateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.tickets.Create(r.Context(), &req)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ticket)
}

// ListHandler returns all tickets
func (h *TicketHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	list, err := h.tickets.List(r.Context())
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// ListForUserHandler returns tickets assigned to or reviewed by /api/tickets/user/{id}
func (h *TicketHandler) ListForUserHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	userID := PathID(r, "/api/tickets/user/")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "user id is required")
		return
	}

	list, err := h.tickets.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// GetHandler returns /api/tickets/{id}
func (h *TicketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticket, err := h.tickets.Get(r.Context(), PathID(r, "/api/tickets/"))
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ticket)
}

// UpdateHandler applies a partial update to /api/tickets/{id}
func (h *TicketHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req tickets.UpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.tickets.Update(r.Context(), PathID(r, "/api/tickets/"), &req)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tickets.ErrTicketNotFound), errors.Is(err, tickets.ErrRecordNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tickets.ErrInvalidTicket):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Ticket request failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
