package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Error logs
	mux.HandleFunc("/api/errors", s.app.ErrorLogHandler.LastDaysHandler) // GET ?lastDays=N
	mux.HandleFunc("/api/errors/upload", s.app.ErrorLogHandler.UploadHandler)
	mux.HandleFunc("/api/errors/all-logs", s.app.ErrorLogHandler.AllLogsHandler)
	mux.HandleFunc("/api/errors/daily-counts", s.app.ErrorLogHandler.DailyCountsHandler)
	mux.HandleFunc("/api/errors/category-stats", s.app.ErrorLogHandler.CategoryStatsHandler)
	mux.HandleFunc("/api/errors/manual", s.app.ErrorLogHandler.ManualErrorHandler)
	mux.HandleFunc("/api/errors/stats", s.app.ErrorLogHandler.LevelStatsHandler)
	mux.HandleFunc("/api/errors/chart-data", s.app.ErrorLogHandler.ChartDataHandler)
	mux.HandleFunc("/api/errors/error-type", s.app.ErrorLogHandler.ErrorTypeCountHandler)

	// API routes - Tickets
	mux.HandleFunc("/api/tickets", s.handleTicketsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/tickets/", s.handleTicketRoutes) // GET /user/{id}, GET/PUT /{id}

	// API routes - AI assist
	mux.HandleFunc("/api/ai-fix", s.app.AIFixHandler.SuggestHandler)

	// API routes - Alert job
	mux.HandleFunc("/api/alerts/status", s.app.AlertHandler.StatusHandler)
	mux.HandleFunc("/api/alerts/run", s.app.AlertHandler.RunHandler)
	mux.HandleFunc("/api/alerts/enable", s.app.AlertHandler.EnableHandler)
	mux.HandleFunc("/api/alerts/disable", s.app.AlertHandler.DisableHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleTicketsRoute routes /api/tickets requests (list and create)
func (s *Server) handleTicketsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.TicketHandler.ListHandler, s.app.TicketHandler.CreateHandler)
}

// handleTicketRoutes routes /api/tickets/user/{id} and /api/tickets/{id}
func (s *Server) handleTicketRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if strings.HasPrefix(path, "/api/tickets/user/") {
		RouteByMethod(w, r, MethodRouter{"GET": s.app.TicketHandler.ListForUserHandler})
		return
	}

	if len(path) > len("/api/tickets/") {
		RouteResourceItem(w, r, s.app.TicketHandler.GetHandler, s.app.TicketHandler.UpdateHandler, nil)
		return
	}

	// Trailing slash only
	s.handleTicketsRoute(w, r)
}
