package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pawsit/internal/config"
	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/metrics"
	"pawsit/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the marketplace REST API.
type HTTPServer struct {
	cfg    config.APIConfig
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger

	bookings     domain.BookingService
	availability domain.AvailabilityService
	search       domain.SearchService
	messages     domain.MessageService
	reviews      domain.ReviewService
	sitters      domain.SitterService
	owners       domain.OwnerService
	exporter     domain.BookingExporter
}

// Services bundles the service layer for the HTTP server.
type Services struct {
	Bookings     domain.BookingService
	Availability domain.AvailabilityService
	Search       domain.SearchService
	Messages     domain.MessageService
	Reviews      domain.ReviewService
	Sitters      domain.SitterService
	Owners       domain.OwnerService

	// Exporter is optional; the export endpoint answers 503 without it.
	Exporter domain.BookingExporter
}

func NewHTTPServer(cfg config.APIConfig, svcs Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		logger:       logger,
		bookings:     svcs.Bookings,
		availability: svcs.Availability,
		search:       svcs.Search,
		messages:     svcs.Messages,
		reviews:      svcs.Reviews,
		sitters:      svcs.Sitters,
		owners:       svcs.Owners,
		exporter:     svcs.Exporter,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/accept", srv.handleAcceptBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/decline", srv.handleDeclineBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", srv.handleCancelBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/complete", srv.handleCompleteBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}/messages", srv.handleGetConversation)
	mux.HandleFunc("POST /api/v1/bookings/{id}/messages", srv.handleSendMessage)

	mux.HandleFunc("POST /api/v1/messages/{id}/read", srv.handleMarkMessageRead)
	mux.HandleFunc("GET /api/v1/users/{id}/messages/unread", srv.handleUnreadCount)

	mux.HandleFunc("POST /api/v1/reviews", srv.handleCreateReview)
	mux.HandleFunc("GET /api/v1/reviews/{id}", srv.handleGetReview)
	mux.HandleFunc("DELETE /api/v1/reviews/{id}", srv.handleDeleteReview)

	mux.HandleFunc("POST /api/v1/sitters", srv.handleRegisterSitter)
	mux.HandleFunc("GET /api/v1/sitters", srv.handleListSitters)
	mux.HandleFunc("POST /api/v1/sitters/search", srv.handleSearch)
	mux.HandleFunc("GET /api/v1/sitters/{id}", srv.handleGetSitter)
	mux.HandleFunc("PUT /api/v1/sitters/{id}", srv.handleUpdateSitter)
	mux.HandleFunc("GET /api/v1/sitters/{id}/services", srv.handleGetSitterServices)
	mux.HandleFunc("POST /api/v1/sitters/{id}/services", srv.handleAddService)
	mux.HandleFunc("PUT /api/v1/sitters/{id}/services", srv.handleReplaceServices)
	mux.HandleFunc("POST /api/v1/sitters/{id}/photos", srv.handleAddPhoto)
	mux.HandleFunc("DELETE /api/v1/sitters/{id}/photos/{index}", srv.handleRemovePhoto)
	mux.HandleFunc("GET /api/v1/sitters/{id}/availability", srv.handleGetSchedule)
	mux.HandleFunc("PUT /api/v1/sitters/{id}/availability", srv.handleUpdateSchedule)
	mux.HandleFunc("GET /api/v1/sitters/{id}/bookings", srv.handleSitterBookings)
	mux.HandleFunc("GET /api/v1/sitters/{id}/bookings/pending", srv.handlePendingBookings)
	mux.HandleFunc("GET /api/v1/sitters/{id}/reviews", srv.handleSitterReviews)
	mux.HandleFunc("GET /api/v1/sitters/{id}/rating", srv.handleSitterRating)

	mux.HandleFunc("PUT /api/v1/services/{id}", srv.handleUpdateService)
	mux.HandleFunc("DELETE /api/v1/services/{id}", srv.handleRemoveService)

	mux.HandleFunc("POST /api/v1/exports/bookings", srv.handleExportBookings)

	mux.HandleFunc("POST /api/v1/owners", srv.handleRegisterOwner)
	mux.HandleFunc("GET /api/v1/owners/{id}", srv.handleGetOwner)
	mux.HandleFunc("GET /api/v1/owners/{id}/bookings", srv.handleOwnerBookings)
	mux.HandleFunc("GET /api/v1/owners/{id}/pets", srv.handleGetPets)
	mux.HandleFunc("POST /api/v1/owners/{id}/pets", srv.handleAddPet)

	mux.HandleFunc("GET /api/v1/pets/{id}", srv.handleGetPet)
	mux.HandleFunc("PUT /api/v1/pets/{id}", srv.handleUpdatePet)
	mux.HandleFunc("DELETE /api/v1/pets/{id}", srv.handleRemovePet)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.IncHTTP(endpoint)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps service sentinels onto HTTP status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSchedulingConflict),
		errors.Is(err, service.ErrInvalidStateTransition),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, service.ErrMessagingNotAllowed),
		errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
