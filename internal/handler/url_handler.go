package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/paularinzee/URL-Shortner/internal/errors"
	"github.com/paularinzee/URL-Shortner/internal/logger"
	"github.com/paularinzee/URL-Shortner/internal/model"
	"github.com/paularinzee/URL-Shortner/internal/service"
	"github.com/paularinzee/URL-Shortner/internal/shard"
	"github.com/paularinzee/URL-Shortner/internal/validator"
)

// URLHandler handles HTTP requests for URL operations
type URLHandler struct {
	service   *service.URLService
	validator *validator.URLValidator
	log       *logger.Logger
}

// NewURLHandler creates a new handler instance. The validator is taught the
// service's own host so self-referential URLs never reach the service.
func NewURLHandler(svc *service.URLService, baseURL string, log *logger.Logger) *URLHandler {
	return &URLHandler{
		service:   svc,
		validator: validator.NewURLValidator().WithOwnHost(baseURL),
		log:       log,
	}
}

// ============ HANDLERS ============

// HandleShorten creates a new short URL
// POST /shorten
func (h *URLHandler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	// Only accept POST
	if r.Method != http.MethodPost {
		apperrors.BadRequest("Use POST method").WriteJSON(w)
		return
	}

	// Parse JSON body
	var req model.CreateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.InvalidJSON(err.Error()).WriteJSON(w)
		return
	}

	// Validate URL before anything touches a shard
	if appErr := h.validator.ValidateURL(req.URL); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	// Validate custom alias if provided
	if appErr := h.validator.ValidateCustomCode(req.CustomAlias); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	// Call service
	resp, err := h.service.CreateShortURL(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, req.CustomAlias)
		return
	}

	// Success!
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// HandleRedirect redirects to the original URL
// GET /{shortCode}
func (h *URLHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	// Extract short code from path: /abc → abc
	shortCode := strings.TrimPrefix(r.URL.Path, "/")

	// Ignore empty or special paths
	if shortCode == "" || shortCode == "favicon.ico" {
		http.NotFound(w, r)
		return
	}

	// Skip if it's a known route
	if shortCode == "shorten" || shortCode == "health" {
		http.NotFound(w, r)
		return
	}

	// Check if this is a stats request: /abc/stats
	if strings.HasSuffix(shortCode, "/stats") {
		shortCode = strings.TrimSuffix(shortCode, "/stats")
		h.handleStats(w, r, shortCode)
		return
	}

	// Validate short code format
	if appErr := h.validator.ValidateShortCode(shortCode); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	// Explicit delete of a short URL
	if r.Method == http.MethodDelete {
		h.handleDelete(w, r, shortCode)
		return
	}

	// Resolve the short code
	originalURL, err := h.service.Resolve(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			apperrors.URLNotFound(shortCode).WriteJSON(w)
			return
		}
		h.writeServiceError(w, r, err, shortCode)
		return
	}

	// Redirect!
	http.Redirect(w, r, originalURL, http.StatusMovedPermanently)
}

// handleStats returns statistics for a short URL
// GET /{shortCode}/stats
func (h *URLHandler) handleStats(w http.ResponseWriter, r *http.Request, shortCode string) {
	// Stats are read-only
	if r.Method != http.MethodGet {
		apperrors.BadRequest("Use GET method").WriteJSON(w)
		return
	}

	// Validate short code format
	if appErr := h.validator.ValidateShortCode(shortCode); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	stats, err := h.service.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			apperrors.URLNotFound(shortCode).WriteJSON(w)
			return
		}
		h.writeServiceError(w, r, err, shortCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleDelete removes a short URL
// DELETE /{shortCode}
func (h *URLHandler) handleDelete(w http.ResponseWriter, r *http.Request, shortCode string) {
	existed, err := h.service.Delete(r.Context(), shortCode)
	if err != nil {
		h.writeServiceError(w, r, err, shortCode)
		return
	}
	if !existed {
		apperrors.URLNotFound(shortCode).WriteJSON(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth returns aggregate shard health
// GET /health
func (h *URLHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if health.Status != shard.StatusOK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// writeServiceError maps service errors to AppErrors. Backend failures are
// logged with their shard detail but surfaced as a generic server error.
func (h *URLHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, subject string) {
	switch {
	case errors.Is(err, service.ErrEmptyURL):
		apperrors.MissingField("url").WriteJSON(w)
	case errors.Is(err, service.ErrInvalidURL):
		apperrors.InvalidURL("URL must be valid http/https").WriteJSON(w)
	case errors.Is(err, service.ErrInvalidTTL):
		apperrors.InvalidTTL("TTL must be a positive number of seconds within the allowed maximum").WriteJSON(w)
	case errors.Is(err, service.ErrAliasExists):
		apperrors.AliasTaken(subject).WriteJSON(w)
	case errors.Is(err, service.ErrInvalidAlias):
		apperrors.BadRequest("Alias must be 1-50 characters: letters, numbers, hyphens, underscores").WriteJSON(w)
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		apperrors.Backend().WriteJSON(w)
	}
}

// ============ ROUTER SETUP ============

// SetupRoutes configures all HTTP routes
func (h *URLHandler) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Specific routes first
	mux.HandleFunc("/shorten", h.HandleShorten)
	mux.HandleFunc("/health", h.HandleHealth)

	// Catch-all for redirects, stats and deletes (must be last)
	mux.HandleFunc("/", h.HandleRedirect)

	return mux
}
