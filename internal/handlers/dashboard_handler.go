package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Serena-AI862/Serena/internal/models"
	"github.com/Serena-AI862/Serena/internal/services"
	"github.com/Serena-AI862/Serena/internal/store"
)

// DashboardHandler serves the authenticated call and analytics endpoints.
type DashboardHandler struct {
	store     *store.Store
	stats     *services.StatsService
	validator *services.ValidationHelper
}

func NewDashboardHandler(st *store.Store, stats *services.StatsService) *DashboardHandler {
	return &DashboardHandler{
		store:     st,
		stats:     stats,
		validator: services.NewValidationHelper(),
	}
}

func userIDFrom(r *http.Request) (int, bool) {
	userID, ok := r.Context().Value("userID").(int)
	return userID, ok
}

// GetCalls lists the user's calls
// @Summary List calls
// @Description All calls for the authenticated user, newest first
// @Tags calls
// @Produce json
// @Success 200 {array} models.Call
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /api/calls [get]
func (h *DashboardHandler) GetCalls(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	calls, err := h.store.GetCalls(r.Context(), userID)
	if err != nil {
		log.Printf("[CALLS] Failed to fetch calls for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, calls)
}

// CreateCallRequest is the payload for recording a call.
type CreateCallRequest struct {
	PhoneNumber       string     `json:"phoneNumber" validate:"required"`
	DurationSeconds   int        `json:"durationSeconds" validate:"gte=0"`
	CallType          string     `json:"callType" validate:"required,oneof=inbound outbound"`
	AppointmentBooked bool       `json:"appointmentBooked"`
	Rating            int        `json:"rating" validate:"required,gte=1,lte=5"`
	Timestamp         *time.Time `json:"timestamp"`
	Notes             *string    `json:"notes"`
}

// CreateCall records a call
// @Summary Record a call
// @Description Store a call row for the authenticated user
// @Tags calls
// @Accept json
// @Produce json
// @Param request body CreateCallRequest true "Call data"
// @Success 201 {object} models.Call
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /api/calls [post]
func (h *DashboardHandler) CreateCall(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CreateCallRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	call, err := h.store.CreateCall(r.Context(), models.Call{
		UserID:            userID,
		PhoneNumber:       req.PhoneNumber,
		DurationSeconds:   req.DurationSeconds,
		CallType:          req.CallType,
		AppointmentBooked: req.AppointmentBooked,
		Rating:            req.Rating,
		Timestamp:         ts,
		Notes:             req.Notes,
	})
	if err != nil {
		log.Printf("[CALLS] Failed to create call for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusCreated, call)
}

// GetStats returns the weekly analytics summary
// @Summary Weekly call statistics
// @Description Aggregated stats over the trailing 7-day window
// @Tags stats
// @Produce json
// @Success 200 {object} models.WeeklyStats
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /api/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	stats, err := h.stats.WeeklyStatsFor(r.Context(), userID)
	if err != nil {
		log.Printf("[STATS] Failed to compute stats for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, stats)
}

// GetDashboard bundles user, stats and calls in one response
// @Summary Dashboard payload
// @Description Authenticated user record, weekly stats and call list
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		log.Printf("[DASHBOARD] Failed to fetch user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	if user == nil {
		services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	stats, err := h.stats.WeeklyStatsFor(r.Context(), userID)
	if err != nil {
		log.Printf("[DASHBOARD] Failed to compute stats for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	calls, err := h.store.GetCalls(r.Context(), userID)
	if err != nil {
		log.Printf("[DASHBOARD] Failed to fetch calls for user %d: %v", userID, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"stats": stats,
		"calls": calls,
	})
}
