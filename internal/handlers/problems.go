package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fueltrack/fueltrack/internal/db"
	"github.com/fueltrack/fueltrack/internal/middleware"
	"github.com/fueltrack/fueltrack/internal/models"
	"github.com/fueltrack/fueltrack/internal/notify"
)

// ProblemHandler serves vehicle problem reports.
type ProblemHandler struct {
	problems db.ProblemCollection
	notifier notify.Notifier
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(problems db.ProblemCollection, notifier notify.Notifier) *ProblemHandler {
	return &ProblemHandler{problems: problems, notifier: notifier}
}

// HandleProblems serves /api/problems (list and create).
func (h *ProblemHandler) HandleProblems(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		problems, err := h.problems.ListProblems(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Failed to list problems", http.StatusInternalServerError)
			return
		}
		if problems == nil {
			problems = []models.VehicleProblem{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(problems)

	case http.MethodPost:
		var problem models.VehicleProblem
		if !decodeBody(w, r, &problem) {
			return
		}
		if problem.VehicleID == "" || problem.Title == "" {
			http.Error(w, "Vehicle ID and title are required", http.StatusBadRequest)
			return
		}
		problem.UserID = claims.UserID
		problem.Status = models.ProblemOpen
		if err := h.problems.InsertProblem(r.Context(), problem); err != nil {
			http.Error(w, "Failed to report problem", http.StatusInternalServerError)
			return
		}
		h.notifier.Publish(claims.UserID, "vehicle_problems")
		w.WriteHeader(http.StatusCreated)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleProblemByID serves PUT /api/problems/{id}, mainly for resolving.
func (h *ProblemHandler) HandleProblemByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/problems/")
	if id == "" {
		http.Error(w, "Problem ID required", http.StatusBadRequest)
		return
	}

	var updates map[string]interface{}
	if !decodeBody(w, r, &updates) {
		return
	}

	allowed := map[string]bool{
		"title":          true,
		"description":    true,
		"severity":       true,
		"status":         true,
		"estimated_cost": true,
	}
	fields := make(map[string]interface{})
	for k, v := range updates {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}
	if status, ok := fields["status"]; ok && status == string(models.ProblemResolved) {
		fields["resolved_at"] = time.Now()
	}

	if err := h.problems.PatchProblem(r.Context(), id, claims.UserID, fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.notifier.Publish(claims.UserID, "vehicle_problems")

	w.WriteHeader(http.StatusNoContent)
}
