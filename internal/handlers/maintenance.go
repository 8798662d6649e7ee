package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fueltrack/fueltrack/internal/db"
	"github.com/fueltrack/fueltrack/internal/middleware"
	"github.com/fueltrack/fueltrack/internal/models"
	"github.com/fueltrack/fueltrack/internal/notify"
)

// MaintenanceHandler serves vehicle maintenance records.
type MaintenanceHandler struct {
	records  db.MaintenanceCollection
	notifier notify.Notifier
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(records db.MaintenanceCollection, notifier notify.Notifier) *MaintenanceHandler {
	return &MaintenanceHandler{records: records, notifier: notifier}
}

// HandleMaintenance serves /api/maintenance (list and create).
func (h *MaintenanceHandler) HandleMaintenance(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		records, err := h.records.ListMaintenance(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Failed to list maintenance records", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []models.MaintenanceRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)

	case http.MethodPost:
		var record models.MaintenanceRecord
		if !decodeBody(w, r, &record) {
			return
		}
		if record.VehicleID == "" || record.MaintenanceType == "" {
			http.Error(w, "Vehicle ID and maintenance type are required", http.StatusBadRequest)
			return
		}
		record.UserID = claims.UserID
		if err := h.records.InsertMaintenance(r.Context(), record); err != nil {
			http.Error(w, "Failed to add maintenance record", http.StatusInternalServerError)
			return
		}
		h.notifier.Publish(claims.UserID, "maintenance_records")
		w.WriteHeader(http.StatusCreated)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMaintenanceByID serves PUT /api/maintenance/{id} for marking
// completion or adjusting cost.
func (h *MaintenanceHandler) HandleMaintenanceByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/maintenance/")
	if id == "" {
		http.Error(w, "Maintenance ID required", http.StatusBadRequest)
		return
	}

	var updates map[string]interface{}
	if !decodeBody(w, r, &updates) {
		return
	}

	allowed := map[string]bool{
		"maintenance_type": true,
		"description":      true,
		"cost":             true,
		"odometer_reading": true,
		"due_date":         true,
		"is_completed":     true,
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

	if err := h.records.PatchMaintenance(r.Context(), id, claims.UserID, fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.notifier.Publish(claims.UserID, "maintenance_records")

	w.WriteHeader(http.StatusNoContent)
}
