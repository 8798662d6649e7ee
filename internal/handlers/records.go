package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fueltrack/fueltrack/internal/db"
	"github.com/fueltrack/fueltrack/internal/middleware"
	"github.com/fueltrack/fueltrack/internal/models"
	"github.com/fueltrack/fueltrack/internal/notify"
)

// FuelRecordHandler serves the legacy fuel history log.
type FuelRecordHandler struct {
	records  db.FuelRecordCollection
	notifier notify.Notifier
}

// NewFuelRecordHandler creates a new fuel record handler
func NewFuelRecordHandler(records db.FuelRecordCollection, notifier notify.Notifier) *FuelRecordHandler {
	return &FuelRecordHandler{records: records, notifier: notifier}
}

// HandleRecords serves /api/fuel-records (list and append).
func (h *FuelRecordHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		records, err := h.records.ListFuelRecords(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Failed to list fuel records", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []models.FuelRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)

	case http.MethodPost:
		var init models.FuelRecordInit
		if !decodeBody(w, r, &init) {
			return
		}
		record := models.FuelRecord{
			UserID:           claims.UserID,
			VehicleID:        init.VehicleID,
			OdometerReading:  init.OdometerReading,
			PetrolLeft:       init.PetrolLeft,
			EstimatedMileage: init.EstimatedMileage,
			IsReserve:        init.IsReserve,
			DistanceTraveled: init.DistanceTraveled,
			PetrolUsed:       init.PetrolUsed,
		}
		if err := h.records.AppendFuelRecord(r.Context(), record); err != nil {
			http.Error(w, "Failed to append fuel record", http.StatusInternalServerError)
			return
		}
		h.notifier.Publish(claims.UserID, "fuel_records")
		w.WriteHeader(http.StatusCreated)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// recordPatchableFields is the whitelist for amending the latest record.
var recordPatchableFields = map[string]bool{
	"odometer_reading":  true,
	"petrol_left":       true,
	"estimated_mileage": true,
	"is_reserve":        true,
	"distance_traveled": true,
	"petrol_used":       true,
}

// HandleLatest serves PATCH /api/fuel-records/latest. Legacy flow: amends
// the newest record in place instead of appending a new one.
func (h *FuelRecordHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var updates map[string]interface{}
	if !decodeBody(w, r, &updates) {
		return
	}

	fields := make(map[string]interface{})
	for k, v := range updates {
		if recordPatchableFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.records.PatchLatestFuelRecord(r.Context(), claims.UserID, fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.notifier.Publish(claims.UserID, "fuel_records")

	w.WriteHeader(http.StatusNoContent)
}
