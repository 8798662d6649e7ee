package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fueltrack/fueltrack/internal/db"
	"github.com/fueltrack/fueltrack/internal/estimator"
	"github.com/fueltrack/fueltrack/internal/middleware"
	"github.com/fueltrack/fueltrack/internal/models"
	"github.com/fueltrack/fueltrack/internal/notify"
)

// VehicleHandler handles vehicle CRUD and the fuel-tracking operations.
type VehicleHandler struct {
	vehicles    db.VehicleCollection
	fuelRecords db.FuelRecordCollection
	notifier    notify.Notifier
	now         func() time.Time
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, fuelRecords db.FuelRecordCollection, notifier notify.Notifier) *VehicleHandler {
	return &VehicleHandler{
		vehicles:    vehicles,
		fuelRecords: fuelRecords,
		notifier:    notifier,
		now:         time.Now,
	}
}

// HandleVehicles serves /api/vehicles (list and create).
func (h *VehicleHandler) HandleVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.listVehicles(w, r, claims.UserID)
	case http.MethodPost:
		h.createVehicle(w, r, claims.UserID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleVehicle serves /api/vehicles/{id} and /api/vehicles/{id}/{operation}.
func (h *VehicleHandler) HandleVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		http.Error(w, "Vehicle ID required", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPut:
			h.patchVehicle(w, r, id, claims.UserID)
		case http.MethodDelete:
			h.deleteVehicle(w, r, id, claims.UserID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch parts[1] {
	case "fuel":
		h.addFuel(w, r, id, claims.UserID)
	case "odometer":
		h.updateOdometer(w, r, id, claims.UserID)
	case "reserve":
		h.setReserve(w, r, id, claims.UserID)
	case "tank-full":
		h.tankFull(w, r, id, claims.UserID)
	default:
		http.Error(w, "Unknown operation", http.StatusNotFound)
	}
}

func (h *VehicleHandler) listVehicles(w http.ResponseWriter, r *http.Request, userID string) {
	vehicles, err := h.vehicles.ListVehicles(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

func (h *VehicleHandler) createVehicle(w http.ResponseWriter, r *http.Request, userID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var init models.VehicleInit
	if err := json.Unmarshal(body, &init); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if init.VehicleNumber == "" {
		http.Error(w, "Vehicle number is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidVehicleType(init.VehicleType) {
		http.Error(w, "Invalid vehicle type", http.StatusBadRequest)
		return
	}
	if init.Mileage <= 0 {
		http.Error(w, "Mileage must be greater than zero", http.StatusBadRequest)
		return
	}
	if init.TankCapacity <= 0 {
		http.Error(w, "Tank capacity must be greater than zero", http.StatusBadRequest)
		return
	}
	if !init.HasReserveTank {
		init.ReserveTankCapacity = 0
	} else if init.ReserveTankCapacity <= 0 || init.ReserveTankCapacity >= init.TankCapacity {
		http.Error(w, "Reserve capacity must be positive and less than tank capacity", http.StatusBadRequest)
		return
	}
	if init.CurrentFuelLevel < 0 || init.CurrentFuelLevel > init.TankCapacity {
		http.Error(w, "Fuel level must be between zero and tank capacity", http.StatusBadRequest)
		return
	}
	if init.CurrentOdometer < 0 {
		http.Error(w, "Odometer cannot be negative", http.StatusBadRequest)
		return
	}

	vehicle := models.Vehicle{
		ID:                  primitive.NewObjectID(),
		UserID:              userID,
		VehicleNumber:       init.VehicleNumber,
		VehicleType:         init.VehicleType,
		Mileage:             init.Mileage,
		HasReserveTank:      init.HasReserveTank,
		ReserveTankCapacity: init.ReserveTankCapacity,
		TankCapacity:        init.TankCapacity,
		CurrentOdometer:     init.CurrentOdometer,
		CurrentFuelLevel:    init.CurrentFuelLevel,
		IsOnReserve:         init.IsOnReserve,
		CalculationMethod:   models.MethodManual,
	}

	created, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}
	h.notifier.Publish(userID, "vehicles")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// patchableFields is the whitelist for the generic vehicle update endpoint.
var patchableFields = map[string]bool{
	"vehicle_number":             true,
	"mileage":                    true,
	"has_reserve_tank":           true,
	"reserve_tank_capacity":      true,
	"tank_capacity":              true,
	"current_odometer":           true,
	"current_fuel_level":         true,
	"is_on_reserve":              true,
	"mileage_calculation_method": true,
}

func (h *VehicleHandler) patchVehicle(w http.ResponseWriter, r *http.Request, id, userID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var updates map[string]interface{}
	if err := json.Unmarshal(body, &updates); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]interface{})
	for k, v := range updates {
		if patchableFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.vehicles.PatchVehicle(r.Context(), id, userID, fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.notifier.Publish(userID, "vehicles")

	w.WriteHeader(http.StatusNoContent)
}

func (h *VehicleHandler) deleteVehicle(w http.ResponseWriter, r *http.Request, id, userID string) {
	if err := h.vehicles.DeleteVehicle(r.Context(), id, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	h.notifier.Publish(userID, "vehicles")

	w.WriteHeader(http.StatusNoContent)
}

type addFuelRequest struct {
	Amount float64 `json:"amount"`
}

func (h *VehicleHandler) addFuel(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req addFuelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	patch, err := estimator.AddFuel(*vehicle, req.Amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.commitPatch(w, r, vehicle, patch, "")
}

type odometerRequest struct {
	Reading float64 `json:"reading"`
}

func (h *VehicleHandler) updateOdometer(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req odometerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	patch, err := estimator.UpdateOdometer(*vehicle, req.Reading)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.commitPatch(w, r, vehicle, patch, "")
}

type reserveRequest struct {
	Odometer float64 `json:"odometer"`
}

func (h *VehicleHandler) setReserve(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req reserveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	patch, err := estimator.SetReserve(*vehicle, req.Odometer, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.commitPatch(w, r, vehicle, patch, "")
}

type tankFullRequest struct {
	Odometer  float64 `json:"odometer"`
	FuelAdded float64 `json:"fuel_added"`
}

func (h *VehicleHandler) tankFull(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req tankFullRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	patch, warning, err := estimator.TankFull(*vehicle, req.Odometer, req.FuelAdded, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if warning != "" {
		log.WithFields(log.Fields{
			"vehicle":    vehicle.VehicleNumber,
			"fuel_added": req.FuelAdded,
		}).Warn(warning)
	}

	h.commitPatch(w, r, vehicle, patch, warning)
}

type operationResponse struct {
	Vehicle models.Vehicle `json:"vehicle"`
	Warning string         `json:"warning,omitempty"`
}

// commitPatch persists an estimator patch, appends the fuel-record
// snapshot, and notifies the user's subscribers. The patch is complete
// before the first write, so a store failure leaves the vehicle's
// last-known-good state intact.
func (h *VehicleHandler) commitPatch(w http.ResponseWriter, r *http.Request, vehicle *models.Vehicle, patch estimator.Patch, warning string) {
	updated := estimator.Apply(*vehicle, patch)

	if err := h.vehicles.PatchVehicle(r.Context(), vehicle.ID.Hex(), vehicle.UserID, patchFields(patch)); err != nil {
		writeStoreError(w, err)
		return
	}

	record := models.FuelRecord{
		UserID:           vehicle.UserID,
		VehicleID:        vehicle.ID.Hex(),
		OdometerReading:  updated.CurrentOdometer,
		PetrolLeft:       updated.CurrentFuelLevel,
		EstimatedMileage: updated.Mileage,
		IsReserve:        updated.IsOnReserve,
		DistanceTraveled: updated.CurrentOdometer - vehicle.CurrentOdometer,
		PetrolUsed:       vehicle.CurrentFuelLevel - updated.CurrentFuelLevel,
	}
	if err := h.fuelRecords.AppendFuelRecord(r.Context(), record); err != nil {
		// The vehicle update already succeeded; history is best-effort.
		log.WithError(err).Error("Failed to append fuel record")
	}

	h.notifier.Publish(vehicle.UserID, "vehicles")
	h.notifier.Publish(vehicle.UserID, "fuel_records")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(operationResponse{Vehicle: updated, Warning: warning})
}

// patchFields maps an estimator patch onto store field names.
func patchFields(p estimator.Patch) map[string]interface{} {
	fields := make(map[string]interface{})
	if p.CurrentOdometer != nil {
		fields["current_odometer"] = *p.CurrentOdometer
	}
	if p.CurrentFuelLevel != nil {
		fields["current_fuel_level"] = *p.CurrentFuelLevel
	}
	if p.IsOnReserve != nil {
		fields["is_on_reserve"] = *p.IsOnReserve
	}
	if p.Mileage != nil {
		fields["mileage"] = *p.Mileage
	}
	if p.CalculationMethod != nil {
		fields["mileage_calculation_method"] = string(*p.CalculationMethod)
	}
	if p.LastFullTankOdo != nil {
		fields["last_full_tank_odo"] = *p.LastFullTankOdo
	}
	if p.LastFullTankDate != nil {
		fields["last_full_tank_date"] = *p.LastFullTankDate
	}
	if p.LastReserveOdo != nil {
		fields["last_reserve_odo"] = *p.LastReserveOdo
	}
	if p.LastReserveDate != nil {
		fields["last_reserve_date"] = *p.LastReserveDate
	}
	return fields
}

// decodeBody reads and unmarshals a JSON request body, writing a 400 on
// failure. Returns false when the caller should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// writeStoreError maps store failures onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Storage error", http.StatusInternalServerError)
}
