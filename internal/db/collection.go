package db

import (
	"context"

	"github.com/fueltrack/fueltrack/internal/models"
)

// Every interface below scopes its queries to the owning user. Access
// control in this service is row ownership: a caller can only ever see or
// touch documents whose user_id matches the authenticated account.

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	ListVehicles(ctx context.Context, userID string) ([]models.Vehicle, error)
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id, userID string) (*models.Vehicle, error)
	PatchVehicle(ctx context.Context, id, userID string, fields map[string]interface{}) error
	DeleteVehicle(ctx context.Context, id, userID string) error
}

// FuelRecordCollection defines the interface for fuel history operations.
type FuelRecordCollection interface {
	ListFuelRecords(ctx context.Context, userID string) ([]models.FuelRecord, error)
	AppendFuelRecord(ctx context.Context, record models.FuelRecord) error
	PatchLatestFuelRecord(ctx context.Context, userID string, fields map[string]interface{}) error
}

// MaintenanceCollection defines the interface for maintenance records.
type MaintenanceCollection interface {
	ListMaintenance(ctx context.Context, userID string) ([]models.MaintenanceRecord, error)
	InsertMaintenance(ctx context.Context, record models.MaintenanceRecord) error
	PatchMaintenance(ctx context.Context, id, userID string, fields map[string]interface{}) error
}

// ProblemCollection defines the interface for vehicle problem reports.
type ProblemCollection interface {
	ListProblems(ctx context.Context, userID string) ([]models.VehicleProblem, error)
	InsertProblem(ctx context.Context, problem models.VehicleProblem) error
	PatchProblem(ctx context.Context, id, userID string, fields map[string]interface{}) error
}
