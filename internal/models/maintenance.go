package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceRecord represents a service or upkeep entry for a vehicle.
type MaintenanceRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	VehicleID       string             `bson:"vehicle_id" json:"vehicle_id"`
	MaintenanceType string             `bson:"maintenance_type" json:"maintenance_type"` // "oil_change", "tire_rotation", "brake_service", "general_service"
	Description     string             `bson:"description" json:"description"`
	Cost            float64            `bson:"cost" json:"cost"`
	OdometerReading float64            `bson:"odometer_reading" json:"odometer_reading"`
	DueDate         *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	IsCompleted     bool               `bson:"is_completed" json:"is_completed"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
