package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FuelRecord is a point-in-time fuel snapshot kept for the history log.
// Records are ordered by creation time descending; the newest record is
// the current truth for consumers that only read this stream.
type FuelRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"user_id" json:"user_id"`
	VehicleID        string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	OdometerReading  float64            `bson:"odometer_reading" json:"odometer_reading"`
	PetrolLeft       float64            `bson:"petrol_left" json:"petrol_left"`
	EstimatedMileage float64            `bson:"estimated_mileage" json:"estimated_mileage"`
	IsReserve        bool               `bson:"is_reserve" json:"is_reserve"`
	DistanceTraveled float64            `bson:"distance_traveled,omitempty" json:"distance_traveled,omitempty"`
	PetrolUsed       float64            `bson:"petrol_used,omitempty" json:"petrol_used,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// FuelRecordInit carries the fields for appending a new fuel record.
type FuelRecordInit struct {
	VehicleID        string  `json:"vehicle_id,omitempty"`
	OdometerReading  float64 `json:"odometer_reading"`
	PetrolLeft       float64 `json:"petrol_left"`
	EstimatedMileage float64 `json:"estimated_mileage"`
	IsReserve        bool    `json:"is_reserve"`
	DistanceTraveled float64 `json:"distance_traveled,omitempty"`
	PetrolUsed       float64 `json:"petrol_used,omitempty"`
}
