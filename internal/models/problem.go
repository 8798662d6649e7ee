package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProblemStatus tracks a reported issue through its lifecycle.
type ProblemStatus string

const (
	ProblemOpen     ProblemStatus = "open"
	ProblemResolved ProblemStatus = "resolved"
)

// VehicleProblem represents a user-reported issue with a vehicle.
type VehicleProblem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Severity      string             `bson:"severity" json:"severity"` // "low", "medium", "high"
	Status        ProblemStatus      `bson:"status" json:"status"`
	EstimatedCost float64            `bson:"estimated_cost" json:"estimated_cost"`
	ResolvedAt    *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
