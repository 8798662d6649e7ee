package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleType classifies a vehicle as a two- or four-wheeler.
type VehicleType string

const (
	VehicleTypeBike VehicleType = "bike"
	VehicleTypeCar  VehicleType = "car"
)

// CalculationMethod records how the current mileage estimate was derived.
type CalculationMethod string

const (
	MethodManual           CalculationMethod = "manual"
	MethodFullToFull       CalculationMethod = "full_to_full"
	MethodReserveToReserve CalculationMethod = "reserve_to_reserve"
)

// Vehicle represents a user's vehicle and its fuel-tracking state.
type Vehicle struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"`
	VehicleNumber       string             `bson:"vehicle_number" json:"vehicle_number"`
	VehicleType         VehicleType        `bson:"vehicle_type" json:"vehicle_type"`
	Mileage             float64            `bson:"mileage" json:"mileage"` // km per liter
	HasReserveTank      bool               `bson:"has_reserve_tank" json:"has_reserve_tank"`
	ReserveTankCapacity float64            `bson:"reserve_tank_capacity" json:"reserve_tank_capacity"` // liters
	TankCapacity        float64            `bson:"tank_capacity" json:"tank_capacity"`                 // liters
	CurrentOdometer     float64            `bson:"current_odometer" json:"current_odometer"`           // kilometers
	CurrentFuelLevel    float64            `bson:"current_fuel_level" json:"current_fuel_level"`       // liters
	IsOnReserve         bool               `bson:"is_on_reserve" json:"is_on_reserve"`
	LastFullTankOdo     float64            `bson:"last_full_tank_odo" json:"last_full_tank_odo"`
	LastFullTankDate    *time.Time         `bson:"last_full_tank_date,omitempty" json:"last_full_tank_date,omitempty"`
	LastReserveOdo      float64            `bson:"last_reserve_odo" json:"last_reserve_odo"`
	LastReserveDate     *time.Time         `bson:"last_reserve_date,omitempty" json:"last_reserve_date,omitempty"`
	CalculationMethod   CalculationMethod  `bson:"mileage_calculation_method" json:"mileage_calculation_method"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidVehicleType checks if a vehicle type is valid
func IsValidVehicleType(t VehicleType) bool {
	return t == VehicleTypeBike || t == VehicleTypeCar
}

// Range returns the estimated distance in kilometers the vehicle can
// still travel on its current fuel level.
func (v *Vehicle) Range() float64 {
	return v.CurrentFuelLevel * v.Mileage
}

// IsLowFuel reports whether the vehicle should be flagged for refueling.
func (v *Vehicle) IsLowFuel() bool {
	return v.CurrentFuelLevel < 2 || v.Range() < 10
}

// VehicleInit carries the user-supplied values for vehicle registration.
type VehicleInit struct {
	VehicleNumber       string      `json:"vehicle_number"`
	VehicleType         VehicleType `json:"vehicle_type"`
	Mileage             float64     `json:"mileage"`
	HasReserveTank      bool        `json:"has_reserve_tank"`
	ReserveTankCapacity float64     `json:"reserve_tank_capacity"`
	TankCapacity        float64     `json:"tank_capacity"`
	CurrentOdometer     float64     `json:"current_odometer"`
	CurrentFuelLevel    float64     `json:"current_fuel_level"`
	IsOnReserve         bool        `json:"is_on_reserve"`
}

// DefaultVehicleInit returns the registration defaults for a vehicle type.
func DefaultVehicleInit(t VehicleType) VehicleInit {
	init := VehicleInit{
		VehicleType:         VehicleTypeBike,
		Mileage:             15,
		HasReserveTank:      true,
		ReserveTankCapacity: 1.0,
		TankCapacity:        15.0,
	}
	if t == VehicleTypeCar {
		init.VehicleType = VehicleTypeCar
		init.TankCapacity = 50.0
		init.ReserveTankCapacity = 5.0
	}
	return init
}
