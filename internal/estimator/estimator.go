package estimator

import (
	"errors"
	"math"
	"time"

	"github.com/fueltrack/fueltrack/internal/models"
)

var (
	ErrInvalidAmount        = errors.New("invalid fuel amount")
	ErrNonMonotonicOdometer = errors.New("odometer reading must not decrease")
)

// MaxSingleRefuel is the sanity ceiling on one top-up via AddFuel, in liters.
const MaxSingleRefuel = 20

// fuelAddedTolerance is how far the reported refuel amount may differ from
// the expected top-up before TankFull flags it, in liters.
const fuelAddedTolerance = 2

// Patch is the set of vehicle fields an operation wants to change. Nil
// pointers mean "leave unchanged". Each operation computes its patch fully
// before anything is persisted, so a rejected input never mutates state.
type Patch struct {
	CurrentOdometer   *float64
	CurrentFuelLevel  *float64
	IsOnReserve       *bool
	Mileage           *float64
	CalculationMethod *models.CalculationMethod
	LastFullTankOdo   *float64
	LastFullTankDate  *time.Time
	LastReserveOdo    *float64
	LastReserveDate   *time.Time
}

// Apply reduces a patch onto a vehicle and returns the updated copy.
func Apply(v models.Vehicle, p Patch) models.Vehicle {
	if p.CurrentOdometer != nil {
		v.CurrentOdometer = *p.CurrentOdometer
	}
	if p.CurrentFuelLevel != nil {
		v.CurrentFuelLevel = *p.CurrentFuelLevel
	}
	if p.IsOnReserve != nil {
		v.IsOnReserve = *p.IsOnReserve
	}
	if p.Mileage != nil {
		v.Mileage = *p.Mileage
	}
	if p.CalculationMethod != nil {
		v.CalculationMethod = *p.CalculationMethod
	}
	if p.LastFullTankOdo != nil {
		v.LastFullTankOdo = *p.LastFullTankOdo
	}
	if p.LastFullTankDate != nil {
		v.LastFullTankDate = p.LastFullTankDate
	}
	if p.LastReserveOdo != nil {
		v.LastReserveOdo = *p.LastReserveOdo
	}
	if p.LastReserveDate != nil {
		v.LastReserveDate = p.LastReserveDate
	}
	return v
}

// AddFuel tops up the tank by amount liters without an odometer reference.
// The level is capped at tank capacity and the reserve flag is cleared.
// No mileage recalculation happens here: with no distance reference there
// is no consumption to derive.
func AddFuel(v models.Vehicle, amount float64) (Patch, error) {
	if amount <= 0 || amount > MaxSingleRefuel {
		return Patch{}, ErrInvalidAmount
	}

	level := math.Min(v.CurrentFuelLevel+amount, v.TankCapacity)
	onReserve := false
	return Patch{
		CurrentFuelLevel: &level,
		IsOnReserve:      &onReserve,
	}, nil
}

// UpdateOdometer records a new odometer reading and projects the fuel burned
// since the previous one using the current mileage estimate. The estimate
// itself is never revised by this operation.
func UpdateOdometer(v models.Vehicle, reading float64) (Patch, error) {
	if reading <= 0 || reading <= v.CurrentOdometer {
		return Patch{}, ErrNonMonotonicOdometer
	}

	distance := reading - v.CurrentOdometer
	used := distance / v.Mileage

	// Until the rider signals the switch to reserve, the projected level
	// bottoms out at the reserve capacity rather than zero.
	floor := 0.0
	if !v.IsOnReserve && v.HasReserveTank {
		floor = v.ReserveTankCapacity
	}
	level := math.Max(v.CurrentFuelLevel-used, floor)

	return Patch{
		CurrentOdometer:  &reading,
		CurrentFuelLevel: &level,
	}, nil
}

// SetReserve records the switch to the reserve tank at the given odometer
// reading. When a previous reserve point exists, the distance between the
// two reserve events over the usable (main minus reserve) capacity yields a
// fresh mileage sample, averaged with the prior estimate.
func SetReserve(v models.Vehicle, odo float64, now time.Time) (Patch, error) {
	if odo < v.CurrentOdometer {
		return Patch{}, ErrNonMonotonicOdometer
	}

	onReserve := true
	level := v.ReserveTankCapacity
	p := Patch{
		CurrentOdometer:  &odo,
		CurrentFuelLevel: &level,
		IsOnReserve:      &onReserve,
		LastReserveOdo:   &odo,
		LastReserveDate:  &now,
	}

	if v.LastReserveOdo > 0 && odo > v.LastReserveOdo {
		distance := odo - v.LastReserveOdo
		fuelUsed := v.TankCapacity - v.ReserveTankCapacity
		if fuelUsed > 0 && distance > 0 {
			sample := distance / fuelUsed
			mileage := (v.Mileage + sample) / 2
			method := models.MethodReserveToReserve
			p.Mileage = &mileage
			p.CalculationMethod = &method
		}
	}

	return p, nil
}

// TankFull records a complete refuel at the given odometer reading. The
// resulting level is always full capacity; fuelAdded is advisory. When a
// previous full-tank point exists, the distance between the two fills over
// the fuel burned since (capacity minus the pre-refuel level) yields a
// fresh mileage sample, averaged with the prior estimate.
//
// The returned warning is non-empty when fuelAdded differs from the
// expected top-up by more than the tolerance; it never blocks the update.
func TankFull(v models.Vehicle, odo, fuelAdded float64, now time.Time) (Patch, string, error) {
	if odo < v.CurrentOdometer {
		return Patch{}, "", ErrNonMonotonicOdometer
	}
	if fuelAdded <= 0 || fuelAdded > v.TankCapacity {
		return Patch{}, "", ErrInvalidAmount
	}

	onReserve := false
	level := v.TankCapacity
	p := Patch{
		CurrentOdometer:  &odo,
		CurrentFuelLevel: &level,
		IsOnReserve:      &onReserve,
		LastFullTankOdo:  &odo,
		LastFullTankDate: &now,
	}

	if v.LastFullTankOdo > 0 && odo > v.LastFullTankOdo {
		distance := odo - v.LastFullTankOdo
		fuelUsed := v.TankCapacity - v.CurrentFuelLevel
		if fuelUsed > 0 && distance > 0 {
			sample := distance / fuelUsed
			mileage := (v.Mileage + sample) / 2
			method := models.MethodFullToFull
			p.Mileage = &mileage
			p.CalculationMethod = &method
		}
	}

	warning := ""
	expected := v.TankCapacity - v.CurrentFuelLevel
	if math.Abs(fuelAdded-expected) > fuelAddedTolerance {
		warning = "fuel added differs significantly from the expected top-up"
	}

	return p, warning, nil
}
