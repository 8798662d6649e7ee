package estimator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/fueltrack/internal/models"
)

func testVehicle() models.Vehicle {
	return models.Vehicle{
		VehicleNumber:       "KA-01-1234",
		VehicleType:         models.VehicleTypeBike,
		Mileage:             20,
		HasReserveTank:      true,
		ReserveTankCapacity: 1.5,
		TankCapacity:        15,
		CurrentOdometer:     1000,
		CurrentFuelLevel:    5,
		CalculationMethod:   models.MethodManual,
	}
}

func TestAddFuel(t *testing.T) {
	t.Run("tops up and clears reserve", func(t *testing.T) {
		v := testVehicle()
		v.IsOnReserve = true

		p, err := AddFuel(v, 4)
		require.NoError(t, err)

		out := Apply(v, p)
		assert.Equal(t, 9.0, out.CurrentFuelLevel)
		assert.False(t, out.IsOnReserve)
		assert.Equal(t, v.Mileage, out.Mileage)
		assert.Equal(t, v.CurrentOdometer, out.CurrentOdometer)
	})

	t.Run("caps at tank capacity", func(t *testing.T) {
		v := testVehicle()
		v.CurrentFuelLevel = 14

		p, err := AddFuel(v, 5)
		require.NoError(t, err)
		assert.Equal(t, 15.0, *p.CurrentFuelLevel)
	})

	t.Run("rejects zero amount without mutating", func(t *testing.T) {
		v := testVehicle()
		before := v

		p, err := AddFuel(v, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, Patch{}, p)
		assert.Equal(t, before, v)
	})

	t.Run("rejects negative and oversized amounts", func(t *testing.T) {
		v := testVehicle()
		_, err := AddFuel(v, -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = AddFuel(v, MaxSingleRefuel+0.1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("accepts the ceiling exactly", func(t *testing.T) {
		v := testVehicle()
		_, err := AddFuel(v, MaxSingleRefuel)
		assert.NoError(t, err)
	})
}

func TestUpdateOdometer(t *testing.T) {
	t.Run("projects fuel burn from current mileage", func(t *testing.T) {
		v := testVehicle() // mileage 20, level 5, odo 1000

		p, err := UpdateOdometer(v, 1040)
		require.NoError(t, err)

		out := Apply(v, p)
		assert.Equal(t, 1040.0, out.CurrentOdometer)
		assert.InDelta(t, 3.0, out.CurrentFuelLevel, 1e-9) // 5 - 40/20
		assert.Equal(t, v.Mileage, out.Mileage)            // never revised here
	})

	t.Run("floors at reserve capacity when not on reserve", func(t *testing.T) {
		v := testVehicle()

		// 200 km would burn 10 L, far more than the 5 L present.
		p, err := UpdateOdometer(v, 1200)
		require.NoError(t, err)
		assert.Equal(t, v.ReserveTankCapacity, *p.CurrentFuelLevel)
	})

	t.Run("floors at zero when already on reserve", func(t *testing.T) {
		v := testVehicle()
		v.IsOnReserve = true
		v.CurrentFuelLevel = 1.0

		p, err := UpdateOdometer(v, 1200)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *p.CurrentFuelLevel)
	})

	t.Run("floors at zero when no reserve tank exists", func(t *testing.T) {
		v := testVehicle()
		v.HasReserveTank = false
		v.ReserveTankCapacity = 0

		p, err := UpdateOdometer(v, 1200)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *p.CurrentFuelLevel)
	})

	t.Run("rejects non-increasing readings", func(t *testing.T) {
		v := testVehicle()
		before := v

		_, err := UpdateOdometer(v, 1000)
		assert.ErrorIs(t, err, ErrNonMonotonicOdometer)
		_, err = UpdateOdometer(v, 999)
		assert.ErrorIs(t, err, ErrNonMonotonicOdometer)
		_, err = UpdateOdometer(v, 0)
		assert.ErrorIs(t, err, ErrNonMonotonicOdometer)
		assert.Equal(t, before, v)
	})
}

func TestSetReserve(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("first reserve event records the point without recalculating", func(t *testing.T) {
		v := testVehicle() // lastReserveOdo 0

		p, err := SetReserve(v, 1100, now)
		require.NoError(t, err)

		out := Apply(v, p)
		assert.Equal(t, 1100.0, out.CurrentOdometer)
		assert.Equal(t, v.ReserveTankCapacity, out.CurrentFuelLevel)
		assert.True(t, out.IsOnReserve)
		assert.Equal(t, 1100.0, out.LastReserveOdo)
		require.NotNil(t, out.LastReserveDate)
		assert.Equal(t, now, *out.LastReserveDate)
		assert.Equal(t, v.Mileage, out.Mileage)
		assert.Equal(t, models.MethodManual, out.CalculationMethod)
	})

	t.Run("reserve to reserve recalculation", func(t *testing.T) {
		// Scenario: lastReserveOdo=500, capacity=15, reserve=1.5, mileage=22.
		v := testVehicle()
		v.Mileage = 22
		v.CurrentOdometer = 700
		v.LastReserveOdo = 500

		p, err := SetReserve(v, 800, now)
		require.NoError(t, err)

		out := Apply(v, p)
		// distance 300, fuelUsed 13.5, sample 22.22, averaged 22.11
		assert.InDelta(t, 22.111, out.Mileage, 0.001)
		assert.Equal(t, models.MethodReserveToReserve, out.CalculationMethod)
		assert.Equal(t, 1.5, out.CurrentFuelLevel)
		assert.True(t, out.IsOnReserve)
		assert.Equal(t, 800.0, out.LastReserveOdo)
	})

	t.Run("skips recalculation when usable capacity is zero", func(t *testing.T) {
		v := testVehicle()
		v.ReserveTankCapacity = v.TankCapacity // degenerate: denominator 0
		v.LastReserveOdo = 500
		v.CurrentOdometer = 700

		p, err := SetReserve(v, 800, now)
		require.NoError(t, err)
		assert.Nil(t, p.Mileage)

		out := Apply(v, p)
		assert.Equal(t, v.Mileage, out.Mileage)
		assert.Greater(t, out.Mileage, 0.0)
	})

	t.Run("accepts an unchanged odometer reading", func(t *testing.T) {
		v := testVehicle()
		_, err := SetReserve(v, v.CurrentOdometer, now)
		assert.NoError(t, err)
	})

	t.Run("rejects a lower odometer reading", func(t *testing.T) {
		v := testVehicle()
		_, err := SetReserve(v, v.CurrentOdometer-1, now)
		assert.ErrorIs(t, err, ErrNonMonotonicOdometer)
	})
}

func TestTankFull(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("first fill records the point without recalculating", func(t *testing.T) {
		// Scenario: capacity=15, level=3, mileage=20, no full-tank history.
		v := testVehicle()
		v.CurrentFuelLevel = 3

		p, _, err := TankFull(v, v.CurrentOdometer+100, 12, now)
		require.NoError(t, err)

		out := Apply(v, p)
		assert.Equal(t, 15.0, out.CurrentFuelLevel)
		assert.False(t, out.IsOnReserve)
		assert.Equal(t, v.CurrentOdometer+100, out.LastFullTankOdo)
		require.NotNil(t, out.LastFullTankDate)
		assert.Equal(t, now, *out.LastFullTankDate)
		assert.Equal(t, 20.0, out.Mileage)
		assert.Equal(t, models.MethodManual, out.CalculationMethod)
	})

	t.Run("full to full recalculation", func(t *testing.T) {
		// Scenario: lastFullTankOdo=1000, capacity=15, level=5, mileage=18.
		v := testVehicle()
		v.Mileage = 18
		v.LastFullTankOdo = 1000
		v.CurrentOdometer = 1350
		v.CurrentFuelLevel = 5

		p, warning, err := TankFull(v, 1400, 10, now)
		require.NoError(t, err)
		assert.Empty(t, warning)

		out := Apply(v, p)
		// distance 400, fuelUsed 10, sample 40, averaged (18+40)/2 = 29
		assert.Equal(t, 29.0, out.Mileage)
		assert.Equal(t, models.MethodFullToFull, out.CalculationMethod)
		assert.Equal(t, 15.0, out.CurrentFuelLevel)
		assert.Equal(t, 1400.0, out.LastFullTankOdo)
	})

	t.Run("skips recalculation when tank was already full", func(t *testing.T) {
		v := testVehicle()
		v.LastFullTankOdo = 900
		v.CurrentFuelLevel = v.TankCapacity // fuelUsed 0

		p, _, err := TankFull(v, 1100, 1, now)
		require.NoError(t, err)
		assert.Nil(t, p.Mileage)

		out := Apply(v, p)
		assert.Greater(t, out.Mileage, 0.0)
	})

	t.Run("warns when the amount looks inconsistent", func(t *testing.T) {
		v := testVehicle() // level 5, expected top-up 10

		_, warning, err := TankFull(v, 1100, 5, now)
		require.NoError(t, err)
		assert.NotEmpty(t, warning)

		_, warning, err = TankFull(v, 1100, 9, now)
		require.NoError(t, err)
		assert.Empty(t, warning)
	})

	t.Run("rejects invalid amounts", func(t *testing.T) {
		v := testVehicle()
		_, _, err := TankFull(v, 1100, 0, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, _, err = TankFull(v, 1100, v.TankCapacity+1, now)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects a lower odometer reading", func(t *testing.T) {
		v := testVehicle()
		_, _, err := TankFull(v, v.CurrentOdometer-10, 5, now)
		assert.ErrorIs(t, err, ErrNonMonotonicOdometer)
	})
}

func TestApplyLeavesUnpatchedFieldsAlone(t *testing.T) {
	v := testVehicle()
	out := Apply(v, Patch{})
	assert.Equal(t, v, out)

	level := 7.5
	out = Apply(v, Patch{CurrentFuelLevel: &level})
	assert.Equal(t, 7.5, out.CurrentFuelLevel)
	assert.Equal(t, v.CurrentOdometer, out.CurrentOdometer)
	assert.Equal(t, v.Mileage, out.Mileage)
}

func TestMileageStaysPositiveAcrossCycles(t *testing.T) {
	now := time.Now()
	v := testVehicle()
	v.LastReserveOdo = 900
	v.LastFullTankOdo = 950

	for i := 0; i < 50; i++ {
		p, err := SetReserve(v, v.CurrentOdometer+100, now)
		require.NoError(t, err)
		v = Apply(v, p)
		assert.Greater(t, v.Mileage, 0.0)

		p, _, err = TankFull(v, v.CurrentOdometer+50, v.TankCapacity-v.CurrentFuelLevel, now)
		require.NoError(t, err)
		v = Apply(v, p)
		assert.Greater(t, v.Mileage, 0.0)
	}
}
