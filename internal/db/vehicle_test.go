package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/fueltrack/internal/models"
)

func testVehicle(userID string) models.Vehicle {
	return models.Vehicle{
		UserID:              userID,
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

func TestMongoVehicleCollection_InsertAndFind(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fueltrack").Collection("vehicles")
	collection.Drop(context.Background())

	vehicles := &MongoVehicleCollection{Collection: collection}

	inserted, err := vehicles.InsertVehicle(context.Background(), testVehicle("user-1"))
	require.NoError(t, err)
	require.False(t, inserted.ID.IsZero())
	assert.NotZero(t, inserted.CreatedAt)

	found, err := vehicles.FindVehicleByID(context.Background(), inserted.ID.Hex(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "KA-01-1234", found.VehicleNumber)
	assert.Equal(t, 1000.0, found.CurrentOdometer)

	// Another user must not be able to see the vehicle.
	_, err = vehicles.FindVehicleByID(context.Background(), inserted.ID.Hex(), "user-2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = vehicles.FindVehicleByID(context.Background(), "invalid-id", "user-1")
	assert.Error(t, err)
}

func TestMongoVehicleCollection_ListVehicles(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fueltrack").Collection("vehicles")
	collection.Drop(context.Background())

	vehicles := &MongoVehicleCollection{Collection: collection}

	v1 := testVehicle("user-1")
	v2 := testVehicle("user-1")
	v2.VehicleNumber = "KA-01-5678"
	other := testVehicle("user-2")

	for _, v := range []models.Vehicle{v1, v2, other} {
		_, err := vehicles.InsertVehicle(context.Background(), v)
		require.NoError(t, err)
	}

	list, err := vehicles.ListVehicles(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	for _, v := range list {
		assert.Equal(t, "user-1", v.UserID)
	}
}

func TestMongoVehicleCollection_PatchVehicle(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fueltrack").Collection("vehicles")
	collection.Drop(context.Background())

	vehicles := &MongoVehicleCollection{Collection: collection}

	inserted, err := vehicles.InsertVehicle(context.Background(), testVehicle("user-1"))
	require.NoError(t, err)

	err = vehicles.PatchVehicle(context.Background(), inserted.ID.Hex(), "user-1", map[string]interface{}{
		"current_odometer":   1050.0,
		"current_fuel_level": 2.5,
	})
	assert.NoError(t, err)

	found, err := vehicles.FindVehicleByID(context.Background(), inserted.ID.Hex(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1050.0, found.CurrentOdometer)
	assert.Equal(t, 2.5, found.CurrentFuelLevel)
	assert.True(t, found.UpdatedAt.After(inserted.UpdatedAt))

	// Patch scoped to the wrong user must not match.
	err = vehicles.PatchVehicle(context.Background(), inserted.ID.Hex(), "user-2", map[string]interface{}{
		"current_odometer": 9999.0,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoVehicleCollection_DeleteVehicle(t *testing.T) {
	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database("test_fueltrack").Collection("vehicles")
	collection.Drop(context.Background())

	vehicles := &MongoVehicleCollection{Collection: collection}

	inserted, err := vehicles.InsertVehicle(context.Background(), testVehicle("user-1"))
	require.NoError(t, err)

	err = vehicles.DeleteVehicle(context.Background(), inserted.ID.Hex(), "user-2")
	assert.ErrorIs(t, err, ErrNotFound)

	err = vehicles.DeleteVehicle(context.Background(), inserted.ID.Hex(), "user-1")
	assert.NoError(t, err)

	_, err = vehicles.FindVehicleByID(context.Background(), inserted.ID.Hex(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
