package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegister_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": "test-token"})
	}))
	defer server.Close()

	authToken = ""
	if err := register(server.URL, "sim@example.com", "password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if authToken != "test-token" {
		t.Errorf("expected token to be stored, got %q", authToken)
	}
}

func TestRegister_FallsBackToLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			w.WriteHeader(http.StatusConflict)
		case "/auth/login":
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"token": "login-token"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	authToken = ""
	if err := register(server.URL, "sim@example.com", "password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if authToken != "login-token" {
		t.Errorf("expected login token, got %q", authToken)
	}
}

func TestRegister_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	authToken = ""
	if err := register(server.URL, "sim@example.com", "bad"); err == nil {
		t.Error("expected error for failed auth, got nil")
	}
}

func TestCreateVehicle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vehicles" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("expected bearer token, got %q", auth)
		}

		var init vehicleInit
		if err := json.NewDecoder(r.Body).Decode(&init); err != nil {
			t.Fatalf("failed to decode vehicle init: %v", err)
		}
		if init.VehicleType != "bike" && init.VehicleType != "car" {
			t.Errorf("unexpected vehicle type: %s", init.VehicleType)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(vehicle{
			ID:               "abc123",
			VehicleNumber:    init.VehicleNumber,
			CurrentOdometer:  init.CurrentOdometer,
			CurrentFuelLevel: init.CurrentFuelLevel,
			TankCapacity:     init.TankCapacity,
			Mileage:          init.Mileage,
		})
	}))
	defer server.Close()

	authToken = "test-token"
	v, err := createVehicle(server.URL, 0)
	if err != nil {
		t.Fatalf("createVehicle failed: %v", err)
	}
	if v.ID != "abc123" {
		t.Errorf("expected vehicle ID abc123, got %s", v.ID)
	}
}

func TestPostOperation_UpdatesLocalState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vehicles/abc123/odometer" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(operationResponse{
			Vehicle: vehicle{
				VehicleNumber:    "SIM-00-0001",
				CurrentOdometer:  1040,
				CurrentFuelLevel: 3,
				TankCapacity:     15,
				Mileage:          20,
			},
		})
	}))
	defer server.Close()

	authToken = "test-token"
	v := &vehicle{ID: "abc123", VehicleNumber: "SIM-00-0001", CurrentOdometer: 1000, CurrentFuelLevel: 5}
	err := postOperation(server.URL, v, "odometer", map[string]float64{"reading": 1040})
	if err != nil {
		t.Fatalf("postOperation failed: %v", err)
	}
	if v.CurrentOdometer != 1040 {
		t.Errorf("expected odometer 1040, got %f", v.CurrentOdometer)
	}
	if v.CurrentFuelLevel != 3 {
		t.Errorf("expected fuel level 3, got %f", v.CurrentFuelLevel)
	}
	if v.ID != "abc123" {
		t.Errorf("vehicle ID should be preserved, got %s", v.ID)
	}
}

func TestPostOperation_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	authToken = "test-token"
	v := &vehicle{ID: "abc123", CurrentOdometer: 1000}
	err := postOperation(server.URL, v, "odometer", map[string]float64{"reading": 900})
	if err == nil {
		t.Error("expected error for rejected operation, got nil")
	}
	if v.CurrentOdometer != 1000 {
		t.Errorf("local state should be unchanged on error, got %f", v.CurrentOdometer)
	}
}

func TestTick_DoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(operationResponse{
			Vehicle: vehicle{CurrentOdometer: 1050, CurrentFuelLevel: 4, TankCapacity: 15, Mileage: 20},
		})
	}))
	defer server.Close()

	authToken = "test-token"
	vehicles := []*vehicle{
		{ID: "a", CurrentOdometer: 1000, CurrentFuelLevel: 10, TankCapacity: 15},
		{ID: "b", CurrentOdometer: 500, CurrentFuelLevel: 1, TankCapacity: 15},
		{ID: "c", CurrentOdometer: 2000, CurrentFuelLevel: 2.5, TankCapacity: 15, IsOnReserve: true},
	}
	for _, v := range vehicles {
		for i := 0; i < 10; i++ {
			if err := tick(server.URL, v); err != nil {
				t.Fatalf("tick failed: %v", err)
			}
		}
	}
}
