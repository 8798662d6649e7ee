package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives the HTTP API the way a real user would: it
// registers an account, adds a couple of vehicles, then replays
// drive / refuel / reserve cycles against the fuel-tracking endpoints.

type vehicleInit struct {
	VehicleNumber       string  `json:"vehicle_number"`
	VehicleType         string  `json:"vehicle_type"`
	Mileage             float64 `json:"mileage"`
	HasReserveTank      bool    `json:"has_reserve_tank"`
	ReserveTankCapacity float64 `json:"reserve_tank_capacity"`
	TankCapacity        float64 `json:"tank_capacity"`
	CurrentOdometer     float64 `json:"current_odometer"`
	CurrentFuelLevel    float64 `json:"current_fuel_level"`
}

type vehicle struct {
	ID               string  `json:"id"`
	VehicleNumber    string  `json:"vehicle_number"`
	CurrentOdometer  float64 `json:"current_odometer"`
	CurrentFuelLevel float64 `json:"current_fuel_level"`
	TankCapacity     float64 `json:"tank_capacity"`
	Mileage          float64 `json:"mileage"`
	IsOnReserve      bool    `json:"is_on_reserve"`
}

type operationResponse struct {
	Vehicle vehicle `json:"vehicle"`
	Warning string  `json:"warning,omitempty"`
}

var authToken string

func authorizedRequest(method, url string, body *bytes.Buffer) (*http.Response, error) {
	if body == nil {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func register(apiURL, email, password string) error {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})

	resp, err := authorizedRequest(http.MethodPost, apiURL+"/auth/register", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	defer resp.Body.Close()

	// An existing account is fine; fall back to login.
	if resp.StatusCode == http.StatusConflict {
		resp, err = authorizedRequest(http.MethodPost, apiURL+"/auth/login", bytes.NewBuffer(payload))
		if err != nil {
			return fmt.Errorf("failed to log in: %w", err)
		}
		defer resp.Body.Close()
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	authToken = result.Token
	return nil
}

func createVehicle(apiURL string, n int) (*vehicle, error) {
	init := vehicleInit{
		VehicleNumber:       fmt.Sprintf("SIM-%02d-%04d", n, rand.Intn(10000)),
		VehicleType:         "bike",
		Mileage:             15,
		HasReserveTank:      true,
		ReserveTankCapacity: 1.5,
		TankCapacity:        15,
		CurrentOdometer:     float64(rand.Intn(5000)),
		CurrentFuelLevel:    10,
	}
	if rand.Intn(2) == 0 {
		init.VehicleType = "car"
		init.TankCapacity = 50
		init.ReserveTankCapacity = 5
		init.CurrentFuelLevel = 30
	}

	data, err := json.Marshal(init)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vehicle: %w", err)
	}

	resp, err := authorizedRequest(http.MethodPost, apiURL+"/vehicles", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("vehicle creation failed with status: %d", resp.StatusCode)
	}

	var v vehicle
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": v.ID,
		"number":     v.VehicleNumber,
	}).Info("Created vehicle")

	return &v, nil
}

func postOperation(apiURL string, v *vehicle, op string, payload map[string]float64) error {
	data, _ := json.Marshal(payload)
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/vehicles/"+v.ID+"/"+op, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status: %d", op, resp.StatusCode)
	}

	var result operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	result.Vehicle.ID = v.ID
	*v = result.Vehicle

	fields := log.Fields{
		"vehicle":  v.VehicleNumber,
		"odometer": v.CurrentOdometer,
		"fuel":     fmt.Sprintf("%.1fL", v.CurrentFuelLevel),
		"mileage":  fmt.Sprintf("%.1f km/L", v.Mileage),
	}
	if result.Warning != "" {
		log.WithFields(fields).WithField("warning", result.Warning).Warn(op)
	} else {
		log.WithFields(fields).Info(op)
	}
	return nil
}

// tick performs one randomized user action against a vehicle.
func tick(apiURL string, v *vehicle) error {
	// Mostly driving, with refuels when the tank runs down.
	if v.IsOnReserve || v.CurrentFuelLevel < 2 {
		if rand.Intn(3) == 0 {
			return postOperation(apiURL, v, "fuel", map[string]float64{
				"amount": 2 + rand.Float64()*8,
			})
		}
		return postOperation(apiURL, v, "tank-full", map[string]float64{
			"odometer":   v.CurrentOdometer + float64(rand.Intn(5)),
			"fuel_added": v.TankCapacity - v.CurrentFuelLevel,
		})
	}

	if v.CurrentFuelLevel < 3 && rand.Intn(2) == 0 {
		return postOperation(apiURL, v, "reserve", map[string]float64{
			"odometer": v.CurrentOdometer + float64(rand.Intn(10)),
		})
	}

	distance := 5 + rand.Float64()*40
	return postOperation(apiURL, v, "odometer", map[string]float64{
		"reading": v.CurrentOdometer + distance,
	})
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	numVehicles := 3
	if s := os.Getenv("NUM_VEHICLES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			numVehicles = n
		}
	}

	tickInterval := 5 * time.Second
	if s := os.Getenv("TICK_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			tickInterval = d
		}
	}

	email := os.Getenv("SIM_EMAIL")
	if email == "" {
		email = "simulator@fueltrack.dev"
	}

	if err := register(apiURL, email, "simulator-password"); err != nil {
		log.Fatalf("Auth failed: %v", err)
	}
	log.WithField("email", email).Info("Authenticated")

	vehicles := make([]*vehicle, 0, numVehicles)
	for i := 0; i < numVehicles; i++ {
		v, err := createVehicle(apiURL, i)
		if err != nil {
			log.Fatalf("Vehicle creation failed: %v", err)
		}
		vehicles = append(vehicles, v)
	}

	log.WithField("vehicles", len(vehicles)).Info("Simulation started")
	for {
		for _, v := range vehicles {
			if err := tick(apiURL, v); err != nil {
				log.WithError(err).WithField("vehicle", v.VehicleNumber).Error("Tick failed")
			}
		}
		time.Sleep(tickInterval)
	}
}
