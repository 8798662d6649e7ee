package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/fueltrack/fueltrack/internal/auth"
	"github.com/fueltrack/fueltrack/internal/db"
	"github.com/fueltrack/fueltrack/internal/handlers"
	"github.com/fueltrack/fueltrack/internal/middleware"
	"github.com/fueltrack/fueltrack/internal/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment")
	}

	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "fueltrack"
	}
	database := client.Database(dbName)

	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	fuelRecords := &db.MongoFuelRecordCollection{Collection: database.Collection("fuel_records")}
	maintenance := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance_records")}
	problems := &db.MongoProblemCollection{Collection: database.Collection("vehicle_problems")}

	var notifier notify.Notifier
	if mqttNotifier, err := notify.NewMQTTNotifier(); err != nil {
		log.WithError(err).Warn("Change notifications disabled")
		notifier = notify.NewNoopNotifier()
	} else {
		log.Info("Change notifications enabled")
		notifier = mqttNotifier
	}
	defer notifier.Close()

	authService, err := auth.NewService()
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	authHandler := handlers.NewAuthHandler(authService, users)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, fuelRecords, notifier)
	recordHandler := handlers.NewFuelRecordHandler(fuelRecords, notifier)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenance, notifier)
	problemHandler := handlers.NewProblemHandler(problems, notifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("/api/vehicles", vehicleHandler.HandleVehicles)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.HandleVehicle)
	mux.HandleFunc("/api/fuel-records", recordHandler.HandleRecords)
	mux.HandleFunc("/api/fuel-records/latest", recordHandler.HandleLatest)
	mux.HandleFunc("/api/maintenance", maintenanceHandler.HandleMaintenance)
	mux.HandleFunc("/api/maintenance/", maintenanceHandler.HandleMaintenanceByID)
	mux.HandleFunc("/api/problems", problemHandler.HandleProblems)
	mux.HandleFunc("/api/problems/", problemHandler.HandleProblemByID)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("HTTP server listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
