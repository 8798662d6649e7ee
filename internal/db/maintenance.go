package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fueltrack/fueltrack/internal/models"
)

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// ListMaintenance returns the user's maintenance records, newest first.
func (c *MongoMaintenanceCollection) ListMaintenance(ctx context.Context, userID string) ([]models.MaintenanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MaintenanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// InsertMaintenance inserts a maintenance record.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record models.MaintenanceRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// PatchMaintenance applies a partial field update to a maintenance record.
func (c *MongoMaintenanceCollection) PatchMaintenance(ctx context.Context, id, userID string, fields map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "user_id": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
