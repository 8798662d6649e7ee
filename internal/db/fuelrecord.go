package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fueltrack/fueltrack/internal/models"
)

// MongoFuelRecordCollection implements FuelRecordCollection for MongoDB.
type MongoFuelRecordCollection struct {
	Collection *mongo.Collection
}

// ListFuelRecords returns the user's fuel history, newest first.
func (c *MongoFuelRecordCollection) ListFuelRecords(ctx context.Context, userID string) ([]models.FuelRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.FuelRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendFuelRecord inserts a new fuel record.
func (c *MongoFuelRecordCollection) AppendFuelRecord(ctx context.Context, record models.FuelRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, record)
	return err
}

// PatchLatestFuelRecord amends the user's most recent fuel record in place.
// Legacy flow: some callers patch the newest record instead of appending.
func (c *MongoFuelRecordCollection) PatchLatestFuelRecord(ctx context.Context, userID string, fields map[string]interface{}) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var latest models.FuelRecord
	err := c.Collection.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&latest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": latest.ID}, bson.M{"$set": set})
	return err
}
