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

// MongoProblemCollection implements ProblemCollection for MongoDB.
type MongoProblemCollection struct {
	Collection *mongo.Collection
}

// ListProblems returns the user's problem reports, newest first.
func (c *MongoProblemCollection) ListProblems(ctx context.Context, userID string) ([]models.VehicleProblem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var problems []models.VehicleProblem
	if err := cursor.All(ctx, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

// InsertProblem inserts a problem report.
func (c *MongoProblemCollection) InsertProblem(ctx context.Context, problem models.VehicleProblem) error {
	now := time.Now()
	problem.CreatedAt = now
	problem.UpdatedAt = now
	if problem.Status == "" {
		problem.Status = models.ProblemOpen
	}
	_, err := c.Collection.InsertOne(ctx, problem)
	return err
}

// PatchProblem applies a partial field update to a problem report.
func (c *MongoProblemCollection) PatchProblem(ctx context.Context, id, userID string, fields map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid problem ID: %w", err)
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
