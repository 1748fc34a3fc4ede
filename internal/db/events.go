package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ridecare/ridecare/internal/models"
)

// MongoEventCollection implements EventCollection for MongoDB.
type MongoEventCollection struct {
	Collection *mongo.Collection
}

// InsertEvent inserts a completion record. Records are never updated or
// deleted afterwards.
func (c *MongoEventCollection) InsertEvent(ctx context.Context, event models.MaintenanceEvent) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	event.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, event)
	return err
}

// FindEventsByVehicle returns all completion records for a vehicle.
func (c *MongoEventCollection) FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceEvent, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.MaintenanceEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
