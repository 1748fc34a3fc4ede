package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridecare/ridecare/internal/models"
)

// MongoRuleCollection implements RuleCollection for MongoDB.
type MongoRuleCollection struct {
	Collection *mongo.Collection
}

// InsertRule inserts a maintenance rule. An existing rule with the same id
// for the same user is replaced, so re-adding a removed rule restores it.
func (c *MongoRuleCollection) InsertRule(ctx context.Context, rule models.MaintenanceRule) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{"user_id": rule.UserID, "rule_id": rule.ID}
	_, err := c.Collection.ReplaceOne(ctx, filter, rule, options.Replace().SetUpsert(true))
	return err
}

// FindRulesByUser returns all rules for a user in creation order.
func (c *MongoRuleCollection) FindRulesByUser(ctx context.Context, userID string) ([]models.MaintenanceRule, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.MaintenanceRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// DeleteRule deletes a rule by its id. Deleting an absent rule returns
// ErrNotFound.
func (c *MongoRuleCollection) DeleteRule(ctx context.Context, userID, ruleID string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"user_id": userID, "rule_id": ruleID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("rule %s: %w", ruleID, ErrNotFound)
	}
	return nil
}
