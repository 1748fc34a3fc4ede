package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ridecare/ridecare/internal/models"
)

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// InsertUser inserts a new user into the database
func (c *MongoUserCollection) InsertUser(ctx context.Context, user models.User) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true

	_, err := c.Collection.InsertOne(ctx, user)
	return err
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

// FindUserByUsername finds a user by their username
func (c *MongoUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserByEmail finds a user by their email
func (c *MongoUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUsersWithTokens returns active users that have at least one registered
// delivery token. The daily sweep only visits these.
func (c *MongoUserCollection) FindUsersWithTokens(ctx context.Context) ([]models.User, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{
		"is_active":  true,
		"fcm_tokens": bson.M{"$exists": true, "$ne": bson.A{}},
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateLastLogin updates the user's last login time
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"last_login": time.Now(),
			"updated_at": time.Now(),
		},
	}
	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	return err
}

// AddFCMToken registers a delivery token for the user. Registering a token
// that is already present is a no-op.
func (c *MongoUserCollection) AddFCMToken(ctx context.Context, id string, token string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$addToSet": bson.M{"fcm_tokens": token},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// RemoveFCMTokens removes delivery tokens from the user's set in one atomic
// update. Tokens already absent are ignored, so concurrent cleanups from the
// trip trigger and the sweep converge on the same set.
func (c *MongoUserCollection) RemoveFCMTokens(ctx context.Context, id string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$pullAll": bson.M{"fcm_tokens": tokens},
		"$set":     bson.M{"updated_at": time.Now()},
	}
	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	return err
}
