// utils/auth.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The JWT middleware stores these context keys after validating a token.
const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextEmail  = "email"
)

// CallerID returns the authenticated caller's id as stored by the JWT
// middleware.
func CallerID(c echo.Context) (string, error) {
	userID, ok := c.Get(ContextUserID).(string)
	if !ok || userID == "" {
		return "", errors.New("invalid token")
	}
	return userID, nil
}

// CallerRole returns the authenticated caller's role, or "" when
// unauthenticated.
func CallerRole(c echo.Context) string {
	role, _ := c.Get(ContextRole).(string)
	return role
}

// GetUserFromToken loads the full user document for the authenticated caller.
// The password field is cleared before returning.
func GetUserFromToken(c echo.Context, db *mongo.Database) (*models.User, error) {
	callerID, err := CallerID(c)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errors.New("invalid user ID format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, errors.New("error retrieving user")
	}

	user.Password = ""

	return &user, nil
}

// GetUserIDFromToken extracts the caller's id as an ObjectID
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	callerID, err := CallerID(c)
	if err != nil {
		return primitive.ObjectID{}, echo.ErrUnauthorized
	}
	return primitive.ObjectIDFromHex(callerID)
}
