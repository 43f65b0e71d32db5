// controllers/subscription_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/storage"
	"github.com/eilanhub/eilan_backend/utils"
)

// SubscriptionController handles the subscription lifecycle
type SubscriptionController struct {
	DB     *mongo.Database
	Files  storage.BlobStore
	logger *log.Logger
}

// NewSubscriptionController creates a new subscription controller
func NewSubscriptionController(db *mongo.Database, files storage.BlobStore) *SubscriptionController {
	return &SubscriptionController{
		DB:     db,
		Files:  files,
		logger: log.New(os.Stdout, "[SUBSCRIPTIONS] ", log.LstdFlags),
	}
}

// CreateSubscription creates a pending subscription with a provisional
// 30-day window. The window restarts when an admin verifies the payment.
func (sc *SubscriptionController) CreateSubscription(c echo.Context) error {
	var req models.CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	user, err := utils.GetUserFromToken(c, sc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	sub := models.Subscription{
		ClientID:          user.ID,
		ClientName:        user.Name,
		ClientEmail:       user.Email,
		StartDate:         now,
		EndDate:           now.Add(models.SubscriptionWindow),
		Status:            models.SubscriptionStatusPending,
		PaymentScreenshot: "",
		PaymentMethod:     req.PaymentMethod,
		CreatedAt:         now,
	}

	result, err := sc.DB.Collection("subscriptions").InsertOne(ctx, sub)
	if err != nil {
		sc.logger.Printf("Error inserting subscription: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create subscription",
		})
	}

	sub.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription created successfully",
		Data:    sub,
	})
}

// AttachScreenshot sets the subscription's payment screenshot. Owner only.
func (sc *SubscriptionController) AttachScreenshot(c echo.Context) error {
	subID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Subscription not found",
		})
	}

	var req models.AttachScreenshotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var sub models.Subscription
	err = sc.DB.Collection("subscriptions").FindOne(ctx, bson.M{"_id": subID}).Decode(&sub)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Subscription not found",
		})
	}

	if decision := utils.CanAccessSubscription(utils.CallerRole(c), callerID, &sub); !decision.Allowed {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: decision.Reason,
		})
	}

	exists, err := sc.Files.Exists(ctx, req.FileID)
	if err != nil {
		sc.logger.Printf("Error checking file %s: %v", req.FileID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to attach screenshot",
		})
	}
	if !exists {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown file id: " + req.FileID,
		})
	}

	screenshotURL := "/api/files/" + req.FileID
	_, err = sc.DB.Collection("subscriptions").UpdateOne(ctx,
		bson.M{"_id": subID},
		bson.M{"$set": bson.M{"paymentScreenshot": screenshotURL}},
	)
	if err != nil {
		sc.logger.Printf("Error attaching screenshot to %s: %v", subID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to attach screenshot",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Screenshot attached successfully",
		Data:    map[string]string{"screenshotUrl": screenshotURL},
	})
}

// GetMySubscriptions lists the caller's subscriptions newest first
func (sc *SubscriptionController) GetMySubscriptions(c echo.Context) error {
	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	return sc.listSubscriptions(c, bson.M{"clientId": callerID})
}

// GetAllSubscriptions lists every subscription. Admin only.
func (sc *SubscriptionController) GetAllSubscriptions(c echo.Context) error {
	return sc.listSubscriptions(c, bson.M{})
}

func (sc *SubscriptionController) listSubscriptions(c echo.Context, filter bson.M) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := sc.DB.Collection("subscriptions").Find(ctx, filter, opts)
	if err != nil {
		sc.logger.Printf("Error finding subscriptions: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve subscriptions",
		})
	}
	defer cursor.Close(ctx)

	subs := []models.Subscription{}
	if err := cursor.All(ctx, &subs); err != nil {
		sc.logger.Printf("Error decoding subscriptions: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve subscriptions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscriptions retrieved successfully",
		Data:    subs,
	})
}

// subscriptionVerifyFilter matches only pending subscriptions, so a repeat
// verify cannot silently restart an active window.
func subscriptionVerifyFilter(subID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":    subID,
		"status": models.SubscriptionStatusPending,
	}
}

// subscriptionVerifyUpdate activates the subscription and restarts the
// 30-day window at verification time.
func subscriptionVerifyUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"status":    models.SubscriptionStatusActive,
		"startDate": now,
		"endDate":   now.Add(models.SubscriptionWindow),
	}}
}

// VerifySubscription activates a pending subscription. The 30-day window
// restarts at verification so approval delay doesn't eat paid time.
// Verifying an already-active subscription is a no-op that reports success
// without touching the running window.
func (sc *SubscriptionController) VerifySubscription(c echo.Context) error {
	subID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Subscription not found",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	result, err := sc.DB.Collection("subscriptions").UpdateOne(ctx,
		subscriptionVerifyFilter(subID), subscriptionVerifyUpdate(now))
	if err != nil {
		sc.logger.Printf("Error verifying subscription %s: %v", subID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify subscription",
		})
	}
	if result.MatchedCount == 0 {
		count, countErr := sc.DB.Collection("subscriptions").CountDocuments(ctx, bson.M{"_id": subID})
		if countErr != nil {
			sc.logger.Printf("Error checking subscription %s: %v", subID.Hex(), countErr)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to verify subscription",
			})
		}
		if count == 0 {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Subscription not found",
			})
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Subscription is already active",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription verified successfully",
	})
}
