// controllers/ad_request_controller.go
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

// AdRequestController handles the ad request lifecycle
type AdRequestController struct {
	DB     *mongo.Database
	Files  storage.BlobStore
	logger *log.Logger
}

// NewAdRequestController creates a new ad request controller
func NewAdRequestController(db *mongo.Database, files storage.BlobStore) *AdRequestController {
	return &AdRequestController{
		DB:     db,
		Files:  files,
		logger: log.New(os.Stdout, "[ADS] ", log.LstdFlags),
	}
}

// CreateAdRequest creates a pending ad request, snapshotting the caller's
// name and email into the document.
func (arc *AdRequestController) CreateAdRequest(c echo.Context) error {
	var req models.CreateAdRequestRequest
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

	user, err := utils.GetUserFromToken(c, arc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ad := models.AdRequest{
		ClientID:     user.ID,
		ClientName:   user.Name,
		ClientEmail:  user.Email,
		Location:     req.Location,
		ProductNames: req.ProductNames,
		OtherInfo:    req.OtherInfo,
		Photos:       []string{},
		PaymentType:  req.PaymentType,
		Status:       models.AdStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	result, err := arc.DB.Collection("ad_requests").InsertOne(ctx, ad)
	if err != nil {
		arc.logger.Printf("Error inserting ad request: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create ad request",
		})
	}

	ad.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ad request created successfully",
		Data:    ad,
	})
}

// AttachPhotos replaces the ad request's photo list with URLs derived from
// the given file ids. Only the owner may attach; every file id must exist.
func (arc *AdRequestController) AttachPhotos(c echo.Context) error {
	adID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	var req models.AttachPhotosRequest
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

	var ad models.AdRequest
	err = arc.DB.Collection("ad_requests").FindOne(ctx, bson.M{"_id": adID}).Decode(&ad)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	if decision := utils.CanAccessAdRequest(utils.CallerRole(c), callerID, &ad); !decision.Allowed {
		// Not-owned collapses to 404
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: decision.Reason,
		})
	}

	// Every referenced file must exist before the list is replaced
	photoURLs := make([]string, 0, len(req.FileIDs))
	for _, fileID := range req.FileIDs {
		exists, err := arc.Files.Exists(ctx, fileID)
		if err != nil {
			arc.logger.Printf("Error checking file %s: %v", fileID, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to attach photos",
			})
		}
		if !exists {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown file id: " + fileID,
			})
		}
		photoURLs = append(photoURLs, "/api/files/"+fileID)
	}

	_, err = arc.DB.Collection("ad_requests").UpdateOne(ctx,
		bson.M{"_id": adID},
		bson.M{"$set": bson.M{"photos": photoURLs}},
	)
	if err != nil {
		arc.logger.Printf("Error updating photos for %s: %v", adID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to attach photos",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Photos attached successfully",
		Data:    map[string]interface{}{"photos": photoURLs},
	})
}

// GetAdRequests lists ad requests newest first. Admins see all, clients
// only their own.
func (arc *AdRequestController) GetAdRequests(c echo.Context) error {
	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if utils.CallerRole(c) != models.RoleAdmin {
		filter["clientId"] = callerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := arc.DB.Collection("ad_requests").Find(ctx, filter, opts)
	if err != nil {
		arc.logger.Printf("Error finding ad requests: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve ad requests",
		})
	}
	defer cursor.Close(ctx)

	ads := []models.AdRequest{}
	if err := cursor.All(ctx, &ads); err != nil {
		arc.logger.Printf("Error decoding ad requests: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve ad requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ad requests retrieved successfully",
		Data:    ads,
	})
}

// GetAdRequest fetches a single ad request, ownership-filtered
func (arc *AdRequestController) GetAdRequest(c echo.Context) error {
	adID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
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

	// Ownership is part of the query so absent and not-owned are
	// indistinguishable to the caller
	filter := bson.M{"_id": adID}
	if utils.CallerRole(c) != models.RoleAdmin {
		filter["clientId"] = callerID
	}

	var ad models.AdRequest
	err = arc.DB.Collection("ad_requests").FindOne(ctx, filter).Decode(&ad)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ad request retrieved successfully",
		Data:    ad,
	})
}

// UpdateAdStatus sets an ad request's status. Admin only; the new status
// must be a known value and a legal transition from the current one.
func (arc *AdRequestController) UpdateAdStatus(c echo.Context) error {
	adID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	var req models.UpdateAdStatusRequest
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

	newStatus, err := models.ParseAdStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var ad models.AdRequest
	err = arc.DB.Collection("ad_requests").FindOne(ctx, bson.M{"_id": adID}).Decode(&ad)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	if !ad.Status.CanTransition(newStatus) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot transition ad request from " + string(ad.Status) + " to " + string(newStatus),
		})
	}

	_, err = arc.DB.Collection("ad_requests").UpdateOne(ctx,
		bson.M{"_id": adID},
		bson.M{"$set": bson.M{"status": newStatus}},
	)
	if err != nil {
		arc.logger.Printf("Error updating status for %s: %v", adID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update ad request status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ad request status updated successfully",
	})
}
