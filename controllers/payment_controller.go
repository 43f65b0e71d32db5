// controllers/payment_controller.go
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
	"github.com/eilanhub/eilan_backend/repositories"
	"github.com/eilanhub/eilan_backend/storage"
	"github.com/eilanhub/eilan_backend/utils"
)

// PaymentStore is the persistence surface the verify cascade needs.
type PaymentStore interface {
	FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	MarkPaymentVerified(ctx context.Context, id primitive.ObjectID, verifiedAt time.Time) (bool, error)
	MarkAdRequestPaid(ctx context.Context, adRequestID primitive.ObjectID) error
	RevertPaymentVerification(ctx context.Context, id primitive.ObjectID) error
}

// PaymentController handles the payment lifecycle
type PaymentController struct {
	DB     *mongo.Database
	Files  storage.BlobStore
	Store  PaymentStore
	logger *log.Logger
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *mongo.Database, files storage.BlobStore) *PaymentController {
	return &PaymentController{
		DB:     db,
		Files:  files,
		Store:  repositories.NewPaymentRepository(db),
		logger: log.New(os.Stdout, "[PAYMENTS] ", log.LstdFlags),
	}
}

// CreatePayment creates a pending payment for one of the caller's ad requests
func (pc *PaymentController) CreatePayment(c echo.Context) error {
	var req models.CreatePaymentRequest
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

	adID, err := primitive.ObjectIDFromHex(req.AdRequestID)
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

	// The referenced ad request must belong to the caller
	count, err := pc.DB.Collection("ad_requests").CountDocuments(ctx,
		bson.M{"_id": adID, "clientId": callerID})
	if err != nil {
		pc.logger.Printf("Error checking ad request ownership: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create payment",
		})
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Ad request not found",
		})
	}

	payment := models.Payment{
		AdRequestID:   adID,
		PaymentMethod: req.PaymentMethod,
		ScreenshotURL: "",
		Status:        models.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	result, err := pc.DB.Collection("payments").InsertOne(ctx, payment)
	if err != nil {
		pc.logger.Printf("Error inserting payment: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create payment",
		})
	}

	payment.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment created successfully",
		Data:    payment,
	})
}

// AttachScreenshot sets the payment's proof screenshot. The caller must own
// the linked ad request (admins bypass the ownership check).
func (pc *PaymentController) AttachScreenshot(c echo.Context) error {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment not found",
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

	var payment models.Payment
	err = pc.DB.Collection("payments").FindOne(ctx, bson.M{"_id": paymentID}).Decode(&payment)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment not found",
		})
	}

	var ad models.AdRequest
	err = pc.DB.Collection("ad_requests").FindOne(ctx, bson.M{"_id": payment.AdRequestID}).Decode(&ad)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment not found",
		})
	}

	if decision := utils.CanAccessAdRequest(utils.CallerRole(c), callerID, &ad); !decision.Allowed {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment not found",
		})
	}

	exists, err := pc.Files.Exists(ctx, req.FileID)
	if err != nil {
		pc.logger.Printf("Error checking file %s: %v", req.FileID, err)
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
	_, err = pc.DB.Collection("payments").UpdateOne(ctx,
		bson.M{"_id": paymentID},
		bson.M{"$set": bson.M{"screenshotUrl": screenshotURL}},
	)
	if err != nil {
		pc.logger.Printf("Error attaching screenshot to %s: %v", paymentID.Hex(), err)
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

// GetPayments lists payments newest first. Admins see all; clients see
// payments belonging to their own ad requests.
func (pc *PaymentController) GetPayments(c echo.Context) error {
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
		cursor, err := pc.DB.Collection("ad_requests").Find(ctx,
			bson.M{"clientId": callerID},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			pc.logger.Printf("Error finding caller's ad requests: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to retrieve payments",
			})
		}

		var ownedAds []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(ctx, &ownedAds); err != nil {
			pc.logger.Printf("Error decoding ad request ids: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to retrieve payments",
			})
		}

		adIDs := make([]primitive.ObjectID, 0, len(ownedAds))
		for _, ad := range ownedAds {
			adIDs = append(adIDs, ad.ID)
		}
		filter["adRequestId"] = bson.M{"$in": adIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := pc.DB.Collection("payments").Find(ctx, filter, opts)
	if err != nil {
		pc.logger.Printf("Error finding payments: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payments",
		})
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		pc.logger.Printf("Error decoding payments: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

// VerifyPayment marks a payment verified and cascades the linked ad request
// to "paid". Both writes happen in a transaction where the deployment
// supports one; otherwise a compensating rollback keeps the cascade
// all-or-nothing from the caller's perspective. An ad request already in a
// terminal state keeps its status: the payment record is still verified, but
// the cascade never walks an approved or rejected ad back to paid.
func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment not found",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	payment, err := pc.Store.FindPayment(ctx, paymentID)
	if err != nil {
		if err == repositories.ErrPaymentNotFound {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Payment not found",
			})
		}
		pc.logger.Printf("Error loading payment %s: %v", paymentID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify payment",
		})
	}

	verifiedAt := time.Now().UTC()

	err = pc.runVerifyCascade(ctx, paymentID, payment.AdRequestID, verifiedAt)
	if err != nil {
		if err == repositories.ErrPaymentNotFound {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Payment not found",
			})
		}
		pc.logger.Printf("Error verifying payment %s: %v", paymentID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify payment",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment verified successfully",
	})
}

func (pc *PaymentController) runVerifyCascade(ctx context.Context, paymentID, adRequestID primitive.ObjectID, verifiedAt time.Time) error {
	err := pc.Store.InTransaction(ctx, func(txCtx context.Context) error {
		return pc.applyVerifyWrites(txCtx, paymentID, adRequestID, verifiedAt)
	})
	if err == repositories.ErrTransactionsUnsupported {
		// Standalone Mongo refuses multi-document transactions
		return pc.verifyWithCompensation(ctx, paymentID, adRequestID, verifiedAt)
	}
	return err
}

func (pc *PaymentController) applyVerifyWrites(ctx context.Context, paymentID, adRequestID primitive.ObjectID, verifiedAt time.Time) error {
	matched, err := pc.Store.MarkPaymentVerified(ctx, paymentID, verifiedAt)
	if err != nil {
		return err
	}
	if !matched {
		return repositories.ErrPaymentNotFound
	}

	return pc.Store.MarkAdRequestPaid(ctx, adRequestID)
}

// verifyWithCompensation performs the two writes in order and rolls the
// payment back to pending if the ad request write fails, so a reported
// success always means both documents were updated.
func (pc *PaymentController) verifyWithCompensation(ctx context.Context, paymentID, adRequestID primitive.ObjectID, verifiedAt time.Time) error {
	matched, err := pc.Store.MarkPaymentVerified(ctx, paymentID, verifiedAt)
	if err != nil {
		return err
	}
	if !matched {
		return repositories.ErrPaymentNotFound
	}

	if err := pc.Store.MarkAdRequestPaid(ctx, adRequestID); err != nil {
		if rollbackErr := pc.Store.RevertPaymentVerification(ctx, paymentID); rollbackErr != nil {
			pc.logger.Printf("Rollback of payment %s failed: %v", paymentID.Hex(), rollbackErr)
		}
		return err
	}

	return nil
}
