// controllers/settings_controller.go
package controllers

import (
	"bytes"
	"context"
	"image/png"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/storage"
	"github.com/eilanhub/eilan_backend/utils"
)

const qrImageSize = 300

// SettingsController handles the admin settings singleton
type SettingsController struct {
	DB     *mongo.Database
	Files  storage.BlobStore
	logger *log.Logger
}

// NewSettingsController creates a new settings controller
func NewSettingsController(db *mongo.Database, files storage.BlobStore) *SettingsController {
	return &SettingsController{
		DB:     db,
		Files:  files,
		logger: log.New(os.Stdout, "[SETTINGS] ", log.LstdFlags),
	}
}

// GetSettings returns the settings singleton, creating an all-empty default
// on first read. Public route so clients can show payment QR codes before
// logging in.
func (stc *SettingsController) GetSettings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := stc.DB.Collection("admin_settings")

	var settings models.AdminSettings
	err := collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		settings = models.AdminSettings{}
		if _, err := collection.InsertOne(ctx, settings); err != nil {
			stc.logger.Printf("Error inserting default settings: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to retrieve settings",
			})
		}
	} else if err != nil {
		stc.logger.Printf("Error finding settings: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings retrieved successfully",
		Data:    settings,
	})
}

// buildSettingsUpdate turns a partial update into a $set document,
// skipping nil fields.
func buildSettingsUpdate(req models.AdminSettingsUpdate) bson.M {
	set := bson.M{}
	if req.ShamCashQR != nil {
		set["shamCashQr"] = *req.ShamCashQR
	}
	if req.SyriatelQR != nil {
		set["syriatelQr"] = *req.SyriatelQR
	}
	return set
}

// UpdateSettings applies a partial update to the singleton. Admin only.
func (stc *SettingsController) UpdateSettings(c echo.Context) error {
	var req models.AdminSettingsUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	set := buildSettingsUpdate(req)
	if len(set) == 0 {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Nothing to update",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	_, err := stc.DB.Collection("admin_settings").UpdateOne(ctx,
		bson.M{},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		stc.logger.Printf("Error updating settings: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings updated successfully",
	})
}

// GenerateQR renders a QR code for the given payload, stores it as a file,
// and points the chosen payment method's settings field at it. Admin only.
func (stc *SettingsController) GenerateQR(c echo.Context) error {
	var req models.GenerateQRRequest
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

	qrCode, err := qr.Encode(req.Payload, qr.M, qr.Auto)
	if err != nil {
		stc.logger.Printf("Error encoding QR payload: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	qrCode, err = barcode.Scale(qrCode, qrImageSize, qrImageSize)
	if err != nil {
		stc.logger.Printf("Error scaling QR code: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		stc.logger.Printf("Error encoding QR PNG: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	adminID, err := utils.CallerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	fileID, err := stc.Files.Put(ctx, storage.Blob{
		Filename:    req.PaymentMethod + "_qr.png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
		UploadedBy:  adminID,
	})
	if err != nil {
		stc.logger.Printf("Error storing QR image: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store QR code",
		})
	}

	qrURL := "/api/files/" + fileID

	var field string
	switch req.PaymentMethod {
	case models.PaymentMethodShamCash:
		field = "shamCashQr"
	case models.PaymentMethodSyriatel:
		field = "syriatelQr"
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown payment method: " + req.PaymentMethod,
		})
	}

	_, err = stc.DB.Collection("admin_settings").UpdateOne(ctx,
		bson.M{},
		bson.M{"$set": bson.M{field: qrURL}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		stc.logger.Printf("Error saving QR url to settings: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update settings",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data:    map[string]string{"file_id": fileID, "url": qrURL},
	})
}
