// models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
)

// Payment methods
const (
	PaymentMethodShamCash = "sham_cash"
	PaymentMethodSyriatel = "syriatel"
)

// Payment model. Linked to a single ad request; verified only by admins.
type Payment struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AdRequestID   primitive.ObjectID `json:"adRequestId" bson:"adRequestId"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	ScreenshotURL string             `json:"screenshotUrl" bson:"screenshotUrl"`
	Status        string             `json:"status" bson:"status"` // "pending" or "verified"
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	VerifiedAt    *time.Time         `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
}

type CreatePaymentRequest struct {
	AdRequestID   string `json:"adRequestId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=sham_cash syriatel"`
}

type AttachScreenshotRequest struct {
	FileID string `json:"fileId" validate:"required"`
}
