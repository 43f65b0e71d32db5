// models/subscription.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription statuses
const (
	SubscriptionStatusPending = "pending"
	SubscriptionStatusActive  = "active"
)

// SubscriptionWindow is the length of a paid subscription period.
const SubscriptionWindow = 30 * 24 * time.Hour

// Subscription model. The 30-day window is provisional at creation and
// restarts when an admin verifies the payment.
type Subscription struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ClientID          primitive.ObjectID `json:"clientId" bson:"clientId"`
	ClientName        string             `json:"clientName" bson:"clientName"`
	ClientEmail       string             `json:"clientEmail" bson:"clientEmail"`
	StartDate         time.Time          `json:"startDate" bson:"startDate"`
	EndDate           time.Time          `json:"endDate" bson:"endDate"`
	Status            string             `json:"status" bson:"status"` // "pending" or "active"
	PaymentScreenshot string             `json:"paymentScreenshot" bson:"paymentScreenshot"`
	PaymentMethod     string             `json:"paymentMethod" bson:"paymentMethod"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
}

type CreateSubscriptionRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=sham_cash syriatel"`
}
