// models/ad_request.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdStatus is the lifecycle state of an ad request.
type AdStatus string

const (
	AdStatusPending  AdStatus = "pending"
	AdStatusPaid     AdStatus = "paid"
	AdStatusApproved AdStatus = "approved"
	AdStatusRejected AdStatus = "rejected"
)

// adStatusTransitions lists the allowed next states per status.
// Approved and rejected are terminal.
var adStatusTransitions = map[AdStatus][]AdStatus{
	AdStatusPending:  {AdStatusPaid, AdStatusApproved, AdStatusRejected},
	AdStatusPaid:     {AdStatusApproved, AdStatusRejected},
	AdStatusApproved: {},
	AdStatusRejected: {},
}

// ParseAdStatus validates a raw status string.
func ParseAdStatus(s string) (AdStatus, error) {
	status := AdStatus(s)
	if _, ok := adStatusTransitions[status]; !ok {
		return "", fmt.Errorf("invalid ad request status: %q", s)
	}
	return status, nil
}

// CanTransition reports whether moving from the current status to next is allowed.
func (s AdStatus) CanTransition(next AdStatus) bool {
	for _, allowed := range adStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AdRequest model. Client name/email are snapshotted at creation time.
type AdRequest struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ClientID     primitive.ObjectID `json:"clientId" bson:"clientId"`
	ClientName   string             `json:"clientName" bson:"clientName"`
	ClientEmail  string             `json:"clientEmail" bson:"clientEmail"`
	Location     string             `json:"location" bson:"location"`
	ProductNames string             `json:"productNames" bson:"productNames"`
	OtherInfo    string             `json:"otherInfo" bson:"otherInfo"`
	Photos       []string           `json:"photos" bson:"photos"`
	PaymentType  string             `json:"paymentType" bson:"paymentType"` // "per-ad" or "subscription"
	Status       AdStatus           `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

type CreateAdRequestRequest struct {
	Location     string `json:"location" validate:"required"`
	ProductNames string `json:"productNames" validate:"required"`
	OtherInfo    string `json:"otherInfo"`
	PaymentType  string `json:"paymentType" validate:"required,oneof=per-ad subscription"`
}

type AttachPhotosRequest struct {
	FileIDs []string `json:"fileIds" validate:"required,min=1"`
}

type UpdateAdStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
