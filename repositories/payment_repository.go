// repositories/payment_repository.go
package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eilanhub/eilan_backend/models"
)

// ErrPaymentNotFound is returned when no payment exists for the given id.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrTransactionsUnsupported is returned by InTransaction when the
// deployment cannot run multi-document transactions (standalone Mongo).
var ErrTransactionsUnsupported = errors.New("transactions unsupported")

// PaymentRepository wraps the payment and ad request collections for the
// verify cascade.
type PaymentRepository struct {
	db *mongo.Database
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Collection("payments").FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// InTransaction runs fn inside a multi-document transaction.
func (r *PaymentRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return ErrTransactionsUnsupported
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		return ErrTransactionsUnsupported
	}
	return err
}

func (r *PaymentRepository) MarkPaymentVerified(ctx context.Context, id primitive.ObjectID, verifiedAt time.Time) (bool, error) {
	result, err := r.db.Collection("payments").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     models.PaymentStatusVerified,
			"verifiedAt": verifiedAt,
		}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// RevertPaymentVerification puts a payment back to pending and clears its
// verification timestamp.
func (r *PaymentRepository) RevertPaymentVerification(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.db.Collection("payments").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"status": models.PaymentStatusPending},
			"$unset": bson.M{"verifiedAt": ""},
		},
	)
	return err
}

// MarkAdRequestPaid moves the linked ad request to paid. Ads in a terminal
// state keep their status: the filter turns the write into a no-op for them
// instead of an illegal transition.
func (r *PaymentRepository) MarkAdRequestPaid(ctx context.Context, adRequestID primitive.ObjectID) error {
	_, err := r.db.Collection("ad_requests").UpdateOne(ctx,
		adRequestPaidFilter(adRequestID),
		bson.M{"$set": bson.M{"status": models.AdStatusPaid}},
	)
	return err
}

// adRequestPaidFilter matches only ad requests the cascade may move to
// paid: pending ones, plus already-paid ones where the write is idempotent.
func adRequestPaidFilter(adRequestID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":    adRequestID,
		"status": bson.M{"$in": []models.AdStatus{models.AdStatusPending, models.AdStatusPaid}},
	}
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
