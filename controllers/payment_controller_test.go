package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/repositories"
)

// fakePaymentStore keeps one payment and one ad request in memory. The
// transaction path snapshots and restores state on error, matching the
// all-or-nothing behavior of a real session.
type fakePaymentStore struct {
	payment       *models.Payment
	paymentStatus string
	verifiedAt    *time.Time
	adStatus      models.AdStatus

	txSupported bool
	failAdWrite bool
	reverted    bool
}

func (f *fakePaymentStore) FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	if f.payment == nil || f.payment.ID != id {
		return nil, repositories.ErrPaymentNotFound
	}
	p := *f.payment
	return &p, nil
}

func (f *fakePaymentStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !f.txSupported {
		return repositories.ErrTransactionsUnsupported
	}
	status, verifiedAt, adStatus := f.paymentStatus, f.verifiedAt, f.adStatus
	if err := fn(ctx); err != nil {
		f.paymentStatus, f.verifiedAt, f.adStatus = status, verifiedAt, adStatus
		return err
	}
	return nil
}

func (f *fakePaymentStore) MarkPaymentVerified(ctx context.Context, id primitive.ObjectID, verifiedAt time.Time) (bool, error) {
	if f.payment == nil || f.payment.ID != id {
		return false, nil
	}
	f.paymentStatus = models.PaymentStatusVerified
	f.verifiedAt = &verifiedAt
	return true, nil
}

func (f *fakePaymentStore) MarkAdRequestPaid(ctx context.Context, adRequestID primitive.ObjectID) error {
	if f.failAdWrite {
		return errors.New("ad request write failed")
	}
	// Mirrors the status filter on the real update: terminal ads keep their state
	if f.adStatus == models.AdStatusPending || f.adStatus == models.AdStatusPaid {
		f.adStatus = models.AdStatusPaid
	}
	return nil
}

func (f *fakePaymentStore) RevertPaymentVerification(ctx context.Context, id primitive.ObjectID) error {
	f.paymentStatus = models.PaymentStatusPending
	f.verifiedAt = nil
	f.reverted = true
	return nil
}

func newVerifyContext(t *testing.T, paymentID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/payments/"+paymentID.Hex()+"/verify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/payments/:id/verify")
	c.SetParamNames("id")
	c.SetParamValues(paymentID.Hex())
	return c, rec
}

func newVerifyFixture(txSupported bool, adStatus models.AdStatus) (*PaymentController, *fakePaymentStore) {
	store := &fakePaymentStore{
		payment: &models.Payment{
			ID:          primitive.NewObjectID(),
			AdRequestID: primitive.NewObjectID(),
			Status:      models.PaymentStatusPending,
		},
		paymentStatus: models.PaymentStatusPending,
		adStatus:      adStatus,
		txSupported:   txSupported,
	}
	pc := &PaymentController{
		Store:  store,
		logger: log.New(io.Discard, "", 0),
	}
	return pc, store
}

func TestVerifyPayment_CascadesInTransaction(t *testing.T) {
	pc, store := newVerifyFixture(true, models.AdStatusPending)
	c, rec := newVerifyContext(t, store.payment.ID)

	require.NoError(t, pc.VerifyPayment(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentStatusVerified, store.paymentStatus)
	require.NotNil(t, store.verifiedAt)
	assert.WithinDuration(t, time.Now().UTC(), *store.verifiedAt, 5*time.Second)
	assert.Equal(t, models.AdStatusPaid, store.adStatus)
}

func TestVerifyPayment_CascadesWithoutTransactionSupport(t *testing.T) {
	pc, store := newVerifyFixture(false, models.AdStatusPending)
	c, rec := newVerifyContext(t, store.payment.ID)

	require.NoError(t, pc.VerifyPayment(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentStatusVerified, store.paymentStatus)
	assert.NotNil(t, store.verifiedAt)
	assert.Equal(t, models.AdStatusPaid, store.adStatus)
}

func TestVerifyPayment_RollsBackOnAdWriteFailure(t *testing.T) {
	pc, store := newVerifyFixture(false, models.AdStatusPending)
	store.failAdWrite = true
	c, rec := newVerifyContext(t, store.payment.ID)

	require.NoError(t, pc.VerifyPayment(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, store.reverted)
	assert.Equal(t, models.PaymentStatusPending, store.paymentStatus)
	assert.Nil(t, store.verifiedAt)
	assert.Equal(t, models.AdStatusPending, store.adStatus)
}

func TestVerifyPayment_TransactionAbortsBothWrites(t *testing.T) {
	pc, store := newVerifyFixture(true, models.AdStatusPending)
	store.failAdWrite = true
	c, rec := newVerifyContext(t, store.payment.ID)

	require.NoError(t, pc.VerifyPayment(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, models.PaymentStatusPending, store.paymentStatus)
	assert.Nil(t, store.verifiedAt)
	assert.Equal(t, models.AdStatusPending, store.adStatus)
}

func TestVerifyPayment_TerminalAdKeepsStatus(t *testing.T) {
	pc, store := newVerifyFixture(true, models.AdStatusApproved)
	c, rec := newVerifyContext(t, store.payment.ID)

	require.NoError(t, pc.VerifyPayment(c))

	// The payment still verifies, but an approved ad never walks back to paid
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentStatusVerified, store.paymentStatus)
	assert.Equal(t, models.AdStatusApproved, store.adStatus)
}

func TestVerifyPayment_UnknownPaymentReturns404(t *testing.T) {
	pc, _ := newVerifyFixture(true, models.AdStatusPending)
	c, rec := newVerifyContext(t, primitive.NewObjectID())

	require.NoError(t, pc.VerifyPayment(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
