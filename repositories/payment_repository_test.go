package repositories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eilanhub/eilan_backend/models"
)

func TestAdRequestPaidFilter(t *testing.T) {
	adID := primitive.NewObjectID()
	filter := adRequestPaidFilter(adID)

	assert.Equal(t, adID, filter["_id"])

	statusFilter, ok := filter["status"].(bson.M)
	require.True(t, ok)
	allowed, ok := statusFilter["$in"].([]models.AdStatus)
	require.True(t, ok)

	// Only statuses that may legally end up paid match; terminal ads stay put
	for _, status := range allowed {
		assert.True(t, status == models.AdStatusPaid || status.CanTransition(models.AdStatusPaid),
			"status %q must not be walked back to paid", status)
	}
	assert.NotContains(t, allowed, models.AdStatusApproved)
	assert.NotContains(t, allowed, models.AdStatusRejected)
	assert.Contains(t, allowed, models.AdStatusPending)
}

func TestTransactionsUnsupported(t *testing.T) {
	assert.True(t, transactionsUnsupported(mongo.CommandError{
		Code:    20,
		Name:    "IllegalOperation",
		Message: "Transaction numbers are only allowed on a replica set member or mongos",
	}))
	assert.True(t, transactionsUnsupported(errors.New(
		"(IllegalOperation) Transaction numbers are only allowed on a replica set member or mongos")))
	assert.False(t, transactionsUnsupported(errors.New("connection reset by peer")))
}
