package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eilanhub/eilan_backend/models"
)

func TestSubscriptionVerifyFilter_MatchesOnlyPending(t *testing.T) {
	subID := primitive.NewObjectID()
	filter := subscriptionVerifyFilter(subID)

	assert.Equal(t, subID, filter["_id"])
	// An active subscription must never match, so a repeat verify cannot
	// restart its running window
	assert.Equal(t, models.SubscriptionStatusPending, filter["status"])
}

func TestSubscriptionVerifyUpdate_RestartsWindow(t *testing.T) {
	now := time.Now().UTC()
	update := subscriptionVerifyUpdate(now)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)

	assert.Equal(t, models.SubscriptionStatusActive, set["status"])
	assert.Equal(t, now, set["startDate"])

	endDate, ok := set["endDate"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, models.SubscriptionWindow, endDate.Sub(now))
}
