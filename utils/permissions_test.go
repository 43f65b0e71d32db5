package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eilanhub/eilan_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRequireRole(t *testing.T) {
	assert.True(t, RequireRole(models.RoleAdmin, models.RoleAdmin).Allowed)
	assert.True(t, RequireRole(models.RoleClient, models.RoleClient).Allowed)

	decision := RequireRole(models.RoleClient, models.RoleAdmin)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
}

func TestCanAccessAdRequest(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	ad := &models.AdRequest{ClientID: owner}

	assert.True(t, CanAccessAdRequest(models.RoleClient, owner, ad).Allowed)
	assert.False(t, CanAccessAdRequest(models.RoleClient, other, ad).Allowed)

	// Admins see everything regardless of ownership
	assert.True(t, CanAccessAdRequest(models.RoleAdmin, other, ad).Allowed)
}

func TestCanAccessSubscription(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	sub := &models.Subscription{ClientID: owner}

	assert.True(t, CanAccessSubscription(models.RoleClient, owner, sub).Allowed)
	assert.False(t, CanAccessSubscription(models.RoleClient, other, sub).Allowed)
	assert.True(t, CanAccessSubscription(models.RoleAdmin, other, sub).Allowed)
}
