// utils/permissions.go
package utils

import (
	"github.com/eilanhub/eilan_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is the result of a capability check. Reason is only set when
// access is denied and is safe to surface to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// RequireRole checks that the caller holds the given role.
func RequireRole(role, required string) Decision {
	if role == required {
		return Allow()
	}
	return Deny("Access denied for your role")
}

// CanAccessAdRequest decides whether the caller may read or attach photos
// to an ad request. Admins see everything; clients only their own.
func CanAccessAdRequest(role string, callerID primitive.ObjectID, ad *models.AdRequest) Decision {
	if role == models.RoleAdmin {
		return Allow()
	}
	if ad.ClientID == callerID {
		return Allow()
	}
	return Deny("Ad request not found")
}

// CanAccessSubscription decides whether the caller may modify a subscription.
func CanAccessSubscription(role string, callerID primitive.ObjectID, sub *models.Subscription) Decision {
	if role == models.RoleAdmin {
		return Allow()
	}
	if sub.ClientID == callerID {
		return Allow()
	}
	return Deny("Subscription not found")
}
