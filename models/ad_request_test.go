package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdStatus(t *testing.T) {
	for _, raw := range []string{"pending", "paid", "approved", "rejected"} {
		status, err := ParseAdStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, AdStatus(raw), status)
	}
}

func TestParseAdStatus_Invalid(t *testing.T) {
	for _, raw := range []string{"", "done", "PAID", "cancelled"} {
		_, err := ParseAdStatus(raw)
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestAdStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AdStatus
		to      AdStatus
		allowed bool
	}{
		{AdStatusPending, AdStatusPaid, true},
		{AdStatusPending, AdStatusApproved, true},
		{AdStatusPending, AdStatusRejected, true},
		{AdStatusPaid, AdStatusApproved, true},
		{AdStatusPaid, AdStatusRejected, true},
		{AdStatusPaid, AdStatusPending, false},
		{AdStatusApproved, AdStatusRejected, false},
		{AdStatusApproved, AdStatusPending, false},
		{AdStatusRejected, AdStatusApproved, false},
		{AdStatusRejected, AdStatusPaid, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}
