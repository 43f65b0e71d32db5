package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eilanhub/eilan_backend/models"
)

func strPtr(s string) *string { return &s }

func TestBuildSettingsUpdate(t *testing.T) {
	set := buildSettingsUpdate(models.AdminSettingsUpdate{
		ShamCashQR: strPtr("/api/files/abc"),
	})
	assert.Equal(t, "/api/files/abc", set["shamCashQr"])
	assert.NotContains(t, set, "syriatelQr")

	set = buildSettingsUpdate(models.AdminSettingsUpdate{
		ShamCashQR: strPtr(""),
		SyriatelQR: strPtr("/api/files/def"),
	})
	// Empty string is a deliberate clear, not a skip
	assert.Equal(t, "", set["shamCashQr"])
	assert.Equal(t, "/api/files/def", set["syriatelQr"])
}

func TestBuildSettingsUpdate_Empty(t *testing.T) {
	set := buildSettingsUpdate(models.AdminSettingsUpdate{})
	assert.Empty(t, set)
}
