// models/admin_settings.go
package models

// AdminSettings is a singleton document holding the QR code image URLs
// shown to clients for each payment method. Lazily created with empty
// defaults on first read.
type AdminSettings struct {
	ShamCashQR string `json:"shamCashQr" bson:"shamCashQr"`
	SyriatelQR string `json:"syriatelQr" bson:"syriatelQr"`
}

// AdminSettingsUpdate carries a partial update; nil fields are left untouched.
type AdminSettingsUpdate struct {
	ShamCashQR *string `json:"shamCashQr,omitempty"`
	SyriatelQR *string `json:"syriatelQr,omitempty"`
}

type GenerateQRRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=sham_cash syriatel"`
	Payload       string `json:"payload" validate:"required"`
}
