package checkout

import (
	"github.com/shopspring/decimal"
)

// PaymentRequest adds one allocation to the draft. A zero amount means "the
// outstanding balance".
type PaymentRequest struct {
	ID     int64           `json:"id" validate:"required"`
	Name   string          `json:"name" validate:"required"`
	IsCash bool            `json:"is_cash"`
	Amount decimal.Decimal `json:"amount"`
}

// SubmitRequest confirms how the sale settles. The two partial modes mirror
// the confirmation dialog's buttons: "partial" leaves a purchased package
// inactive, "partial_active" activates it despite the balance.
type SubmitRequest struct {
	Mode string `json:"mode" validate:"required,oneof=full unpaid partial partial_active"`
}
