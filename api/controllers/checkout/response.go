package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/migios-apps/migios-console-api/internal/cart"
	checkoutsvc "github.com/migios-apps/migios-console-api/internal/checkout"
	"github.com/migios-apps/migios-console-api/internal/draft"
)

// DraftResponse is the stored draft plus its save timestamp.
type DraftResponse struct {
	cart.TransactionDraft
	Timestamp int64 `json:"_timestamp"`
}

func newDraftResponse(envelope *draft.Envelope) DraftResponse {
	return DraftResponse{TransactionDraft: envelope.TransactionDraft, Timestamp: envelope.Timestamp}
}

// CartResponse is the resolved cart view with the render-ready balance.
// PaymentRequired tells the console to block settlement and highlight the
// method selector until an allocation is added.
type CartResponse struct {
	*cart.CartSummary
	DisplayBalance  decimal.Decimal `json:"display_balance"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaymentRequired bool            `json:"payment_required"`
}

func newCartResponse(summary *cart.CartSummary) CartResponse {
	return CartResponse{
		CartSummary:     summary,
		DisplayBalance:  summary.DisplayBalance(),
		PaidAmount:      summary.PaidAmount(),
		PaymentRequired: summary.PaymentRequired(),
	}
}

// SubmitResponse acknowledges a completed checkout.
type SubmitResponse struct {
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	IsPaid        int             `json:"is_paid"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
}

func newSubmitResponse(result *checkoutsvc.Result) SubmitResponse {
	return SubmitResponse{
		SaleID:        result.Receipt.SaleID,
		InvoiceNumber: result.Receipt.InvoiceNumber,
		IsPaid:        result.Receipt.IsPaid,
		TotalAmount:   result.Summary.TotalAmount,
		BalanceAmount: result.Summary.DisplayBalance(),
	}
}
