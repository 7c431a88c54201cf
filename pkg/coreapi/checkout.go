package coreapi

import "github.com/shopspring/decimal"

// Paid status discriminator sent on checkout submission.
const (
	PaidStatusUnpaid            = 0
	PaidStatusFull              = 1
	PaidStatusPartialNoPackage  = 2
	PaidStatusPartialWithActive = 3
)

// CheckoutPayload is the body accepted by the core API's checkout endpoint.
type CheckoutPayload struct {
	ClubID       int64             `json:"club_id"`
	MemberID     *int64            `json:"member_id,omitempty"`
	EmployeeID   *int64            `json:"employee_id,omitempty"`
	IsPaid       int               `json:"is_paid"`
	DiscountType string            `json:"discount_type"`
	Discount     decimal.Decimal   `json:"discount"`
	TaxRate      decimal.Decimal   `json:"tax_rate"`
	DueDate      string            `json:"due_date"`
	Items        []CheckoutItem    `json:"items"`
	Payments     []CheckoutPayment `json:"payments"`
	RefundFrom   []RefundSource    `json:"refund_from"`
}

// CheckoutItem is one line on the submission, shaped per item_type.
type CheckoutItem struct {
	ItemType     string          `json:"item_type"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	DiscountType string          `json:"discount_type"`
	Discount     decimal.Decimal `json:"discount"`

	// Package variant.
	PackageID    *int64  `json:"package_id,omitempty"`
	TrainerID    *int64  `json:"trainer_id,omitempty"`
	ExtraSession *int    `json:"extra_session,omitempty"`
	ExtraDay     *int    `json:"extra_day,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`

	// Product variant.
	ProductID *int64 `json:"product_id,omitempty"`
}

// CheckoutPayment is one payment allocation on the submission.
type CheckoutPayment struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// RefundSource is carried opaquely; the console never populates it.
type RefundSource struct {
	SaleID int64           `json:"sale_id"`
	Amount decimal.Decimal `json:"amount"`
}

// CheckoutReceipt is the acknowledgment returned by the core API.
type CheckoutReceipt struct {
	SaleID        int64  `json:"sale_id"`
	InvoiceNumber string `json:"invoice_number"`
	IsPaid        int    `json:"is_paid"`
}
