package cart

import "github.com/shopspring/decimal"

// TaxLine is one computed tax contribution on a resolved line.
type TaxLine struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// ResolvedCartLine is the display projection of one line item. Never mutated;
// always recomputed from its source LineItemDraft. Index points back at the
// draft slice for edit callbacks.
type ResolvedCartLine struct {
	Index          int             `json:"index"`
	Kind           ItemKind        `json:"item_type"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Taxes          []TaxLine       `json:"tax"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	LoyaltyPoint   decimal.Decimal `json:"loyalty_point"`

	// Package display extras; zero-valued for products.
	DurationDays int    `json:"duration_days,omitempty"`
	ExtraSession int    `json:"extra_session,omitempty"`
	ExtraDay     int    `json:"extra_day,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
}

// HasDiscount reports whether the gross amount should render struck through.
func (l ResolvedCartLine) HasDiscount() bool {
	return l.DiscountAmount.IsPositive()
}

// CartSummary is the fully resolved cart view model. Pure function output:
// no identity, recreated on every aggregation.
type CartSummary struct {
	Items          []ResolvedCartLine  `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalTax       decimal.Decimal     `json:"total_tax"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Payments       []PaymentAllocation `json:"payments"`
	BalanceAmount  decimal.Decimal     `json:"balance_amount"`
	LoyaltyPoint   decimal.Decimal     `json:"loyalty_point"`
}

// DisplayBalance clamps the outstanding balance at zero for rendering. The raw
// BalanceAmount may be negative so overpayment validation can read it.
func (s *CartSummary) DisplayBalance() decimal.Decimal {
	if s.BalanceAmount.IsNegative() {
		return decimal.Zero
	}
	return s.BalanceAmount
}

// PaidAmount sums the merged payment allocations.
func (s *CartSummary) PaidAmount() decimal.Decimal {
	return PaymentsTotal(s.Payments)
}

// Settled reports whether nothing is outstanding.
func (s *CartSummary) Settled() bool {
	return !s.BalanceAmount.IsPositive()
}

// PaymentRequired reports whether the console must demand an allocation before
// the transaction can settle: a positive total with nothing tendered yet.
func (s *CartSummary) PaymentRequired() bool {
	return len(s.Payments) == 0 && s.TotalAmount.IsPositive()
}
