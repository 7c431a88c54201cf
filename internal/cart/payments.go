package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
)

// PaymentMethod is a catalog entry an operator can allocate against.
type PaymentMethod struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	IsCash bool   `json:"is_cash"`
}

// AddPayment allocates an amount to a method on the draft and returns the
// recomputed summary. A zero amount defaults to the outstanding balance. Adding
// the same method again merges into the existing row.
func AddPayment(d *TransactionDraft, method PaymentMethod, amount decimal.Decimal) (*CartSummary, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction draft is nil")
	}

	summary, err := Aggregate(d)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate cart")
	}

	outstanding := summary.DisplayBalance()
	if !outstanding.IsPositive() && !method.IsCash {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("balance is settled; %s cannot be added", method.Name))
	}

	if amount.IsZero() {
		amount = outstanding
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must not be negative")
	}

	paid := summary.PaidAmount().Add(amount)
	if paid.GreaterThan(summary.TotalAmount) && !method.IsCash {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payments %s exceed total %s", paid.String(), summary.TotalAmount.String()))
	}

	d.Payments = MergePayments(append(d.Payments, PaymentAllocation{
		ID:     method.ID,
		Name:   method.Name,
		Amount: amount,
		IsCash: method.IsCash,
	}))

	return Aggregate(d)
}

// RemovePayment drops one allocation by method id, returning the amount to the
// outstanding balance via re-aggregation.
func RemovePayment(d *TransactionDraft, methodID int64) (*CartSummary, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction draft is nil")
	}

	kept := make([]PaymentAllocation, 0, len(d.Payments))
	found := false
	for _, payment := range d.Payments {
		if payment.ID == methodID {
			found = true
			continue
		}
		kept = append(kept, payment)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("payment method %d not on transaction", methodID))
	}

	d.Payments = kept
	return Aggregate(d)
}

// ClearPayments removes every allocation from the draft.
func ClearPayments(d *TransactionDraft) (*CartSummary, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction draft is nil")
	}
	d.Payments = []PaymentAllocation{}
	return Aggregate(d)
}
