package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate derives the cart view model from a draft. No side effects, no
// network access: identical drafts yield structurally equal summaries.
func Aggregate(d *TransactionDraft) (*CartSummary, error) {
	if d == nil {
		return nil, fmt.Errorf("transaction draft is nil")
	}

	summary := &CartSummary{
		Items:    make([]ResolvedCartLine, 0, len(d.Items)),
		Payments: MergePayments(d.Payments),
	}

	for i, item := range d.Items {
		line, err := resolveLine(i, item)
		if err != nil {
			return nil, err
		}
		summary.Items = append(summary.Items, line)
		summary.Subtotal = summary.Subtotal.Add(line.NetAmount.Sub(taxTotal(line.Taxes)))
		summary.TotalTax = summary.TotalTax.Add(taxTotal(line.Taxes))
		summary.LoyaltyPoint = summary.LoyaltyPoint.Add(line.LoyaltyPoint)
	}

	headerDiscount, err := discountAmount(summary.Subtotal, d.Discount, d.DiscountType)
	if err != nil {
		return nil, err
	}
	summary.DiscountAmount = headerDiscount

	taxedBase := summary.Subtotal.Sub(headerDiscount)
	headerTax := taxedBase.Mul(d.TaxRate).Div(hundred).Round(2)
	summary.TotalTax = summary.TotalTax.Add(headerTax)

	summary.TotalAmount = taxedBase.Add(summary.TotalTax)
	summary.BalanceAmount = summary.TotalAmount.Sub(PaymentsTotal(summary.Payments))

	return summary, nil
}

func resolveLine(index int, item LineItemDraft) (ResolvedCartLine, error) {
	gross := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

	discount, err := discountAmount(gross, item.Discount, item.DiscountType)
	if err != nil {
		return ResolvedCartLine{}, fmt.Errorf("item %d: %w", index, err)
	}

	taxable := gross.Sub(discount)
	taxes := make([]TaxLine, 0, len(item.Taxes))
	taxSum := decimal.Zero
	for _, rate := range item.Taxes {
		amount := taxable.Mul(rate.Rate).Div(hundred).Round(2)
		taxes = append(taxes, TaxLine{ID: rate.ID, Name: rate.Name, Rate: rate.Rate, Amount: amount})
		taxSum = taxSum.Add(amount)
	}

	line := ResolvedCartLine{
		Index:          index,
		Kind:           item.Kind,
		Name:           item.Name,
		Quantity:       item.Quantity,
		GrossAmount:    gross,
		DiscountAmount: discount,
		Taxes:          taxes,
		NetAmount:      taxable.Add(taxSum),
		LoyaltyPoint:   item.LoyaltyPoint.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}

	switch item.Kind {
	case ItemKindPackage:
		if item.Package == nil {
			return ResolvedCartLine{}, fmt.Errorf("item %d: package fields missing", index)
		}
		line.DurationDays = item.Package.DurationDays
		line.ExtraSession = item.Package.ExtraSession
		line.ExtraDay = item.Package.ExtraDay
		line.StartDate = item.Package.StartDate
	case ItemKindProduct:
		if item.Product == nil {
			return ResolvedCartLine{}, fmt.Errorf("item %d: product fields missing", index)
		}
	default:
		return ResolvedCartLine{}, fmt.Errorf("item %d: unknown item type %q", index, item.Kind)
	}

	return line, nil
}

// discountAmount computes the deduction for one discount, clamped so the
// remaining amount never goes negative. A percent above 100 deducts the full
// base, nothing more.
func discountAmount(base, discount decimal.Decimal, kind DiscountType) (decimal.Decimal, error) {
	if !discount.IsPositive() {
		return decimal.Zero, nil
	}

	var amount decimal.Decimal
	switch kind {
	case DiscountNominal, "":
		amount = discount
	case DiscountPercent:
		amount = base.Mul(discount).Div(hundred).Round(2)
	default:
		return decimal.Zero, fmt.Errorf("unknown discount type %q", kind)
	}

	if amount.GreaterThan(base) {
		return base, nil
	}
	return amount, nil
}

func taxTotal(taxes []TaxLine) decimal.Decimal {
	total := decimal.Zero
	for _, tax := range taxes {
		total = total.Add(tax.Amount)
	}
	return total
}

// MergePayments deduplicates allocations by method id, summing amounts and
// keeping first-seen order.
func MergePayments(payments []PaymentAllocation) []PaymentAllocation {
	merged := make([]PaymentAllocation, 0, len(payments))
	byID := map[int64]int{}
	for _, payment := range payments {
		if at, ok := byID[payment.ID]; ok {
			merged[at].Amount = merged[at].Amount.Add(payment.Amount)
			continue
		}
		byID[payment.ID] = len(merged)
		merged = append(merged, payment)
	}
	return merged
}

// PaymentsTotal sums allocation amounts.
func PaymentsTotal(payments []PaymentAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	return total
}
