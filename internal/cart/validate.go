package cart

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
)

const dueDateLayout = "2006-01-02"

// ValidateDraft checks the draft is submittable. All violations are collected
// so the operator sees every problem at once; the returned error carries a
// field->message map in its details.
func ValidateDraft(d *TransactionDraft) error {
	if d == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction draft is nil")
	}

	var errs error
	fields := map[string]string{}
	record := func(field, message string) {
		errs = multierr.Append(errs, fmt.Errorf("%s: %s", field, message))
		fields[field] = message
	}

	if len(d.Items) == 0 {
		record("items", "at least one line item is required")
	}

	if d.HasPackageItem() && d.MemberID == nil {
		record("member_id", "a member is required when selling a package")
	}

	if d.DueDate != "" {
		if _, err := time.Parse(dueDateLayout, d.DueDate); err != nil {
			record("due_date", "must use format YYYY-MM-DD")
		}
	}

	if d.Discount.IsNegative() {
		record("discount", "must not be negative")
	}
	if d.TaxRate.IsNegative() {
		record("tax_rate", "must not be negative")
	}

	for i, item := range d.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.Quantity < 1 {
			record(prefix+".quantity", "must be at least 1")
		}
		if item.Price.IsNegative() {
			record(prefix+".price", "must not be negative")
		}
		if item.Discount.IsNegative() {
			record(prefix+".discount", "must not be negative")
		}
		switch item.Kind {
		case ItemKindPackage:
			if item.Package == nil {
				record(prefix+".package_id", "package fields are required")
			}
		case ItemKindProduct:
			if item.Product == nil {
				record(prefix+".product_id", "product fields are required")
			}
		default:
			record(prefix+".item_type", fmt.Sprintf("unknown item type %q", item.Kind))
		}
	}

	for i, payment := range d.Payments {
		if payment.Amount.IsNegative() {
			record(fmt.Sprintf("payments[%d].amount", i), "must not be negative")
		}
	}

	if errs == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "transaction draft is not submittable").
		WithDetails(fields)
}
