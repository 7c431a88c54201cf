package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountNominal DiscountType = "nominal"
	DiscountPercent DiscountType = "percent"
)

type ItemKind string

const (
	ItemKindPackage ItemKind = "package"
	ItemKindProduct ItemKind = "product"
)

// TaxRate is catalog metadata attached to a line item when it is added.
type TaxRate struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// PackageLine carries the package-only fields of a line item.
type PackageLine struct {
	PackageID    int64
	TrainerID    *int64
	ExtraSession int
	ExtraDay     int
	StartDate    string
	DurationDays int
}

// ProductLine carries the product-only fields of a line item.
type ProductLine struct {
	ProductID int64
}

// LineItemDraft is one sellable unit on the transaction. Exactly one of
// Package/Product is set, discriminated by Kind. Identified by position in the
// draft's item slice; there is no stable id until the sale is persisted.
type LineItemDraft struct {
	Kind         ItemKind
	Package      *PackageLine
	Product      *ProductLine
	Name         string
	Price        decimal.Decimal
	Quantity     int
	Discount     decimal.Decimal
	DiscountType DiscountType
	Taxes        []TaxRate
	LoyaltyPoint decimal.Decimal
}

// lineItemJSON is the flat wire shape with the item_type discriminator.
type lineItemJSON struct {
	ItemType     ItemKind        `json:"item_type"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountType DiscountType    `json:"discount_type"`
	Taxes        []TaxRate       `json:"taxes,omitempty"`
	LoyaltyPoint decimal.Decimal `json:"loyalty_point"`

	PackageID    *int64  `json:"package_id,omitempty"`
	TrainerID    *int64  `json:"trainer_id,omitempty"`
	ExtraSession *int    `json:"extra_session,omitempty"`
	ExtraDay     *int    `json:"extra_day,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty"`

	ProductID *int64 `json:"product_id,omitempty"`
}

func (l LineItemDraft) MarshalJSON() ([]byte, error) {
	wire := lineItemJSON{
		ItemType:     l.Kind,
		Name:         l.Name,
		Price:        l.Price,
		Quantity:     l.Quantity,
		Discount:     l.Discount,
		DiscountType: l.DiscountType,
		Taxes:        l.Taxes,
		LoyaltyPoint: l.LoyaltyPoint,
	}

	switch l.Kind {
	case ItemKindPackage:
		if l.Package == nil {
			return nil, fmt.Errorf("package line item missing package fields")
		}
		wire.PackageID = &l.Package.PackageID
		wire.TrainerID = l.Package.TrainerID
		wire.ExtraSession = &l.Package.ExtraSession
		wire.ExtraDay = &l.Package.ExtraDay
		if l.Package.StartDate != "" {
			wire.StartDate = &l.Package.StartDate
		}
		if l.Package.DurationDays > 0 {
			wire.DurationDays = &l.Package.DurationDays
		}
	case ItemKindProduct:
		if l.Product == nil {
			return nil, fmt.Errorf("product line item missing product fields")
		}
		wire.ProductID = &l.Product.ProductID
	default:
		return nil, fmt.Errorf("unknown item type %q", l.Kind)
	}

	return json.Marshal(wire)
}

func (l *LineItemDraft) UnmarshalJSON(data []byte) error {
	var wire lineItemJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	item := LineItemDraft{
		Kind:         wire.ItemType,
		Name:         wire.Name,
		Price:        wire.Price,
		Quantity:     wire.Quantity,
		Discount:     wire.Discount,
		DiscountType: wire.DiscountType,
		Taxes:        wire.Taxes,
		LoyaltyPoint: wire.LoyaltyPoint,
	}

	switch wire.ItemType {
	case ItemKindPackage:
		if wire.PackageID == nil {
			return fmt.Errorf("package line item requires package_id")
		}
		pkg := &PackageLine{PackageID: *wire.PackageID, TrainerID: wire.TrainerID}
		if wire.ExtraSession != nil {
			pkg.ExtraSession = *wire.ExtraSession
		}
		if wire.ExtraDay != nil {
			pkg.ExtraDay = *wire.ExtraDay
		}
		if wire.StartDate != nil {
			pkg.StartDate = *wire.StartDate
		}
		if wire.DurationDays != nil {
			pkg.DurationDays = *wire.DurationDays
		}
		item.Package = pkg
	case ItemKindProduct:
		if wire.ProductID == nil {
			return fmt.Errorf("product line item requires product_id")
		}
		item.Product = &ProductLine{ProductID: *wire.ProductID}
	default:
		return fmt.Errorf("unknown item type %q", wire.ItemType)
	}

	*l = item
	return nil
}

// PaymentAllocation assigns an amount to one payment method. Deduplicated by
// method id: same-id additions merge amounts instead of creating rows.
type PaymentAllocation struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	IsCash bool            `json:"is_cash,omitempty"`
}

// TransactionDraft is the unsaved transaction edited on the checkout screen.
type TransactionDraft struct {
	MemberID      *int64              `json:"member_id,omitempty"`
	MemberName    string              `json:"member_name,omitempty"`
	EmployeeID    *int64              `json:"employee_id,omitempty"`
	EmployeeName  string              `json:"employee_name,omitempty"`
	DueDate       string              `json:"due_date,omitempty"`
	Items         []LineItemDraft     `json:"items"`
	Payments      []PaymentAllocation `json:"payments"`
	Discount      decimal.Decimal     `json:"discount"`
	DiscountType  DiscountType        `json:"discount_type"`
	TaxRate       decimal.Decimal     `json:"tax_rate"`
	BalanceAmount decimal.Decimal     `json:"balance_amount"`
}

// NewTransactionDraft returns an empty draft ready for the checkout screen.
func NewTransactionDraft() *TransactionDraft {
	return &TransactionDraft{
		Items:        []LineItemDraft{},
		Payments:     []PaymentAllocation{},
		DiscountType: DiscountNominal,
	}
}

// HasPackageItem reports whether any line sells a package.
func (d *TransactionDraft) HasPackageItem() bool {
	for _, item := range d.Items {
		if item.Kind == ItemKindPackage {
			return true
		}
	}
	return false
}
