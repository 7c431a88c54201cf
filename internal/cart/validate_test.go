package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
)

func TestValidateDraftHappyPath(t *testing.T) {
	member := int64(12)
	draft := NewTransactionDraft()
	draft.MemberID = &member
	draft.DueDate = "2026-09-15"
	draft.Items = append(draft.Items, productItem("Water", 5000, 1))

	require.NoError(t, ValidateDraft(draft))
}

func TestValidateDraftCollectsAllViolations(t *testing.T) {
	draft := NewTransactionDraft()
	draft.DueDate = "15-09-2026"
	draft.Discount = decimal.NewFromInt(-1)
	draft.Items = append(draft.Items, LineItemDraft{
		Kind:     ItemKindPackage,
		Name:     "PT",
		Price:    decimal.NewFromInt(-100),
		Quantity: 0,
	})

	err := ValidateDraft(draft)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	fields, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "due_date")
	assert.Contains(t, fields, "discount")
	assert.Contains(t, fields, "member_id")
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "items[0].price")
	assert.Contains(t, fields, "items[0].package_id")
}

func TestValidateDraftRequiresItems(t *testing.T) {
	err := ValidateDraft(NewTransactionDraft())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	fields := typed.Details().(map[string]string)
	assert.Contains(t, fields, "items")
}

func TestValidateDraftMemberOptionalForProductsOnly(t *testing.T) {
	draft := NewTransactionDraft()
	draft.Items = append(draft.Items, productItem("Drink", 10000, 1))

	if err := ValidateDraft(draft); err != nil {
		t.Fatalf("walk-in product sale should validate: %v", err)
	}
}
