package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/migios-apps/migios-console-api/internal/cart"
	"github.com/migios-apps/migios-console-api/internal/draft"
	"github.com/migios-apps/migios-console-api/pkg/coreapi"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

// Mode is the settlement intent chosen by the operator. The two partial modes
// map onto the confirmation dialog's two buttons: ModePartial leaves any
// purchased package inactive, ModePartialActive activates it despite the
// outstanding balance.
type Mode string

const (
	ModeFull          Mode = "full"
	ModeUnpaid        Mode = "unpaid"
	ModePartial       Mode = "partial"
	ModePartialActive Mode = "partial_active"
)

func (m Mode) partial() bool {
	return m == ModePartial || m == ModePartialActive
}

// SubmitInput carries the operator's confirmation of how the sale settles.
type SubmitInput struct {
	Mode Mode `json:"mode"`
}

// Result is returned after a successful submission.
type Result struct {
	Receipt *coreapi.CheckoutReceipt `json:"receipt"`
	Summary *cart.CartSummary        `json:"summary"`
	State   State                    `json:"state"`
}

type draftStore interface {
	Load(ctx context.Context, key draft.Key) (*draft.Envelope, error)
	Clear(ctx context.Context, key draft.Key) (*draft.Envelope, error)
}

type submitter interface {
	SubmitCheckout(ctx context.Context, payload coreapi.CheckoutPayload) (*coreapi.CheckoutReceipt, error)
}

type cacheInvalidator interface {
	Del(ctx context.Context, keys ...string) error
	SalesListCacheKey(clubID string) string
}

// Service drives the checkout flow: validate, aggregate, map the settlement
// mode, submit once, and reset the draft on success. The draft is never touched
// on failure so the operator can correct and resubmit.
type Service struct {
	drafts draftStore
	core   submitter
	cache  cacheInvalidator
	logger *logger.Logger
}

// NewService wires the orchestrator.
func NewService(drafts draftStore, core submitter, cache cacheInvalidator, logg *logger.Logger) (*Service, error) {
	if drafts == nil {
		return nil, errors.New("checkout service requires a draft store")
	}
	if core == nil {
		return nil, errors.New("checkout service requires a core api client")
	}
	if cache == nil {
		return nil, errors.New("checkout service requires a cache invalidator")
	}
	if logg == nil {
		return nil, errors.New("checkout service requires a logger")
	}
	return &Service{drafts: drafts, core: core, cache: cache, logger: logg}, nil
}

// Submit runs the single atomic checkout call for the terminal's draft.
func (s *Service) Submit(ctx context.Context, key draft.Key, input SubmitInput) (*Result, error) {
	envelope, err := s.drafts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	d := &envelope.TransactionDraft

	if err := cart.ValidateDraft(d); err != nil {
		return nil, err
	}

	summary, err := cart.Aggregate(d)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate cart")
	}

	isPaid, err := resolvePaidStatus(input.Mode, d, summary)
	if err != nil {
		return nil, err
	}

	state := StateReviewing
	if input.Mode.partial() {
		if state, err = Transition(state, StateConfirmingPartial); err != nil {
			return nil, err
		}
	}
	if state, err = Transition(state, StateSubmitting); err != nil {
		return nil, err
	}

	payload := buildPayload(key.ClubID, d, summary, isPaid)

	ctx = s.logger.WithClubID(ctx, key.ClubID)
	ctx = s.logger.WithTerminal(ctx, key.Terminal)
	s.logger.Info(ctx, fmt.Sprintf("submitting checkout, mode=%s is_paid=%d items=%d", input.Mode, isPaid, len(payload.Items)))

	receipt, err := s.core.SubmitCheckout(ctx, payload)
	if err != nil {
		state, _ = Transition(state, StateFailed)
		s.logger.Error(ctx, fmt.Sprintf("checkout %s, draft preserved", state), err)
		return nil, err
	}
	if state, err = Transition(state, StateSubmitted); err != nil {
		return nil, err
	}

	if err := s.cache.Del(ctx, s.cache.SalesListCacheKey(strconv.FormatInt(key.ClubID, 10))); err != nil {
		s.logger.Error(ctx, "sales list cache invalidation failed", err)
	}
	if _, err := s.drafts.Clear(ctx, key); err != nil {
		s.logger.Error(ctx, "draft reset after checkout failed", err)
	}

	s.logger.Info(ctx, fmt.Sprintf("checkout submitted, sale_id=%d invoice=%s", receipt.SaleID, receipt.InvoiceNumber))
	return &Result{Receipt: receipt, Summary: summary, State: state}, nil
}

// resolvePaidStatus maps the operator's mode onto the core API discriminator,
// guarding the combinations the screen disallows.
func resolvePaidStatus(mode Mode, d *cart.TransactionDraft, summary *cart.CartSummary) (int, error) {
	switch mode {
	case ModeFull:
		if summary.BalanceAmount.IsPositive() {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("outstanding balance %s must be paid before full settlement", summary.BalanceAmount.String())).
				WithDetails(map[string]string{"balance_amount": summary.BalanceAmount.String()})
		}
		return coreapi.PaidStatusFull, nil

	case ModeUnpaid:
		// Allocations are stripped from the payload, not rejected: saving as
		// unpaid discards whatever was tendered so far.
		return coreapi.PaidStatusUnpaid, nil

	case ModePartial, ModePartialActive:
		if !summary.BalanceAmount.IsPositive() {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict,
				"nothing outstanding; submit as fully paid instead")
		}
		if len(summary.Payments) == 0 {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict,
				"partial settlement requires at least one payment")
		}
		if mode == ModePartialActive {
			if !d.HasPackageItem() {
				return 0, pkgerrors.New(pkgerrors.CodeStateConflict,
					"no package on the transaction to activate")
			}
			return coreapi.PaidStatusPartialWithActive, nil
		}
		return coreapi.PaidStatusPartialNoPackage, nil

	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown settlement mode %q", mode))
	}
}

func buildPayload(clubID int64, d *cart.TransactionDraft, summary *cart.CartSummary, isPaid int) coreapi.CheckoutPayload {
	payload := coreapi.CheckoutPayload{
		ClubID:       clubID,
		MemberID:     d.MemberID,
		EmployeeID:   d.EmployeeID,
		IsPaid:       isPaid,
		DiscountType: string(d.DiscountType),
		Discount:     d.Discount,
		TaxRate:      d.TaxRate,
		DueDate:      d.DueDate,
		Items:        make([]coreapi.CheckoutItem, 0, len(d.Items)),
		Payments:     make([]coreapi.CheckoutPayment, 0, len(summary.Payments)),
		RefundFrom:   []coreapi.RefundSource{},
	}

	for _, item := range d.Items {
		row := coreapi.CheckoutItem{
			ItemType:     string(item.Kind),
			Quantity:     item.Quantity,
			Price:        item.Price,
			DiscountType: string(item.DiscountType),
			Discount:     item.Discount,
		}
		switch item.Kind {
		case cart.ItemKindPackage:
			if pkg := item.Package; pkg != nil {
				row.PackageID = &pkg.PackageID
				row.TrainerID = pkg.TrainerID
				row.ExtraSession = &pkg.ExtraSession
				row.ExtraDay = &pkg.ExtraDay
				if pkg.StartDate != "" {
					row.StartDate = &pkg.StartDate
				}
			}
		case cart.ItemKindProduct:
			if item.Product != nil {
				row.ProductID = &item.Product.ProductID
			}
		}
		payload.Items = append(payload.Items, row)
	}

	if isPaid != coreapi.PaidStatusUnpaid {
		for _, payment := range summary.Payments {
			payload.Payments = append(payload.Payments, coreapi.CheckoutPayment{
				ID:     payment.ID,
				Name:   payment.Name,
				Amount: payment.Amount,
			})
		}
	}

	return payload
}
