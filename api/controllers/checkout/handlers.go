package checkout

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/migios-apps/migios-console-api/api/middleware"
	"github.com/migios-apps/migios-console-api/api/responses"
	"github.com/migios-apps/migios-console-api/api/validators"
	"github.com/migios-apps/migios-console-api/internal/cart"
	checkoutsvc "github.com/migios-apps/migios-console-api/internal/checkout"
	"github.com/migios-apps/migios-console-api/internal/draft"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

type draftStore interface {
	Load(ctx context.Context, key draft.Key) (*draft.Envelope, error)
	Save(ctx context.Context, key draft.Key, d *cart.TransactionDraft) (*draft.Envelope, error)
	Clear(ctx context.Context, key draft.Key) (*draft.Envelope, error)
}

type submitService interface {
	Submit(ctx context.Context, key draft.Key, input checkoutsvc.SubmitInput) (*checkoutsvc.Result, error)
}

func draftKeyFromRequest(r *http.Request, defaultTerminal string) (draft.Key, error) {
	clubID := middleware.ClubIDFromContext(r.Context())
	if clubID == 0 {
		return draft.Key{}, pkgerrors.New(pkgerrors.CodeForbidden, "club context missing")
	}
	terminal := middleware.TerminalFromContext(r.Context())
	if terminal == "" {
		terminal = defaultTerminal
	}
	return draft.Key{ClubID: clubID, Terminal: terminal}, nil
}

// DraftFetch returns the saved draft, or a fresh empty one when nothing is
// stored yet.
func DraftFetch(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := store.Load(r.Context(), key)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				responses.WriteSuccess(w, newDraftResponse(&draft.Envelope{TransactionDraft: *cart.NewTransactionDraft()}))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(envelope))
	}
}

// DraftSave overwrites the terminal's draft with the submitted one.
func DraftSave(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cart.TransactionDraft
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := store.Save(r.Context(), key, &payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(envelope))
	}
}

// DraftClear resets the terminal's draft to an empty transaction.
func DraftClear(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := store.Clear(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(envelope))
	}
}

// CartFetch aggregates the stored draft into the cart view model.
func CartFetch(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d := cart.NewTransactionDraft()
		envelope, err := store.Load(r.Context(), key)
		if err == nil {
			d = &envelope.TransactionDraft
		} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := cart.Aggregate(d)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate cart"))
			return
		}

		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

// PaymentAdd allocates an amount to a payment method on the stored draft.
func PaymentAdd(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload PaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mutateDraft(w, r, store, key, logg, func(d *cart.TransactionDraft) (*cart.CartSummary, error) {
			return cart.AddPayment(d, cart.PaymentMethod{
				ID:     payload.ID,
				Name:   payload.Name,
				IsCash: payload.IsCash,
			}, payload.Amount)
		})
	}
}

// PaymentRemove drops one allocation by method id.
func PaymentRemove(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methodID, err := strconv.ParseInt(chi.URLParam(r, "methodId"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "method id must be numeric"))
			return
		}

		mutateDraft(w, r, store, key, logg, func(d *cart.TransactionDraft) (*cart.CartSummary, error) {
			return cart.RemovePayment(d, methodID)
		})
	}
}

// PaymentsClear removes every allocation from the draft.
func PaymentsClear(store draftStore, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mutateDraft(w, r, store, key, logg, cart.ClearPayments)
	}
}

// mutateDraft loads the draft, applies the operation, saves, and writes the
// recomputed summary.
func mutateDraft(
	w http.ResponseWriter,
	r *http.Request,
	store draftStore,
	key draft.Key,
	logg *logger.Logger,
	op func(*cart.TransactionDraft) (*cart.CartSummary, error),
) {
	envelope, err := store.Load(r.Context(), key)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	d := &envelope.TransactionDraft

	summary, err := op(d)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	if _, err := store.Save(r.Context(), key, d); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccess(w, newCartResponse(summary))
}

// Submit runs the checkout for the terminal's draft.
func Submit(svc submitService, defaultTerminal string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		key, err := draftKeyFromRequest(r, defaultTerminal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), key, checkoutsvc.SubmitInput{Mode: checkoutsvc.Mode(payload.Mode)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result == nil || result.Receipt == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("empty checkout result"), "submit checkout"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSubmitResponse(result))
	}
}
