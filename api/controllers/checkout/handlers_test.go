package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migios-apps/migios-console-api/api/middleware"
	"github.com/migios-apps/migios-console-api/internal/cart"
	checkoutsvc "github.com/migios-apps/migios-console-api/internal/checkout"
	"github.com/migios-apps/migios-console-api/internal/draft"
	"github.com/migios-apps/migios-console-api/pkg/coreapi"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/types"
)

type fakeDraftStore struct {
	envelopes map[draft.Key]*draft.Envelope
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{envelopes: map[draft.Key]*draft.Envelope{}}
}

func (f *fakeDraftStore) Load(_ context.Context, key draft.Key) (*draft.Envelope, error) {
	if envelope, ok := f.envelopes[key]; ok {
		return envelope, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft saved for this terminal")
}

func (f *fakeDraftStore) Save(_ context.Context, key draft.Key, d *cart.TransactionDraft) (*draft.Envelope, error) {
	envelope := &draft.Envelope{TransactionDraft: *d, Timestamp: 1234}
	f.envelopes[key] = envelope
	return envelope, nil
}

func (f *fakeDraftStore) Clear(ctx context.Context, key draft.Key) (*draft.Envelope, error) {
	return f.Save(ctx, key, cart.NewTransactionDraft())
}

type fakeSubmitService struct {
	result *checkoutsvc.Result
	err    error
	input  checkoutsvc.SubmitInput
}

func (f *fakeSubmitService) Submit(_ context.Context, _ draft.Key, input checkoutsvc.SubmitInput) (*checkoutsvc.Result, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithClubID(req.Context(), 12)
	ctx = middleware.WithTerminal(ctx, "pos-1")
	return req.WithContext(ctx)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object payload")
	return data
}

func TestDraftFetchReturnsEmptyWhenMissing(t *testing.T) {
	handler := DraftFetch(newFakeDraftStore(), "console", nil)

	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodGet, "/api/v1/checkout/draft", ""))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Empty(t, data["items"])
}

func TestDraftSaveRoundTrip(t *testing.T) {
	store := newFakeDraftStore()
	handler := DraftSave(store, "console", nil)

	body := `{"member_name":"Andi","items":[{"item_type":"product","product_id":3,"name":"Towel","price":"30000","quantity":1,"discount":"0","discount_type":"nominal","loyalty_point":"0"}],"payments":[],"discount":"0","discount_type":"nominal","tax_rate":"0","balance_amount":"0"}`
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPut, "/api/v1/checkout/draft", body))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := store.envelopes[draft.Key{ClubID: 12, Terminal: "pos-1"}]
	require.NotNil(t, saved)
	assert.Equal(t, "Andi", saved.MemberName)
	require.Len(t, saved.Items, 1)
}

func TestDraftFetchRequiresClubContext(t *testing.T) {
	handler := DraftFetch(newFakeDraftStore(), "console", nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/draft", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCartFetchAggregatesStoredDraft(t *testing.T) {
	store := newFakeDraftStore()
	key := draft.Key{ClubID: 12, Terminal: "pos-1"}
	d := cart.NewTransactionDraft()
	d.Items = append(d.Items, cart.LineItemDraft{
		Kind:     cart.ItemKindProduct,
		Product:  &cart.ProductLine{ProductID: 3},
		Name:     "Shake",
		Price:    decimal.NewFromInt(100000),
		Quantity: 2,
	})
	_, err := store.Save(context.Background(), key, d)
	require.NoError(t, err)

	handler := CartFetch(store, "console", nil)
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodGet, "/api/v1/checkout/cart", ""))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "200000", data["total_amount"])
	assert.Equal(t, "200000", data["display_balance"])
	assert.Equal(t, true, data["payment_required"], "positive total with no allocations demands a payment method")
}

func TestPaymentAddRecomputesBalance(t *testing.T) {
	store := newFakeDraftStore()
	key := draft.Key{ClubID: 12, Terminal: "pos-1"}
	d := cart.NewTransactionDraft()
	d.Items = append(d.Items, cart.LineItemDraft{
		Kind:     cart.ItemKindProduct,
		Product:  &cart.ProductLine{ProductID: 3},
		Name:     "Shake",
		Price:    decimal.NewFromInt(100000),
		Quantity: 1,
	})
	_, err := store.Save(context.Background(), key, d)
	require.NoError(t, err)

	handler := PaymentAdd(store, "console", nil)
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPost, "/api/v1/checkout/payments", `{"id":1,"name":"Cash","is_cash":true,"amount":"60000"}`))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "40000", data["balance_amount"])
	assert.Equal(t, false, data["payment_required"])

	saved := store.envelopes[key]
	require.Len(t, saved.Payments, 1)
}

func TestPaymentsClearRaisesPaymentRequired(t *testing.T) {
	store := newFakeDraftStore()
	key := draft.Key{ClubID: 12, Terminal: "pos-1"}
	d := cart.NewTransactionDraft()
	d.Items = append(d.Items, cart.LineItemDraft{
		Kind:     cart.ItemKindProduct,
		Product:  &cart.ProductLine{ProductID: 3},
		Name:     "Shake",
		Price:    decimal.NewFromInt(100000),
		Quantity: 1,
	})
	d.Payments = append(d.Payments, cart.PaymentAllocation{
		ID: 1, Name: "Cash", Amount: decimal.NewFromInt(60000), IsCash: true,
	})
	_, err := store.Save(context.Background(), key, d)
	require.NoError(t, err)

	handler := PaymentsClear(store, "console", nil)
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodDelete, "/api/v1/checkout/payments", ""))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Empty(t, data["payments"])
	assert.Equal(t, true, data["payment_required"], "clearing reopens the method-required state")
}

func TestPaymentRemoveUnknownMethodIs404(t *testing.T) {
	store := newFakeDraftStore()
	key := draft.Key{ClubID: 12, Terminal: "pos-1"}
	_, err := store.Save(context.Background(), key, cart.NewTransactionDraft())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Delete("/api/v1/checkout/payments/{methodId}", PaymentRemove(store, "console", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodDelete, "/api/v1/checkout/payments/99", ""))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitReturnsReceipt(t *testing.T) {
	svc := &fakeSubmitService{result: &checkoutsvc.Result{
		Receipt: &coreapi.CheckoutReceipt{SaleID: 991, InvoiceNumber: "INV-991", IsPaid: 1},
		Summary: &cart.CartSummary{TotalAmount: decimal.NewFromInt(200000)},
	}}

	handler := Submit(svc, "console", nil)
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPost, "/api/v1/checkout", `{"mode":"full"}`))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, checkoutsvc.ModeFull, svc.input.Mode)

	data := decodeData(t, w)
	assert.Equal(t, float64(991), data["sale_id"])
	assert.Equal(t, "INV-991", data["invoice_number"])
}

func TestSubmitAcceptsPartialActiveMode(t *testing.T) {
	svc := &fakeSubmitService{result: &checkoutsvc.Result{
		Receipt: &coreapi.CheckoutReceipt{SaleID: 7, IsPaid: 3},
		Summary: &cart.CartSummary{TotalAmount: decimal.NewFromInt(800000)},
	}}

	handler := Submit(svc, "console", nil)
	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPost, "/api/v1/checkout", `{"mode":"partial_active"}`))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, checkoutsvc.ModePartialActive, svc.input.Mode)
}

func TestSubmitRejectsUnknownMode(t *testing.T) {
	handler := Submit(&fakeSubmitService{}, "console", nil)

	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPost, "/api/v1/checkout", `{"mode":"layaway"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitPropagatesStateConflict(t *testing.T) {
	svc := &fakeSubmitService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "outstanding balance must be paid")}
	handler := Submit(svc, "console", nil)

	w := httptest.NewRecorder()
	handler(w, authedRequest(http.MethodPost, "/api/v1/checkout", `{"mode":"full"}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
