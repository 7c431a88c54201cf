package coreapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migios-apps/migios-console-api/pkg/config"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(context.Background(), config.CoreAPIConfig{
		BaseURL: server.URL,
		Token:   "tok-1",
		Timeout: 2 * time.Second,
	}, logg)
	require.NoError(t, err)
	return client, server
}

func TestListEncodesPaginationAndSearch(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"data":[{"id":7,"name":"Jo"}],"meta":{"page":1,"total_page":3,"total":25}}}`))
	}))

	var rows []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	meta, err := client.List(context.Background(), "members", ListParams{
		Page:       1,
		PerPage:    10,
		SortColumn: "name",
		SortType:   "asc",
		Search: []SearchClause{
			{SearchColumn: "name", SearchCondition: "like", SearchText: "jo"},
		},
	}, &rows)
	require.NoError(t, err)

	assert.Equal(t, "1", gotQuery["page"][0])
	assert.Equal(t, "10", gotQuery["per_page"][0])

	var clauses []SearchClause
	require.NoError(t, json.Unmarshal([]byte(gotQuery["search"][0]), &clauses))
	assert.Equal(t, "jo", clauses[0].SearchText)

	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].ID)
	assert.True(t, meta.HasMore())
}

func TestSubmitCheckoutDecodesReceipt(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sales/checkout", r.URL.Path)

		var payload CheckoutPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 1, payload.IsPaid)
		assert.Len(t, payload.Items, 1)

		_, _ = w.Write([]byte(`{"data":{"sale_id":991,"invoice_number":"INV-991","is_paid":1}}`))
	}))

	productID := int64(3)
	receipt, err := client.SubmitCheckout(context.Background(), CheckoutPayload{
		ClubID:       1,
		IsPaid:       PaidStatusFull,
		DiscountType: "nominal",
		Discount:     decimal.Zero,
		TaxRate:      decimal.Zero,
		Items: []CheckoutItem{{
			ItemType:     "product",
			ProductID:    &productID,
			Quantity:     2,
			Price:        decimal.NewFromInt(100000),
			DiscountType: "nominal",
			Discount:     decimal.Zero,
		}},
		Payments:   []CheckoutPayment{{ID: 1, Name: "Cash", Amount: decimal.NewFromInt(200000)}},
		RefundFrom: []RefundSource{},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(991), receipt.SaleID)
	assert.Equal(t, "INV-991", receipt.InvoiceNumber)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusBadGateway, pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"code":"X","message":"nope"}}`))
		}))

		_, err := client.List(context.Background(), "members", ListParams{}, nil)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "status %d", tc.status)
		assert.Equal(t, tc.code, typed.Code(), "status %d", tc.status)
	}
}

func TestNewClientRequiresLogger(t *testing.T) {
	_, err := NewClient(context.Background(), config.CoreAPIConfig{BaseURL: "http://x"}, nil)
	if err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestPingNilClient(t *testing.T) {
	var c *Client
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
}
