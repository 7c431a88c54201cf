package coreapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/migios-apps/migios-console-api/pkg/config"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
	"github.com/migios-apps/migios-console-api/pkg/types"
)

var errLoggerRequired = errors.New("core api logger is required")

// Client talks to the core gym-management API. It owns the console's only
// outbound network contracts: paginated lists and checkout submission.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient validates the configuration and builds the HTTP wrapper.
func NewClient(ctx context.Context, cfg config.CoreAPIConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("core api base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing core api base url: %w", err)
	}

	c := &Client{
		baseURL:    base,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logg,
	}

	logg.Info(ctx, "core api client initialized")
	return c, nil
}

// List fetches one page of a list endpoint and decodes the rows into out.
func (c *Client) List(ctx context.Context, resource string, params ListParams, out any) (*ListMeta, error) {
	values, err := params.encode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode list params")
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build list request")
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode list envelope")
	}
	if out != nil && len(envelope.Data.Data) > 0 {
		if err := json.Unmarshal(envelope.Data.Data, out); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode list rows")
		}
	}
	meta := envelope.Data.Meta
	return &meta, nil
}

// SubmitCheckout issues the single atomic checkout call. No retries: a failure
// is surfaced once and left for the operator to resubmit.
func (c *Client) SubmitCheckout(ctx context.Context, payload CheckoutPayload) (*CheckoutReceipt, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sales/checkout", bytes.NewReader(encoded))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build checkout request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data CheckoutReceipt `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout receipt")
	}
	return &envelope.Data, nil
}

// Ping verifies the core API is reachable. Safe on a nil receiver so health
// checks can report a client that never came up.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("core api client not initialized")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "core api unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read core api response")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}
	return nil, mapStatusError(resp.StatusCode, body)
}

func mapStatusError(status int, body []byte) error {
	message := "core api request failed"
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch {
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case status == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeStateConflict, message)
	case status == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s (status %d)", message, status))
	}
}
