package dolibarr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

const (
	apiBasePath    = "/api/index.php"
	defaultTimeout = 30 * time.Second
	authHeader     = "DOLAPIKEY"
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dolibarr: API error %d: %s", e.StatusCode, e.Message)
}

// Config holds the remote connection settings.
type Config struct {
	// BaseURL is the Dolibarr installation root, without the API path
	BaseURL string
	// APIKey is the REST API key of the sync user
	APIKey string
	// Timeout bounds each request, defaults to 30s
	Timeout time.Duration
	// VerifyTLS disables certificate checks when false
	VerifyTLS bool
	// Debug enables request/response logging at debug level
	Debug bool
}

// Configured reports whether both connection settings are present.
func (c Config) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// Client talks to the Dolibarr REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client. The logger must not be nil.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{}
	if !cfg.VerifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log,
	}
}

// request performs one API call and returns the raw response body.
// Endpoint must start with a slash, e.g. "/thirdparties". Extra headers are
// merged after the defaults, so a caller can override Accept but not unset
// the API key.
func (c *Client) request(ctx context.Context, method, endpoint string, body any, extra ...http.Header) ([]byte, error) {
	if !c.cfg.Configured() {
		return nil, integration.ErrNotConfigured
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + apiBasePath + endpoint

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("dolibarr: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		if c.cfg.Debug {
			c.log.Debug("Remote API request",
				zap.String("method", method),
				zap.String("endpoint", endpoint),
				zap.ByteString("body", encoded),
			)
		}
	} else if c.cfg.Debug {
		c.log.Debug("Remote API request",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
		)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("dolibarr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, h := range extra {
		for key, values := range h {
			if len(values) > 0 {
				req.Header.Set(key, values[0])
			}
		}
	}
	req.Header.Set(authHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Remote API unreachable",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
	}

	if c.cfg.Debug {
		c.log.Debug("Remote API response",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(payload)),
		)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, payload),
		}
		c.log.Error("Remote API error",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	return payload, nil
}

// errorMessage extracts the remote error envelope, falling back to a canned
// message per status code.
func errorMessage(status int, body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	switch status {
	case http.StatusUnauthorized:
		return "Invalid API key or insufficient permissions"
	case http.StatusForbidden:
		return "Access denied - check API user permissions"
	case http.StatusNotFound:
		return "API endpoint not found"
	case http.StatusInternalServerError:
		return "Remote server error"
	default:
		return fmt.Sprintf("HTTP error %d", status)
	}
}

// decode parses a 2xx body, translating parse failures into the invalid
// response sentinel.
func decode(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return nil
}

// createdID normalizes a create response. The API usually answers with a bare
// numeric id, older versions wrap it in an object.
func createdID(payload []byte) (int64, error) {
	trimmed := strings.TrimSpace(string(payload))
	trimmed = strings.Trim(trimmed, `"`)
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return id, nil
	}
	var wrapped struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.ID > 0 {
		return wrapped.ID, nil
	}
	return 0, fmt.Errorf("%w: unrecognized create response %q", integration.ErrInvalidResponse, trimmed)
}

// notFoundAsSentinel maps a 404 API error to the domain's not-found sentinel.
func notFoundAsSentinel(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return integration.ErrRemoteNotFound
	}
	return err
}

// Status probes the remote installation.
func (c *Client) Status(ctx context.Context) (*integration.RemoteStatus, error) {
	payload, err := c.request(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Success struct {
			Code    int    `json:"code"`
			Version string `json:"dolibarr_version"`
		} `json:"success"`
	}
	if err := decode(payload, &envelope); err != nil {
		return nil, err
	}
	if envelope.Success.Version == "" {
		return nil, fmt.Errorf("%w: missing version in status response", integration.ErrInvalidResponse)
	}
	return &integration.RemoteStatus{Version: envelope.Success.Version}, nil
}

// GetThirdParty fetches one third party by remote id.
func (c *Client) GetThirdParty(ctx context.Context, id int64) (*integration.RemoteThirdParty, error) {
	payload, err := c.request(ctx, http.MethodGet, fmt.Sprintf("/thirdparties/%d", id), nil)
	if err != nil {
		return nil, notFoundAsSentinel(err)
	}
	var tp integration.RemoteThirdParty
	if err := decode(payload, &tp); err != nil {
		return nil, err
	}
	return &tp, nil
}

// thirdPartyPageSize is how many third parties one lookup page carries.
const thirdPartyPageSize = 100

// FindThirdPartyByEmail looks up a third party by email, case-insensitively.
// The whole collection is walked page by page so a match beyond the first
// page is still found. Returns ErrRemoteNotFound when no match exists.
func (c *Client) FindThirdPartyByEmail(ctx context.Context, email string) (*integration.RemoteThirdParty, error) {
	if email == "" {
		return nil, integration.ErrRemoteNotFound
	}
	for page := 0; ; page++ {
		endpoint := fmt.Sprintf("/thirdparties?limit=%d&page=%d&sortfield=t.rowid&sortorder=ASC",
			thirdPartyPageSize, page)
		payload, err := c.request(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			// An empty installation or an exhausted page answers 404.
			if e := notFoundAsSentinel(err); e == integration.ErrRemoteNotFound {
				return nil, integration.ErrRemoteNotFound
			}
			return nil, err
		}
		var parties []integration.RemoteThirdParty
		if err := decode(payload, &parties); err != nil {
			return nil, err
		}
		for i := range parties {
			if strings.EqualFold(parties[i].Email, email) {
				return &parties[i], nil
			}
		}
		if len(parties) < thirdPartyPageSize {
			return nil, integration.ErrRemoteNotFound
		}
	}
}

// CreateThirdParty creates a third party and returns its remote id.
func (c *Client) CreateThirdParty(ctx context.Context, p integration.ThirdPartyPayload) (int64, error) {
	payload, err := c.request(ctx, http.MethodPost, "/thirdparties", p)
	if err != nil {
		return 0, err
	}
	return createdID(payload)
}

// UpdateThirdParty updates an existing third party.
func (c *Client) UpdateThirdParty(ctx context.Context, id int64, p integration.ThirdPartyPayload) error {
	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/thirdparties/%d", id), p)
	return notFoundAsSentinel(err)
}

// GetProduct fetches one product including its stock level.
func (c *Client) GetProduct(ctx context.Context, id int64) (*integration.RemoteProduct, error) {
	payload, err := c.request(ctx, http.MethodGet, fmt.Sprintf("/products/%d?includestockdata=1", id), nil)
	if err != nil {
		return nil, notFoundAsSentinel(err)
	}
	var p integration.RemoteProduct
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts fetches all remote products with stock data.
func (c *Client) ListProducts(ctx context.Context) ([]integration.RemoteProduct, error) {
	payload, err := c.request(ctx, http.MethodGet, "/products?limit=0&includestockdata=1", nil)
	if err != nil {
		if e := notFoundAsSentinel(err); e == integration.ErrRemoteNotFound {
			return nil, nil
		}
		return nil, err
	}
	var products []integration.RemoteProduct
	if err := decode(payload, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product and returns its remote id.
func (c *Client) CreateProduct(ctx context.Context, p integration.ProductPayload) (int64, error) {
	payload, err := c.request(ctx, http.MethodPost, "/products", p)
	if err != nil {
		return 0, err
	}
	return createdID(payload)
}

// UpdateProduct updates an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, p integration.ProductPayload) error {
	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), p)
	return notFoundAsSentinel(err)
}

// UpdateProductPrice updates only the price of a product.
func (c *Client) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	body := map[string]any{"price": price}
	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), body)
	return notFoundAsSentinel(err)
}

// CreateOrder creates a sales order and returns its remote id.
func (c *Client) CreateOrder(ctx context.Context, p integration.OrderPayload) (int64, error) {
	payload, err := c.request(ctx, http.MethodPost, "/orders", p)
	if err != nil {
		return 0, err
	}
	return createdID(payload)
}

// UpdateOrder updates an existing sales order.
func (c *Client) UpdateOrder(ctx context.Context, id int64, p integration.OrderPayload) error {
	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), p)
	return notFoundAsSentinel(err)
}

// CreateStockMovement records a stock correction.
func (c *Client) CreateStockMovement(ctx context.Context, p integration.StockMovementPayload) error {
	_, err := c.request(ctx, http.MethodPost, "/stockmovements", p)
	return err
}

// ListWarehouses fetches all stock locations.
func (c *Client) ListWarehouses(ctx context.Context) ([]integration.Warehouse, error) {
	payload, err := c.request(ctx, http.MethodGet, "/warehouses?limit=0", nil)
	if err != nil {
		return nil, err
	}
	var warehouses []integration.Warehouse
	if err := decode(payload, &warehouses); err != nil {
		return nil, err
	}
	for i := range warehouses {
		if warehouses[i].Label == "" {
			warehouses[i].Label = warehouses[i].Ref
		}
	}
	return warehouses, nil
}

// ListPaymentMethods fetches the payment type dictionary.
func (c *Client) ListPaymentMethods(ctx context.Context, lang string) ([]integration.PaymentMethod, error) {
	endpoint := "/setup/dictionary/payment_types?limit=100&active=1"
	if lang != "" {
		endpoint += "&lang=" + lang
	}
	payload, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var methods []integration.PaymentMethod
	if err := decode(payload, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// ListBankAccounts fetches all bank accounts.
func (c *Client) ListBankAccounts(ctx context.Context) ([]integration.BankAccount, error) {
	payload, err := c.request(ctx, http.MethodGet, "/bankaccounts?limit=100", nil)
	if err != nil {
		if e := notFoundAsSentinel(err); e == integration.ErrRemoteNotFound {
			return nil, nil
		}
		return nil, err
	}
	var accounts []integration.BankAccount
	if err := decode(payload, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

var _ integration.ERPGateway = (*Client)(nil)
