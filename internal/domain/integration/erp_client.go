package integration

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrNotConfigured indicates the remote connection is missing its URL or API key
	ErrNotConfigured = errors.New("integration: remote connection not configured")
	// ErrRemoteUnavailable indicates the remote endpoint could not be reached
	ErrRemoteUnavailable = errors.New("integration: remote endpoint unavailable")
	// ErrInvalidResponse indicates the remote returned a payload we cannot decode
	ErrInvalidResponse = errors.New("integration: invalid response from remote")
	// ErrRemoteNotFound indicates the referenced remote entity does not exist
	ErrRemoteNotFound = errors.New("integration: remote entity not found")
	// ErrNotEligible indicates the local entity fails a precondition for syncing
	ErrNotEligible = errors.New("integration: entity not eligible for sync")
	// ErrCrossReferenceNotFound indicates no cross-reference exists for the entity
	ErrCrossReferenceNotFound = errors.New("integration: cross-reference not found")
	// ErrHistoryNotFound indicates no sync history exists for the order
	ErrHistoryNotFound = errors.New("integration: order sync history not found")
)

// ---------------------------------------------------------------------------
// Remote payloads (Dolibarr shapes)
// ---------------------------------------------------------------------------

// ThirdPartyPayload is the request body for creating or updating a Dolibarr
// third party. Client 1 is an individual customer, 2 a company.
type ThirdPartyPayload struct {
	Name       string `json:"name"`
	NameAlias  string `json:"name_alias,omitempty"`
	FirstName  string `json:"firstname,omitempty"`
	LastName   string `json:"lastname,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Zip        string `json:"zip,omitempty"`
	Town       string `json:"town,omitempty"`
	CountryID  int    `json:"country_id"`
	StateCode  string `json:"state_code,omitempty"`
	Client     int    `json:"client"`
	Status     int    `json:"status"`
	CodeClient string `json:"code_client,omitempty"`
}

// OrderLinePayload is a single line of a remote sales order.
// ProductType 0 is a physical product, 1 a service (shipping).
// TaxRate is nil when tax sync is off, so no rate is sent at all.
type OrderLinePayload struct {
	Description string           `json:"desc"`
	UnitPrice   decimal.Decimal  `json:"subprice"`
	Quantity    decimal.Decimal  `json:"qty"`
	TaxRate     *decimal.Decimal `json:"tva_tx,omitempty"`
	ProductType int              `json:"product_type"`
	ProductRef  string           `json:"product_ref,omitempty"`
}

// OrderPayload is the request body for creating or updating a remote order.
// SocID references the remote third party the order belongs to.
type OrderPayload struct {
	SocID           int64              `json:"socid"`
	Date            int64              `json:"date"`
	Type            int                `json:"type"`
	RefExt          string             `json:"ref_ext"`
	NotePrivate     string             `json:"note_private,omitempty"`
	PaymentMethodID int64              `json:"mode_reglement_id,omitempty"`
	BankAccountID   int64              `json:"fk_account,omitempty"`
	Lines           []OrderLinePayload `json:"lines"`
}

// ProductPayload is the request body for creating or updating a remote product.
type ProductPayload struct {
	Ref         string          `json:"ref"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Status      int             `json:"status"`
	StatusBuy   int             `json:"status_buy"`
	ToSell      int             `json:"tosell"`
	ToBuy       int             `json:"tobuy"`
	Price       decimal.Decimal `json:"price"`
}

// StockMovementPayload records a stock correction against a warehouse.
// Quantity is signed: positive adds stock, negative removes it.
type StockMovementPayload struct {
	ProductID   int64           `json:"product_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"qty"`
	Type        string          `json:"movementcode,omitempty"`
	Label       string          `json:"movementlabel"`
}

// RemoteThirdParty is a third party as returned by the remote API.
type RemoteThirdParty struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Client    int    `json:"client"`
}

// RemoteProduct is a product as returned by the remote API, including the
// real stock level across warehouses. StockReal is nil when the response
// carries no stock data, which is distinct from a stock of zero.
type RemoteProduct struct {
	ID          int64            `json:"id"`
	Ref         string           `json:"ref"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Status      int              `json:"status"`
	StockReal   *decimal.Decimal `json:"stock_reel"`
}

// Stock returns the reported stock level, or zero when none was reported.
func (p *RemoteProduct) Stock() decimal.Decimal {
	if p.StockReal == nil {
		return decimal.Zero
	}
	return *p.StockReal
}

// RemoteStatus describes the remote installation, used for connection checks.
type RemoteStatus struct {
	Version string `json:"dolibarr_version"`
}

// Warehouse is a remote stock location.
type Warehouse struct {
	ID          int64  `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Status      int    `json:"statut"`
}

// PaymentMethod is a remote payment type dictionary entry.
type PaymentMethod struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Label  string `json:"label"`
	Active int    `json:"active"`
}

// BankAccount is a remote bank account.
type BankAccount struct {
	ID       int64  `json:"id"`
	Ref      string `json:"ref"`
	Label    string `json:"label"`
	Currency string `json:"currency_code"`
	Status   int    `json:"status"`
}

// ---------------------------------------------------------------------------
// Port
// ---------------------------------------------------------------------------

// ERPGateway is the port for the remote Dolibarr REST API. Implementations
// live in the infrastructure layer. Create operations return the remote id
// assigned to the new entity.
type ERPGateway interface {
	// Status probes the remote API and returns installation info.
	Status(ctx context.Context) (*RemoteStatus, error)

	// Third parties
	GetThirdParty(ctx context.Context, id int64) (*RemoteThirdParty, error)
	FindThirdPartyByEmail(ctx context.Context, email string) (*RemoteThirdParty, error)
	CreateThirdParty(ctx context.Context, payload ThirdPartyPayload) (int64, error)
	UpdateThirdParty(ctx context.Context, id int64, payload ThirdPartyPayload) error

	// Products
	GetProduct(ctx context.Context, id int64) (*RemoteProduct, error)
	ListProducts(ctx context.Context) ([]RemoteProduct, error)
	CreateProduct(ctx context.Context, payload ProductPayload) (int64, error)
	UpdateProduct(ctx context.Context, id int64, payload ProductPayload) error
	UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error

	// Orders
	CreateOrder(ctx context.Context, payload OrderPayload) (int64, error)
	UpdateOrder(ctx context.Context, id int64, payload OrderPayload) error

	// Stock
	CreateStockMovement(ctx context.Context, payload StockMovementPayload) error

	// Reference data
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListPaymentMethods(ctx context.Context, lang string) ([]PaymentMethod, error)
	ListBankAccounts(ctx context.Context) ([]BankAccount, error)
}
