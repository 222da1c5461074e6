package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrLocalNotFound indicates the storefront does not know the entity
	ErrLocalNotFound = errors.New("integration: local entity not found")
)

// OrderStatus is the storefront's order status vocabulary.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// Excluded reports whether orders in this status are never pushed to the remote.
func (s OrderStatus) Excluded() bool {
	switch s {
	case OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// SyncableOrderStatuses are the statuses bulk order sync selects by default.
func SyncableOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusProcessing, OrderStatusCompleted, OrderStatusOnHold}
}

// Address is a storefront billing address.
type Address struct {
	// Line1 is the street address
	Line1 string
	// City is the town or city
	City string
	// Postcode is the postal or zip code
	Postcode string
	// State is the state or province code
	State string
	// CountryCode is the ISO 3166-1 alpha-2 country code
	CountryCode string
}

// Customer is a registered storefront customer account.
type Customer struct {
	// ID is the storefront user id
	ID int64
	// Email is the account email, required for syncing
	Email string
	// FirstName is the customer's first name
	FirstName string
	// LastName is the customer's last name
	LastName string
	// DisplayName is the name shown in the storefront
	DisplayName string
	// Company is the optional company name
	Company string
	// Phone is the billing phone
	Phone string
	// Billing is the billing address
	Billing Address
}

// OrderItem is a product line on a storefront order.
type OrderItem struct {
	// ProductID is the storefront product id, 0 when the product was deleted
	ProductID int64
	// Name is the product name at purchase time
	Name string
	// SKU is the product's stock keeping unit
	SKU string
	// Quantity is the ordered quantity
	Quantity decimal.Decimal
	// Subtotal is the line total before tax
	Subtotal decimal.Decimal
	// SubtotalTax is the tax charged on the line
	SubtotalTax decimal.Decimal
}

// ShippingLine is a shipping charge on a storefront order.
type ShippingLine struct {
	// Name is the shipping method name
	Name string
	// Total is the shipping cost before tax
	Total decimal.Decimal
}

// Order is a storefront order.
type Order struct {
	// ID is the storefront order id
	ID int64
	// CustomerID is the storefront user id, 0 for guest checkouts
	CustomerID int64
	// Status is the current order status
	Status OrderStatus
	// BillingEmail is the email captured at checkout
	BillingEmail string
	// BillingFirstName is the billing first name
	BillingFirstName string
	// BillingLastName is the billing last name
	BillingLastName string
	// BillingCompany is the optional billing company
	BillingCompany string
	// BillingPhone is the billing phone
	BillingPhone string
	// Billing is the billing address
	Billing Address
	// CreatedAt is when the order was placed
	CreatedAt time.Time
	// UpdatedAt is when the order was last modified
	UpdatedAt time.Time
	// Items are the product lines
	Items []OrderItem
	// ShippingLines are the shipping charges
	ShippingLines []ShippingLine
}

// Product is a storefront product.
type Product struct {
	// ID is the storefront product id
	ID int64
	// SKU is the stock keeping unit, may be empty
	SKU string
	// Name is the product name
	Name string
	// Description is the long description
	Description string
	// Price is the regular price
	Price decimal.Decimal
	// StockQuantity is the tracked stock level
	StockQuantity int64
	// Published reports whether the product is visible in the storefront
	Published bool
}

// LocalStore is the port for reading storefront data and writing back
// imported stock levels. The storefront owns this data; the sync engine
// never creates or deletes storefront entities.
type LocalStore interface {
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]Customer, error)

	GetOrder(ctx context.Context, id int64) (*Order, error)
	// ListOrders returns orders in the given statuses, newest first.
	ListOrders(ctx context.Context, statuses []OrderStatus, limit, offset int) ([]Order, error)

	GetProduct(ctx context.Context, id int64) (*Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]Product, error)

	// SetProductStock overwrites the tracked stock level of a product.
	SetProductStock(ctx context.Context, id int64, quantity int64) error
}
