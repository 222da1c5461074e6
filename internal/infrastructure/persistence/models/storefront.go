package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storebridge/backend/internal/domain/integration"
)

// StoreCustomerModel is the persistence model for storefront customers, used
// when the storefront shares the sync database.
type StoreCustomerModel struct {
	ID          int64  `gorm:"primaryKey"`
	Email       string `gorm:"type:varchar(200);index:idx_store_customers_email"`
	FirstName   string `gorm:"type:varchar(100)"`
	LastName    string `gorm:"type:varchar(100)"`
	DisplayName string `gorm:"type:varchar(200)"`
	Company     string `gorm:"type:varchar(200)"`
	Phone       string `gorm:"type:varchar(50)"`
	Address     string `gorm:"type:varchar(500)"`
	City        string `gorm:"type:varchar(100)"`
	Postcode    string `gorm:"type:varchar(20)"`
	State       string `gorm:"type:varchar(50)"`
	CountryCode string `gorm:"type:varchar(2)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (StoreCustomerModel) TableName() string {
	return "store_customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *StoreCustomerModel) ToDomain() *integration.Customer {
	return &integration.Customer{
		ID:          m.ID,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		DisplayName: m.DisplayName,
		Company:     m.Company,
		Phone:       m.Phone,
		Billing: integration.Address{
			Line1:       m.Address,
			City:        m.City,
			Postcode:    m.Postcode,
			State:       m.State,
			CountryCode: m.CountryCode,
		},
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *StoreCustomerModel) FromDomain(c *integration.Customer) {
	m.ID = c.ID
	m.Email = c.Email
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.DisplayName = c.DisplayName
	m.Company = c.Company
	m.Phone = c.Phone
	m.Address = c.Billing.Line1
	m.City = c.Billing.City
	m.Postcode = c.Billing.Postcode
	m.State = c.Billing.State
	m.CountryCode = c.Billing.CountryCode
}

// StoreOrderModel is the persistence model for storefront orders. Lines and
// shipping charges are stored as JSON documents.
type StoreOrderModel struct {
	ID               int64                   `gorm:"primaryKey"`
	CustomerID       int64                   `gorm:"index:idx_store_orders_customer"`
	Status           integration.OrderStatus `gorm:"type:varchar(20);not null;index:idx_store_orders_status"`
	BillingEmail     string                  `gorm:"type:varchar(200)"`
	BillingFirstName string                  `gorm:"type:varchar(100)"`
	BillingLastName  string                  `gorm:"type:varchar(100)"`
	BillingCompany   string                  `gorm:"type:varchar(200)"`
	BillingPhone     string                  `gorm:"type:varchar(50)"`
	Address          string                  `gorm:"type:varchar(500)"`
	City             string                  `gorm:"type:varchar(100)"`
	Postcode         string                  `gorm:"type:varchar(20)"`
	State            string                  `gorm:"type:varchar(50)"`
	CountryCode      string                  `gorm:"type:varchar(2)"`
	ItemsJSON        string                  `gorm:"type:text;column:items"`
	ShippingJSON     string                  `gorm:"type:text;column:shipping_lines"`
	CreatedAt        time.Time               `gorm:"not null;index:idx_store_orders_created"`
	UpdatedAt        time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StoreOrderModel) TableName() string {
	return "store_orders"
}

type storeOrderItem struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax"`
}

type storeShippingLine struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// ToDomain converts the persistence model to a domain Order.
func (m *StoreOrderModel) ToDomain() *integration.Order {
	order := &integration.Order{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		Status:           m.Status,
		BillingEmail:     m.BillingEmail,
		BillingFirstName: m.BillingFirstName,
		BillingLastName:  m.BillingLastName,
		BillingCompany:   m.BillingCompany,
		BillingPhone:     m.BillingPhone,
		Billing: integration.Address{
			Line1:       m.Address,
			City:        m.City,
			Postcode:    m.Postcode,
			State:       m.State,
			CountryCode: m.CountryCode,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if m.ItemsJSON != "" {
		var items []storeOrderItem
		if err := json.Unmarshal([]byte(m.ItemsJSON), &items); err == nil {
			for _, it := range items {
				order.Items = append(order.Items, integration.OrderItem{
					ProductID:   it.ProductID,
					Name:        it.Name,
					SKU:         it.SKU,
					Quantity:    it.Quantity,
					Subtotal:    it.Subtotal,
					SubtotalTax: it.SubtotalTax,
				})
			}
		}
	}
	if m.ShippingJSON != "" {
		var lines []storeShippingLine
		if err := json.Unmarshal([]byte(m.ShippingJSON), &lines); err == nil {
			for _, l := range lines {
				order.ShippingLines = append(order.ShippingLines, integration.ShippingLine{
					Name:  l.Name,
					Total: l.Total,
				})
			}
		}
	}
	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *StoreOrderModel) FromDomain(o *integration.Order) {
	m.ID = o.ID
	m.CustomerID = o.CustomerID
	m.Status = o.Status
	m.BillingEmail = o.BillingEmail
	m.BillingFirstName = o.BillingFirstName
	m.BillingLastName = o.BillingLastName
	m.BillingCompany = o.BillingCompany
	m.BillingPhone = o.BillingPhone
	m.Address = o.Billing.Line1
	m.City = o.Billing.City
	m.Postcode = o.Billing.Postcode
	m.State = o.Billing.State
	m.CountryCode = o.Billing.CountryCode
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt

	items := make([]storeOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, storeOrderItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
			SubtotalTax: it.SubtotalTax,
		})
	}
	if encoded, err := json.Marshal(items); err == nil {
		m.ItemsJSON = string(encoded)
	}

	lines := make([]storeShippingLine, 0, len(o.ShippingLines))
	for _, l := range o.ShippingLines {
		lines = append(lines, storeShippingLine{Name: l.Name, Total: l.Total})
	}
	if encoded, err := json.Marshal(lines); err == nil {
		m.ShippingJSON = string(encoded)
	}
}

// StoreProductModel is the persistence model for storefront products.
type StoreProductModel struct {
	ID            int64           `gorm:"primaryKey"`
	SKU           string          `gorm:"type:varchar(100);index:idx_store_products_sku"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:numeric(18,4)"`
	StockQuantity int64           `gorm:"not null;default:0"`
	Published     bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (StoreProductModel) TableName() string {
	return "store_products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *StoreProductModel) ToDomain() *integration.Product {
	return &integration.Product{
		ID:            m.ID,
		SKU:           m.SKU,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		StockQuantity: m.StockQuantity,
		Published:     m.Published,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *StoreProductModel) FromDomain(p *integration.Product) {
	m.ID = p.ID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.StockQuantity = p.StockQuantity
	m.Published = p.Published
}
