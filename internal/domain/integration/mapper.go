package integration

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// defaultCountryIDs maps ISO country codes to the remote dictionary ids of a
// stock Dolibarr install. Unknown codes map to 0 (undefined).
var defaultCountryIDs = map[string]int{
	"US": 1,
	"FR": 2,
	"DE": 3,
	"GB": 4,
	"ES": 5,
	"IT": 6,
	"IN": 7,
}

// MapperConfig tunes payload construction.
type MapperConfig struct {
	// TaxSyncEnabled controls whether line tax rates are carried over
	TaxSyncEnabled bool
	// DefaultPaymentMethodID is stamped on order payloads when set
	DefaultPaymentMethodID int64
	// DefaultBankAccountID is stamped on order payloads when set
	DefaultBankAccountID int64
	// CountryIDs overrides the built-in country dictionary when set
	CountryIDs map[string]int
}

// MapperOption customizes a Mapper.
type MapperOption func(*Mapper)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) MapperOption {
	return func(m *Mapper) { m.now = now }
}

// WithThirdPartyHook runs after a third-party payload is built, letting the
// caller adjust fields before the payload goes out.
func WithThirdPartyHook(hook func(*ThirdPartyPayload, *Customer)) MapperOption {
	return func(m *Mapper) { m.thirdPartyHook = hook }
}

// WithOrderHook runs after an order payload is built.
func WithOrderHook(hook func(*OrderPayload, *Order)) MapperOption {
	return func(m *Mapper) { m.orderHook = hook }
}

// WithProductHook runs after a product payload is built.
func WithProductHook(hook func(*ProductPayload, *Product)) MapperOption {
	return func(m *Mapper) { m.productHook = hook }
}

// Mapper converts storefront entities into remote payloads and back.
// All conversions are pure given a fixed clock.
type Mapper struct {
	cfg            MapperConfig
	now            func() time.Time
	thirdPartyHook func(*ThirdPartyPayload, *Customer)
	orderHook      func(*OrderPayload, *Order)
	productHook    func(*ProductPayload, *Product)
}

// NewMapper creates a Mapper with the given configuration.
func NewMapper(cfg MapperConfig, opts ...MapperOption) *Mapper {
	m := &Mapper{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CountryID resolves an ISO country code to the remote dictionary id.
func (m *Mapper) CountryID(code string) int {
	table := m.cfg.CountryIDs
	if table == nil {
		table = defaultCountryIDs
	}
	return table[strings.ToUpper(code)]
}

// ThirdParty builds the remote payload for a registered customer. A company
// customer becomes a company third party with the person's name as alias.
func (m *Mapper) ThirdParty(c *Customer) ThirdPartyPayload {
	p := ThirdPartyPayload{
		Name:       strings.TrimSpace(c.DisplayName),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Billing.Line1,
		Zip:        c.Billing.Postcode,
		Town:       c.Billing.City,
		CountryID:  m.CountryID(c.Billing.CountryCode),
		StateCode:  c.Billing.State,
		Client:     1,
		Status:     1,
		CodeClient: fmt.Sprintf("WC%d-%d", c.ID, m.now().Unix()),
	}
	if p.Name == "" {
		p.Name = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	if c.Company != "" {
		p.Client = 2
		p.NameAlias = p.Name
		p.Name = c.Company
	}
	if m.thirdPartyHook != nil {
		m.thirdPartyHook(&p, c)
	}
	return p
}

// GuestThirdParty builds a minimal third party from an order's billing block,
// used when a guest checkout has no matching remote customer.
func (m *Mapper) GuestThirdParty(o *Order) ThirdPartyPayload {
	name := strings.TrimSpace(o.BillingFirstName + " " + o.BillingLastName)
	if name == "" {
		name = fmt.Sprintf("Guest %d", o.ID)
	}
	p := ThirdPartyPayload{
		Name:       name,
		FirstName:  o.BillingFirstName,
		LastName:   o.BillingLastName,
		Email:      o.BillingEmail,
		Phone:      o.BillingPhone,
		Address:    o.Billing.Line1,
		Zip:        o.Billing.Postcode,
		Town:       o.Billing.City,
		CountryID:  m.CountryID(o.Billing.CountryCode),
		StateCode:  o.Billing.State,
		Client:     1,
		Status:     1,
		CodeClient: fmt.Sprintf("WCG%d-%d", o.ID, m.now().Unix()),
	}
	if o.BillingCompany != "" {
		p.Client = 2
		p.NameAlias = p.Name
		p.Name = o.BillingCompany
	}
	return p
}

// OrderRefExt builds the external reference carried on remote orders.
func OrderRefExt(orderID int64) string {
	return fmt.Sprintf("WC-%d", orderID)
}

// RemoteOrder builds the remote payload for an order. socID must be the
// resolved remote third-party id; the mapper does not resolve identities.
func (m *Mapper) RemoteOrder(o *Order, socID int64) OrderPayload {
	p := OrderPayload{
		SocID:           socID,
		Date:            o.CreatedAt.Unix(),
		Type:            0,
		RefExt:          OrderRefExt(o.ID),
		NotePrivate:     fmt.Sprintf("Imported from storefront order #%d", o.ID),
		PaymentMethodID: m.cfg.DefaultPaymentMethodID,
		BankAccountID:   m.cfg.DefaultBankAccountID,
		Lines:           make([]OrderLinePayload, 0, len(o.Items)+len(o.ShippingLines)),
	}
	for i := range o.Items {
		p.Lines = append(p.Lines, m.orderLine(&o.Items[i]))
	}
	for _, s := range o.ShippingLines {
		p.Lines = append(p.Lines, OrderLinePayload{
			Description: "Shipping: " + s.Name,
			UnitPrice:   s.Total.Round(2),
			Quantity:    decimal.NewFromInt(1),
			ProductType: 1,
		})
	}
	if m.orderHook != nil {
		m.orderHook(&p, o)
	}
	return p
}

func (m *Mapper) orderLine(item *OrderItem) OrderLinePayload {
	line := OrderLinePayload{
		Description: item.Name,
		Quantity:    item.Quantity,
		ProductType: 0,
		ProductRef:  item.SKU,
	}
	if item.Quantity.IsPositive() {
		line.UnitPrice = item.Subtotal.Div(item.Quantity).Round(2)
	}
	if m.cfg.TaxSyncEnabled && item.Subtotal.IsPositive() {
		rate := item.SubtotalTax.Div(item.Subtotal).Mul(decimal.NewFromInt(100)).Round(2)
		line.TaxRate = &rate
	}
	return line
}

// RemoteProductPayload builds the remote payload for a product. Products
// without a SKU fall back to a "WC-{id}" reference.
func (m *Mapper) RemoteProductPayload(p *Product) ProductPayload {
	ref := p.SKU
	if ref == "" {
		ref = fmt.Sprintf("WC-%d", p.ID)
	}
	payload := ProductPayload{
		Ref:         ref,
		Label:       p.Name,
		Description: p.Description,
		Price:       p.Price.Round(2),
		StatusBuy:   1,
		ToSell:      1,
		ToBuy:       1,
	}
	if p.Published {
		payload.Status = 1
	}
	if m.productHook != nil {
		m.productHook(&payload, p)
	}
	return payload
}

// LocalProduct converts a remote product back into the storefront shape.
// Prices are normalized to two decimals in both directions.
func (m *Mapper) LocalProduct(r *RemoteProduct) Product {
	return Product{
		SKU:           r.Ref,
		Name:          r.Label,
		Description:   r.Description,
		Price:         r.Price.Round(2),
		StockQuantity: r.Stock().IntPart(),
		Published:     r.Status == 1,
	}
}
