package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// fixedNow is the clock used across the orchestrator tests.
var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// ---------------------------------------------------------------------------
// fakeGateway
// ---------------------------------------------------------------------------

type fakeGateway struct {
	mu sync.Mutex

	statusErr           error
	createThirdPartyErr error
	updateThirdPartyErr error
	createOrderErr      error
	updateOrderErr      error
	createProductErr    error
	updateProductErr    error
	movementErr         error

	nextID int64

	statusCalls         int
	createdThirdParties []integration.ThirdPartyPayload
	updatedThirdParties map[int64]integration.ThirdPartyPayload
	createdOrders       []integration.OrderPayload
	updatedOrders       map[int64]integration.OrderPayload
	createdProducts     []integration.ProductPayload
	updatedProducts     map[int64]integration.ProductPayload
	priceUpdates        map[int64]decimal.Decimal
	movements           []integration.StockMovementPayload

	thirdPartiesByEmail map[string]*integration.RemoteThirdParty
	remoteProducts      map[int64]*integration.RemoteProduct
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextID:              100,
		updatedThirdParties: map[int64]integration.ThirdPartyPayload{},
		updatedOrders:       map[int64]integration.OrderPayload{},
		updatedProducts:     map[int64]integration.ProductPayload{},
		priceUpdates:        map[int64]decimal.Decimal{},
		thirdPartiesByEmail: map[string]*integration.RemoteThirdParty{},
		remoteProducts:      map[int64]*integration.RemoteProduct{},
	}
}

func (g *fakeGateway) allocID() int64 {
	g.nextID++
	return g.nextID
}

func (g *fakeGateway) Status(ctx context.Context) (*integration.RemoteStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return &integration.RemoteStatus{Version: "18.0.0"}, nil
}

func (g *fakeGateway) GetThirdParty(ctx context.Context, id int64) (*integration.RemoteThirdParty, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, tp := range g.thirdPartiesByEmail {
		if tp.ID == id {
			return tp, nil
		}
	}
	return nil, integration.ErrRemoteNotFound
}

func (g *fakeGateway) FindThirdPartyByEmail(ctx context.Context, email string) (*integration.RemoteThirdParty, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tp, ok := g.thirdPartiesByEmail[email]; ok {
		return tp, nil
	}
	return nil, integration.ErrRemoteNotFound
}

func (g *fakeGateway) CreateThirdParty(ctx context.Context, payload integration.ThirdPartyPayload) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createThirdPartyErr != nil {
		return 0, g.createThirdPartyErr
	}
	g.createdThirdParties = append(g.createdThirdParties, payload)
	return g.allocID(), nil
}

func (g *fakeGateway) UpdateThirdParty(ctx context.Context, id int64, payload integration.ThirdPartyPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateThirdPartyErr != nil {
		return g.updateThirdPartyErr
	}
	g.updatedThirdParties[id] = payload
	return nil
}

func (g *fakeGateway) GetProduct(ctx context.Context, id int64) (*integration.RemoteProduct, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.remoteProducts[id]; ok {
		return p, nil
	}
	return nil, integration.ErrRemoteNotFound
}

func (g *fakeGateway) ListProducts(ctx context.Context) ([]integration.RemoteProduct, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]integration.RemoteProduct, 0, len(g.remoteProducts))
	for _, p := range g.remoteProducts {
		out = append(out, *p)
	}
	return out, nil
}

func (g *fakeGateway) CreateProduct(ctx context.Context, payload integration.ProductPayload) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createProductErr != nil {
		return 0, g.createProductErr
	}
	g.createdProducts = append(g.createdProducts, payload)
	return g.allocID(), nil
}

func (g *fakeGateway) UpdateProduct(ctx context.Context, id int64, payload integration.ProductPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateProductErr != nil {
		return g.updateProductErr
	}
	g.updatedProducts[id] = payload
	return nil
}

func (g *fakeGateway) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.priceUpdates[id] = price
	return nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, payload integration.OrderPayload) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createOrderErr != nil {
		return 0, g.createOrderErr
	}
	g.createdOrders = append(g.createdOrders, payload)
	return g.allocID(), nil
}

func (g *fakeGateway) UpdateOrder(ctx context.Context, id int64, payload integration.OrderPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateOrderErr != nil {
		return g.updateOrderErr
	}
	g.updatedOrders[id] = payload
	return nil
}

func (g *fakeGateway) CreateStockMovement(ctx context.Context, payload integration.StockMovementPayload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.movementErr != nil {
		return g.movementErr
	}
	g.movements = append(g.movements, payload)
	return nil
}

func (g *fakeGateway) ListWarehouses(ctx context.Context) ([]integration.Warehouse, error) {
	return []integration.Warehouse{{ID: 1, Ref: "WH-01", Label: "Main"}}, nil
}

func (g *fakeGateway) ListPaymentMethods(ctx context.Context, lang string) ([]integration.PaymentMethod, error) {
	return []integration.PaymentMethod{{ID: 1, Code: "CB", Label: "Card"}}, nil
}

func (g *fakeGateway) ListBankAccounts(ctx context.Context) ([]integration.BankAccount, error) {
	return []integration.BankAccount{{ID: 1, Ref: "BA-01"}}, nil
}

var _ integration.ERPGateway = (*fakeGateway)(nil)

// ---------------------------------------------------------------------------
// fakeStore
// ---------------------------------------------------------------------------

type fakeStore struct {
	customers map[int64]*integration.Customer
	orders    map[int64]*integration.Order
	products  map[int64]*integration.Product
	stockSet  map[int64]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[int64]*integration.Customer{},
		orders:    map[int64]*integration.Order{},
		products:  map[int64]*integration.Product{},
		stockSet:  map[int64]int64{},
	}
}

func (s *fakeStore) GetCustomer(ctx context.Context, id int64) (*integration.Customer, error) {
	if c, ok := s.customers[id]; ok {
		return c, nil
	}
	return nil, integration.ErrLocalNotFound
}

func (s *fakeStore) ListCustomers(ctx context.Context, limit, offset int) ([]integration.Customer, error) {
	out := make([]integration.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, id int64) (*integration.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, integration.ErrLocalNotFound
}

func (s *fakeStore) ListOrders(ctx context.Context, statuses []integration.OrderStatus, limit, offset int) ([]integration.Order, error) {
	allowed := map[integration.OrderStatus]bool{}
	for _, st := range statuses {
		allowed[st] = true
	}
	out := make([]integration.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if allowed[o.Status] {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) GetProduct(ctx context.Context, id int64) (*integration.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, integration.ErrLocalNotFound
}

func (s *fakeStore) FindProductBySKU(ctx context.Context, sku string) (*integration.Product, error) {
	for _, p := range s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, integration.ErrLocalNotFound
}

func (s *fakeStore) ListProducts(ctx context.Context, limit, offset int) ([]integration.Product, error) {
	out := make([]integration.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeStore) SetProductStock(ctx context.Context, id int64, quantity int64) error {
	if _, ok := s.products[id]; !ok {
		return integration.ErrLocalNotFound
	}
	s.products[id].StockQuantity = quantity
	s.stockSet[id] = quantity
	return nil
}

var _ integration.LocalStore = (*fakeStore)(nil)

// ---------------------------------------------------------------------------
// fake repositories
// ---------------------------------------------------------------------------

type fakeRefs struct {
	refs map[string]*integration.CrossReference
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{refs: map[string]*integration.CrossReference{}}
}

func refKey(t integration.SyncType, id int64) string {
	return fmt.Sprintf("%s:%d", t, id)
}

func (r *fakeRefs) Find(ctx context.Context, entityType integration.SyncType, localID int64) (*integration.CrossReference, error) {
	if ref, ok := r.refs[refKey(entityType, localID)]; ok {
		cp := *ref
		return &cp, nil
	}
	return nil, integration.ErrCrossReferenceNotFound
}

func (r *fakeRefs) Save(ctx context.Context, ref *integration.CrossReference) error {
	cp := *ref
	r.refs[refKey(ref.EntityType, ref.LocalID)] = &cp
	return nil
}

func (r *fakeRefs) Delete(ctx context.Context, entityType integration.SyncType, localID int64) error {
	delete(r.refs, refKey(entityType, localID))
	return nil
}

func (r *fakeRefs) ListByType(ctx context.Context, entityType integration.SyncType) ([]integration.CrossReference, error) {
	var out []integration.CrossReference
	for _, ref := range r.refs {
		if ref.EntityType == entityType {
			out = append(out, *ref)
		}
	}
	return out, nil
}

var _ integration.CrossReferenceRepository = (*fakeRefs)(nil)

type fakeLogbook struct {
	entries []integration.SyncLogEntry
}

func (l *fakeLogbook) Append(ctx context.Context, entry *integration.SyncLogEntry) error {
	entry.ID = int64(len(l.entries) + 1)
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *fakeLogbook) Update(ctx context.Context, syncType integration.SyncType, localID int64, patch integration.SyncLogPatch) (int64, error) {
	var updated int64
	for i := range l.entries {
		e := &l.entries[i]
		if e.SyncType != syncType || e.LocalID != localID || e.Status != integration.SyncStatusPending {
			continue
		}
		e.RemoteID = patch.RemoteID
		e.Status = patch.Status
		e.Message = patch.Message
		updated++
	}
	return updated, nil
}

func (l *fakeLogbook) Query(ctx context.Context, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	return l.entries, int64(len(l.entries)), nil
}

func (l *fakeLogbook) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

var _ integration.SyncLogRepository = (*fakeLogbook)(nil)

type fakeHistory struct {
	rows map[int64]*integration.OrderSyncHistory
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{rows: map[int64]*integration.OrderSyncHistory{}}
}

func (h *fakeHistory) Upsert(ctx context.Context, row *integration.OrderSyncHistory) error {
	cp := *row
	h.rows[row.OrderID] = &cp
	return nil
}

func (h *fakeHistory) Find(ctx context.Context, orderID int64) (*integration.OrderSyncHistory, error) {
	if row, ok := h.rows[orderID]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, integration.ErrHistoryNotFound
}

func (h *fakeHistory) List(ctx context.Context, status integration.SyncStatus, limit, offset int) ([]integration.OrderSyncHistory, int64, error) {
	var out []integration.OrderSyncHistory
	for _, row := range h.rows {
		if status == "" || row.Status == status {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

var _ integration.OrderSyncHistoryRepository = (*fakeHistory)(nil)

// ---------------------------------------------------------------------------
// test harness
// ---------------------------------------------------------------------------

type harness struct {
	store    *fakeStore
	gateway  *fakeGateway
	refs     *fakeRefs
	logbook  *fakeLogbook
	history  *fakeHistory
	resolver *IdentityResolver
	mapper   *integration.Mapper

	customers *CustomerSyncService
	orders    *OrderSyncService
	products  *ProductSyncService
}

func newHarness() *harness {
	h := &harness{
		store:   newFakeStore(),
		gateway: newFakeGateway(),
		refs:    newFakeRefs(),
		logbook: &fakeLogbook{},
		history: newFakeHistory(),
	}
	h.resolver = NewIdentityResolver(h.refs, h.gateway)
	h.mapper = integration.NewMapper(
		integration.MapperConfig{TaxSyncEnabled: true},
		integration.WithClock(fixedClock),
	)
	log := zap.NewNop()
	h.customers = NewCustomerSyncService(h.store, h.gateway, h.refs, h.logbook, h.resolver, h.mapper,
		CustomerSyncConfig{Enabled: true}, log)
	h.customers.now = fixedClock
	h.products = NewProductSyncService(h.store, h.gateway, h.refs, h.logbook, h.resolver, h.mapper,
		ProductSyncConfig{Enabled: true, InventoryEnabled: true, DefaultWarehouseID: 1}, log)
	h.products.now = fixedClock
	h.orders = NewOrderSyncService(h.store, h.gateway, h.refs, h.logbook, h.history,
		h.customers, h.products, h.resolver, h.mapper,
		OrderSyncConfig{Enabled: true}, log)
	h.orders.now = fixedClock
	return h
}

func (h *harness) addCustomer(id int64, email string) *integration.Customer {
	c := &integration.Customer{
		ID:          id,
		Email:       email,
		FirstName:   "Jane",
		LastName:    "Doe",
		DisplayName: "Jane Doe",
		Billing:     integration.Address{Line1: "1 Main St", City: "Paris", Postcode: "75001", CountryCode: "FR"},
	}
	h.store.customers[id] = c
	return c
}

func (h *harness) addProduct(id int64, sku string, stock int64, price string) *integration.Product {
	p := &integration.Product{
		ID:            id,
		SKU:           sku,
		Name:          "Widget",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Published:     true,
	}
	h.store.products[id] = p
	return p
}

func (h *harness) addOrder(id, customerID int64, status integration.OrderStatus) *integration.Order {
	o := &integration.Order{
		ID:               id,
		CustomerID:       customerID,
		Status:           status,
		BillingEmail:     "buyer@example.com",
		BillingFirstName: "Jane",
		BillingLastName:  "Doe",
		Billing:          integration.Address{Line1: "1 Main St", City: "Paris", CountryCode: "FR"},
		CreatedAt:        fixedNow.Add(-time.Hour),
		UpdatedAt:        fixedNow.Add(-time.Minute),
		Items: []integration.OrderItem{
			{
				ProductID:   0,
				Name:        "Widget",
				SKU:         "W-1",
				Quantity:    decimal.NewFromInt(2),
				Subtotal:    decimal.RequireFromString("20.00"),
				SubtotalTax: decimal.RequireFromString("4.00"),
			},
		},
	}
	h.store.orders[id] = o
	return o
}
