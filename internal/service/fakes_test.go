package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-pos/internal/models"
	"restaurant-pos/internal/store"
)

// memStore is an in-memory stand-in for *store.Store
type memStore struct {
	mu        sync.Mutex
	dishes    map[int64]*models.Dish
	sales     map[int64]*models.Sale
	payments  []models.Payment
	inventory map[int64]*models.InventoryItem
	profiles  map[string]*models.Profile
	nextID    int64
	now       time.Time

	createPaymentErr error
	listErr          error
}

func newMemStore() *memStore {
	return &memStore{
		dishes:    make(map[int64]*models.Dish),
		sales:     make(map[int64]*models.Sale),
		inventory: make(map[int64]*models.InventoryItem),
		profiles:  make(map[string]*models.Profile),
		now:       time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addDish(name string, price int64, active bool) *models.Dish {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &models.Dish{ID: m.id(), Name: name, Price: price, Active: active}
	m.dishes[d.ID] = d
	return d
}

func (m *memStore) addSale(s models.Sale) *models.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.sales[s.ID] = &s
	return &s
}

func (m *memStore) paymentsFor(saleID int64) []models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) GetDishByID(ctx context.Context, id int64) (*models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[id]
	if !ok {
		return nil, fmt.Errorf("dish %d: %w", id, store.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ListDishes(ctx context.Context, activeOnly bool) ([]models.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Dish{}
	for _, d := range m.dishes {
		if activeOnly && !d.Active {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CreateDish(ctx context.Context, dish *models.Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dish.ID = m.id()
	cp := *dish
	m.dishes[dish.ID] = &cp
	return nil
}

func (m *memStore) UpdateDish(ctx context.Context, dish *models.Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[dish.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *dish
	m.dishes[dish.ID] = &cp
	return nil
}

func (m *memStore) DeleteDish(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.dishes, id)
	return nil
}

func (m *memStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.IdempotencyKey == sale.IdempotencyKey {
			return store.ErrDuplicate
		}
	}
	sale.ID = m.id()
	sale.CreatedAt = m.now
	sale.UpdatedAt = m.now
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

func (m *memStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale %d: %w", id, store.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetSaleByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.IdempotencyKey == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createPaymentErr != nil {
		return m.createPaymentErr
	}
	payment.ID = m.id()
	payment.CreatedAt = m.now
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *memStore) ApplyPaymentTx(ctx context.Context, saleID, amount int64, note string) (*models.Sale, *models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[saleID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	if amount > s.Balance {
		return nil, nil, store.ErrInsufficientBalance
	}
	p := models.Payment{ID: m.id(), SaleID: saleID, Amount: amount, Note: note, CreatedAt: m.now}
	m.payments = append(m.payments, p)
	s.Paid += amount
	s.Balance = s.Total - s.Paid
	cp := *s
	return &cp, &p, nil
}

func (m *memStore) DeleteSale(ctx context.Context, id int64) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.sales, id)
	kept := m.payments[:0]
	for _, p := range m.payments {
		if p.SaleID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	return s, nil
}

func (m *memStore) DeleteAllSales(ctx context.Context) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := make([]models.Sale, 0, len(m.sales))
	for _, sale := range m.sales {
		deleted = append(deleted, *sale)
	}
	m.sales = make(map[int64]*models.Sale)
	m.payments = nil
	return deleted, nil
}

func (m *memStore) ListPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error) {
	out := m.paymentsFor(saleID)
	if out == nil {
		out = []models.Payment{}
	}
	return out, nil
}

// EachSale ignores the filter; the ledger must apply it itself
func (m *memStore) EachSale(ctx context.Context, filter models.SaleFilter, fn func(*models.Sale) error) error {
	m.mu.Lock()
	if m.listErr != nil {
		m.mu.Unlock()
		return m.listErr
	}
	sales := make([]models.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		sales = append(sales, *s)
	}
	m.mu.Unlock()

	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].CreatedAt.After(sales[j].CreatedAt)
		}
		return sales[i].ID > sales[j].ID
	})
	for i := range sales {
		if err := fn(&sales[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.InventoryItem{}
	for _, item := range m.inventory {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.inventory[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id()
	cp := *item
	m.inventory[item.ID] = &cp
	return nil
}

func (m *memStore) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[item.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *item
	m.inventory[item.ID] = &cp
	return nil
}

func (m *memStore) DeleteInventoryItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inventory[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.inventory, id)
	return nil
}

func (m *memStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return store.ErrDuplicate
		}
	}
	p.CreatedAt = m.now
	p.UpdatedAt = m.now
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memStore) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Profile{}
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) UpdateProfileAccess(ctx context.Context, id, role string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Role, p.IsActive = role, active
	return nil
}

func (m *memStore) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

// recordingPublisher captures published ledger events
type recordingPublisher struct {
	mu      sync.Mutex
	created []*models.SaleCreatedEvent
	applied []*models.PaymentAppliedEvent
	deleted []*models.SaleDeletedEvent
	// ctx.Err() seen by each publish call
	ctxErrs []error
	err     error
}

func (p *recordingPublisher) PublishSaleCreated(ctx context.Context, event *models.SaleCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPublisher) PublishPaymentApplied(ctx context.Context, event *models.PaymentAppliedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied = append(p.applied, event)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPublisher) PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, event)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

// memCache is an in-memory catalog cache
type memCache struct {
	dishes        []models.Dish
	filled        bool
	getErr        error
	invalidations int
}

func (c *memCache) GetActiveDishes(ctx context.Context) ([]models.Dish, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.dishes, c.filled, nil
}

func (c *memCache) SetActiveDishes(ctx context.Context, dishes []models.Dish) error {
	c.dishes, c.filled = dishes, true
	return nil
}

func (c *memCache) InvalidateActiveDishes(ctx context.Context) error {
	c.dishes, c.filled = nil, false
	c.invalidations++
	return nil
}

// memDayStats keeps day counters with per-event deduplication
type memDayStats struct {
	days    map[string]models.DayStats
	seen    map[string]bool
	readErr error
}

func newMemDayStats() *memDayStats {
	return &memDayStats{days: make(map[string]models.DayStats), seen: make(map[string]bool)}
}

func (d *memDayStats) AdjustDayStats(ctx context.Context, eventID, day string, sales, revenue, collected int64) (bool, error) {
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	s := d.days[day]
	s.Date = day
	s.Sales += sales
	s.Revenue += revenue
	s.Collected += collected
	d.days[day] = s
	return true, nil
}

func (d *memDayStats) GetDayStats(ctx context.Context, day string) (models.DayStats, error) {
	if d.readErr != nil {
		return models.DayStats{}, d.readErr
	}
	s, ok := d.days[day]
	if !ok {
		return models.DayStats{Date: day}, nil
	}
	return s, nil
}

var errBoom = errors.New("boom")
