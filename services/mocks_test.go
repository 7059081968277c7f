package services

import (
	"context"
	"sync"
	"time"

	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// In-memory fakes mirroring the Mongo repositories' semantics, including
// the version and status guards. Thread-safe so concurrency tests can hit
// them from multiple goroutines.

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*models.Cart)}
}

func (r *memCartRepo) Get(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &copied, nil
}

func (r *memCartRepo) Put(_ context.Context, userID string, expectedVersion int64, lines []models.CartLine) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.carts[userID]
	if expectedVersion == 0 {
		if exists {
			return nil, repository.ErrVersionConflict
		}
	} else {
		if !exists || current.Version != expectedVersion {
			return nil, repository.ErrVersionConflict
		}
	}

	cart := &models.Cart{
		UserID:    userID,
		Lines:     append([]models.CartLine(nil), lines...),
		Version:   expectedVersion + 1,
		UpdatedAt: time.Now().UTC(),
	}
	r.carts[userID] = cart

	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &copied, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newMemProductRepo(products ...*models.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]*models.Product)}
	for _, p := range products {
		copied := *p
		r.products[p.ID] = &copied
	}
	return r
}

func (r *memProductRepo) FindByID(_ context.Context, productID string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, productIDs []string) (map[string]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*models.Product)
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			copied := *p
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *memProductRepo) Find(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, productID string, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.Stock < quantity {
		return repository.ErrVersionConflict
	}
	p.Stock -= quantity
	return nil
}

func (r *memProductRepo) setStock(productID string, stock int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[productID].Stock = stock
}

func (r *memProductRepo) stock(productID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[productID].Stock
}

type memReservationRepo struct {
	mu    sync.Mutex
	holds map[string]models.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{holds: make(map[string]models.Reservation)}
}

func (r *memReservationRepo) Create(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holds[res.ID] = *res
	return nil
}

func (r *memReservationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.holds, id)
	return nil
}

func (r *memReservationRepo) DeleteByOrder(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, res := range r.holds {
		if res.OrderID == orderID {
			delete(r.holds, id)
		}
	}
	return nil
}

func (r *memReservationRepo) FindByOrder(_ context.Context, orderID string) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.holds {
		if res.OrderID == orderID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memReservationRepo) FindExpired(_ context.Context, now time.Time) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.holds {
		if !res.ExpiresAt.After(now) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memReservationRepo) ReservedQuantity(_ context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, res := range r.holds {
		if res.ProductID == productID {
			total += res.Quantity
		}
	}
	return total, nil
}

func (r *memReservationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holds)
}

func (r *memReservationRepo) expireAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	past := time.Now().UTC().Add(-time.Minute)
	for id, res := range r.holds {
		res.ExpiresAt = past
		r.holds[id] = res
	}
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) FindByIDAndUser(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := r.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (r *memOrderRepo) FindByUser(_ context.Context, userID string, _, _ int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *memOrderRepo) Transition(_ context.Context, orderID string, from, to models.OrderStatus, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	if paymentRef != "" {
		order.PaymentRef = paymentRef
	}
	now := time.Now().UTC()
	switch to {
	case models.OrderStatusPaid:
		order.CompletedAt = &now
	case models.OrderStatusFailed, models.OrderStatusCancelled:
		order.CanceledAt = &now
	}
	return true, nil
}

const memIdemPending = "pending"

type memIdemStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{keys: make(map[string]string)}
}

func (s *memIdemStore) Claim(_ context.Context, userID, key string, _ time.Duration) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userID + ":" + key
	val, ok := s.keys[k]
	if !ok {
		s.keys[k] = memIdemPending
		return true, "", nil
	}
	if val == memIdemPending {
		return false, "", nil
	}
	return false, val, nil
}

func (s *memIdemStore) Get(_ context.Context, userID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if val := s.keys[userID+":"+key]; val != memIdemPending {
		return val, nil
	}
	return "", nil
}

func (s *memIdemStore) Set(_ context.Context, userID, key, orderID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[userID+":"+key] = orderID
	return nil
}

func (s *memIdemStore) Release(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, userID+":"+key)
	return nil
}
