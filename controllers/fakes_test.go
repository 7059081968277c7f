package controllers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/controllers"
	"github.com/Samaresh-Maiti-2001/stylemaven/middleware"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
	"github.com/Samaresh-Maiti-2001/stylemaven/services"
)

// ---- in-memory repositories backing the real services ----

type fakeCartRepo struct {
	carts map[string]*models.Cart
}

func (r *fakeCartRepo) Get(_ context.Context, userID string) (*models.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Lines = append([]models.CartLine(nil), cart.Lines...)
	return &copied, nil
}

func (r *fakeCartRepo) Put(_ context.Context, userID string, expectedVersion int64, lines []models.CartLine) (*models.Cart, error) {
	existing, ok := r.carts[userID]
	if !ok {
		if expectedVersion != 0 {
			return nil, repository.ErrVersionConflict
		}
	} else if existing.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}
	cart := &models.Cart{
		UserID:    userID,
		Lines:     append([]models.CartLine(nil), lines...),
		Version:   expectedVersion + 1,
		UpdatedAt: time.Now().UTC(),
	}
	r.carts[userID] = cart
	return cart, nil
}

type fakeProductRepo struct {
	products map[string]*models.Product
}

func (r *fakeProductRepo) FindByID(_ context.Context, productID string) (*models.Product, error) {
	product, ok := r.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, productIDs []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product)
	for _, id := range productIDs {
		if product, ok := r.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Find(_ context.Context, page, limit int) ([]models.Product, int64, error) {
	var out []models.Product
	for _, product := range r.products {
		if product.Active {
			out = append(out, *product)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, productID string, quantity int64) error {
	product, ok := r.products[productID]
	if !ok || product.Stock < quantity {
		return repository.ErrNotFound
	}
	product.Stock -= quantity
	return nil
}

type fakeReservationRepo struct {
	holds map[string]models.Reservation
}

func (r *fakeReservationRepo) Create(_ context.Context, res *models.Reservation) error {
	r.holds[res.ID] = *res
	return nil
}

func (r *fakeReservationRepo) Delete(_ context.Context, id string) error {
	delete(r.holds, id)
	return nil
}

func (r *fakeReservationRepo) DeleteByOrder(_ context.Context, orderID string) error {
	for id, res := range r.holds {
		if res.OrderID == orderID {
			delete(r.holds, id)
		}
	}
	return nil
}

func (r *fakeReservationRepo) FindByOrder(_ context.Context, orderID string) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, res := range r.holds {
		if res.OrderID == orderID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) FindExpired(_ context.Context, now time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, res := range r.holds {
		if !res.ExpiresAt.After(now) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ReservedQuantity(_ context.Context, productID string) (int64, error) {
	var total int64
	for _, res := range r.holds {
		if res.ProductID == productID {
			total += res.Quantity
		}
	}
	return total, nil
}

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByIDAndUser(_ context.Context, orderID, userID string) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByUser(_ context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeOrderRepo) Transition(_ context.Context, orderID string, from, to models.OrderStatus, paymentRef string) (bool, error) {
	order, ok := r.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	if paymentRef != "" {
		order.PaymentRef = paymentRef
	}
	return true, nil
}

const fakeIdemPending = "pending"

type fakeIdemStore struct {
	keys map[string]string
}

func (s *fakeIdemStore) Claim(_ context.Context, userID, key string, _ time.Duration) (bool, string, error) {
	k := userID + ":" + key
	val, ok := s.keys[k]
	if !ok {
		s.keys[k] = fakeIdemPending
		return true, "", nil
	}
	if val == fakeIdemPending {
		return false, "", nil
	}
	return false, val, nil
}

func (s *fakeIdemStore) Get(_ context.Context, userID, key string) (string, error) {
	if val := s.keys[userID+":"+key]; val != fakeIdemPending {
		return val, nil
	}
	return "", nil
}

func (s *fakeIdemStore) Set(_ context.Context, userID, key, orderID string, _ time.Duration) error {
	s.keys[userID+":"+key] = orderID
	return nil
}

func (s *fakeIdemStore) Release(_ context.Context, userID, key string) error {
	delete(s.keys, userID+":"+key)
	return nil
}

// ---- helpers ----

type apiFixture struct {
	carts    *fakeCartRepo
	products *fakeProductRepo
	holds    *fakeReservationRepo
	orders   *fakeOrderRepo
	router   *gin.Engine
}

// authAs injects a verified user ID the way AuthMiddleware would after a
// successful token check.
func authAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, userID)
		c.Next()
	}
}

func newAPIFixture(userID string, products ...*models.Product) *apiFixture {
	gin.SetMode(gin.TestMode)

	f := &apiFixture{
		carts:    &fakeCartRepo{carts: make(map[string]*models.Cart)},
		products: &fakeProductRepo{products: make(map[string]*models.Product)},
		holds:    &fakeReservationRepo{holds: make(map[string]models.Reservation)},
		orders:   &fakeOrderRepo{orders: make(map[string]*models.Order)},
	}
	for _, product := range products {
		f.products.products[product.ID] = product
	}

	log := zap.NewNop()
	cartSvc := services.NewCartService(f.carts, f.products, log)
	stockSvc := services.NewStockService(f.products, f.holds, 15*time.Minute, log)
	orderSvc := services.NewOrderService(f.orders, f.products, &fakeIdemStore{keys: make(map[string]string)}, cartSvc, stockSvc, time.Hour, log)
	paySvc := services.NewPaymentService(f.orders, stockSvc, log)

	cartCtrl := controllers.NewCartController(cartSvc)
	orderCtrl := controllers.NewOrderController(orderSvc, paySvc)
	productCtrl := controllers.NewProductController(f.products)

	r := gin.New()
	cart := r.Group("/api/cart", authAs(userID))
	{
		cart.GET("", cartCtrl.GetCart)
		cart.POST("/add", cartCtrl.AddLine)
		cart.POST("/update", cartCtrl.UpdateLine)
		cart.POST("/remove", cartCtrl.RemoveLine)
	}
	order := r.Group("/api/order")
	{
		order.POST("/payment-webhook", orderCtrl.PaymentWebhook)
		authed := order.Group("", authAs(userID))
		authed.POST("/place", orderCtrl.PlaceOrder)
		authed.GET("", orderCtrl.GetOrders)
		authed.GET("/:id", orderCtrl.GetOrderByID)
	}
	product := r.Group("/api/product")
	{
		product.GET("", productCtrl.ListProducts)
		product.GET("/:id", productCtrl.GetProduct)
	}
	f.router = r
	return f
}

func catalogProduct(id string, price, stock int64) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Currency: "USD",
		Sizes:    []string{"S", "M", "L"},
		Stock:    stock,
		Active:   true,
	}
}
