package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// OrderService composes the cart, catalog and reservation engine into the
// place-order use case and serves order reads.
type OrderService struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	idempotency repository.IdempotencyStore
	carts       *CartService
	stock       *StockService
	idemTTL     time.Duration
	logger      *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	idempotency repository.IdempotencyStore,
	carts *CartService,
	stock *StockService,
	idemTTL time.Duration,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		idempotency: idempotency,
		carts:       carts,
		stock:       stock,
		idemTTL:     idemTTL,
		logger:      logger,
	}
}

const (
	replayAttempts = 20
	replayInterval = 50 * time.Millisecond
)

// PlaceOrder converts the user's cart into a pending-payment order:
// snapshot the cart, capture live prices, reserve stock, persist the order,
// clear the cart. On any stock failure nothing is left behind and the cart
// is untouched so the client can adjust quantities and retry. The
// idempotency key is claimed atomically before any work starts, so
// concurrent calls with the same key resolve to one placement; the others
// return the order it created.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, idemKey string) (*models.Order, error) {
	if idemKey != "" {
		owned, existingID, err := s.idempotency.Claim(ctx, userID, idemKey, s.idemTTL)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if !owned {
			return s.awaitReplay(ctx, userID, idemKey, existingID)
		}
	}

	order, err := s.place(ctx, userID)
	if err != nil {
		if idemKey != "" {
			// The claim must not outlive the failed placement, or every
			// retry with the key would be turned away.
			if relErr := s.idempotency.Release(ctx, userID, idemKey); relErr != nil {
				s.logger.Error("failed to release idempotency claim",
					zap.String("user_id", userID),
					zap.Error(relErr),
				)
			}
		}
		return nil, err
	}

	if idemKey != "" {
		if err := s.idempotency.Set(ctx, userID, idemKey, order.ID, s.idemTTL); err != nil {
			s.logger.Warn("failed to record idempotency key",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}
	return order, nil
}

// awaitReplay resolves a lost idempotency claim: return the winner's order,
// polling while the winning placement is still in flight.
func (s *OrderService) awaitReplay(ctx context.Context, userID, idemKey, orderID string) (*models.Order, error) {
	for attempt := 0; ; attempt++ {
		if orderID != "" {
			order, err := s.orders.FindByID(ctx, orderID)
			if err == nil {
				s.logger.Info("idempotent order replay",
					zap.String("user_id", userID),
					zap.String("order_id", orderID),
				)
				return order, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.Internal(err)
			}
		}
		if attempt >= replayAttempts {
			return nil, apperrors.Conflict("Order placement with this idempotency key is still in progress")
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.Internal(ctx.Err())
		case <-time.After(replayInterval):
		}
		id, err := s.idempotency.Get(ctx, userID, idemKey)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		orderID = id
	}
}

func (s *OrderService) place(ctx context.Context, userID string) (*models.Order, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	lines, currency, err := s.priceLines(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}

	order := models.NewOrder(userID, lines, currency)

	if _, err := s.stock.Reserve(ctx, order.ID, cart.Lines); err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// The order record never existed; drop the holds so the stock
		// comes straight back instead of waiting out the TTL.
		_ = s.stock.Release(ctx, order.ID)
		return nil, apperrors.Internal(err)
	}

	// Clear the cart at the snapshot version. Losing this race to a
	// concurrent cart edit is fine: the order stands and the user keeps
	// their newer cart.
	if _, err := s.carts.Clear(ctx, userID, cart.Version); err != nil {
		if !apperrors.IsKind(err, apperrors.KindConflict) {
			s.logger.Warn("failed to clear cart after order placement",
				zap.String("user_id", userID),
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total_amount", order.TotalAmount),
	)
	return order, nil
}

// priceLines reads live catalog prices for every cart line, capturing
// unitPriceAtPurchase. Unknown or inactive products reject the order.
func (s *OrderService) priceLines(ctx context.Context, cartLines []models.CartLine) ([]models.OrderLine, string, error) {
	ids := make([]string, 0, len(cartLines))
	for _, line := range cartLines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	currency := ""
	lines := make([]models.OrderLine, 0, len(cartLines))
	for _, line := range cartLines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, "", apperrors.NotFound("Product not found: " + line.ProductID)
		}
		if !product.Active {
			return nil, "", apperrors.Validation("Product is not available: " + line.ProductID)
		}
		if currency == "" {
			currency = product.Currency
		} else if product.Currency != currency {
			// Minor units from different currencies must never sum into
			// one total.
			return nil, "", apperrors.Validation("Cart mixes currencies: " + currency + " and " + product.Currency)
		}
		lines = append(lines, models.OrderLine{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
	}
	return lines, currency, nil
}

// GetOrder returns one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first, with pagination
// metadata.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page, limit int) (*models.OrderListResponse, error) {
	orders, total, err := s.orders.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderListResponse{
		Orders: orders,
		Meta: models.MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			HasMore:     total > int64(page*limit),
		},
	}, nil
}
