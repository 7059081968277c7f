package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// StockService is the reservation engine. Availability for a product is its
// physical stock minus the sum of existing holds; the read-check-create
// sequence for a product is serialized behind a per-product mutex, which is
// the single point that prevents overselling under concurrent reserves.
type StockService struct {
	products     repository.ProductRepository
	reservations repository.ReservationRepository
	ttl          time.Duration
	logger       *zap.Logger

	locks sync.Map // productID -> *sync.Mutex
}

// NewStockService creates a StockService with the given reservation TTL.
func NewStockService(products repository.ProductRepository, reservations repository.ReservationRepository, ttl time.Duration, logger *zap.Logger) *StockService {
	return &StockService{
		products:     products,
		reservations: reservations,
		ttl:          ttl,
		logger:       logger,
	}
}

func (s *StockService) lock(productID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(productID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Reserve creates a hold for every cart line or none at all. Lines are
// evaluated in the cart's stored order, so the error always names the first
// failing line. Holds created earlier in the call are rolled back on any
// failure; a rollback delete that itself fails is left for the sweeper,
// favoring under-availability over overselling.
func (s *StockService) Reserve(ctx context.Context, orderID string, lines []models.CartLine) ([]models.Reservation, error) {
	created := make([]models.Reservation, 0, len(lines))

	for _, line := range lines {
		res, err := s.reserveLine(ctx, orderID, line)
		if err != nil {
			s.rollback(ctx, created)
			return nil, err
		}
		created = append(created, *res)
	}

	s.logger.Info("stock reserved",
		zap.String("order_id", orderID),
		zap.Int("lines", len(created)),
	)
	return created, nil
}

func (s *StockService) reserveLine(ctx context.Context, orderID string, line models.CartLine) (*models.Reservation, error) {
	mu := s.lock(line.ProductID)
	mu.Lock()
	defer mu.Unlock()

	product, err := s.products.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found: " + line.ProductID)
		}
		return nil, apperrors.Internal(err)
	}

	reserved, err := s.reservations.ReservedQuantity(ctx, line.ProductID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	available := product.Stock - reserved
	if !product.Active || available < line.Quantity {
		if !product.Active {
			available = 0
		}
		return nil, apperrors.InsufficientStock(line.ProductID, line.Size, line.Quantity, available)
	}

	res := models.NewReservation(orderID, line.ProductID, line.Size, line.Quantity, s.ttl)
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, apperrors.Internal(err)
	}
	return res, nil
}

func (s *StockService) rollback(ctx context.Context, created []models.Reservation) {
	for _, res := range created {
		if err := s.reservations.Delete(ctx, res.ID); err != nil {
			// Leave it to expire; the sweeper restores availability.
			s.logger.Warn("failed to roll back reservation",
				zap.String("reservation_id", res.ID),
				zap.String("product_id", res.ProductID),
				zap.Error(err),
			)
		}
	}
}

// Finalize permanently decrements physical stock for the order's holds and
// removes them. Called when payment succeeds. A hold whose decrement fails
// is kept and reported, so the caller knows the paid order still needs
// reconciliation; holds that did decrement are deleted either way.
func (s *StockService) Finalize(ctx context.Context, orderID string) error {
	holds, err := s.reservations.FindByOrder(ctx, orderID)
	if err != nil {
		return apperrors.Internal(err)
	}

	var stranded int
	for _, hold := range holds {
		if err := s.products.DecrementStock(ctx, hold.ProductID, hold.Quantity); err != nil {
			s.logger.Error("failed to decrement physical stock",
				zap.String("order_id", orderID),
				zap.String("product_id", hold.ProductID),
				zap.Int64("quantity", hold.Quantity),
				zap.Error(err),
			)
			stranded++
			continue
		}
		if err := s.reservations.Delete(ctx, hold.ID); err != nil {
			s.logger.Warn("failed to delete finalized reservation",
				zap.String("reservation_id", hold.ID),
				zap.Error(err),
			)
		}
	}

	if stranded > 0 {
		return apperrors.Internal(fmt.Errorf("%d of %d holds not finalized for order %s", stranded, len(holds), orderID))
	}
	s.logger.Info("stock finalized", zap.String("order_id", orderID), zap.Int("holds", len(holds)))
	return nil
}

// Release removes the order's holds without touching physical stock, which
// was never decremented for an unconfirmed order. Called on payment failure
// and by the expiry sweep.
func (s *StockService) Release(ctx context.Context, orderID string) error {
	if err := s.reservations.DeleteByOrder(ctx, orderID); err != nil {
		return apperrors.Internal(err)
	}
	s.logger.Info("stock released", zap.String("order_id", orderID))
	return nil
}
