package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// Sweeper releases reservations whose TTL elapsed without a payment
// confirmation, cancelling the associated order. It only touches orders
// still in pending_payment, re-checked via the guarded transition, so a
// sweep can never release stock for an order that is concurrently being
// confirmed.
type Sweeper struct {
	reservations repository.ReservationRepository
	orders       repository.OrderRepository
	stock        *StockService
	interval     time.Duration
	logger       *zap.Logger
}

// NewSweeper creates a Sweeper with the given sweep interval.
func NewSweeper(
	reservations repository.ReservationRepository,
	orders repository.OrderRepository,
	stock *StockService,
	interval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		reservations: reservations,
		orders:       orders,
		stock:        stock,
		interval:     interval,
		logger:       logger,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce expires one batch of overdue reservations. For each affected
// order, the cancel transition and the release of its holds happen as a
// single step per order: the guarded transition decides the winner, and
// holds are only deleted after the order is cancelled.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	expired, err := s.reservations.FindExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	orderIDs := make(map[string]struct{})
	for _, res := range expired {
		orderIDs[res.OrderID] = struct{}{}
	}

	for orderID := range orderIDs {
		applied, err := s.orders.Transition(ctx, orderID, models.OrderStatusPendingPayment, models.OrderStatusCancelled, "")
		if err != nil {
			s.logger.Error("failed to cancel expired order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			continue
		}
		if !applied {
			s.reapOrphan(ctx, orderID)
			continue
		}

		if err := s.stock.Release(ctx, orderID); err != nil {
			s.logger.Error("failed to release holds for cancelled order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("expired order cancelled", zap.String("order_id", orderID))
	}

	return nil
}

// reapOrphan handles expired holds whose order is not pending: holds left by
// a failed rollback have no order at all, and a failed or cancelled order
// may have holds from a release that did not finish. Both are safe to
// delete. Holds attached to a paid order are left for the confirm path;
// deleting them here would skip the physical decrement.
func (s *Sweeper) reapOrphan(ctx context.Context, orderID string) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if err := s.stock.Release(ctx, orderID); err != nil {
				s.logger.Error("failed to release orphaned holds",
					zap.String("order_id", orderID),
					zap.Error(err),
				)
			}
		}
		return
	}

	switch order.Status {
	case models.OrderStatusFailed, models.OrderStatusCancelled:
		if err := s.stock.Release(ctx, orderID); err != nil {
			s.logger.Error("failed to release holds for terminal order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	case models.OrderStatusPaid:
		s.logger.Warn("expired holds on a paid order; leaving for finalize",
			zap.String("order_id", orderID),
		)
	}
}
