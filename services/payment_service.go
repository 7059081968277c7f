package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// PaymentService reconciles asynchronous provider confirmations with order
// state. Transitions are status-guarded at the document level, so retried
// or duplicate webhook deliveries are safe without extra deduplication.
type PaymentService struct {
	orders repository.OrderRepository
	stock  *StockService
	logger *zap.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(orders repository.OrderRepository, stock *StockService, logger *zap.Logger) *PaymentService {
	return &PaymentService{orders: orders, stock: stock, logger: logger}
}

// ConfirmPayment applies the provider outcome to a pending order. Success
// moves it to paid and finalizes its holds (physical stock permanently
// decremented); failure moves it to failed and releases them. An order
// already in a terminal status is left alone and its current status
// returned, making the handler a no-op for duplicate notifications.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID, paymentRef string, outcome models.PaymentOutcome) (models.OrderStatus, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NotFound("Order not found")
		}
		return "", apperrors.Internal(err)
	}

	if order.Status != models.OrderStatusPendingPayment {
		s.logger.Info("skipping duplicate payment notification",
			zap.String("order_id", orderID),
			zap.String("status", order.Status.String()),
		)
		return order.Status, nil
	}

	var target models.OrderStatus
	switch outcome {
	case models.PaymentOutcomeSuccess:
		target = models.OrderStatusPaid
	case models.PaymentOutcomeFailure:
		target = models.OrderStatusFailed
	default:
		return "", apperrors.Validation("Unknown payment outcome")
	}

	applied, err := s.orders.Transition(ctx, orderID, models.OrderStatusPendingPayment, target, paymentRef)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if !applied {
		// Lost the race to a concurrent confirmation or sweep; report
		// whatever won.
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		return current.Status, nil
	}

	switch target {
	case models.OrderStatusPaid:
		if err := s.stock.Finalize(ctx, orderID); err != nil {
			s.logger.Error("failed to finalize stock for paid order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	case models.OrderStatusFailed:
		if err := s.stock.Release(ctx, orderID); err != nil {
			s.logger.Error("failed to release stock for failed order",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("payment reconciled",
		zap.String("order_id", orderID),
		zap.String("payment_ref", paymentRef),
		zap.String("status", target.String()),
	)
	return target, nil
}
