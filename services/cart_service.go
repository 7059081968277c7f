package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// CartService owns all cart mutations. Carts use optimistic concurrency:
// every mutation carries the caller's last-seen version and fails with a
// conflict error when the stored version differs, so no lock is held across
// requests.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a CartService.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// GetCart returns the user's cart. A user who has never added a line gets
// an empty cart at version 0.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if cart == nil {
		return &models.Cart{UserID: userID, Lines: []models.CartLine{}, Version: 0}, nil
	}
	return cart, nil
}

// AddLine adds quantity to the (productID, size) line, creating it if
// needed. The product must exist and be active.
func (s *CartService) AddLine(ctx context.Context, userID, productID, size string, quantity, expectedVersion int64) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("Quantity must be a positive integer")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Internal(err)
	}
	if !product.Active {
		return nil, apperrors.Validation("Product is not available")
	}

	return s.mutate(ctx, userID, expectedVersion, func(lines []models.CartLine) []models.CartLine {
		for i, line := range lines {
			if line.ProductID == productID && line.Size == size {
				lines[i].Quantity += quantity
				return lines
			}
		}
		return append(lines, models.CartLine{ProductID: productID, Size: size, Quantity: quantity})
	})
}

// SetQuantity sets the (productID, size) line to quantity; 0 removes the
// line. Setting a line that does not exist creates it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID, size string, quantity, expectedVersion int64) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.Validation("Quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, userID, productID, size, expectedVersion)
	}

	return s.mutate(ctx, userID, expectedVersion, func(lines []models.CartLine) []models.CartLine {
		for i, line := range lines {
			if line.ProductID == productID && line.Size == size {
				lines[i].Quantity = quantity
				return lines
			}
		}
		return append(lines, models.CartLine{ProductID: productID, Size: size, Quantity: quantity})
	})
}

// RemoveLine deletes the (productID, size) line. Removing an absent line is
// not an error; the version still advances.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID, size string, expectedVersion int64) (*models.Cart, error) {
	return s.mutate(ctx, userID, expectedVersion, func(lines []models.CartLine) []models.CartLine {
		filtered := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID || line.Size != size {
				filtered = append(filtered, line)
			}
		}
		return filtered
	})
}

// Clear empties the cart, guarded by expectedVersion. Used after a
// successful order placement.
func (s *CartService) Clear(ctx context.Context, userID string, expectedVersion int64) (*models.Cart, error) {
	return s.mutate(ctx, userID, expectedVersion, func([]models.CartLine) []models.CartLine {
		return []models.CartLine{}
	})
}

func (s *CartService) mutate(ctx context.Context, userID string, expectedVersion int64, apply func([]models.CartLine) []models.CartLine) (*models.Cart, error) {
	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var lines []models.CartLine
	if current != nil {
		if current.Version != expectedVersion {
			return nil, apperrors.Conflict("Cart was modified; re-fetch and retry")
		}
		lines = append(lines, current.Lines...)
	} else if expectedVersion != 0 {
		return nil, apperrors.Conflict("Cart was modified; re-fetch and retry")
	}

	updated, err := s.carts.Put(ctx, userID, expectedVersion, apply(lines))
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.Conflict("Cart was modified; re-fetch and retry")
		}
		return nil, apperrors.Internal(err)
	}

	s.logger.Debug("cart mutated",
		zap.String("user_id", userID),
		zap.Int64("version", updated.Version),
		zap.Int("lines", len(updated.Lines)),
	)
	return updated, nil
}
