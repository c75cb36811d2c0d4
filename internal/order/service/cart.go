package service

import (
	"context"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
)

func (s *OrderService) ListCart(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return s.Store.Cart().ListCartItems(ctx, userID)
}

// AddToCart stores a cart line. A zero amount means one.
func (s *OrderService) AddToCart(ctx context.Context, c domain.CartItem) (domain.CartItem, error) {
	if c.Amount == 0 {
		c.Amount = 1
	}
	if err := validateCartItem(c); err != nil {
		return domain.CartItem{}, err
	}

	created, err := s.Store.Cart().CreateCartItem(ctx, c)
	return created, mapStoreErr(err, ErrCartItemNotFound)
}

func (s *OrderService) UpdateCartItem(ctx context.Context, c domain.CartItem) (domain.CartItem, error) {
	if err := validateCartItem(c); err != nil {
		return domain.CartItem{}, err
	}

	updated, err := s.Store.Cart().UpdateCartItem(ctx, c)
	return updated, mapStoreErr(err, ErrCartItemNotFound)
}

func (s *OrderService) RemoveFromCart(ctx context.Context, id int64) error {
	return mapStoreErr(s.Store.Cart().DeleteCartItem(ctx, id), ErrCartItemNotFound)
}

func validateCartItem(c domain.CartItem) error {
	switch {
	case c.UserID <= 0:
		return invalid("user_id is required")
	case c.MealID <= 0:
		return invalid("meal_id is required")
	case c.Amount < 1:
		return invalid("amount must be at least 1")
	}
	return nil
}
