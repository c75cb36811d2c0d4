package service

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
	"github.com/aussiebroadwan/bitebank/internal/order/store"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.Store.Orders().ListOrders(ctx)
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.Store.Orders().ListOrdersByUser(ctx, userID)
}

// CreateOrder inserts the order and its lines in one transaction. Status
// defaults to ACCEPTED and the order date to now.
func (s *OrderService) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	o = normalizeOrder(o, time.Now)
	if err := validateOrder(o); err != nil {
		return domain.Order{}, err
	}

	var created domain.Order
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.Orders().CreateOrder(ctx, o)
		if err != nil {
			return err
		}
		if err := tx.Orders().InsertOrderItems(ctx, row.ID, o.Items); err != nil {
			return err
		}
		created = row
		created.Items = o.Items
		return nil
	})
	if err != nil {
		return domain.Order{}, mapStoreErr(err, ErrOrderNotFound)
	}

	slogx.FromContext(ctx).Info("order created",
		"order_id", created.ID,
		"user_id", created.UserID,
		"items", len(created.Items),
	)
	return created, nil
}

// UpdateOrder replaces the order's fields and its whole item set.
func (s *OrderService) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	o = normalizeOrder(o, time.Now)
	if err := validateOrder(o); err != nil {
		return domain.Order{}, err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Orders().UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.Orders().DeleteOrderItems(ctx, o.ID); err != nil {
			return err
		}
		return tx.Orders().InsertOrderItems(ctx, o.ID, o.Items)
	})
	if err != nil {
		return domain.Order{}, mapStoreErr(err, ErrOrderNotFound)
	}

	updated, err := s.Store.Orders().GetOrder(ctx, o.ID)
	return updated, mapStoreErr(err, ErrOrderNotFound)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.Store.Orders().DeleteOrder(ctx, id); err != nil {
		return mapStoreErr(err, ErrOrderNotFound)
	}

	slogx.FromContext(ctx).Info("order deleted", "order_id", id)
	return nil
}

func normalizeOrder(o domain.Order, now func() time.Time) domain.Order {
	o.Address = strings.TrimSpace(o.Address)
	if o.Status == "" {
		o.Status = domain.DefaultOrderStatus
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = now()
	}
	o.OrderDate = o.OrderDate.UTC()
	return o
}

func validateOrder(o domain.Order) error {
	switch {
	case o.UserID <= 0:
		return invalid("user_id is required")
	case o.Address == "":
		return invalid("address is required")
	case utf8.RuneCountInString(o.Address) > maxAddressLen:
		return invalid("address must be at most %d characters", maxAddressLen)
	case o.FullPrice < 0 || math.IsNaN(o.FullPrice) || math.IsInf(o.FullPrice, 0):
		return invalid("full_price must be a non-negative number")
	case !o.Status.Valid():
		return invalid("status %q is not a known order status", o.Status)
	case len(o.Items) == 0:
		return invalid("an order needs at least one item")
	}
	for i, it := range o.Items {
		if it.MealID <= 0 {
			return invalid("items[%d]: meal_id is required", i)
		}
		if it.Amount < 1 {
			return invalid("items[%d]: amount must be at least 1", i)
		}
	}
	return nil
}
