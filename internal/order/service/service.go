package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bitebank/internal/order/store"
)

// Field limits, matching the order schema.
const (
	maxMealNameLen = 60
	maxAddressLen  = 100
)

var (
	ErrInvalidInput = errors.New("invalid_input")

	ErrMealNotFound     = errors.New("meal does not exist")
	ErrCartItemNotFound = errors.New("shopping cart item does not exist")
	ErrOrderNotFound    = errors.New("order does not exist")

	// ErrMealInUse is returned when deleting a meal a cart or order still
	// names.
	ErrMealInUse = errors.New("meal is still in a shopping cart or order")
)

// OrderService holds the meal, cart and order operations. Each one is a
// single store call except order writes, which run in a transaction.
type OrderService struct {
	Store store.Store
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// mapStoreErr turns the store's sentinel errors into service errors. A
// foreign key failure on a cart or order write means the meal is missing.
func mapStoreErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrReferenced):
		return ErrMealNotFound
	default:
		return err
	}
}
