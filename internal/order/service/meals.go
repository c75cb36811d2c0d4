package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
	"github.com/aussiebroadwan/bitebank/internal/order/store"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

func (s *OrderService) ListMeals(ctx context.Context) ([]domain.Meal, error) {
	return s.Store.Meals().ListMeals(ctx)
}

func (s *OrderService) GetMeal(ctx context.Context, id int64) (domain.Meal, error) {
	m, err := s.Store.Meals().GetMeal(ctx, id)
	return m, mapStoreErr(err, ErrMealNotFound)
}

func (s *OrderService) CreateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.ImagePath = strings.TrimSpace(m.ImagePath)
	if err := validateMeal(m); err != nil {
		return domain.Meal{}, err
	}

	created, err := s.Store.Meals().CreateMeal(ctx, m)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("create meal: %w", err)
	}

	slogx.FromContext(ctx).Info("meal created", "meal_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateMeal replaces a meal's name, price, blood type and availability.
func (s *OrderService) UpdateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := validateMeal(m); err != nil {
		return domain.Meal{}, err
	}

	updated, err := s.Store.Meals().UpdateMeal(ctx, m)
	return updated, mapStoreErr(err, ErrMealNotFound)
}

func (s *OrderService) DeleteMeal(ctx context.Context, id int64) error {
	err := s.Store.Meals().DeleteMeal(ctx, id)
	switch {
	case errors.Is(err, store.ErrReferenced):
		return ErrMealInUse
	case err != nil:
		return mapStoreErr(err, ErrMealNotFound)
	}

	slogx.FromContext(ctx).Info("meal deleted", "meal_id", id)
	return nil
}

func validateMeal(m domain.Meal) error {
	switch {
	case m.Name == "":
		return invalid("name is required")
	case utf8.RuneCountInString(m.Name) > maxMealNameLen:
		return invalid("name must be at most %d characters", maxMealNameLen)
	case m.Price < 0 || math.IsNaN(m.Price) || math.IsInf(m.Price, 0):
		return invalid("price must be a non-negative number")
	case !m.BloodType.Valid():
		return invalid("blood_type %q is not one of A+, A-, B+, B-, AB+, AB-, O+, O-", m.BloodType)
	}
	return nil
}
