package sqlite

import (
	"context"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
)

const cartColumns = `id, user_id, meal_id, amount`

type cartRepo struct {
	db dbtx
}

func (r *cartRepo) ListCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.meal_id, c.amount,
		       m.id, m.name, m.price, m.blood_type, m.available, m.image_path
		FROM shopping_cart c
		JOIN meals m ON m.id = c.meal_id
		WHERE c.user_id = ?
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var (
			c         domain.CartItem
			m         domain.Meal
			bloodType string
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.MealID, &c.Amount,
			&m.ID, &m.Name, &m.Price, &bloodType, &m.Available, &m.ImagePath,
		); err != nil {
			return nil, err
		}
		m.BloodType = domain.BloodType(bloodType)
		c.Meal = &m
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *cartRepo) CreateCartItem(ctx context.Context, c domain.CartItem) (domain.CartItem, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO shopping_cart (user_id, meal_id, amount)
		VALUES (?, ?, ?)
		RETURNING `+cartColumns,
		c.UserID, c.MealID, c.Amount,
	)
	created, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, mapWriteError(err)
	}
	return created, nil
}

func (r *cartRepo) UpdateCartItem(ctx context.Context, c domain.CartItem) (domain.CartItem, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE shopping_cart
		SET user_id = ?, meal_id = ?, amount = ?
		WHERE id = ?
		RETURNING `+cartColumns,
		c.UserID, c.MealID, c.Amount, c.ID,
	)
	updated, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *cartRepo) DeleteCartItem(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM shopping_cart WHERE id = ?`, id))
}

func scanCartItem(row rowScanner) (domain.CartItem, error) {
	var c domain.CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.MealID, &c.Amount)
	return c, err
}
