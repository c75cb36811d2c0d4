package sqlite

import (
	"context"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
)

const mealColumns = `id, name, price, blood_type, available, image_path`

type mealsRepo struct {
	db dbtx
}

func (r *mealsRepo) ListMeals(ctx context.Context) ([]domain.Meal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mealColumns+` FROM meals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []domain.Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (r *mealsRepo) GetMeal(ctx context.Context, id int64) (domain.Meal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	m, err := scanMeal(row)
	if err != nil {
		return domain.Meal{}, mapNotFound(err)
	}
	return m, nil
}

func (r *mealsRepo) CreateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO meals (name, price, blood_type, available, image_path)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+mealColumns,
		m.Name, m.Price, string(m.BloodType), m.Available, m.ImagePath,
	)
	created, err := scanMeal(row)
	if err != nil {
		return domain.Meal{}, mapWriteError(err)
	}
	return created, nil
}

func (r *mealsRepo) UpdateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE meals
		SET name = ?, price = ?, blood_type = ?, available = ?
		WHERE id = ?
		RETURNING `+mealColumns,
		m.Name, m.Price, string(m.BloodType), m.Available, m.ID,
	)
	updated, err := scanMeal(row)
	if err != nil {
		return domain.Meal{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *mealsRepo) DeleteMeal(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id))
}

func scanMeal(row rowScanner) (domain.Meal, error) {
	var (
		m         domain.Meal
		bloodType string
	)
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Price,
		&bloodType,
		&m.Available,
		&m.ImagePath,
	)
	m.BloodType = domain.BloodType(bloodType)
	return m, err
}
