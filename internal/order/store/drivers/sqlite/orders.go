package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
)

const orderColumns = `id, user_id, full_price, address, order_date, status`

type ordersRepo struct {
	db dbtx
}

func (r *ordersRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (r *ordersRepo) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id`, userID)
}

func (r *ordersRepo) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}

	byOrder, err := r.itemsFor(ctx, []int64{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = byOrder[o.ID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, full_price, address, order_date, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+orderColumns,
		o.UserID, o.FullPrice, o.Address, formatDate(o.OrderDate), string(o.Status),
	)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, mapWriteError(err)
	}
	return created, nil
}

func (r *ordersRepo) UpdateOrder(ctx context.Context, o domain.Order) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE orders
		SET user_id = ?, full_price = ?, address = ?, order_date = ?, status = ?
		WHERE id = ?`,
		o.UserID, o.FullPrice, o.Address, formatDate(o.OrderDate), string(o.Status), o.ID,
	))
}

func (r *ordersRepo) DeleteOrder(ctx context.Context, id int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id))
}

func (r *ordersRepo) InsertOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	for _, it := range items {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO order_items (order_id, meal_id, amount) VALUES (?, ?, ?)`,
			orderID, it.MealID, it.Amount,
		); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func (r *ordersRepo) DeleteOrderItems(ctx context.Context, orderID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
	return err
}

func (r *ordersRepo) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders := []domain.Order{}
	ids := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Release the connection before the item query; ":memory:" stores only
	// have one.
	if err := rows.Close(); err != nil {
		return nil, err
	}

	byOrder, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}
	return orders, nil
}

// itemsFor loads the lines of the given orders keyed by order id.
func (r *ordersRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	placeholders := make([]byte, 0, len(orderIDs)*2)
	args := make([]any, 0, len(orderIDs))
	for i, id := range orderIDs {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, meal_id, amount
		FROM order_items
		WHERE order_id IN (`+string(placeholders)+`)
		ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			it      domain.OrderItem
		)
		if err := rows.Scan(&orderID, &it.MealID, &it.Amount); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o      domain.Order
		status string
		date   string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.FullPrice,
		&o.Address,
		&date,
		&status,
	)
	if err != nil {
		return o, err
	}
	o.Status = domain.OrderStatus(status)
	o.OrderDate, err = time.Parse(time.RFC3339Nano, date)
	return o, err
}

// Order dates are stored as RFC 3339 text in UTC so they sort and compare
// as strings.
func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
