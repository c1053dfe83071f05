package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devrathore/csc-portal/internal/models"
)

// CreateOrder вставляет новый заказ со статусом pending и возвращает его ID.
// Цена и название услуги фиксируются на момент создания.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (string, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO orders (user_uid, service_id, service_name, status, price)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		order.UserUID, order.ServiceID, order.ServiceName, order.Status, order.Price).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadOrder возвращает заказ по его ID.
func (s *Storage) ReadOrder(ctx context.Context, id string) (*models.Order, error) {
	const op = "storage.ReadOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, service_id, service_name, status, price, created_at
			  FROM orders WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Order
	if err := row.Scan(&result.ID, &result.UserUID, &result.ServiceID, &result.ServiceName,
		&result.Status, &result.Price, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	const op = "storage.ListOrdersByUser"
	return s.listOrders(ctx, op, `SELECT id, user_uid, service_id, service_name, status, price, created_at
			  FROM orders
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`, userUID)
}

// ListAllOrders возвращает заказы всех пользователей, новые первыми.
// Пагинации нет: ожидаемый объём заказов одного киоска невелик.
func (s *Storage) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "storage.ListAllOrders"
	return s.listOrders(ctx, op, `SELECT id, user_uid, service_id, service_name, status, price, created_at
			  FROM orders
			  ORDER BY created_at DESC`)
}

func (s *Storage) listOrders(ctx context.Context, op, query string, args ...any) ([]*models.Order, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		var item models.Order
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ServiceID, &item.ServiceName,
			&item.Status, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrderStatus перезаписывает статус заказа и возвращает количество
// изменённых строк. Никакой проверки версий нет: при гонке двух
// администраторов побеждает последняя запись.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id, status string) (int, error) {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET status = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetOrderOwner возвращает UID владельца заказа и признак существования
// заказа. Используется проверкой прав на выдачу подписанных ссылок.
func (s *Storage) GetOrderOwner(ctx context.Context, id string) (string, bool, error) {
	const op = "storage.GetOrderOwner"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var owner string
	query := `SELECT user_uid FROM orders WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return owner, true, nil
}
