package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/devrathore/csc-portal/internal/models"
)

// Список требуемых документов хранится одной текстовой колонкой,
// по одному названию на строку. Порядок строк сохраняется.
func joinDocuments(docs []string) string {
	return strings.Join(docs, "\n")
}

func splitDocuments(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// CreateService сохраняет новую услугу каталога и возвращает её ID.
func (s *Storage) CreateService(ctx context.Context, svc models.Service) (string, error) {
	const op = "storage.CreateService"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO services (name, description, icon, category, is_active,
			      price, processing_time, documents_required)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		svc.Name, svc.Description, svc.Icon, svc.Category, svc.IsActive,
		svc.Price, svc.ProcessingTime, joinDocuments(svc.DocumentsRequired)).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateService обновляет услугу каталога по её ID и возвращает
// количество изменённых строк.
func (s *Storage) UpdateService(ctx context.Context, svc models.Service, id string) (int, error) {
	const op = "storage.UpdateService"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE services
			  SET name = $1, description = $2, icon = $3, category = $4,
			      is_active = $5, price = $6, processing_time = $7, documents_required = $8
			  WHERE id = $9`
	result, err := s.DB.ExecContext(ctx, query,
		svc.Name, svc.Description, svc.Icon, svc.Category, svc.IsActive,
		svc.Price, svc.ProcessingTime, joinDocuments(svc.DocumentsRequired), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveService удаляет услугу по ID и возвращает количество удалённых
// строк. Удаление жёсткое: существующие заказы сохраняют
// денормализованное название услуги и не затрагиваются.
func (s *Storage) RemoveService(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveService"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM services WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ReadService возвращает услугу по её ID, включая неактивные: они
// остаются корректными целями для уже оформленных заказов.
func (s *Storage) ReadService(ctx context.Context, id string) (*models.Service, error) {
	const op = "storage.ReadService"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, icon, category, is_active,
			      price, processing_time, documents_required, created_at
			  FROM services WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Service
	var rawDocs string
	if err := row.Scan(&result.ID, &result.Name, &result.Description, &result.Icon,
		&result.Category, &result.IsActive, &result.Price, &result.ProcessingTime,
		&rawDocs, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.DocumentsRequired = splitDocuments(rawDocs)
	return &result, nil
}

// ListActiveServices возвращает активные услуги публичного каталога,
// новые первыми.
func (s *Storage) ListActiveServices(ctx context.Context) ([]*models.Service, error) {
	const op = "storage.ListActiveServices"
	return s.listServices(ctx, op, `SELECT id, name, description, icon, category, is_active,
			      price, processing_time, documents_required, created_at
			  FROM services
			  WHERE is_active = true
			  ORDER BY created_at DESC`)
}

// ListAllServices возвращает все услуги каталога для администратора,
// включая неактивные, новые первыми.
func (s *Storage) ListAllServices(ctx context.Context) ([]*models.Service, error) {
	const op = "storage.ListAllServices"
	return s.listServices(ctx, op, `SELECT id, name, description, icon, category, is_active,
			      price, processing_time, documents_required, created_at
			  FROM services
			  ORDER BY created_at DESC`)
}

func (s *Storage) listServices(ctx context.Context, op, query string) ([]*models.Service, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Service
	for rows.Next() {
		var item models.Service
		var rawDocs string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Icon,
			&item.Category, &item.IsActive, &item.Price, &item.ProcessingTime,
			&rawDocs, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.DocumentsRequired = splitDocuments(rawDocs)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
