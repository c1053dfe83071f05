package repository

import (
	"context"
	"fmt"

	"github.com/devrathore/csc-portal/internal/models"
)

// Имена таблиц файловых привязок: по одной на каждую из двух
// логических корзин хранилища документов.
const (
	tableUserFiles  = "order_files_user"
	tableAdminFiles = "order_files_admin"
)

// AddUserFile сохраняет запись о документе, загруженном заявителем
// при оформлении заказа. Записи не изменяются после создания.
func (s *Storage) AddUserFile(ctx context.Context, file models.OrderFile) (string, error) {
	return s.addFile(ctx, "storage.AddUserFile", tableUserFiles, file)
}

// AddAdminFile сохраняет запись о файле, приложенном администратором.
func (s *Storage) AddAdminFile(ctx context.Context, file models.OrderFile) (string, error) {
	return s.addFile(ctx, "storage.AddAdminFile", tableAdminFiles, file)
}

func (s *Storage) addFile(ctx context.Context, op, table string, file models.OrderFile) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := fmt.Sprintf(`INSERT INTO %s (order_id, file_path, file_name)
			  VALUES ($1, $2, $3)
			  RETURNING id`, table)
	err := s.DB.QueryRowContext(ctx, query, file.OrderID, file.FilePath, file.FileName).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListUserFilesByOrders возвращает документы заявителей для набора заказов.
func (s *Storage) ListUserFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error) {
	return s.listFiles(ctx, "storage.ListUserFilesByOrders", tableUserFiles, orderIDs)
}

// ListAdminFilesByOrders возвращает файлы администратора для набора заказов.
func (s *Storage) ListAdminFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error) {
	return s.listFiles(ctx, "storage.ListAdminFilesByOrders", tableAdminFiles, orderIDs)
}

func (s *Storage) listFiles(ctx context.Context, op, table string, orderIDs []string) ([]*models.OrderFile, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, order_id, file_path, file_name, created_at
			  FROM %s
			  WHERE order_id = ANY($1)
			  ORDER BY created_at`, table)
	rows, err := s.DB.QueryContext(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.OrderFile
	for rows.Next() {
		var item models.OrderFile
		if err := rows.Scan(&item.ID, &item.OrderID, &item.FilePath, &item.FileName,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UserFileExists сообщает, привязан ли путь хранилища к заказу как
// документ заявителя.
func (s *Storage) UserFileExists(ctx context.Context, orderID, filePath string) (bool, error) {
	return s.fileExists(ctx, "storage.UserFileExists", tableUserFiles, orderID, filePath)
}

// AdminFileExists сообщает, привязан ли путь хранилища к заказу как
// файл администратора.
func (s *Storage) AdminFileExists(ctx context.Context, orderID, filePath string) (bool, error) {
	return s.fileExists(ctx, "storage.AdminFileExists", tableAdminFiles, orderID, filePath)
}

func (s *Storage) fileExists(ctx context.Context, op, table, orderID, filePath string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE order_id = $1 AND file_path = $2)`, table)
	if err := s.DB.QueryRowContext(ctx, query, orderID, filePath).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
