package repository

import (
	"context"
	"fmt"

	"github.com/devrathore/csc-portal/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (username, email, full_name, phone, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.Phone,
		user.PasswordHash, user.Role).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, phone, password_hash, role, created_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.Phone,
		&u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, phone, password_hash, role, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.Phone,
		&u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserRole возвращает актуальную роль пользователя. Роль читается
// из базы при каждом запросе, поэтому её смена действует со следующего
// обращения, а не для уже выданных токенов.
func (s *Storage) GetUserRole(ctx context.Context, userUID string) (string, error) {
	const op = "storage.GetUserRole"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var role string
	query := `SELECT role FROM users WHERE uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&role); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return role, nil
}

// UpsertProfile обновляет контактные данные профиля при оформлении
// заказа. Вставка идемпотентна: повторный вызов для существующего
// пользователя лишь обновляет имя и телефон, роль не трогается.
func (s *Storage) UpsertProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpsertProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, username, email, full_name, phone, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (uid) DO UPDATE
			  SET full_name = EXCLUDED.full_name,
			      phone = EXCLUDED.phone`
	_, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.FullName, user.Phone,
		user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile обновляет имя и телефон пользователя, возвращает
// количество изменённых строк.
func (s *Storage) UpdateProfile(ctx context.Context, userUID, fullName, phone string) (int, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET full_name = $1, phone = $2 WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, fullName, phone, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListUsersByUIDs возвращает пользователей по списку идентификаторов.
// Используется административным списком заказов для подстановки профилей.
func (s *Storage) ListUsersByUIDs(ctx context.Context, uids []string) ([]*models.User, error) {
	const op = "storage.ListUsersByUIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(uids) == 0 {
		return nil, nil
	}

	query := `SELECT uid, username, email, full_name, phone, password_hash, role, created_at
			  FROM users
			  WHERE uid = ANY($1)`
	rows, err := s.DB.QueryContext(ctx, query, uids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.Phone,
			&u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
