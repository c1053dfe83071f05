// Package models содержит доменные структуры портала госуслуг:
// пользователей, услуги каталога, заказы и прикреплённые документы,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя портала.
type User struct {
	UID          string    `json:"uid"`        // Уникальный идентификатор пользователя
	Username     string    `json:"username"`   // Имя пользователя (уникальное)
	Email        string    `json:"email"`      // Электронная почта
	FullName     string    `json:"full_name"`  // Полное имя для заказов и квитанций
	Phone        string    `json:"phone"`      // Контактный телефон
	PasswordHash string    `json:"-"`          // Хэш пароля, наружу не отдаётся
	Role         string    `json:"role"`       // Роль пользователя, admin или user
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
}

// Роли пользователей портала.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DummyProfile используется для приёма данных редактирования профиля
// из JSON-запроса. Роль через эту структуру не изменяется.
type DummyProfile struct {
	FullName string `json:"full_name" validate:"required"` // Полное имя
	Phone    string `json:"phone" validate:"required"`     // Телефон
}
