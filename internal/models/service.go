package models

import "time"

// Service представляет услугу каталога, доступную для заказа.
// Поля Price и ProcessingTime опциональны, DocumentsRequired хранит
// упорядоченный список названий требуемых документов.
type Service struct {
	ID                string    `json:"id"`                 // Уникальный идентификатор услуги
	Name              string    `json:"name"`               // Название услуги
	Description       string    `json:"description"`        // Описание
	Icon              string    `json:"icon"`               // Тег иконки для витрины
	Category          string    `json:"category"`           // Категория каталога
	IsActive          bool      `json:"is_active"`          // Показывать ли услугу в публичном каталоге
	Price             *float64  `json:"price"`              // Стоимость услуги, может отсутствовать
	ProcessingTime    *string   `json:"processing_time"`    // Срок оформления в свободной форме
	DocumentsRequired []string  `json:"documents_required"` // Список требуемых документов
	CreatedAt         time.Time `json:"created_at"`         // Дата создания записи
}

// DummyService используется для приёма данных услуги из JSON-запроса
// администратора. Список требуемых документов приходит одним текстовым
// блоком, по одному названию на строку, и нормализуется сервисом.
type DummyService struct {
	Name                  string  `json:"name" validate:"required"` // Название услуги
	Description           string  `json:"description"`              // Описание
	Icon                  string  `json:"icon"`                     // Тег иконки
	Category              string  `json:"category"`                 // Категория
	IsActive              bool    `json:"is_active"`                // Активность
	Price                 *float64 `json:"price" validate:"omitempty,gte=0"` // Стоимость
	ProcessingTime        string  `json:"processing_time"`          // Срок оформления
	DocumentsRequiredText string  `json:"documents_required_text"`  // Документы, по одному на строку
}
