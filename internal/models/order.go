package models

import "time"

// Статусы заказа. Модель данных не навязывает порядок переходов:
// администратор может выставить любой из трёх статусов.
const (
	StatusPending   = "pending"
	StatusInProcess = "in_process"
	StatusCompleted = "completed"
)

// ValidStatus сообщает, входит ли значение в перечень допустимых статусов.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProcess, StatusCompleted:
		return true
	}
	return false
}

// Order представляет заказ услуги. ServiceName хранит денормализованную
// копию названия услуги, чтобы заказ пережил изменение или удаление
// записи каталога. Владелец заказа после создания не меняется.
type Order struct {
	ID          string    `json:"id"`           // Уникальный идентификатор заказа
	UserUID     string    `json:"user_uid"`     // Владелец заказа
	ServiceID   *string   `json:"service_id"`   // Ссылка на услугу каталога, может отсутствовать
	ServiceName string    `json:"service_name"` // Название услуги на момент заказа
	Status      string    `json:"status"`       // Текущий статус заказа
	Price       *float64  `json:"price"`        // Стоимость на момент заказа
	CreatedAt   time.Time `json:"created_at"`   // Дата создания заказа
}

// OrderFile представляет документ, прикреплённый к заказу: либо
// загруженный заявителем при оформлении, либо приложенный
// администратором результат. Записи не изменяются после создания.
type OrderFile struct {
	ID        string    `json:"id"`         // Уникальный идентификатор записи
	OrderID   string    `json:"order_id"`   // Заказ-владелец
	FilePath  string    `json:"file_path"`  // Путь объекта в хранилище документов
	FileName  string    `json:"file_name"`  // Исходное имя файла
	CreatedAt time.Time `json:"created_at"` // Дата загрузки
}

// OrderSummary объединяет заказ заявителя с приложенными
// администратором файлами для списка «мои заказы».
type OrderSummary struct {
	Order      Order       `json:"order"`       // Сам заказ
	AdminFiles []OrderFile `json:"admin_files"` // Файлы, приложенные администратором
}

// OrderDetails объединяет заказ с профилем владельца и всеми файлами
// для административного списка заказов.
type OrderDetails struct {
	Order      Order       `json:"order"`       // Сам заказ
	Owner      *User       `json:"owner"`       // Профиль владельца
	UserFiles  []OrderFile `json:"user_files"`  // Документы заявителя
	AdminFiles []OrderFile `json:"admin_files"` // Файлы администратора
}

// DummyOrder используется для приёма данных нового заказа из
// JSON-запроса. Документы к этому моменту уже загружены в хранилище,
// в заказ передаются их пути.
type DummyOrder struct {
	ServiceID     string   `json:"service_id" validate:"omitempty,uuid"`          // Услуга каталога
	ServiceName   string   `json:"service_name" validate:"required"`              // Название услуги
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`              // Стоимость
	FullName      string   `json:"full_name" validate:"required"`                 // Полное имя заявителя
	Phone         string   `json:"phone" validate:"required"`                     // Телефон заявителя
	DocumentPaths []string `json:"document_paths" validate:"required,min=1,dive,required"` // Пути загруженных документов
}

// DummyStatus используется для приёма нового статуса заказа.
type DummyStatus struct {
	Status string `json:"status" validate:"required"` // Новый статус заказа
}

// OrderEvent описывает событие изменения заказа, публикуемое в шину
// для обновления открытых представлений без опроса.
type OrderEvent struct {
	OrderID string `json:"order_id"` // Изменённый заказ
	Status  string `json:"status"`   // Статус после изменения
	Op      string `json:"op"`       // Тип операции, например UPDATE
}
