package order

import "errors"

// Ошибки бизнес-логики заказов. Обработчики переводят их в HTTP-статусы.
var (
	// ErrNoDocuments — заказ без единого загруженного документа не оформляется.
	ErrNoDocuments = errors.New("at least one document is required")
	// ErrOrderNotFound — заказ с указанным ID отсутствует.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus — значение вне перечня pending/in_process/completed.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrNotOwner — заказ принадлежит другому пользователю.
	ErrNotOwner = errors.New("order belongs to another user")
	// ErrFileNotFound — путь не привязан к заказу.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnknownBucket — корзина вне перечня допустимых.
	ErrUnknownBucket = errors.New("unknown bucket")
	// ErrExtensionNotAllowed — расширение файла вне списка разрешённых.
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
	// ErrFileTooLarge — файл превышает предельный размер.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrNotAdmin — операция доступна только администратору.
	ErrNotAdmin = errors.New("admin role required")
)
