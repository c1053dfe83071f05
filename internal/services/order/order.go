// Package order содержит бизнес-логику жизненного цикла заказа:
// создание с привязкой документов, списки для заявителя и
// администратора, смену статуса, приложение файлов результата и
// выдачу подписанных ссылок на документы.
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/devrathore/csc-portal/internal/filestore"
	"github.com/devrathore/csc-portal/internal/models"
)

// Политика загрузки файлов: список допустимых расширений и предельный
// размер. Одинакова для документов заявителя и файлов администратора.
const MaxFileSize = 15 << 20

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".doc":  {},
	".docx": {},
}

// Repository определяет методы хранилища, используемые жизненным циклом заказа.
type Repository interface {
	// CreateOrder добавляет заказ и возвращает его ID.
	CreateOrder(ctx context.Context, order models.Order) (string, error)
	// ReadOrder возвращает заказ по ID.
	ReadOrder(ctx context.Context, id string) (*models.Order, error)
	// ListOrdersByUser возвращает заказы пользователя, новые первыми.
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error)
	// ListAllOrders возвращает заказы всех пользователей, новые первыми.
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	// UpdateOrderStatus перезаписывает статус, возвращает число изменённых строк.
	UpdateOrderStatus(ctx context.Context, id, status string) (int, error)
	// GetOrderOwner возвращает владельца заказа и признак существования.
	GetOrderOwner(ctx context.Context, id string) (string, bool, error)
	// AddUserFile сохраняет запись о документе заявителя.
	AddUserFile(ctx context.Context, file models.OrderFile) (string, error)
	// AddAdminFile сохраняет запись о файле администратора.
	AddAdminFile(ctx context.Context, file models.OrderFile) (string, error)
	// ListUserFilesByOrders возвращает документы заявителей для набора заказов.
	ListUserFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error)
	// ListAdminFilesByOrders возвращает файлы администратора для набора заказов.
	ListAdminFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error)
	// UserFileExists сообщает, привязан ли путь к заказу как документ заявителя.
	UserFileExists(ctx context.Context, orderID, filePath string) (bool, error)
	// AdminFileExists сообщает, привязан ли путь к заказу как файл администратора.
	AdminFileExists(ctx context.Context, orderID, filePath string) (bool, error)
	// UpsertProfile идемпотентно обновляет профиль при оформлении заказа.
	UpsertProfile(ctx context.Context, user models.User) error
	// ListUsersByUIDs возвращает профили владельцев для административного списка.
	ListUsersByUIDs(ctx context.Context, uids []string) ([]*models.User, error)
}

// FileStore описывает шлюз хранилища документов.
type FileStore interface {
	UserBucket() string
	AdminBucket() string
	Upload(ctx context.Context, bucket, path, contentType string, size int64, r io.Reader) error
	SignedURL(ctx context.Context, bucket, path string) (string, error)
}

// EventPublisher публикует события изменения заказов в шину.
type EventPublisher interface {
	PublishOrderUpdated(message any) error
}

// Service реализует бизнес-логику жизненного цикла заказа.
type Service struct {
	repo      Repository
	files     FileStore
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, files FileStore, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		files:     files,
		publisher: publisher,
		log:       log,
	}
}

// Create оформляет заказ от имени заявителя: идемпотентно обновляет
// профиль, вставляет заказ со статусом pending и фиксирует по записи
// на каждый загруженный документ. Возвращает ID нового заказа.
func (s *Service) Create(ctx context.Context, caller models.User, req models.DummyOrder) (string, error) {
	if len(req.DocumentPaths) == 0 {
		return "", ErrNoDocuments
	}

	if err := s.repo.UpsertProfile(ctx, caller); err != nil {
		return "", err
	}

	var serviceID *string
	if req.ServiceID != "" {
		serviceID = &req.ServiceID
	}
	order := models.Order{
		UserUID:     caller.UID,
		ServiceID:   serviceID,
		ServiceName: req.ServiceName,
		Status:      models.StatusPending,
		Price:       req.Price,
	}

	id, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return "", err
	}

	for _, docPath := range req.DocumentPaths {
		file := models.OrderFile{
			OrderID:  id,
			FilePath: docPath,
			FileName: path.Base(docPath),
		}
		if _, err := s.repo.AddUserFile(ctx, file); err != nil {
			// Уже вставленные записи не откатываются: осиротевшие
			// загрузки - известный пробел, см. журнал.
			return "", err
		}
	}

	s.log.Info("created new order",
		slog.String("id", id),
		slog.String("user_uid", caller.UID),
		slog.Int("documents", len(req.DocumentPaths)))
	return id, nil
}

// Get возвращает квитанцию заказа: сам заказ, профиль владельца,
// документы заявителя и файлы администратора. Заявитель видит только
// собственные заказы, администратор — любые.
func (s *Service) Get(ctx context.Context, userUID, role, orderID string) (*models.OrderDetails, error) {
	o, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if role != models.RoleAdmin && o.UserUID != userUID {
		return nil, ErrNotOwner
	}

	owners, err := s.repo.ListUsersByUIDs(ctx, []string{o.UserUID})
	if err != nil {
		return nil, err
	}
	var owner *models.User
	if len(owners) > 0 {
		owner = owners[0]
	}

	userFiles, err := s.repo.ListUserFilesByOrders(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	adminFiles, err := s.repo.ListAdminFilesByOrders(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}

	return &models.OrderDetails{
		Order:      *o,
		Owner:      owner,
		UserFiles:  groupFiles(userFiles)[orderID],
		AdminFiles: groupFiles(adminFiles)[orderID],
	}, nil
}

// ListSelf возвращает заказы заявителя, новые первыми, каждый с
// приложенными администратором файлами.
func (s *Service) ListSelf(ctx context.Context, userUID string) ([]*models.OrderSummary, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	adminFiles, err := s.repo.ListAdminFilesByOrders(ctx, orderIDs(orders))
	if err != nil {
		return nil, err
	}
	byOrder := groupFiles(adminFiles)

	result := make([]*models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		result = append(result, &models.OrderSummary{
			Order:      *o,
			AdminFiles: byOrder[o.ID],
		})
	}
	return result, nil
}

// ListAll возвращает заказы всех пользователей для администратора:
// каждый заказ дополняется профилем владельца, документами заявителя
// и файлами администратора. Пагинации нет.
func (s *Service) ListAll(ctx context.Context, role string) ([]*models.OrderDetails, error) {
	if role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}

	orders, err := s.repo.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	ids := orderIDs(orders)

	owners, err := s.repo.ListUsersByUIDs(ctx, ownerUIDs(orders))
	if err != nil {
		return nil, err
	}
	ownerByUID := make(map[string]*models.User, len(owners))
	for _, u := range owners {
		ownerByUID[u.UID] = u
	}

	userFiles, err := s.repo.ListUserFilesByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	adminFiles, err := s.repo.ListAdminFilesByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	userByOrder := groupFiles(userFiles)
	adminByOrder := groupFiles(adminFiles)

	result := make([]*models.OrderDetails, 0, len(orders))
	for _, o := range orders {
		result = append(result, &models.OrderDetails{
			Order:      *o,
			Owner:      ownerByUID[o.UserUID],
			UserFiles:  userByOrder[o.ID],
			AdminFiles: adminByOrder[o.ID],
		})
	}
	return result, nil
}

// UpdateStatus перезаписывает статус заказа. Порядок переходов не
// проверяется: администратор может выставить любой из трёх статусов.
// После записи публикуется событие для обновления открытых представлений.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}

	count, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrOrderNotFound
	}

	s.publishUpdated(orderID, status)
	s.log.Info("updated order status",
		slog.String("id", orderID),
		slog.String("status", status))
	return nil
}

// AttachAdminFile прикладывает файл результата к заказу: проверяет
// расширение и размер, пишет объект в административную корзину и
// фиксирует запись. Если запись в хранилище не удалась, строка в базе
// не создаётся.
func (s *Service) AttachAdminFile(ctx context.Context, orderID, fileName, contentType string, size int64, r io.Reader) error {
	_, found, err := s.repo.GetOrderOwner(ctx, orderID)
	if err != nil {
		return err
	}
	if !found {
		return ErrOrderNotFound
	}
	if err := checkFilePolicy(fileName, size); err != nil {
		return err
	}

	objectPath := fmt.Sprintf("%s/%d-%s", orderID, time.Now().UnixMilli(), filestore.SanitizeName(fileName))
	if err := s.files.Upload(ctx, s.files.AdminBucket(), objectPath, contentType, size, r); err != nil {
		return err
	}

	file := models.OrderFile{
		OrderID:  orderID,
		FilePath: objectPath,
		FileName: fileName,
	}
	if _, err := s.repo.AddAdminFile(ctx, file); err != nil {
		return err
	}

	s.publishUpdated(orderID, "")
	s.log.Info("attached admin file",
		slog.String("order_id", orderID),
		slog.String("path", objectPath))
	return nil
}

// UploadUserDocument принимает документ заявителя до оформления заказа,
// пишет его в корзину документов и возвращает путь объекта.
func (s *Service) UploadUserDocument(ctx context.Context, userUID, fileName, contentType string, size int64, r io.Reader) (string, error) {
	if err := checkFilePolicy(fileName, size); err != nil {
		return "", err
	}

	objectPath := fmt.Sprintf("%s/%d-%s", userUID, time.Now().UnixMilli(), filestore.SanitizeName(fileName))
	if err := s.files.Upload(ctx, s.files.UserBucket(), objectPath, contentType, size, r); err != nil {
		return "", err
	}

	s.log.Info("uploaded user document",
		slog.String("user_uid", userUID),
		slog.String("path", objectPath))
	return objectPath, nil
}

// SignedURL выдаёт администратору подписанную ссылку на объект одной
// из двух корзин. Повторные вызовы просто выдают новую ссылку.
func (s *Service) SignedURL(ctx context.Context, bucket, filePath string) (string, error) {
	if bucket != s.files.UserBucket() && bucket != s.files.AdminBucket() {
		return "", ErrUnknownBucket
	}
	return s.files.SignedURL(ctx, bucket, filePath)
}

// SignedURLForOwner выдаёт заявителю подписанную ссылку на файл его
// собственного заказа. Перед выдачей проверяется, что заказ
// принадлежит заявителю и путь действительно привязан к заказу -
// единственная проверка объектного уровня, которую портал выполняет сам.
func (s *Service) SignedURLForOwner(ctx context.Context, userUID, orderID, bucket, filePath string) (string, error) {
	owner, found, err := s.repo.GetOrderOwner(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrOrderNotFound
	}
	if owner != userUID {
		return "", ErrNotOwner
	}

	var exists bool
	switch bucket {
	case s.files.UserBucket():
		exists, err = s.repo.UserFileExists(ctx, orderID, filePath)
	case s.files.AdminBucket():
		exists, err = s.repo.AdminFileExists(ctx, orderID, filePath)
	default:
		return "", ErrUnknownBucket
	}
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrFileNotFound
	}

	return s.files.SignedURL(ctx, bucket, filePath)
}

func (s *Service) publishUpdated(orderID, status string) {
	event := models.OrderEvent{
		OrderID: orderID,
		Status:  status,
		Op:      "UPDATE",
	}
	if err := s.publisher.PublishOrderUpdated(event); err != nil {
		s.log.Warn("failed to publish order event",
			slog.String("order_id", orderID), slog.Any("err", err))
	}
}

func checkFilePolicy(fileName string, size int64) error {
	ext := strings.ToLower(path.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return ErrExtensionNotAllowed
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

func orderIDs(orders []*models.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func ownerUIDs(orders []*models.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	var uids []string
	for _, o := range orders {
		if _, ok := seen[o.UserUID]; ok {
			continue
		}
		seen[o.UserUID] = struct{}{}
		uids = append(uids, o.UserUID)
	}
	return uids
}

func groupFiles(files []*models.OrderFile) map[string][]models.OrderFile {
	byOrder := make(map[string][]models.OrderFile)
	for _, f := range files {
		byOrder[f.OrderID] = append(byOrder[f.OrderID], *f)
	}
	return byOrder
}
