package order

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devrathore/csc-portal/internal/models"
)

// MockRepository реализует интерфейс order.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrder(ctx context.Context, order models.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ReadOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockRepository) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockRepository) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, id, status string) (int, error) {
	args := m.Called(ctx, id, status)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetOrderOwner(ctx context.Context, id string) (string, bool, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRepository) AddUserFile(ctx context.Context, file models.OrderFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) AddAdminFile(ctx context.Context, file models.OrderFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ListUserFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderFile), args.Error(1)
}

func (m *MockRepository) ListAdminFilesByOrders(ctx context.Context, orderIDs []string) ([]*models.OrderFile, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderFile), args.Error(1)
}

func (m *MockRepository) UserFileExists(ctx context.Context, orderID, filePath string) (bool, error) {
	args := m.Called(ctx, orderID, filePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) AdminFileExists(ctx context.Context, orderID, filePath string) (bool, error) {
	args := m.Called(ctx, orderID, filePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpsertProfile(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) ListUsersByUIDs(ctx context.Context, uids []string) ([]*models.User, error) {
	args := m.Called(ctx, uids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockFileStore реализует интерфейс order.FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) UserBucket() string  { return "order-documents" }
func (m *MockFileStore) AdminBucket() string { return "order-documents-admin" }

func (m *MockFileStore) Upload(ctx context.Context, bucket, path, contentType string, size int64, r io.Reader) error {
	args := m.Called(ctx, bucket, path, contentType, size, r)
	return args.Error(0)
}

func (m *MockFileStore) SignedURL(ctx context.Context, bucket, path string) (string, error) {
	args := m.Called(ctx, bucket, path)
	return args.String(0), args.Error(1)
}

// MockPublisher реализует интерфейс order.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderUpdated(message any) error {
	args := m.Called(message)
	return args.Error(0)
}

func newTestService(repo *MockRepository, files *MockFileStore, pub *MockPublisher) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(repo, files, pub, logger)
}

func TestCreate(t *testing.T) {
	caller := models.User{UID: "user123", Username: "testuser", FullName: "Иван Иванов", Phone: "+79990001122"}

	t.Run("успешное оформление заказа", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("UpsertProfile", mock.Anything, caller).Return(nil)
		repo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
			return o.Status == models.StatusPending && o.UserUID == "user123"
		})).Return("order-1", nil)
		repo.On("AddUserFile", mock.Anything, models.OrderFile{
			OrderID: "order-1", FilePath: "user123/1-passport.pdf", FileName: "1-passport.pdf",
		}).Return("file-1", nil)
		repo.On("AddUserFile", mock.Anything, models.OrderFile{
			OrderID: "order-1", FilePath: "user123/2-photo.jpg", FileName: "2-photo.jpg",
		}).Return("file-2", nil)

		id, err := svc.Create(context.Background(), caller, models.DummyOrder{
			ServiceName:   "Оформление паспорта",
			DocumentPaths: []string{"user123/1-passport.pdf", "user123/2-photo.jpg"},
		})
		require.NoError(t, err)
		assert.Equal(t, "order-1", id)
		repo.AssertExpectations(t)
	})

	t.Run("заказ без документов отклоняется", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		_, err := svc.Create(context.Background(), caller, models.DummyOrder{
			ServiceName: "Оформление паспорта",
		})
		assert.ErrorIs(t, err, ErrNoDocuments)
		repo.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("ошибка вставки заказа", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("UpsertProfile", mock.Anything, caller).Return(nil)
		repo.On("CreateOrder", mock.Anything, mock.Anything).Return("", errors.New("db error"))

		_, err := svc.Create(context.Background(), caller, models.DummyOrder{
			ServiceName:   "Оформление паспорта",
			DocumentPaths: []string{"user123/1-passport.pdf"},
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AddUserFile")
	})
}

func TestListSelf(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

	orders := []*models.Order{
		{ID: "order-1", UserUID: "user123"},
		{ID: "order-2", UserUID: "user123"},
	}
	repo.On("ListOrdersByUser", mock.Anything, "user123").Return(orders, nil)
	repo.On("ListAdminFilesByOrders", mock.Anything, []string{"order-1", "order-2"}).
		Return([]*models.OrderFile{
			{ID: "f1", OrderID: "order-2", FilePath: "order-2/result.pdf"},
		}, nil)

	result, err := svc.ListSelf(context.Background(), "user123")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Empty(t, result[0].AdminFiles)
	require.Len(t, result[1].AdminFiles, 1)
	assert.Equal(t, "order-2/result.pdf", result[1].AdminFiles[0].FilePath)
}

func TestGet(t *testing.T) {
	t.Run("заявитель получает свой заказ с файлами", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("ReadOrder", mock.Anything, "order-1").
			Return(&models.Order{ID: "order-1", UserUID: "user123"}, nil)
		repo.On("ListUsersByUIDs", mock.Anything, []string{"user123"}).
			Return([]*models.User{{UID: "user123", Username: "alice"}}, nil)
		repo.On("ListUserFilesByOrders", mock.Anything, []string{"order-1"}).
			Return([]*models.OrderFile{
				{ID: "f1", OrderID: "order-1", FilePath: "user123/1-passport.pdf"},
			}, nil)
		repo.On("ListAdminFilesByOrders", mock.Anything, []string{"order-1"}).
			Return([]*models.OrderFile{
				{ID: "f2", OrderID: "order-1", FilePath: "order-1/2-result.pdf"},
			}, nil)

		details, err := svc.Get(context.Background(), "user123", models.RoleUser, "order-1")
		require.NoError(t, err)
		assert.Equal(t, "order-1", details.Order.ID)
		require.NotNil(t, details.Owner)
		assert.Equal(t, "alice", details.Owner.Username)
		require.Len(t, details.UserFiles, 1)
		require.Len(t, details.AdminFiles, 1)
		assert.Equal(t, "order-1/2-result.pdf", details.AdminFiles[0].FilePath)
	})

	t.Run("чужой заказ недоступен заявителю", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("ReadOrder", mock.Anything, "order-1").
			Return(&models.Order{ID: "order-1", UserUID: "user456"}, nil)

		_, err := svc.Get(context.Background(), "user123", models.RoleUser, "order-1")
		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "ListUserFilesByOrders")
	})

	t.Run("администратор видит любой заказ", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("ReadOrder", mock.Anything, "order-1").
			Return(&models.Order{ID: "order-1", UserUID: "user456"}, nil)
		repo.On("ListUsersByUIDs", mock.Anything, []string{"user456"}).
			Return([]*models.User{{UID: "user456"}}, nil)
		repo.On("ListUserFilesByOrders", mock.Anything, []string{"order-1"}).
			Return([]*models.OrderFile{}, nil)
		repo.On("ListAdminFilesByOrders", mock.Anything, []string{"order-1"}).
			Return([]*models.OrderFile{}, nil)

		details, err := svc.Get(context.Background(), "admin-uid", models.RoleAdmin, "order-1")
		require.NoError(t, err)
		assert.Equal(t, "user456", details.Order.UserUID)
	})

	t.Run("отсутствующий заказ", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("ReadOrder", mock.Anything, "order-1").
			Return(nil, fmt.Errorf("storage.ReadOrder: %w", sql.ErrNoRows))

		_, err := svc.Get(context.Background(), "user123", models.RoleUser, "order-1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListAll(t *testing.T) {
	t.Run("доступен только администратору", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		_, err := svc.ListAll(context.Background(), models.RoleUser)
		assert.ErrorIs(t, err, ErrNotAdmin)
		repo.AssertNotCalled(t, "ListAllOrders")
	})

	t.Run("заказы дополняются владельцами и файлами", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		orders := []*models.Order{
			{ID: "order-1", UserUID: "user123"},
			{ID: "order-2", UserUID: "user456"},
		}
		repo.On("ListAllOrders", mock.Anything).Return(orders, nil)
		repo.On("ListUsersByUIDs", mock.Anything, []string{"user123", "user456"}).
			Return([]*models.User{
				{UID: "user123", Username: "alice"},
				{UID: "user456", Username: "bob"},
			}, nil)
		repo.On("ListUserFilesByOrders", mock.Anything, []string{"order-1", "order-2"}).
			Return([]*models.OrderFile{{ID: "f1", OrderID: "order-1"}}, nil)
		repo.On("ListAdminFilesByOrders", mock.Anything, []string{"order-1", "order-2"}).
			Return([]*models.OrderFile{{ID: "f2", OrderID: "order-2"}}, nil)

		result, err := svc.ListAll(context.Background(), models.RoleAdmin)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "alice", result[0].Owner.Username)
		assert.Len(t, result[0].UserFiles, 1)
		assert.Empty(t, result[0].AdminFiles)
		assert.Equal(t, "bob", result[1].Owner.Username)
		assert.Len(t, result[1].AdminFiles, 1)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("успешная смена статуса публикует событие", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := newTestService(repo, new(MockFileStore), pub)

		repo.On("UpdateOrderStatus", mock.Anything, "order-1", models.StatusCompleted).Return(1, nil)
		pub.On("PublishOrderUpdated", models.OrderEvent{
			OrderID: "order-1", Status: models.StatusCompleted, Op: "UPDATE",
		}).Return(nil)

		err := svc.UpdateStatus(context.Background(), "order-1", models.StatusCompleted)
		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("недопустимый статус", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		err := svc.UpdateStatus(context.Background(), "order-1", "cancelled")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		repo.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("заказ не найден", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := newTestService(repo, new(MockFileStore), pub)

		repo.On("UpdateOrderStatus", mock.Anything, "order-1", models.StatusPending).Return(0, nil)

		err := svc.UpdateStatus(context.Background(), "order-1", models.StatusPending)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		pub.AssertNotCalled(t, "PublishOrderUpdated")
	})

	t.Run("ошибка публикации не ломает смену статуса", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := newTestService(repo, new(MockFileStore), pub)

		repo.On("UpdateOrderStatus", mock.Anything, "order-1", models.StatusInProcess).Return(1, nil)
		pub.On("PublishOrderUpdated", mock.Anything).Return(errors.New("broker down"))

		err := svc.UpdateStatus(context.Background(), "order-1", models.StatusInProcess)
		assert.NoError(t, err)
	})
}

func TestAttachAdminFile(t *testing.T) {
	content := bytes.NewReader([]byte("pdf content"))

	t.Run("успешное приложение файла", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		pub := new(MockPublisher)
		svc := newTestService(repo, files, pub)

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)
		files.On("Upload", mock.Anything, "order-documents-admin",
			mock.MatchedBy(func(path string) bool {
				return strings.HasPrefix(path, "order-1/") && strings.HasSuffix(path, "-result.pdf")
			}), "application/pdf", int64(11), content).Return(nil)
		repo.On("AddAdminFile", mock.Anything, mock.MatchedBy(func(f models.OrderFile) bool {
			return f.OrderID == "order-1" && f.FileName == "result.pdf"
		})).Return("file-1", nil)
		pub.On("PublishOrderUpdated", mock.Anything).Return(nil)

		err := svc.AttachAdminFile(context.Background(), "order-1", "result.pdf", "application/pdf", 11, content)
		require.NoError(t, err)
		repo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("заказ не найден", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-404").Return("", false, nil)

		err := svc.AttachAdminFile(context.Background(), "order-404", "result.pdf", "application/pdf", 11, content)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		files.AssertNotCalled(t, "Upload")
	})

	t.Run("недопустимое расширение", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)

		err := svc.AttachAdminFile(context.Background(), "order-1", "malware.exe", "application/octet-stream", 11, content)
		assert.ErrorIs(t, err, ErrExtensionNotAllowed)
		files.AssertNotCalled(t, "Upload")
	})

	t.Run("файл больше предельного размера", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)

		err := svc.AttachAdminFile(context.Background(), "order-1", "big.pdf", "application/pdf", MaxFileSize+1, content)
		assert.ErrorIs(t, err, ErrFileTooLarge)
		files.AssertNotCalled(t, "Upload")
	})

	t.Run("ошибка хранилища не оставляет запись в базе", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)
		files.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("storage down"))

		err := svc.AttachAdminFile(context.Background(), "order-1", "result.pdf", "application/pdf", 11, content)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AddAdminFile")
	})
}

func TestUploadUserDocument(t *testing.T) {
	content := bytes.NewReader([]byte("doc"))

	t.Run("успешная загрузка возвращает путь", func(t *testing.T) {
		files := new(MockFileStore)
		svc := newTestService(new(MockRepository), files, new(MockPublisher))

		files.On("Upload", mock.Anything, "order-documents",
			mock.MatchedBy(func(path string) bool {
				return strings.HasPrefix(path, "user123/") && strings.HasSuffix(path, "-passport.pdf")
			}), "application/pdf", int64(3), content).Return(nil)

		path, err := svc.UploadUserDocument(context.Background(), "user123", "passport.pdf", "application/pdf", 3, content)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, "user123/"))
	})

	t.Run("недопустимое расширение", func(t *testing.T) {
		files := new(MockFileStore)
		svc := newTestService(new(MockRepository), files, new(MockPublisher))

		_, err := svc.UploadUserDocument(context.Background(), "user123", "script.sh", "text/plain", 3, content)
		assert.ErrorIs(t, err, ErrExtensionNotAllowed)
		files.AssertNotCalled(t, "Upload")
	})
}

func TestSignedURL(t *testing.T) {
	t.Run("неизвестная корзина", func(t *testing.T) {
		files := new(MockFileStore)
		svc := newTestService(new(MockRepository), files, new(MockPublisher))

		_, err := svc.SignedURL(context.Background(), "secret-bucket", "some/path.pdf")
		assert.ErrorIs(t, err, ErrUnknownBucket)
	})

	t.Run("ссылка на известную корзину", func(t *testing.T) {
		files := new(MockFileStore)
		svc := newTestService(new(MockRepository), files, new(MockPublisher))

		files.On("SignedURL", mock.Anything, "order-documents-admin", "order-1/result.pdf").
			Return("https://store/signed", nil)

		url, err := svc.SignedURL(context.Background(), "order-documents-admin", "order-1/result.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://store/signed", url)
	})
}

func TestSignedURLForOwner(t *testing.T) {
	t.Run("чужой заказ", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user456", true, nil)

		_, err := svc.SignedURLForOwner(context.Background(), "user123", "order-1",
			"order-documents", "order-1/doc.pdf")
		assert.ErrorIs(t, err, ErrNotOwner)
		files.AssertNotCalled(t, "SignedURL")
	})

	t.Run("путь не привязан к заказу", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)
		repo.On("UserFileExists", mock.Anything, "order-1", "order-2/doc.pdf").Return(false, nil)

		_, err := svc.SignedURLForOwner(context.Background(), "user123", "order-1",
			"order-documents", "order-2/doc.pdf")
		assert.ErrorIs(t, err, ErrFileNotFound)
		files.AssertNotCalled(t, "SignedURL")
	})

	t.Run("ссылка на файл администратора своего заказа", func(t *testing.T) {
		repo := new(MockRepository)
		files := new(MockFileStore)
		svc := newTestService(repo, files, new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-1").Return("user123", true, nil)
		repo.On("AdminFileExists", mock.Anything, "order-1", "order-1/result.pdf").Return(true, nil)
		files.On("SignedURL", mock.Anything, "order-documents-admin", "order-1/result.pdf").
			Return("https://store/signed", nil)

		url, err := svc.SignedURLForOwner(context.Background(), "user123", "order-1",
			"order-documents-admin", "order-1/result.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://store/signed", url)
	})

	t.Run("заказ не найден", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockFileStore), new(MockPublisher))

		repo.On("GetOrderOwner", mock.Anything, "order-404").Return("", false, nil)

		_, err := svc.SignedURLForOwner(context.Background(), "user123", "order-404",
			"order-documents", "doc.pdf")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
