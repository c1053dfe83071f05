package attachfile

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devrathore/csc-portal/internal/services/order"
)

// MockService реализует интерфейс attachfile.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) AttachAdminFile(ctx context.Context, orderID, fileName, contentType string, size int64, r io.Reader) error {
	args := m.Called(ctx, orderID, fileName, contentType, size, r)
	return args.Error(0)
}

const testOrderID = "7f6f2c3e-4a39-4b0a-9a6e-3b54d51b2d8e"

func multipartBody(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newAttachRequest(body *bytes.Buffer, contentType, orderID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/admin/orders/"+orderID+"/files", body)
	req.Header.Set("Content-Type", contentType)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", orderID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
	return req.WithContext(ctx)
}

func TestAttachFileHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("успешное приложение файла", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("AttachAdminFile", mock.Anything, testOrderID, "result.pdf",
			mock.Anything, mock.Anything, mock.Anything).Return(nil)

		handler := New(logger, mockService)

		body, contentType := multipartBody(t, "result.pdf", []byte("pdf content"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, newAttachRequest(body, contentType, testOrderID))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("некорректный ID заказа", func(t *testing.T) {
		mockService := new(MockService)
		handler := New(logger, mockService)

		body, contentType := multipartBody(t, "result.pdf", []byte("pdf content"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, newAttachRequest(body, contentType, "not-a-uuid"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "AttachAdminFile")
	})

	t.Run("заказ не найден", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("AttachAdminFile", mock.Anything, testOrderID, "result.pdf",
			mock.Anything, mock.Anything, mock.Anything).Return(order.ErrOrderNotFound)

		handler := New(logger, mockService)

		body, contentType := multipartBody(t, "result.pdf", []byte("pdf content"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, newAttachRequest(body, contentType, testOrderID))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"order not found"}`, w.Body.String())
	})

	t.Run("недопустимое расширение", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("AttachAdminFile", mock.Anything, testOrderID, "tool.exe",
			mock.Anything, mock.Anything, mock.Anything).Return(order.ErrExtensionNotAllowed)

		handler := New(logger, mockService)

		body, contentType := multipartBody(t, "tool.exe", []byte("MZ"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, newAttachRequest(body, contentType, testOrderID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"file extension is not allowed"}`, w.Body.String())
	})

	t.Run("огромное тело отклоняется до чтения файла", func(t *testing.T) {
		mockService := new(MockService)
		handler := New(logger, mockService)

		body, contentType := multipartBody(t, "huge.pdf",
			bytes.Repeat([]byte("a"), order.MaxFileSize+2<<20))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, newAttachRequest(body, contentType, testOrderID))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"file is too large"}`, w.Body.String())
		mockService.AssertNotCalled(t, "AttachAdminFile")
	})
}
