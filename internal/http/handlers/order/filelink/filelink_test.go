package filelink

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/devrathore/csc-portal/internal/http/middlewarectx"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// MockService реализует интерфейс filelink.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SignedURLForOwner(ctx context.Context, userUID, orderID, bucket, filePath string) (string, error) {
	args := m.Called(ctx, userUID, orderID, bucket, filePath)
	return args.String(0), args.Error(1)
}

const testOrderID = "7f6f2c3e-4a39-4b0a-9a6e-3b54d51b2d8e"

func TestFileLinkHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		orderID        string
		query          string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная выдача ссылки",
			orderID: testOrderID,
			query:   "?bucket=order-documents&path=" + testOrderID + "%2Fdoc.pdf",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("SignedURLForOwner", mock.Anything, "user123", testOrderID,
					"order-documents", testOrderID+"/doc.pdf").
					Return("https://store/signed", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"url":"https://store/signed"}}`,
		},
		{
			name:           "нет параметров",
			orderID:        testOrderID,
			query:          "",
			userUID:        "user123",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"bucket and path are required"}`,
		},
		{
			name:    "чужой заказ",
			orderID: testOrderID,
			query:   "?bucket=order-documents&path=doc.pdf",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("SignedURLForOwner", mock.Anything, "user123", testOrderID,
					"order-documents", "doc.pdf").Return("", order.ErrNotOwner)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"order belongs to another user"}`,
		},
		{
			name:    "файл не привязан к заказу",
			orderID: testOrderID,
			query:   "?bucket=order-documents&path=doc.pdf",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("SignedURLForOwner", mock.Anything, "user123", testOrderID,
					"order-documents", "doc.pdf").Return("", order.ErrFileNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"file not found"}`,
		},
		{
			name:    "неизвестная корзина",
			orderID: testOrderID,
			query:   "?bucket=secret&path=doc.pdf",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("SignedURLForOwner", mock.Anything, "user123", testOrderID,
					"secret", "doc.pdf").Return("", order.ErrUnknownBucket)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"unknown bucket"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/orders/"+tt.orderID+"/files/url"+tt.query, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.orderID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
