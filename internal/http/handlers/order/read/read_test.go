package read

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
	"github.com/devrathore/csc-portal/internal/models"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, userUID, role, orderID string) (*models.OrderDetails, error) {
	args := m.Called(ctx, userUID, role, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetails), args.Error(1)
}

const testOrderID = "7f6f2c3e-4a39-4b0a-9a6e-3b54d51b2d8e"

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		orderID        string
		userUID        string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение квитанции",
			orderID: testOrderID,
			userUID: "user123",
			role:    models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "user123", models.RoleUser, testOrderID).
					Return(&models.OrderDetails{
						Order: models.Order{ID: testOrderID, UserUID: "user123",
							ServiceName: "Оформление паспорта", Status: models.StatusPending},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"order":{
				"order":{"id":"` + testOrderID + `","user_uid":"user123",
					"service_id":null,"service_name":"Оформление паспорта",
					"status":"pending","price":null,"created_at":"0001-01-01T00:00:00Z"},
				"owner":null,"user_files":null,"admin_files":null}}}`,
		},
		{
			name:           "некорректный ID",
			orderID:        "not-a-uuid",
			userUID:        "user123",
			role:           models.RoleUser,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:    "чужой заказ",
			orderID: testOrderID,
			userUID: "user123",
			role:    models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "user123", models.RoleUser, testOrderID).
					Return(nil, order.ErrNotOwner)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"order belongs to another user"}`,
		},
		{
			name:    "заказ не найден",
			orderID: testOrderID,
			userUID: "user123",
			role:    models.RoleUser,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "user123", models.RoleUser, testOrderID).
					Return(nil, order.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"order not found"}`,
		},
		{
			name:           "без авторизации отказ",
			orderID:        testOrderID,
			userUID:        "",
			role:           "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tt.orderID, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.orderID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
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
