package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devrathore/csc-portal/internal/lib/jwt"
	"github.com/devrathore/csc-portal/internal/models"
)

// MockRoleSource реализует интерфейс middlewarectx.RoleSource
type MockRoleSource struct {
	mock.Mock
}

func (m *MockRoleSource) GetUserRole(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	token, err := maker.GenerateToken("testuser", "user", "user123")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "валидный токен пропускается",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "нет заголовка",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "неверный формат заголовка",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "мусор вместо токена",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "testuser", r.Context().Value(User))
				assert.Equal(t, "user123", r.Context().Value(UserUID))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, testLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestRoleRefreshMiddleware(t *testing.T) {
	t.Run("роль перечитывается из хранилища", func(t *testing.T) {
		roles := new(MockRoleSource)
		roles.On("GetUserRole", mock.Anything, "user123").Return(models.RoleAdmin, nil)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Токен выдан с ролью user, хранилище говорит admin.
			assert.Equal(t, models.RoleAdmin, r.Context().Value(Role))
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		ctx := context.WithValue(req.Context(), UserUID, "user123")
		ctx = context.WithValue(ctx, Role, models.RoleUser)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		RoleRefreshMiddleware(testLogger(), roles)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		roles.AssertExpectations(t)
	})

	t.Run("без идентификации отказ", func(t *testing.T) {
		roles := new(MockRoleSource)

		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("next should not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		w := httptest.NewRecorder()

		RoleRefreshMiddleware(testLogger(), roles)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "администратор пропускается",
			role:           models.RoleAdmin,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "обычный пользователь получает 403",
			role:           models.RoleUser,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "без роли отказ",
			role:           nil,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/services", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			w := httptest.NewRecorder()

			RequireAdmin(testLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}
