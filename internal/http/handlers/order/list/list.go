// Package list реализует HTTP-обработчик списка заказов.
//
// Для обычного пользователя возвращаются только его заказы с файлами,
// приложенными администратором. Для администратора — заказы всех
// пользователей с профилями владельцев и документами обеих сторон.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/devrathore/csc-portal/internal/http/middlewarectx"
	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/models"
)

// Service описывает интерфейс бизнес-логики списков заказов.
type Service interface {
	ListSelf(ctx context.Context, userUID string) ([]*models.OrderSummary, error)
	ListAll(ctx context.Context, role string) ([]*models.OrderDetails, error)
}

// Handler обрабатывает HTTP-запросы на список заказов.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики заказов
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список заказов
// @Description Возвращает заказы текущего пользователя, для администратора — все заказы.
// @Tags Orders
// @Produce  json
// @Success 200 {object} map[string]any "Список заказов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /orders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	if role == models.RoleAdmin {
		orders, err := h.service.ListAll(r.Context(), role)
		if err != nil {
			log.Error("failed to list all orders", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not list orders"))
			return
		}
		render.JSON(w, r, response.OKWithData(map[string]any{
			"orders": orders,
		}))
		return
	}

	orders, err := h.service.ListSelf(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list orders"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"orders": orders,
	}))
}
