// Package filelink реализует HTTP-обработчик выдачи подписанной ссылки заявителю.
//
// Заявитель получает временную ссылку только на файл собственного заказа:
// перед выдачей проверяется владение заказом и привязка пути к нему.
package filelink

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/devrathore/csc-portal/internal/http/middlewarectx"
	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// Service описывает интерфейс бизнес-логики выдачи ссылки владельцу заказа.
type Service interface {
	SignedURLForOwner(ctx context.Context, userUID, orderID, bucket, filePath string) (string, error)
}

// Handler обрабатывает HTTP-запросы заявителя на подписанную ссылку.
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
// @Summary Ссылка на файл своего заказа
// @Description Возвращает временную ссылку на документ или файл результата собственного заказа.
// @Tags Orders
// @Produce  json
// @Param id path string true "ID заказа"
// @Param bucket query string true "Корзина хранилища"
// @Param path query string true "Путь объекта"
// @Success 200 {object} map[string]any "Подписанная ссылка"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Заказ принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Заказ или файл не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /orders/{id}/files/url [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.filelink"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	bucket := r.URL.Query().Get("bucket")
	filePath := r.URL.Query().Get("path")
	if bucket == "" || filePath == "" {
		log.Error("bucket or path missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("bucket and path are required"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.SignedURLForOwner(r.Context(), userUID, id, bucket, filePath)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			log.Error("order not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
		case errors.Is(err, order.ErrNotOwner):
			log.Error("order belongs to another user", slog.String("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("order belongs to another user"))
		case errors.Is(err, order.ErrFileNotFound):
			log.Error("file not found", slog.String("path", filePath))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
		case errors.Is(err, order.ErrUnknownBucket):
			log.Error("unknown bucket", slog.String("bucket", bucket))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown bucket"))
		default:
			log.Error("failed to sign url", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not sign url"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}
