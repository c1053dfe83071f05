// Package signedurl реализует HTTP-обработчик выдачи подписанной ссылки администратору.
//
// Администратор получает временную ссылку на любой объект одной из двух
// корзин хранилища документов. Корзина и путь передаются query-параметрами.
package signedurl

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// Service описывает интерфейс бизнес-логики выдачи подписанных ссылок.
type Service interface {
	SignedURL(ctx context.Context, bucket, filePath string) (string, error)
}

// Handler обрабатывает HTTP-запросы на подписанную ссылку.
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
// @Summary Подписанная ссылка на файл
// @Description Возвращает временную ссылку на объект хранилища документов.
// @Tags Admin
// @Produce  json
// @Param bucket query string true "Корзина хранилища"
// @Param path query string true "Путь объекта"
// @Success 200 {object} map[string]any "Подписанная ссылка"
// @Failure 400 {object} response.ErrorResponse "Неизвестная корзина или пустой путь"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /admin/files/url [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.signedurl"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bucket := r.URL.Query().Get("bucket")
	filePath := r.URL.Query().Get("path")
	if bucket == "" || filePath == "" {
		log.Error("bucket or path missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("bucket and path are required"))
		return
	}

	url, err := h.service.SignedURL(r.Context(), bucket, filePath)
	if err != nil {
		if errors.Is(err, order.ErrUnknownBucket) {
			log.Error("unknown bucket", slog.String("bucket", bucket))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown bucket"))
			return
		}
		log.Error("failed to sign url", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign url"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}
