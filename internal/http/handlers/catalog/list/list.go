// Package list реализует HTTP-обработчик публичной витрины каталога услуг.
//
// Витрина доступна без авторизации и возвращает только активные услуги.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/models"
)

// Service описывает интерфейс бизнес-логики витрины каталога.
type Service interface {
	ListActive(ctx context.Context) ([]*models.Service, error)
}

// Handler обрабатывает HTTP-запросы на список активных услуг.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Витрина каталога услуг
// @Description Возвращает активные услуги каталога, новые первыми.
// @Tags Catalog
// @Produce  json
// @Success 200 {object} map[string]any "Список услуг"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /services [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	services, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list services", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list services"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"services": services,
	}))
}
