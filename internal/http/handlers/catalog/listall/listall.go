// Package listall реализует HTTP-обработчик административного списка услуг.
//
// В отличие от публичной витрины возвращает и скрытые услуги.
package listall

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

// Service описывает интерфейс бизнес-логики административного списка услуг.
type Service interface {
	ListAll(ctx context.Context) ([]*models.Service, error)
}

// Handler обрабатывает HTTP-запросы на полный список услуг.
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
// @Summary Полный список услуг
// @Description Возвращает все услуги каталога, включая скрытые.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Список услуг"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /admin/services [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.listall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	services, err := h.service.ListAll(r.Context())
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
