// Package attachfile реализует HTTP-обработчик приложения файла результата к заказу.
//
// Доступен только администратору. Файл принимается как multipart/form-data
// в поле file, проверяется политикой загрузки и пишется в административную
// корзину хранилища документов.
package attachfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// Service описывает интерфейс бизнес-логики приложения файла к заказу.
type Service interface {
	AttachAdminFile(ctx context.Context, orderID, fileName, contentType string, size int64, r io.Reader) error
}

// Handler обрабатывает HTTP-запросы на приложение файла к заказу.
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
// @Summary Приложить файл к заказу
// @Description Загружает файл результата в хранилище и привязывает его к заказу.
// @Tags Admin
// @Accept  multipart/form-data
// @Produce  json
// @Param id path string true "ID заказа"
// @Param file formData file true "Файл результата"
// @Success 200 {object} response.Response "Файл приложен"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID, файл или его формат"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 413 {object} response.ErrorResponse "Файл превышает предельный размер"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /admin/orders/{id}/files [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.attachfile"

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

	// Тело ограничивается до разбора multipart, иначе файл любого
	// размера будет прочитан целиком до проверки политики.
	r.Body = http.MaxBytesReader(w, r.Body, order.MaxFileSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Error("request body too large", sl.Err(err))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
			return
		}
		log.Error("failed to read form file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file is required"))
		return
	}
	defer file.Close()

	err = h.service.AttachAdminFile(r.Context(), id, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			log.Error("order not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
		case errors.Is(err, order.ErrExtensionNotAllowed):
			log.Error("file extension not allowed", slog.String("file", header.Filename))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("file extension is not allowed"))
		case errors.Is(err, order.ErrFileTooLarge):
			log.Error("file too large", slog.Int64("size", header.Size))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
		default:
			log.Error("failed to attach file", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not attach file"))
		}
		return
	}

	log.Info("file attached", slog.String("order_id", id), slog.String("file", header.Filename))
	render.JSON(w, r, response.OK())
}
