// Package upload реализует HTTP-обработчик загрузки документа заявителем.
//
// Документ принимается как multipart/form-data в поле file до оформления
// заказа. Возвращается путь объекта, который затем передается в заказ.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/devrathore/csc-portal/internal/http/middlewarectx"
	"github.com/devrathore/csc-portal/internal/http/response"
	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/services/order"
)

// Service описывает интерфейс бизнес-логики загрузки документа.
type Service interface {
	UploadUserDocument(ctx context.Context, userUID, fileName, contentType string, size int64, r io.Reader) (string, error)
}

// Handler обрабатывает HTTP-запросы на загрузку документа.
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
// @Summary Загрузить документ
// @Description Загружает документ заявителя в хранилище. Возвращает путь объекта.
// @Tags Documents
// @Accept  multipart/form-data
// @Produce  json
// @Param file formData file true "Документ заявителя"
// @Success 200 {object} map[string]any "Путь загруженного документа"
// @Failure 400 {object} response.ErrorResponse "Некорректный файл или его формат"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 413 {object} response.ErrorResponse "Файл превышает предельный размер"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.upload"

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

	path, err := h.service.UploadUserDocument(r.Context(), userUID, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrExtensionNotAllowed):
			log.Error("file extension not allowed", slog.String("file", header.Filename))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("file extension is not allowed"))
		case errors.Is(err, order.ErrFileTooLarge):
			log.Error("file too large", slog.Int64("size", header.Size))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
		default:
			log.Error("failed to upload document", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not upload document"))
		}
		return
	}

	log.Info("document uploaded", slog.String("user_uid", userUID), slog.String("path", path))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"path": path,
	}))
}
