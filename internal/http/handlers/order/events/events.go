// Package events реализует HTTP-обработчик потока событий изменения заказов.
//
// Поток отдается в формате Server-Sent Events: каждое изменение заказа
// приходит отдельным событием, по которому клиент перечитывает список.
// Подписка живет до разрыва соединения клиентом.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/devrathore/csc-portal/internal/lib/sl"
	"github.com/devrathore/csc-portal/internal/models"
)

// Hub описывает интерфейс подписки на события изменения заказов.
type Hub interface {
	Subscribe() (<-chan models.OrderEvent, func())
}

// Handler обрабатывает HTTP-запросы на поток событий.
type Handler struct {
	log *slog.Logger // Логгер для записи операций и ошибок
	hub Hub          // Центр рассылки событий заказов
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, hub Hub) *Handler {
	return &Handler{
		log: log,
		hub: hub,
	}
}

// ServeHTTP godoc
// @Summary Поток событий заказов
// @Description Отдает события изменения заказов в формате Server-Sent Events.
// @Tags Orders
// @Produce  text/event-stream
// @Success 200 {string} string "Поток событий"
// @Failure 500 {object} response.ErrorResponse "Потоковая передача недоступна"
// @Security BearerAuth
// @Router /orders/events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.events"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming unsupported by response writer")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Поток живёт дольше общего write deadline сервера, иначе
	// соединение закроется по таймауту раньше первого события.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("failed to clear write deadline", sl.Err(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.hub.Subscribe()
	defer cancel()
	log.Info("subscriber connected")

	for {
		select {
		case <-r.Context().Done():
			log.Info("subscriber disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal event", sl.Err(err))
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				log.Error("failed to write event", sl.Err(err))
				return
			}
			flusher.Flush()
		}
	}
}
