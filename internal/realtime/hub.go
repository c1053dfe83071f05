// Package realtime реализует мост синхронизации представлений:
// события изменения заказов из шины раздаются всем открытым
// подпискам, чтобы списки заказов обновлялись без опроса.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devrathore/csc-portal/internal/models"
)

// Hub хранит активные подписки и рассылает им события. Никакой
// адресности нет: любое событие UPDATE по любому заказу приводит к
// обновлению каждого открытого представления.
type Hub struct {
	log  *slog.Logger
	mu   sync.Mutex
	subs map[chan models.OrderEvent]struct{}
}

// NewHub создает пустой Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[chan models.OrderEvent]struct{}),
	}
}

// Subscribe регистрирует новую подписку и возвращает канал событий
// вместе с функцией отписки. Отписка обязана вызываться при закрытии
// представления, иначе подписка утечёт.
func (h *Hub) Subscribe() (<-chan models.OrderEvent, func()) {
	ch := make(chan models.OrderEvent, 8)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast рассылает событие всем подпискам. Медленный получатель
// событие теряет: следующее событие всё равно приведёт к обновлению.
func (h *Hub) Broadcast(event models.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount возвращает число активных подписок.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// HandleMessage разбирает сообщение шины и рассылает его подпискам.
// Используется как обработчик потребителя очереди событий заказов.
func (h *Hub) HandleMessage(body []byte) error {
	const op = "realtime.HandleMessage"
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.log.Info("order event received",
		slog.String("order_id", event.OrderID),
		slog.String("status", event.Status))
	h.Broadcast(event)
	return nil
}
