package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена сущностей шины событий заказов.
const (
	OrderEventsExchange = "order-events"
	OrderUpdatedQueue   = "order-events.updated"
	OrderUpdatedKey     = "order.updated"
)

// SetupChannel открывает канал и объявляет обменник и очередь событий
// заказов. Очередь слушает мост синхронизации представлений.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		OrderEventsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		OrderUpdatedQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(OrderUpdatedQueue, OrderUpdatedKey, OrderEventsExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, err
}
