package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"CoffeeShop/models"
	"github.com/op/go-logging"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

var log = logging.MustGetLogger("log")

// 訂單完成時發布的訊息
type OrderEvent struct {
	Type              string           `json:"type"`
	OrderID           uint             `json:"order_id"`
	StoreID           uint             `json:"store_id"`
	OrderDate         time.Time        `json:"order_date"`
	OrderType         string           `json:"order_type"`
	TransactionNumber string           `json:"transaction_number"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	Items             []OrderEventItem `json:"items"`
}

type OrderEventItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

const orderFinalizedType = "order.finalized"

func newOrderEvent(order models.Order) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		items = append(items, OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return OrderEvent{
		Type:              orderFinalizedType,
		OrderID:           order.OrderID,
		StoreID:           order.StoreID,
		OrderDate:         order.OrderDate,
		OrderType:         order.OrderType,
		TransactionNumber: order.TransactionNumber,
		TotalAmount:       order.TotalAmount,
		Items:             items,
	}
}

type Publisher struct {
	exchange string
	conn     *amqp.Connection

	mu      sync.Mutex
	channel *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{exchange: exchange, conn: conn, channel: ch}, nil
}

func (p *Publisher) PublishOrderFinalized(ctx context.Context, order models.Order) error {
	body, err := json.Marshal(newOrderEvent(order))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         orderFinalizedType,
			Body:         body,
		})
	if err != nil {
		return err
	}
	log.Debugf("published %s for order %d", orderFinalizedType, order.OrderID)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
