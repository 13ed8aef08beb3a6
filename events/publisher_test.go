package events

import (
	"encoding/json"
	"testing"
	"time"

	"CoffeeShop/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent(t *testing.T) {
	order := models.Order{
		OrderID:           12,
		OrderDate:         time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
		OrderType:         "takeout",
		TransactionNumber: "POS-12",
		StoreID:           2,
		TotalAmount:       decimal.RequireFromString("12.00"),
		Status:            models.OrderStatusFinalized,
		LineItems: []models.OrderLineItem{
			{LineItemID: 1, OrderID: 12, ProductID: 1, Quantity: 3, Subtotal: decimal.RequireFromString("9.00")},
			{LineItemID: 2, OrderID: 12, ProductID: 2, Quantity: 1, Subtotal: decimal.RequireFromString("3.00")},
		},
	}

	body, err := json.Marshal(newOrderEvent(order))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "order.finalized",
		"order_id": 12,
		"store_id": 2,
		"order_date": "2024-03-01T09:30:00Z",
		"order_type": "takeout",
		"transaction_number": "POS-12",
		"total_amount": "12",
		"items": [
			{"product_id": 1, "quantity": 3, "subtotal": "9"},
			{"product_id": 2, "quantity": 1, "subtotal": "3"}
		]
	}`, string(body))
}

func TestNewOrderEventWithoutItems(t *testing.T) {
	event := newOrderEvent(models.Order{OrderID: 1})
	assert.NotNil(t, event.Items)
	assert.Empty(t, event.Items)
}

func TestNewPublisherRejectsBadURL(t *testing.T) {
	_, err := NewPublisher("not-a-url", "orders")
	assert.Error(t, err)
}
