package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFinalized OrderStatus = "finalized"
)

// 訂單標頭，finalize後總額才與品項小計一致
type Order struct {
	OrderID           uint            `gorm:"primaryKey" json:"order_id"`
	OrderDate         time.Time       `gorm:"not null;index" json:"order_date"`
	OrderType         string          `gorm:"not null" json:"order_type"`
	TransactionNumber string          `gorm:"not null" json:"transaction_number"`
	StoreID           uint            `gorm:"not null;index" json:"store_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            OrderStatus     `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	LineItems         []OrderLineItem `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:RESTRICT" json:"line_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
