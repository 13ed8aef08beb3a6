package models

import "github.com/shopspring/decimal"

// 訂單品項，寫入後不再修改，Subtotal為結帳當下的金額
type OrderLineItem struct {
	LineItemID uint            `gorm:"primaryKey" json:"line_item_id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

func (OrderLineItem) TableName() string {
	return "order_list"
}
