package models

import "github.com/shopspring/decimal"

type Product struct {
	ProductID    uint            `gorm:"primaryKey" json:"product_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"product_price"`
	CategoryID   uint            `gorm:"index" json:"category_id"`
	ProductImage string          `json:"product_image"`
	ProductType  string          `gorm:"index" json:"product_type"`
	//僅供查詢，JOIN categories後填入
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`

	//已售出的品項不可因刪除商品而失去對應
	LineItems []OrderLineItem `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
