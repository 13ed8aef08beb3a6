package models

type Category struct {
	CategoryID   uint      `gorm:"primaryKey" json:"category_id"`
	CategoryName string    `gorm:"unique;not null" json:"category_name"`
	Products     []Product `gorm:"foreignKey:CategoryID;references:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
