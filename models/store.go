package models

// 門市，store_location
type Store struct {
	StoreID   uint    `gorm:"primaryKey" json:"store_id"`
	StoreName string  `gorm:"not null" json:"store_name"`
	Orders    []Order `gorm:"foreignKey:StoreID;references:StoreID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Store) TableName() string {
	return "store_location"
}
