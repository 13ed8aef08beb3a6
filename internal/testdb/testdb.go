// 測試用的sqlite資料庫
package testdb

import (
	"context"
	"fmt"
	"testing"

	"CoffeeShop/config"
	"CoffeeShop/models"
	"CoffeeShop/seed"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 每個測試獨立的in-memory資料庫
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := config.SetupDatabaseConnection(config.DatabaseConfig{Driver: "sqlite", Path: dsn}, logger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// 測試用商品目錄
var Reference = seed.Fixture{
	Stores: []seed.StoreFixture{
		{ID: 1, Name: "Downtown"},
		{ID: 2, Name: "Riverside"},
	},
	Categories: []seed.CategoryFixture{
		{ID: 1, Name: "Coffee"},
		{ID: 2, Name: "Pastry"},
	},
	Products: []seed.ProductFixture{
		{ID: 1, Name: "Espresso", Price: "3.00", CategoryID: 1, Image: "/uploads/espresso.png", Type: "drink"},
		{ID: 2, Name: "Cappuccino", Price: "4.50", CategoryID: 1, Image: "/uploads/cappuccino.png", Type: "drink"},
		{ID: 3, Name: "Croissant", Price: "2.75", CategoryID: 2, Image: "/uploads/croissant.png", Type: "food"},
		{ID: 4, Name: "Muffin", Price: "2.00", CategoryID: 2, Image: "/uploads/muffin.png", Type: "food"},
		{ID: 5, Name: "Latte", Price: "4.00", CategoryID: 1, Image: "/uploads/latte.png", Type: "drink"},
		{ID: 6, Name: "Tea", Price: "2.50", CategoryID: 1, Image: "/uploads/tea.png", Type: "drink"},
	},
}

func OpenSeeded(t testing.TB) *gorm.DB {
	t.Helper()

	db := Open(t)
	require.NoError(t, seed.Apply(context.Background(), db, Reference))
	return db
}

// 建立指定id的使用者，供LoginToken參照
func User(t testing.TB, db *gorm.DB, userID uint, role models.Role) models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.Where(models.User{UserID: userID}).Attrs(models.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", userID),
		Email:     fmt.Sprintf("user%d@coffeeshop.test", userID),
		Password:  "unused",
		Role:      role,
	}).FirstOrCreate(&user).Error)
	return user
}
