package handlers

import (
	"context"
	"net/http"

	"CoffeeShop/cache"
	"CoffeeShop/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 商品附上所屬分類名稱
func productsWithCategory(db *gorm.DB) *gorm.DB {
	return db.
		Model(&models.Product{}).
		Select("products.*, categories.category_name").
		Joins("JOIN categories ON categories.category_id = products.category_id").
		Order("products.product_id ASC")
}

// 查詢商品列表，優先從Redis讀取
func GetProductListHandler(c *gin.Context, db *gorm.DB, reportCache *cache.ReportCache) {
	products, err := reportCache.Products(c.Request.Context(), func(ctx context.Context) ([]models.Product, error) {
		var products []models.Product
		err := productsWithCategory(db.WithContext(ctx)).Find(&products).Error
		return products, err
	})
	if err != nil {
		log.Errorf("list products failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching products",
		})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// 依類型查詢商品
func GetProductsByTypeHandler(c *gin.Context, db *gorm.DB) {
	products := []models.Product{}
	err := productsWithCategory(db.WithContext(c.Request.Context())).
		Where("products.product_type = ?", c.Param("type")).
		Find(&products).
		Error
	if err != nil {
		log.Errorf("list products by type failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching products",
		})
		return
	}

	c.JSON(http.StatusOK, products)
}

// 查詢門市列表
func GetStoreListHandler(c *gin.Context, db *gorm.DB) {
	stores := []models.Store{}
	err := db.WithContext(c.Request.Context()).Order("store_id ASC").Find(&stores).Error
	if err != nil {
		log.Errorf("list stores failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching stores",
		})
		return
	}

	c.JSON(http.StatusOK, stores)
}

// 查詢商品分類列表
func GetCategoryListHandler(c *gin.Context, db *gorm.DB) {
	categories := []models.Category{}
	err := db.WithContext(c.Request.Context()).Order("category_id ASC").Find(&categories).Error
	if err != nil {
		log.Errorf("list categories failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching categories",
		})
		return
	}

	c.JSON(http.StatusOK, categories)
}
