package handlers

import (
	"context"
	"net/http"
	"strconv"

	"CoffeeShop/cache"
	"CoffeeShop/ledger"
	"github.com/gin-gonic/gin"
)

// 查詢銷售量前五名商品
func GetTopSoldProductsHandler(c *gin.Context, reports *ledger.Reports, reportCache *cache.ReportCache) {
	products, err := cache.Remember(c.Request.Context(), reportCache, "top-sold-products",
		func(ctx context.Context) ([]ledger.TopProduct, error) {
			return reports.TopSoldProducts(ctx, ledger.DefaultTopLimit)
		})
	if err != nil {
		respondError(c, "Error fetching top sold products", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// 依年份查詢商品銷售額排行
func GetTopSoldProductsByYearHandler(c *gin.Context, reports *ledger.Reports, reportCache *cache.ReportCache) {
	year := c.Param("year")
	if _, err := ledger.ParseYear(year); err != nil {
		respondError(c, "Invalid year parameter", err)
		return
	}

	products, err := cache.Remember(c.Request.Context(), reportCache, "top-sold-products:"+year,
		func(ctx context.Context) ([]ledger.ProductSales, error) {
			return reports.TopSoldProductsByYear(ctx, year)
		})
	if err != nil {
		respondError(c, "Error fetching top sold products", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// 查詢年度門市銷售總覽，依年份與門市快取
func GetSalesSummaryHandler(c *gin.Context, reports *ledger.Reports, reportCache *cache.ReportCache) {
	year, storeFilter := c.Query("year"), c.Query("store_id")
	if _, err := ledger.ParseYear(year); err != nil {
		respondError(c, "Error fetching sales summary", err)
		return
	}
	storeID, err := ledger.ParseStoreFilter(storeFilter)
	if err != nil {
		respondError(c, "Error fetching sales summary", err)
		return
	}
	storeKey := ledger.StoreFilterAll
	if storeID != nil {
		storeKey = strconv.FormatUint(uint64(*storeID), 10)
	}

	summary, err := cache.Remember(c.Request.Context(), reportCache, "sales-summary:"+year+":"+storeKey,
		func(ctx context.Context) ([]ledger.StoreSales, error) {
			return reports.SalesSummary(ctx, year, storeFilter)
		})
	if err != nil {
		respondError(c, "Error fetching sales summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
