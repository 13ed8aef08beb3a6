package handlers

import (
	"net/http"

	"CoffeeShop/cache"
	"CoffeeShop/ledger"
	"github.com/gin-gonic/gin"
)

// 新增訂單標頭，需finalize後才算完成
func CreateOrderHandler(c *gin.Context, composer *ledger.Composer) {
	var orderReq ledger.OrderInput
	if err := c.ShouldBindJSON(&orderReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid order payload",
			"error":   err.Error(),
		})
		return
	}

	order, err := composer.CreateOrder(c.Request.Context(), orderReq)
	if err != nil {
		respondError(c, "Error adding order", err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// 新增訂單品項
func AddOrderLineItemHandler(c *gin.Context, composer *ledger.Composer, reportCache *cache.ReportCache) {
	var lineItemReq ledger.LineItemInput
	if err := c.ShouldBindJSON(&lineItemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid line item payload",
			"error":   err.Error(),
		})
		return
	}

	item, err := composer.AttachLineItem(c.Request.Context(), lineItemReq)
	if err != nil {
		respondError(c, "Error adding order line item", err)
		return
	}
	invalidateReports(c, reportCache)

	c.JSON(http.StatusCreated, item)
}

func FinalizeOrderHandler(c *gin.Context, composer *ledger.Composer) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := composer.FinalizeOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, "Error finalizing order", err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// 一次送出訂單及所有品項
func PlaceOrderHandler(c *gin.Context, composer *ledger.Composer, reportCache *cache.ReportCache) {
	var orderReq struct {
		ledger.OrderInput
		Items []ledger.LineItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&orderReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid order payload",
			"error":   err.Error(),
		})
		return
	}

	order, err := composer.PlaceOrder(c.Request.Context(), orderReq.OrderInput, orderReq.Items)
	if err != nil {
		respondError(c, "Error placing order", err)
		return
	}
	invalidateReports(c, reportCache)

	c.JSON(http.StatusCreated, order)
}

// 查詢訂單列表
func GetOrdersHandler(c *gin.Context, store *ledger.Store) {
	orders, err := store.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, "Error fetching orders", err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// 依年份與門市查詢訂單
func GetSpecificOrdersHandler(c *gin.Context, store *ledger.Store) {
	year, err := ledger.ParseYear(c.Query("year"))
	if err != nil {
		respondError(c, "Error fetching orders", err)
		return
	}

	orders, err := store.ListOrdersFiltered(c.Request.Context(), year, c.Query("store_id"))
	if err != nil {
		respondError(c, "Error fetching orders", err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// 查詢訂單品項
func GetOrderListHandler(c *gin.Context, store *ledger.Store) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	items, err := store.ListLineItems(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, "Error fetching order line items", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func invalidateReports(c *gin.Context, reportCache *cache.ReportCache) {
	if err := reportCache.Invalidate(c.Request.Context()); err != nil {
		log.Warningf("could not invalidate cached reports: %v", err)
	}
}
