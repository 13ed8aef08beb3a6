package routers

import (
	"net/http"

	"CoffeeShop/cache"
	"CoffeeShop/handlers"
	"CoffeeShop/jwt"
	"CoffeeShop/ledger"
	"CoffeeShop/middleware"
	"CoffeeShop/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Tokens為nil時不提供登入
type Options struct {
	DB       *gorm.DB
	Ledger   *ledger.Store
	Composer *ledger.Composer
	Reports  *ledger.Reports
	Cache    *cache.ReportCache
	Gate     middleware.Authorizer
	Tokens   *jwt.Manager
}

func SetupRouters(opts Options) *gin.Engine {
	//建立Gin路由器
	router := gin.Default()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization, X-Request-ID")
		c.Next()
	})
	_ = router.SetTrustedProxies(nil)

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(opts.Gate))

	////公開報表，無須登入
	api.GET("/get/top-sold-products", func(c *gin.Context) {
		handlers.GetTopSoldProductsHandler(c, opts.Reports, opts.Cache)
	})
	api.GET("/get/top-sold-products-no-limit/:year", func(c *gin.Context) {
		handlers.GetTopSoldProductsByYearHandler(c, opts.Reports, opts.Cache)
	})
	api.GET("/get/products-by-type/:type", func(c *gin.Context) {
		handlers.GetProductsByTypeHandler(c, opts.DB)
	})
	if opts.Tokens != nil {
		api.POST("/login", func(c *gin.Context) {
			handlers.LoginHandler(c, opts.DB, opts.Tokens)
		})
	}

	////需要登入
	loginRequired := api.Group("")
	loginRequired.Use(middleware.CheckLoginMiddleware())
	{
		loginRequired.POST("/logout", func(c *gin.Context) {
			handlers.LogOutHandler(c, opts.DB)
		})
		loginRequired.POST("/auth-verify", handlers.AuthVerifyHandler)
	}

	//記錄銷售
	sales := loginRequired.Group("")
	sales.Use(middleware.CheckPermissionMiddleware(models.CapRecordSales))
	{
		sales.POST("/add/order", func(c *gin.Context) {
			handlers.CreateOrderHandler(c, opts.Composer)
		})
		sales.POST("/add/order-list", func(c *gin.Context) {
			handlers.AddOrderLineItemHandler(c, opts.Composer, opts.Cache)
		})
		sales.POST("/finalize/order/:order_id", func(c *gin.Context) {
			handlers.FinalizeOrderHandler(c, opts.Composer)
		})
		sales.POST("/add/order-with-items", func(c *gin.Context) {
			handlers.PlaceOrderHandler(c, opts.Composer, opts.Cache)
		})
	}

	//查詢帳本
	ledgerRead := loginRequired.Group("")
	ledgerRead.Use(middleware.CheckPermissionMiddleware(models.CapViewLedger))
	{
		ledgerRead.GET("/get/orders", func(c *gin.Context) {
			handlers.GetOrdersHandler(c, opts.Ledger)
		})
		ledgerRead.GET("/get/specific-orders", func(c *gin.Context) {
			handlers.GetSpecificOrdersHandler(c, opts.Ledger)
		})
		ledgerRead.GET("/get/order-list/:order_id", func(c *gin.Context) {
			handlers.GetOrderListHandler(c, opts.Ledger)
		})
		ledgerRead.GET("/get/stores", func(c *gin.Context) {
			handlers.GetStoreListHandler(c, opts.DB)
		})
		ledgerRead.GET("/get/products", func(c *gin.Context) {
			handlers.GetProductListHandler(c, opts.DB, opts.Cache)
		})
		ledgerRead.GET("/get/categories", func(c *gin.Context) {
			handlers.GetCategoryListHandler(c, opts.DB)
		})
	}

	//店長報表
	reportsRead := loginRequired.Group("")
	reportsRead.Use(middleware.CheckPermissionMiddleware(models.CapViewReports))
	{
		reportsRead.GET("/get/sales-summary", func(c *gin.Context) {
			handlers.GetSalesSummaryHandler(c, opts.Reports, opts.Cache)
		})
	}

	//員工管理
	staff := loginRequired.Group("")
	staff.Use(middleware.CheckPermissionMiddleware(models.CapManageStaff))
	{
		staff.POST("/add/user", func(c *gin.Context) {
			handlers.AddUserHandler(c, opts.DB)
		})
		staff.GET("/get/managers", func(c *gin.Context) {
			handlers.GetManagersHandler(c, opts.DB)
		})
		staff.PUT("/update/manager/:id", func(c *gin.Context) {
			handlers.UpdateManagerHandler(c, opts.DB)
		})
		staff.DELETE("/delete/manager/:id", func(c *gin.Context) {
			handlers.DeleteManagerHandler(c, opts.DB)
		})
	}

	return router
}
