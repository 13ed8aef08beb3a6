package ledger

import (
	"context"
	"errors"
	"time"

	"CoffeeShop/models"
	"github.com/op/go-logging"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var log = logging.MustGetLogger("log")

// 訂單附上門市名稱
type OrderView struct {
	OrderID           uint               `json:"order_id"`
	OrderDate         time.Time          `json:"order_date"`
	OrderType         string             `json:"order_type"`
	TransactionNumber string             `json:"transaction_number"`
	StoreID           uint               `json:"store_id"`
	StoreName         string             `json:"store_name"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	Status            models.OrderStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
}

// 品項附上商品資料
type LineItemView struct {
	LineItemID   uint            `json:"line_item_id"`
	OrderID      uint            `json:"order_id"`
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	CategoryID   uint            `json:"category_id"`
	ProductImage string          `json:"product_image"`
	ProductType  string          `json:"product_type"`
}

const orderViewColumns = "orders.order_id, orders.order_date, orders.order_type, orders.transaction_number, " +
	"orders.store_id, store_location.store_name, orders.total_amount, orders.status, orders.created_at"

const lineItemViewColumns = "order_list.line_item_id, order_list.order_id, order_list.product_id, " +
	"order_list.quantity, order_list.subtotal, products.product_name, products.product_price, " +
	"products.category_id, products.product_image, products.product_type"

// 只寫入orders與order_list，其餘資料表唯讀
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// fn回傳錯誤時整筆rollback
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if err != nil && KindOf(err) == 0 {
		log.Errorf("ledger transaction failed: %v", err)
		return persistenceError("ledger transaction", err)
	}
	return err
}

func (s *Store) InsertOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if order.OrderDate.IsZero() {
		return models.Order{}, validationErrorf("order_date is required")
	}
	if err := validateAmount("total", order.TotalAmount); err != nil {
		return models.Order{}, err
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	exists, err := s.exists(ctx, &models.Store{}, "store_id = ?", order.StoreID)
	if err != nil {
		return models.Order{}, err
	}
	if !exists {
		return models.Order{}, validationErrorf("store %d does not exist", order.StoreID)
	}

	order.OrderID = 0
	order.OrderDate = order.OrderDate.UTC()
	order.LineItems = nil
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		log.Errorf("insert order failed: %v", err)
		return models.Order{}, persistenceError("insert order", err)
	}
	return order, nil
}

func (s *Store) InsertLineItem(ctx context.Context, item models.OrderLineItem) (models.OrderLineItem, error) {
	if item.Quantity <= 0 {
		return models.OrderLineItem{}, validationErrorf("quantity must be a positive integer")
	}
	if err := validateAmount("subtotal", item.Subtotal); err != nil {
		return models.OrderLineItem{}, err
	}

	exists, err := s.exists(ctx, &models.Order{}, "order_id = ?", item.OrderID)
	if err != nil {
		return models.OrderLineItem{}, err
	}
	if !exists {
		return models.OrderLineItem{}, validationErrorf("order %d does not exist", item.OrderID)
	}
	exists, err = s.exists(ctx, &models.Product{}, "product_id = ?", item.ProductID)
	if err != nil {
		return models.OrderLineItem{}, err
	}
	if !exists {
		return models.OrderLineItem{}, validationErrorf("product %d does not exist", item.ProductID)
	}

	item.LineItemID = 0
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&item).Error; err != nil {
		log.Errorf("insert line item for order %d failed: %v", item.OrderID, err)
		return models.OrderLineItem{}, persistenceError("insert line item", err)
	}
	return item, nil
}

// 查詢訂單列表，新到舊，同時間依寫入順序
func (s *Store) ListOrders(ctx context.Context) ([]OrderView, error) {
	return s.listOrders(ctx, nil, nil)
}

// 依年份(UTC)與門市篩選訂單
func (s *Store) ListOrdersFiltered(ctx context.Context, year int, storeFilter string) ([]OrderView, error) {
	storeID, err := ParseStoreFilter(storeFilter)
	if err != nil {
		return nil, err
	}
	p := calendarYear(year)
	return s.listOrders(ctx, &p, storeID)
}

func (s *Store) listOrders(ctx context.Context, p *period, storeID *uint) ([]OrderView, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(orderViewColumns).
		Joins("JOIN store_location ON store_location.store_id = orders.store_id")
	if p != nil {
		query = query.Where("orders.order_date >= ? AND orders.order_date < ?", p.from, p.to)
	}
	if storeID != nil {
		query = query.Where("orders.store_id = ?", *storeID)
	}

	var orders []OrderView
	err := query.
		Order("orders.order_date DESC").
		Order("orders.order_id ASC").
		Scan(&orders).
		Error
	if err != nil {
		log.Errorf("list orders failed: %v", err)
		return nil, persistenceError("list orders", err)
	}
	if orders == nil {
		orders = []OrderView{}
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID uint) (OrderView, error) {
	var orders []OrderView
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(orderViewColumns).
		Joins("JOIN store_location ON store_location.store_id = orders.store_id").
		Where("orders.order_id = ?", orderID).
		Limit(1).
		Scan(&orders).
		Error
	if err != nil {
		log.Errorf("get order %d failed: %v", orderID, err)
		return OrderView{}, persistenceError("get order", err)
	}
	if len(orders) == 0 {
		return OrderView{}, notFoundErrorf("order %d not found", orderID)
	}
	return orders[0], nil
}

// 查詢訂單品項
func (s *Store) ListLineItems(ctx context.Context, orderID uint) ([]LineItemView, error) {
	exists, err := s.exists(ctx, &models.Order{}, "order_id = ?", orderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFoundErrorf("order %d not found", orderID)
	}

	var items []LineItemView
	err = s.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Select(lineItemViewColumns).
		Joins("JOIN products ON products.product_id = order_list.product_id").
		Where("order_list.order_id = ?", orderID).
		Order("order_list.line_item_id ASC").
		Scan(&items).
		Error
	if err != nil {
		log.Errorf("list line items of order %d failed: %v", orderID, err)
		return nil, persistenceError("list line items", err)
	}
	if items == nil {
		items = []LineItemView{}
	}
	return items, nil
}

func (s *Store) ProductByID(ctx context.Context, productID uint) (models.Product, bool, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("product_id = ?", productID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, persistenceError("lookup product", err)
	}
	return product, true, nil
}

// 支援的資料庫會加row lock
func (s *Store) lockOrder(ctx context.Context, orderID uint) (models.Order, bool, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&order).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, persistenceError("lock order", err)
	}
	return order, true, nil
}

func (s *Store) lineItemsOf(ctx context.Context, orderID uint) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_item_id ASC").
		Find(&items).
		Error
	if err != nil {
		return nil, persistenceError("load line items", err)
	}
	return items, nil
}

func (s *Store) finalizeOrder(ctx context.Context, orderID uint, total decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]any{
			"status":       models.OrderStatusFinalized,
			"total_amount": total,
		})
	if result.Error != nil {
		return persistenceError("finalize order", result.Error)
	}
	if result.RowsAffected == 0 {
		return validationErrorf("order %d is not pending", orderID)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		log.Errorf("existence check failed: %v", err)
		return false, persistenceError("existence check", err)
	}
	return count > 0, nil
}

// 銷售彙總只在資料庫端GROUP BY，不載入個別品項
func (s *Store) salesQuery(ctx context.Context, p *period, storeID *uint) *gorm.DB {
	query := s.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Joins("JOIN orders ON orders.order_id = order_list.order_id")
	if p != nil {
		query = query.Where("orders.order_date >= ? AND orders.order_date < ?", p.from, p.to)
	}
	if storeID != nil {
		query = query.Where("orders.store_id = ?", *storeID)
	}
	return query
}

func (s *Store) productTotals(ctx context.Context, p *period) ([]ProductSales, error) {
	totals := make([]ProductSales, 0)
	err := s.salesQuery(ctx, p, nil).
		Select("products.product_id, products.product_name, " +
			"SUM(order_list.quantity) AS total_quantity, SUM(order_list.subtotal) AS total_sales").
		Joins("JOIN products ON products.product_id = order_list.product_id").
		Group("products.product_id, products.product_name").
		Scan(&totals).
		Error
	if err != nil {
		log.Errorf("aggregate product sales failed: %v", err)
		return nil, persistenceError("aggregate product sales", err)
	}
	for i := range totals {
		totals[i].TotalSales = totals[i].TotalSales.Round(2)
	}
	return totals, nil
}

func (s *Store) storeTotals(ctx context.Context, p *period, storeID *uint) ([]StoreSales, error) {
	totals := make([]StoreSales, 0)
	err := s.salesQuery(ctx, p, storeID).
		Select("orders.store_id, store_location.store_name, " +
			"COUNT(DISTINCT order_list.order_id) AS order_count, " +
			"SUM(order_list.quantity) AS total_quantity, SUM(order_list.subtotal) AS total_sales").
		Joins("JOIN store_location ON store_location.store_id = orders.store_id").
		Group("orders.store_id, store_location.store_name").
		Scan(&totals).
		Error
	if err != nil {
		log.Errorf("aggregate store sales failed: %v", err)
		return nil, persistenceError("aggregate store sales", err)
	}
	for i := range totals {
		totals[i].TotalSales = totals[i].TotalSales.Round(2)
	}
	return totals, nil
}
