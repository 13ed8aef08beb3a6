package ledger

import (
	"context"
	"strings"
	"time"

	"CoffeeShop/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 結帳送出的訂單標頭
type OrderInput struct {
	OrderDate         string           `json:"order_date"`
	OrderType         string           `json:"order_type"`
	TransactionNumber string           `json:"transaction_number"`
	StoreID           uint             `json:"store_id"`
	Total             *decimal.Decimal `json:"total"`
}

// SubTotal為nil時依目前售價計算
type LineItemInput struct {
	OrderID   uint             `json:"order_id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	SubTotal  *decimal.Decimal `json:"sub_total"`
}

// 訂單完成並commit後通知
type OrderPublisher interface {
	PublishOrderFinalized(ctx context.Context, order models.Order) error
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderFinalized(context.Context, models.Order) error { return nil }

// 記錄銷售：PlaceOrder一次完成，或CreateOrder後逐筆AttachLineItem再FinalizeOrder
type Composer struct {
	store          *Store
	defaultStoreID uint
	publisher      OrderPublisher
	now            func() time.Time
}

func NewComposer(store *Store, defaultStoreID uint, publisher OrderPublisher) *Composer {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Composer{
		store:          store,
		defaultStoreID: defaultStoreID,
		publisher:      publisher,
		now:            time.Now,
	}
}

// 建立pending訂單，FinalizeOrder後才算完成
func (c *Composer) CreateOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	if in.Total == nil {
		return models.Order{}, validationErrorf("total is required")
	}
	header, err := c.header(in)
	if err != nil {
		return models.Order{}, err
	}
	header.TotalAmount = *in.Total
	return c.store.InsertOrder(ctx, header)
}

// 加入品項至pending訂單
func (c *Composer) AttachLineItem(ctx context.Context, in LineItemInput) (models.OrderLineItem, error) {
	if in.OrderID == 0 {
		return models.OrderLineItem{}, validationErrorf("order_id is required")
	}
	if err := validateLineItem(in); err != nil {
		return models.OrderLineItem{}, err
	}

	var created models.OrderLineItem
	err := c.store.Transaction(ctx, func(tx *Store) error {
		order, found, err := tx.lockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if !found {
			return validationErrorf("order %d does not exist", in.OrderID)
		}
		if order.Status != models.OrderStatusPending {
			return validationErrorf("order %d is already finalized", in.OrderID)
		}

		created, err = tx.attach(ctx, in.OrderID, in)
		return err
	})
	if err != nil {
		return models.OrderLineItem{}, err
	}
	return created, nil
}

// 品項小計與總額一致才完成訂單，重複呼叫直接回傳
func (c *Composer) FinalizeOrder(ctx context.Context, orderID uint) (models.Order, error) {
	var (
		order     models.Order
		finalized bool
	)
	err := c.store.Transaction(ctx, func(tx *Store) error {
		var found bool
		var err error
		order, found, err = tx.lockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !found {
			return notFoundErrorf("order %d not found", orderID)
		}

		items, err := tx.lineItemsOf(ctx, orderID)
		if err != nil {
			return err
		}
		order.LineItems = items
		if order.Status == models.OrderStatusFinalized {
			return nil
		}

		if len(items) == 0 {
			return validationErrorf("order %d has no line items", orderID)
		}
		sum := sumSubtotals(items)
		if !sum.Equal(order.TotalAmount) {
			return validationErrorf("order %d total %s does not match line items sum %s",
				orderID, order.TotalAmount.StringFixed(2), sum.StringFixed(2))
		}
		if err := tx.finalizeOrder(ctx, orderID, sum); err != nil {
			return err
		}
		order.Status = models.OrderStatusFinalized
		finalized = true
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	if finalized {
		c.publish(ctx, order)
	}
	return order, nil
}

// 一次寫入訂單與品項並完成，未提供總額時以小計加總
func (c *Composer) PlaceOrder(ctx context.Context, in OrderInput, lines []LineItemInput) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, validationErrorf("an order needs at least one line item")
	}
	for _, line := range lines {
		if err := validateLineItem(line); err != nil {
			return models.Order{}, err
		}
	}
	header, err := c.header(in)
	if err != nil {
		return models.Order{}, err
	}
	if in.Total != nil {
		header.TotalAmount = *in.Total
	}

	var order models.Order
	err = c.store.Transaction(ctx, func(tx *Store) error {
		var err error
		order, err = tx.InsertOrder(ctx, header)
		if err != nil {
			return err
		}

		items := make([]models.OrderLineItem, 0, len(lines))
		for _, line := range lines {
			item, err := tx.attach(ctx, order.OrderID, line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		sum := sumSubtotals(items)
		if err := validateAmount("total", sum); err != nil {
			return err
		}
		if in.Total != nil && !sum.Equal(*in.Total) {
			return validationErrorf("total %s does not match line items sum %s",
				in.Total.StringFixed(2), sum.StringFixed(2))
		}
		if err := tx.finalizeOrder(ctx, order.OrderID, sum); err != nil {
			return err
		}

		order.TotalAmount = sum
		order.Status = models.OrderStatusFinalized
		order.LineItems = items
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	c.publish(ctx, order)
	return order, nil
}

func (c *Composer) header(in OrderInput) (models.Order, error) {
	if in.Total != nil {
		if err := validateAmount("total", *in.Total); err != nil {
			return models.Order{}, err
		}
	}
	orderType := strings.TrimSpace(in.OrderType)
	if orderType == "" {
		return models.Order{}, validationErrorf("order_type is required")
	}
	orderDate, err := parseOrderDate(in.OrderDate, c.now())
	if err != nil {
		return models.Order{}, err
	}

	storeID := in.StoreID
	if storeID == 0 {
		storeID = c.defaultStoreID
	}
	if storeID == 0 {
		return models.Order{}, validationErrorf("store_id is required")
	}

	transactionNumber := strings.TrimSpace(in.TransactionNumber)
	if transactionNumber == "" {
		transactionNumber = uuid.NewString()
	}

	return models.Order{
		OrderDate:         orderDate,
		OrderType:         orderType,
		TransactionNumber: transactionNumber,
		StoreID:           storeID,
		Status:            models.OrderStatusPending,
	}, nil
}

func (c *Composer) publish(ctx context.Context, order models.Order) {
	if err := c.publisher.PublishOrderFinalized(ctx, order); err != nil {
		log.Warningf("order %d committed but event publish failed: %v", order.OrderID, err)
	}
}

func (s *Store) attach(ctx context.Context, orderID uint, in LineItemInput) (models.OrderLineItem, error) {
	var subtotal decimal.Decimal
	if in.SubTotal != nil {
		subtotal = *in.SubTotal
	} else {
		product, found, err := s.ProductByID(ctx, in.ProductID)
		if err != nil {
			return models.OrderLineItem{}, err
		}
		if !found {
			return models.OrderLineItem{}, validationErrorf("product %d does not exist", in.ProductID)
		}
		subtotal = product.ProductPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	}

	return s.InsertLineItem(ctx, models.OrderLineItem{
		OrderID:   orderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Subtotal:  subtotal,
	})
}

func validateLineItem(in LineItemInput) error {
	if in.ProductID == 0 {
		return validationErrorf("product_id is required")
	}
	if in.Quantity <= 0 {
		return validationErrorf("quantity must be a positive integer")
	}
	if in.SubTotal != nil {
		return validateAmount("sub_total", *in.SubTotal)
	}
	return nil
}

func sumSubtotals(items []models.OrderLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}
