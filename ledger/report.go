package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

const DefaultTopLimit = 5

type TopProduct struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int64  `json:"total_quantity"`
}

type ProductSales struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

type StoreSales struct {
	StoreID       uint            `json:"store_id"`
	StoreName     string          `json:"store_name"`
	OrderCount    int             `json:"order_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

// 銷售報表只依品項小計計算，不使用訂單總額
type Reports struct {
	store *Store
}

func NewReports(store *Store) *Reports {
	return &Reports{store: store}
}

// 依銷售數量排行
func (r *Reports) TopSoldProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	grouped, err := r.store.productTotals(ctx, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(grouped, func(i, j int) bool {
		if grouped[i].TotalQuantity != grouped[j].TotalQuantity {
			return grouped[i].TotalQuantity > grouped[j].TotalQuantity
		}
		return grouped[i].ProductID < grouped[j].ProductID
	})
	if len(grouped) > limit {
		grouped = grouped[:limit]
	}

	top := make([]TopProduct, 0, len(grouped))
	for _, g := range grouped {
		top = append(top, TopProduct{
			ProductID:     g.ProductID,
			ProductName:   g.ProductName,
			TotalQuantity: g.TotalQuantity,
		})
	}
	return top, nil
}

// 依年度銷售額排行
func (r *Reports) TopSoldProductsByYear(ctx context.Context, year string) ([]ProductSales, error) {
	y, err := ParseYear(year)
	if err != nil {
		return nil, err
	}
	p := calendarYear(y)
	grouped, err := r.store.productTotals(ctx, &p)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(grouped, func(i, j int) bool {
		if c := grouped[i].TotalSales.Cmp(grouped[j].TotalSales); c != 0 {
			return c > 0
		}
		return grouped[i].ProductID < grouped[j].ProductID
	})
	return grouped, nil
}

// 年度門市銷售總覽
func (r *Reports) SalesSummary(ctx context.Context, year string, storeFilter string) ([]StoreSales, error) {
	y, err := ParseYear(year)
	if err != nil {
		return nil, err
	}
	storeID, err := ParseStoreFilter(storeFilter)
	if err != nil {
		return nil, err
	}
	p := calendarYear(y)
	summary, err := r.store.storeTotals(ctx, &p, storeID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if c := summary[i].TotalSales.Cmp(summary[j].TotalSales); c != 0 {
			return c > 0
		}
		return summary[i].StoreID < summary[j].StoreID
	})
	return summary, nil
}
