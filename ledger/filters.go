package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 不限門市
const StoreFilterAll = "All"

type period struct {
	from time.Time
	to   time.Time
}

func calendarYear(year int) period {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return period{from: from, to: from.AddDate(1, 0, 0)}
}

// 年份須為四位數字
func ParseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, validationErrorf("invalid year parameter %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, validationErrorf("invalid year parameter %q", s)
		}
	}
	year, _ := strconv.Atoi(s)
	return year, nil
}

// 不限門市時回傳nil
func ParseStoreFilter(s string) (*uint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == StoreFilterAll {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return nil, validationErrorf("invalid store_id %q", s)
	}
	storeID := uint(id)
	return &storeID, nil
}

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// 未提供日期則使用現在時間
func parseOrderDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC(), nil
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, validationErrorf("invalid order_date %q", s)
}

// 金額欄位皆為decimal(10,2)
var maxAmount = decimal.New(1, 8)

func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return validationErrorf("%s must not be negative", field)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return validationErrorf("%s must have at most 2 decimal places", field)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return validationErrorf("%s must be below %s", field, maxAmount.String())
	}
	return nil
}
