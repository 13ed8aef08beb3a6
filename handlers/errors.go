package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"CoffeeShop/ledger"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("log")

// 依錯誤種類回應，資料庫錯誤只記錄不回傳細節
func respondError(c *gin.Context, message string, err error) {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"message": message,
			"error":   errorText(err),
		})
	case ledger.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"message": message,
			"error":   errorText(err),
		})
	default:
		log.Errorf("%s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": message,
		})
	}
}

func errorText(err error) string {
	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Msg
	}
	return err.Error()
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
