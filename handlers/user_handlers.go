package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"CoffeeShop/jwt"
	"CoffeeShop/middleware"
	"CoffeeShop/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// 檢查信箱是否合法
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// 檢查密碼是否合法
func ValidatePassword(password string) bool {
	if len(password) < 8 || len(password) > 50 {
		return false
	}

	var (
		isUpper   = false
		isLower   = false
		isNumber  = false
		isSpecial = false
		isSpace   = false
	)

	for _, s := range password {
		switch {
		case unicode.IsSpace(s):
			isSpace = true
		case unicode.IsUpper(s):
			isUpper = true
		case unicode.IsLower(s):
			isLower = true
		case unicode.IsDigit(s):
			isNumber = true
		case unicode.IsPunct(s) || unicode.IsSymbol(s):
			isSpecial = true
		default:
		}
	}

	return isUpper && isLower && isNumber && isSpecial && !isSpace
}

var (
	comparePassword = bcrypt.CompareHashAndPassword

	dummyHashOnce sync.Once
	dummyHash     []byte
)

// 帳號不存在時也比對一次密碼，避免由回應時間推測帳號是否存在
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("coffeeshop-dummy-password"), bcrypt.DefaultCost)
		if err != nil {
			log.Errorf("generate dummy password hash failed: %v", err)
			return
		}
		dummyHash = hash
	})
	return dummyHash
}

// 員工登入
func LoginHandler(c *gin.Context, db *gorm.DB, tokens *jwt.Manager) {
	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Email and password are required",
			"error":   err.Error(),
		})
		return
	}

	var user models.User
	err := db.WithContext(c.Request.Context()).
		Where("email = ?", strings.TrimSpace(loginReq.Email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = comparePassword(dummyPasswordHash(), []byte(loginReq.Password))
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid credentials",
			})
			return
		}
		log.Errorf("login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	err = comparePassword([]byte(user.Password), []byte(loginReq.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid credentials",
		})
		return
	}

	tokenExpiredTime := time.Now().Add(tokens.TTL())
	token, err := tokens.GenerateToken(user.UserID, user.Role, tokenExpiredTime)
	if err != nil {
		log.Errorf("generate token for user %d failed: %v", user.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	//儲存LoginToken
	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: tokenExpiredTime,
		UserID:         user.UserID,
		Role:           user.Role,
	}
	if err := db.WithContext(c.Request.Context()).Create(&loginToken).Error; err != nil {
		log.Errorf("store login token for user %d failed: %v", user.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// 登出，刪除此LoginToken
func LogOutHandler(c *gin.Context, db *gorm.DB) {
	token, exists := middleware.GetToken(c)
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "no token to revoke",
		})
		return
	}

	result := db.WithContext(c.Request.Context()).
		Where("token = ?", token).
		Delete(&models.LoginToken{})
	if result.Error != nil {
		log.Errorf("revoke token failed: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "token not found or already logged out",
		})
		return
	}

	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}

// 確認登入狀態仍有效
func AuthVerifyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, true)
}
