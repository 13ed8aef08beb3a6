package handlers

import (
	"errors"
	"net/http"
	"strings"

	"CoffeeShop/middleware"
	"CoffeeShop/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 新增員工帳號 (manager only)
func AddUserHandler(c *gin.Context, db *gorm.DB) {
	var userReq struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		Role      string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&userReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "All fields are required",
			"error":   err.Error(),
		})
		return
	}

	role, err := models.ParseRole(userReq.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid role",
			"error":   err.Error(),
		})
		return
	}

	email := strings.TrimSpace(userReq.Email)
	if !ValidateEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid email",
		})
		return
	}
	if !ValidatePassword(userReq.Password) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid password",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userReq.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("hash password failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	user := models.User{
		FirstName: strings.TrimSpace(userReq.FirstName),
		LastName:  strings.TrimSpace(userReq.LastName),
		Email:     email,
		Password:  string(hashedPassword),
		Role:      role,
	}
	//信箱唯一性由unique index保證
	if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "email already in use",
			})
			return
		}
		log.Errorf("create user %s failed: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// 查詢店長列表
func GetManagersHandler(c *gin.Context, db *gorm.DB) {
	var managers []models.User
	err := db.WithContext(c.Request.Context()).
		Where("role = ?", models.RoleManager).
		Order("user_id ASC").
		Find(&managers).
		Error
	if err != nil {
		log.Errorf("list managers failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error fetching managers",
		})
		return
	}

	c.JSON(http.StatusOK, managers)
}

// 變更員工資料，變更密碼時撤銷其所有LoginToken
func UpdateManagerHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var userReq struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Password  *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&userReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid request body",
			"error":   err.Error(),
		})
		return
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{"first_name": userReq.FirstName, "last_name": userReq.LastName} {
		if value == nil {
			continue
		}
		if strings.TrimSpace(*value) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": column + " must not be empty",
			})
			return
		}
		updates[column] = strings.TrimSpace(*value)
	}
	if userReq.Email != nil {
		email := strings.TrimSpace(*userReq.Email)
		if !ValidateEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "invalid email",
			})
			return
		}
		updates["email"] = email
	}
	if userReq.Password != nil {
		if !ValidatePassword(*userReq.Password) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "invalid password",
			})
			return
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*userReq.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Errorf("hash password failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Internal server error",
			})
			return
		}
		updates["password"] = string(hashedPassword)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "nothing to update",
		})
		return
	}

	var user models.User
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		if _, changed := updates["password"]; changed {
			if err := tx.Where("user_id = ?", userID).Delete(&models.LoginToken{}).Error; err != nil {
				return err
			}
		}
		return tx.First(&user, userID).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Manager not found",
		})
		return
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "email already in use",
		})
		return
	case err != nil:
		log.Errorf("update user %d failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error updating manager",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Manager updated successfully",
		"manager": user,
	})
}

// 刪除員工帳號，連同其LoginToken
func DeleteManagerHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	subject, _ := middleware.GetSubject(c)
	if subject.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "cannot delete your own account",
		})
		return
	}

	var user models.User
	err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.LoginToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Manager not found",
		})
		return
	}
	if err != nil {
		log.Errorf("delete user %d failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error deleting manager",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Manager deleted successfully",
		"manager": user,
	})
}
