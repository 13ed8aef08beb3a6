package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	UserID      uint         `gorm:"primaryKey" json:"user_id"`
	FirstName   string       `gorm:"not null" json:"first_name"`
	LastName    string       `gorm:"not null" json:"last_name"`
	Email       string       `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password    string       `gorm:"not null" json:"-"`
	Role        Role         `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
	LoginTokens []LoginToken `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

type Capability string

const (
	CapRecordSales Capability = "record-sales"
	CapViewLedger  Capability = "view-ledger"
	CapViewReports Capability = "view-reports"
	CapManageStaff Capability = "manage-staff"
)

var roleCapabilities = map[Role][]Capability{
	RoleStaff:   {CapRecordSales, CapViewLedger},
	RoleManager: {CapRecordSales, CapViewLedger, CapViewReports, CapManageStaff},
}

// 角色不分大小寫
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[role]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func (r Role) Can(capability Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}
