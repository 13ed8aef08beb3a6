package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"CoffeeShop/models"
	"github.com/op/go-logging"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var log = logging.MustGetLogger("log")

type StoreFixture struct {
	ID   uint   `yaml:"id"`
	Name string `yaml:"name"`
}

type CategoryFixture struct {
	ID   uint   `yaml:"id"`
	Name string `yaml:"name"`
}

type ProductFixture struct {
	ID         uint   `yaml:"id"`
	Name       string `yaml:"name"`
	Price      string `yaml:"price"`
	CategoryID uint   `yaml:"category_id"`
	Image      string `yaml:"image"`
	Type       string `yaml:"type"`
}

type UserFixture struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
}

// 新帳本所需的基礎資料
type Fixture struct {
	Stores     []StoreFixture    `yaml:"stores"`
	Categories []CategoryFixture `yaml:"categories"`
	Products   []ProductFixture  `yaml:"products"`
	Users      []UserFixture     `yaml:"users"`
}

func Load(filename string) (Fixture, error) {
	var fixture Fixture
	file, err := os.Open(filename)
	if err != nil {
		return fixture, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		return fixture, fmt.Errorf("decode %s: %w", filename, err)
	}
	return fixture, nil
}

// 依id寫入門市、分類與商品，已存在的帳號不覆寫密碼
func Apply(ctx context.Context, db *gorm.DB, fixture Fixture) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range fixture.Stores {
			if s.ID == 0 {
				return fmt.Errorf("seed store %q: id is required", s.Name)
			}
			var store models.Store
			err := tx.
				Where(models.Store{StoreID: s.ID}).
				Assign(models.Store{StoreName: s.Name}).
				FirstOrCreate(&store).
				Error
			if err != nil {
				return fmt.Errorf("seed store %d: %w", s.ID, err)
			}
		}

		for _, c := range fixture.Categories {
			if c.ID == 0 {
				return fmt.Errorf("seed category %q: id is required", c.Name)
			}
			var category models.Category
			err := tx.
				Where(models.Category{CategoryID: c.ID}).
				Assign(models.Category{CategoryName: c.Name}).
				FirstOrCreate(&category).
				Error
			if err != nil {
				return fmt.Errorf("seed category %d: %w", c.ID, err)
			}
		}

		for _, p := range fixture.Products {
			if p.ID == 0 {
				return fmt.Errorf("seed product %q: id is required", p.Name)
			}
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return fmt.Errorf("seed product %d: invalid price %q: %w", p.ID, p.Price, err)
			}
			var product models.Product
			err = tx.
				Where(models.Product{ProductID: p.ID}).
				Assign(models.Product{
					ProductName:  p.Name,
					ProductPrice: price,
					CategoryID:   p.CategoryID,
					ProductImage: p.Image,
					ProductType:  p.Type,
				}).
				FirstOrCreate(&product).
				Error
			if err != nil {
				return fmt.Errorf("seed product %d: %w", p.ID, err)
			}
		}

		for _, u := range fixture.Users {
			if err := seedUser(tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

// ManagerFixture 由部署環境提供首位店長帳號，密碼不寫入任何檔案
func ManagerFixture(email, password string, validPassword func(string) bool) (UserFixture, error) {
	if email == "" {
		return UserFixture{}, errors.New("seed manager: email is required")
	}
	if password == "" {
		return UserFixture{}, fmt.Errorf("seed manager %s: password is required", email)
	}
	if validPassword != nil && !validPassword(password) {
		return UserFixture{}, fmt.Errorf("seed manager %s: password does not meet the password policy", email)
	}
	return UserFixture{
		FirstName: "Store",
		LastName:  "Manager",
		Email:     email,
		Password:  password,
		Role:      string(models.RoleManager),
	}, nil
}

func seedUser(tx *gorm.DB, u UserFixture) error {
	role, err := models.ParseRole(u.Role)
	if err != nil {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	if u.Email == "" || u.Password == "" {
		return fmt.Errorf("seed user %q: email and password are required", u.Email)
	}

	var existing models.User
	err = tx.Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	user := models.User{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  string(hashedPassword),
		Role:      role,
	}
	if err := tx.Create(&user).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	log.Infof("seeded %s account %s", role, u.Email)
	return nil
}
