package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoffeeShop/models"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultConfigPath = "config/config.yaml"

const envPrefix = "COFFEESHOP"

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	//僅sqlite使用，檔案路徑或DSN
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type JWTConfig struct {
	PrivateKey string        `mapstructure:"private-key"`
	PublicKey  string        `mapstructure:"public-key"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type AuthConfig struct {
	//token或oidc
	Gate     string `mapstructure:"gate"`
	Issuer   string `mapstructure:"issuer"`
	ClientID string `mapstructure:"client-id"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type OrdersConfig struct {
	DefaultStoreID uint `mapstructure:"default-store-id"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SeedConfig struct {
	File string `mapstructure:"file"`
	//首位店長帳號，密碼只從環境變數讀取
	ManagerEmail    string `mapstructure:"manager-email"`
	ManagerPassword string `mapstructure:"manager-password"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Seed     SeedConfig     `mapstructure:"seed"`
	LogLevel string         `mapstructure:"log-level"`
}

var requiredFields = []string{
	"database.driver",
}

// field: default value
var optionalFields = map[string]interface{}{
	"server.address":          ":5000",
	"auth.gate":               "token",
	"jwt.private-key":         "jwt/private_key.pem",
	"jwt.public-key":          "jwt/public_key.pem",
	"jwt.ttl":                 "24h",
	"amqp.exchange":           "orders",
	"orders.default-store-id": 1,
	"cache.ttl":               "5m",
	"seed.manager-email":      "",
	"seed.manager-password":   "",
	"log-level":               "INFO",
}

// 讀取設定檔，COFFEESHOP_開頭的環境變數優先
func InitConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for field, defaultValue := range optionalFields {
		v.SetDefault(field, defaultValue)
	}
	for _, field := range requiredFields {
		_ = v.BindEnv(field)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	for _, field := range requiredFields {
		if !v.IsSet(field) {
			return nil, fmt.Errorf("missing required config field: %s", field)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	return &config, nil
}

// 依設定選擇gorm driver
func (d DatabaseConfig) Dialector() (gorm.Dialector, error) {
	switch strings.ToLower(d.Driver) {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			d.Host,
			d.Username,
			d.Password,
			d.Database,
			d.Port,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		if d.Path == "" {
			return nil, fmt.Errorf("sqlite driver needs database.path")
		}
		return sqlite.Open(d.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

// 連接資料庫並執行migration，由呼叫端負責關閉
func SetupDatabaseConnection(cfg DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(cfg.Driver, "sqlite") {
		//sqlite同時只允許一個寫入者
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.Store{},
		&models.Category{},
		&models.Product{},
		&models.User{},
		&models.LoginToken{},
		&models.Order{},
		&models.OrderLineItem{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// 連接Redis，未設定位址時回傳nil
func SetupRedisConnection(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	return redisClient, nil
}
