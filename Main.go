package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"CoffeeShop/cache"
	"CoffeeShop/config"
	"CoffeeShop/events"
	"CoffeeShop/handlers"
	"CoffeeShop/jwt"
	"CoffeeShop/ledger"
	"CoffeeShop/middleware"
	"CoffeeShop/routers"
	"CoffeeShop/seed"
	"github.com/joho/godotenv"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("log")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("could not load .env: %v", err)
	}

	cfg, err := config.InitConfig(config.DefaultConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}
	if err := config.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("%s", err)
	}
	log.Debugf("Config: %+v", cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.SetupDatabaseConnection(cfg.Database, config.GormLogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("could not connect to redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Info("redis not configured, report caching disabled")
	}
	reportCache := cache.NewReportCache(rdb, cfg.Cache.TTL)

	if cfg.Seed.File != "" {
		fixture, err := seed.Load(cfg.Seed.File)
		if err != nil {
			log.Fatalf("could not load seed file: %v", err)
		}
		if cfg.Seed.ManagerEmail != "" {
			manager, err := seed.ManagerFixture(cfg.Seed.ManagerEmail, cfg.Seed.ManagerPassword, handlers.ValidatePassword)
			if err != nil {
				log.Fatalf("refusing to seed manager account: %v", err)
			}
			fixture.Users = append(fixture.Users, manager)
		}
		if err := seed.Apply(ctx, db, fixture); err != nil {
			log.Fatalf("could not apply seed data: %v", err)
		}
		if err := reportCache.InvalidateProducts(ctx); err != nil {
			log.Warningf("could not reset cached products: %v", err)
		}
	}

	var (
		gate   middleware.Authorizer
		tokens *jwt.Manager
	)
	switch strings.ToLower(cfg.Auth.Gate) {
	case "oidc":
		gate, err = middleware.NewOIDCGate(ctx, cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err != nil {
			log.Fatalf("could not set up OIDC gate: %v", err)
		}
	default:
		tokens, err = jwt.LoadManager(cfg.JWT.PrivateKey, cfg.JWT.PublicKey, cfg.JWT.TTL)
		if err != nil {
			log.Fatalf("could not load jwt keys: %v", err)
		}
		gate = &middleware.TokenGate{Tokens: tokens, DB: db}
	}

	var publisher ledger.OrderPublisher
	if cfg.AMQP.URL != "" {
		p, err := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("could not connect to amqp: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	store := ledger.NewStore(db)
	router := routers.SetupRouters(routers.Options{
		DB:       db,
		Ledger:   store,
		Composer: ledger.NewComposer(store, cfg.Orders.DefaultStoreID, publisher),
		Reports:  ledger.NewReports(store),
		Cache:    reportCache,
		Gate:     gate,
		Tokens:   tokens,
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()

	log.Infof("Server is starting on %s", cfg.Server.Address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("server stopped: %v", err)
	}
}
