package main

import (
	"os"
	"time"

	"order-engine/config"
	"order-engine/internal/cache"
	"order-engine/internal/catalog"
	"order-engine/internal/producer"
	"order-engine/internal/repository"
	"order-engine/internal/service"
	"order-engine/internal/transport/http/router"
	"order-engine/pkg/database"
	"order-engine/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @Title Order Engine API
// @Version 1.0
// @Description API корзины, заказов, самовывоза и бонусов
// @BasePath /
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	catalogClient := catalog.NewClient(cfg.Catalog.URL)

	var orderCache service.OrderCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewOrderCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log,
		)
		if err != nil {
			log.Fatal("failed to create redis cache", zap.Error(err))
		}
		defer redisCache.Close()
		orderCache = redisCache
		log.Info("Redis cache enabled")
	} else {
		log.Info("Redis cache disabled")
	}

	var events service.EventBus
	if cfg.Kafka.Enabled {
		kafkaProducer := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		events = kafkaProducer
		log.Info("Kafka producer enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("Kafka producer disabled")
	}

	tiers := service.DefaultTiers()
	if cfg.Loyalty.TiersFile != "" {
		loaded, err := service.LoadTiers(cfg.Loyalty.TiersFile)
		if err != nil {
			log.Fatal("failed to load loyalty tiers", zap.String("path", cfg.Loyalty.TiersFile), zap.Error(err))
		}
		tiers = loaded
	}
	loyalty := service.NewLoyaltyEngine(tiers)

	orders := service.NewOrderService(repos, catalogClient, loyalty, events, orderCache, log)

	r := router.Router(orders, cfg.AdminKey, log)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to run http server", zap.Error(err))
	}
}
