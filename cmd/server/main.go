package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/config"
	"github.com/iliyamo/bucket-api/internal/database"
	"github.com/iliyamo/bucket-api/internal/handler"
	"github.com/iliyamo/bucket-api/internal/queue"
	"github.com/iliyamo/bucket-api/internal/repository"
	"github.com/iliyamo/bucket-api/internal/router"
	"github.com/iliyamo/bucket-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, blacklist checks will hit the database only")
	}

	users := repository.NewUserRepo(db)
	blacklist := repository.NewBlacklistRepo(db, rdb)
	buckets := repository.NewBucketRepo(db)
	items := repository.NewItemRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, blacklist)
	bucketHandler := handler.NewBucketHandler(cfg, buckets)
	itemHandler := handler.NewItemHandler(cfg, buckets, items)

	// Events flow only when a broker is configured.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		authHandler.Publish = service.PublishUserActivity
		bucketHandler.Publish = service.PublishUserActivity
		go func() {
			if err := queue.StartActivityConsumer(); err != nil {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e, authHandler)
	router.RegisterProtected(e, cfg.JWTSecret, users, blacklist,
		authHandler, bucketHandler, itemHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
