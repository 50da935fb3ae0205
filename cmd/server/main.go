package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/database"
	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost, cfg.SeedDemoData); err != nil {
		cancel()
		log.Fatalf("seed: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables rate limiting and the
	// response cache but the API keeps working.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// The consumer reconnects on its own; it shares the pool with the API.
	go queue.StartNotificationConsumer(db)

	// Stale refresh token rows are swept once a day.
	go func() {
		for {
			pctx, pcancel := context.WithTimeout(context.Background(), time.Minute)
			if n, err := tokens.PurgeExpired(pctx, 7); err != nil {
				log.Printf("token purge: %v", err)
			} else if n > 0 {
				log.Printf("token purge: removed %d expired rows", n)
			}
			pcancel()
			time.Sleep(24 * time.Hour)
		}
	}()

	cacheCfg := config.LoadCacheConfig()
	invalidator := &handler.CacheInvalidator{RDB: rdb, Prefix: cacheCfg.Prefix}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	resH := handler.NewReservationHandler(reservations, rooms, invalidator)
	roomH := handler.NewRoomHandler(rooms, reservations, invalidator)
	userH := handler.NewUserHandler(cfg, users, tokens)
	noteH := handler.NewNotificationHandler(notifications)

	e := echo.New()
	e.HideBanner = true
	// The limiter sits ahead of authentication so it also throttles
	// login attempts; bucket keys are therefore client IP plus route.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cacheMW echo.MiddlewareFunc
	if rdb != nil && cacheCfg.Enabled {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, users)
	router.RegisterMember(e, resH, roomH, noteH, cfg.JWTSecret, users, cacheMW)
	router.RegisterAdmin(e, resH, roomH, userH, cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
