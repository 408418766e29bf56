package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/config"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/db"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/handlers"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/booking"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/jobstatus"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/payment"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/storage"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrations(gdb); err != nil {
		log.Fatal(err)
	}

	st := store.NewGormStore(gdb)
	files := storage.NewLocalFiles(cfg.UploadDir)

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var pub notify.Publisher
	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis not reachable, notifications stay on this instance: %v", err)
		pub = &realtime.HubPublisher{Hub: hub}
	} else {
		log.Println("Redis connected, relaying notifications")
		pub = &realtime.RedisPublisher{RDB: rdb}
		go realtime.Relay(ctx, rdb, hub)
	}

	dispatcher := notify.NewDispatcher(st, pub, cfg.NotifyQueueSize)
	go dispatcher.Run(ctx)

	var gw payment.Gateway
	if cfg.Gateway.Enabled() {
		gw = gateway.New(cfg.Gateway, cfg.AppBaseURL)
		log.Printf("Card checkout enabled (%s)", cfg.Gateway.Env)
	}

	jobs := jobstatus.NewService(st)
	bookingSvc := booking.NewService(st, dispatcher, files)
	paymentSvc := payment.NewService(st, dispatcher, files, wallet.NewWalletService(), jobs, gw)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    6 << 20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Callback-Signature",
		ExposeHeaders:    "Content-Length, Content-Disposition",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Static("/uploads", cfg.UploadDir)

	handlers.RegisterRoutes(app, handlers.Handlers{
		Booking:       handlers.NewBookingHandler(bookingSvc),
		Payment:       handlers.NewPaymentHandler(paymentSvc),
		OverallStatus: handlers.NewOverallStatusHandler(jobs),
		Job:           handlers.NewJobHandler(st, jobs),
		Award:         handlers.NewAwardHandler(st),
		Notification:  handlers.NewNotificationHandler(st, hub, cfg.JWTSecret, cfg.WSTicketTTL),
	}, cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
