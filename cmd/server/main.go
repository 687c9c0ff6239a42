package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nkorzh/identity-service/internal/config"
	"github.com/nkorzh/identity-service/internal/database"
	"github.com/nkorzh/identity-service/internal/google"
	"github.com/nkorzh/identity-service/internal/handler"
	"github.com/nkorzh/identity-service/internal/mailer"
	"github.com/nkorzh/identity-service/internal/queue"
	"github.com/nkorzh/identity-service/internal/repository"
	"github.com/nkorzh/identity-service/internal/router"
	"github.com/nkorzh/identity-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	migCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(migCtx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Printf("SMTP_HOST not set; reset emails are logged instead of sent")
	}

	var verifier *google.Verifier
	if cfg.GoogleClientID != "" {
		verifier = google.New(cfg.GoogleClientID)
	} else {
		log.Printf("GOOGLE_CLIENT_ID not set; google sign-in trusts posted identity claims")
	}

	users := repository.NewUserRepo(db)
	auth := service.NewAuthService(users, mail, cfg, queue.Publish)
	authHandler := handler.NewAuthHandler(auth, verifier)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	// Background consumer turning auth events into logs/auth.log.
	go queue.StartAuthEventConsumer()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
