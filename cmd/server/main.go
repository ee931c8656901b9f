package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/config"
	"github.com/Hayor63/ApplyLy/internal/database"
	"github.com/Hayor63/ApplyLy/internal/email"
	"github.com/Hayor63/ApplyLy/internal/jobs"
	"github.com/Hayor63/ApplyLy/internal/logging"
	"github.com/Hayor63/ApplyLy/internal/redisx"
	"github.com/Hayor63/ApplyLy/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		fw, err := logging.NewRotatingFileWriter(cfg.LogFile, 50<<20, 5)
		if err != nil {
			log.Fatalf("log setup error: %v", err)
		}
		defer fw.Close()
		logOutput = io.MultiWriter(os.Stdout, fw)
	}
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	redisClient, err := redisx.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}
	defer redisClient.Close()

	users := auth.NewUserRepository(db)
	tokenStore := auth.NewEphemeralTokenStore(db)
	rateLimiter := &auth.RateLimiter{Redis: redisClient}
	mailer := email.NewSender(cfg.Email)
	issuer := auth.NewTokenIssuer(cfg.Tokens)
	hasher := auth.NewArgon2idHasher()

	flow := auth.NewFlow(users, tokenStore, issuer, hasher, mailer, cfg.BaseURL, cfg.Tokens.ResetTTL)

	employers := jobs.NewEmployerRepository(db)
	seekers := jobs.NewJobSeekerRepository(db)
	listings := jobs.NewListingRepository(db)
	applications := jobs.NewApplicationRepository(db)
	bookmarks := jobs.NewBookmarkRepository(db)

	api := server.NewServer(cfg, flow, issuer, rateLimiter, employers, seekers, listings, applications, bookmarks)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	log.Printf("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
