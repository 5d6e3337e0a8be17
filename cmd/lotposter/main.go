package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dealerbridge/lotposter/internal/admission"
	"github.com/dealerbridge/lotposter/internal/api"
	"github.com/dealerbridge/lotposter/internal/browser"
	"github.com/dealerbridge/lotposter/internal/config"
	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/images"
	"github.com/dealerbridge/lotposter/internal/listing"
	"github.com/dealerbridge/lotposter/internal/prompt"
	"github.com/dealerbridge/lotposter/internal/wait"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()
	logger := log.Default()

	var runs listing.Service = listing.NewInMemoryService()
	if cfg.PostgresDSN != "" {
		pg, err := listing.NewPostgresService(context.Background(), cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres run store: %v", err)
		}
		defer pg.Close()
		runs = pg
		logger.Printf("run records persisted to postgres")
	}

	var guard admission.Guard = admission.NewInMemoryGuard()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		guard = admission.NewRedisGuard(client, "", 0)
		logger.Printf("capture slot guarded via redis at %s", cfg.RedisAddr)
	}

	manager := browser.NewManager(browser.Config{
		Executable: cfg.ChromeExecutable,
		ProfileDir: cfg.ProfileDir,
		UserAgent:  cfg.UserAgent,
		DebugPort:  cfg.ChromeDebugPort,
		BaseURL:    cfg.CDPBaseURL,
		ShotsDir:   cfg.DebugShotsDir,
	}, logger)

	prompter := prompt.New(os.Stdin, os.Stdout, cfg.WaitForEnter)
	poster := listing.NewBrowserPoster(
		manager,
		browser.AuthConfig{
			Email:        cfg.MarketplaceEmail,
			Password:     cfg.MarketplacePassword,
			MaxWait:      cfg.LoginMaxWait,
			PollInterval: cfg.LoginPollInterval,
		},
		listing.Config{
			LandingWait:      wait.Config{Timeout: cfg.MarketplaceMaxWait},
			ForceVehicleType: cfg.ForceVehicleType,
		},
		form.Config{},
		prompter,
		logger,
	)

	downloader := images.NewDownloader(cfg.ImagesDir, nil, logger)
	server := api.NewServer(guard, runs, downloader, poster, prompter, cfg.DataDir, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	logger.Printf("lotposter bridge listening on http://%s", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("bridge failed: %v", err)
	}
}
