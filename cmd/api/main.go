package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/store"
)

func main() {
	// Load configuration (defaults, config.yaml, .env, DCF_* variables)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Database is optional; runs fall back to the file store.
	if cfg.Database.URL != "" {
		if cfg.Database.AutoMigrate {
			if err := store.RunMigrations(cfg.Database.URL); err != nil {
				log.Printf("Warning: Could not run migrations: %v", err)
			} else {
				log.Println("Migrations completed")
			}
		}

		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			log.Println("Continuing without database connection...")
		} else {
			defer store.Close()
			log.Println("Connected to database")
		}
	} else {
		log.Printf("No database configured, storing runs in %s", cfg.Store.Dir)
	}

	repo := store.NewRunStore(store.GetPool(), cfg.Store.Dir)

	// Base assumptions for requests without statements
	defaults := assumption.Defaults()
	if cfg.Valuation.AssumptionsFile != "" {
		defaults, err = assumption.LoadFile(cfg.Valuation.AssumptionsFile)
		if err != nil {
			log.Fatalf("Failed to load assumptions: %v", err)
		}
		log.Printf("Loaded assumptions from %s", cfg.Valuation.AssumptionsFile)
	}
	if cfg.Valuation.ProjectionYears > 0 {
		defaults.ProjectionYears = cfg.Valuation.ProjectionYears
	}
	if err := defaults.Validate(); err != nil {
		log.Fatalf("Invalid default assumptions: %v", err)
	}

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	if cfg.Logging.Requests {
		errorsOnly := cfg.Logging.Level == "warn" || cfg.Logging.Level == "error"
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus:   true,
			LogURI:      true,
			LogMethod:   true,
			LogLatency:  true,
			LogError:    true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				if v.Error == nil && v.Status < 400 {
					if !errorsOnly {
						log.Printf("%d %s %s (%v)", v.Status, v.Method, v.URI, v.Latency)
					}
				} else if v.Error == nil {
					log.Printf("%d %s %s", v.Status, v.Method, v.URI)
				} else {
					log.Printf("%d %s %s - %v", v.Status, v.Method, v.URI, v.Error)
				}
				return nil
			},
		}))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.MaxBody))

	// Routes
	valuation.NewHandler(repo, defaults).Register(e)

	// Start server
	log.Printf("Starting server on %s", cfg.Server.Addr())
	if err := e.Start(cfg.Server.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
