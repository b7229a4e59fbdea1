package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"urbansense/cmd"
	"urbansense/internal/api"
	"urbansense/internal/cache"
	"urbansense/internal/core"
	"urbansense/internal/core/forest"
	"urbansense/internal/database"
	"urbansense/internal/features"
)

type APIConfig struct {
	Port         int    `env:"PORT" envDefault:"8000"`
	ModelPath    string `env:"MODEL_PATH" envDefault:"model.gob"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/urbansense.db"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"static"`
	ProfilePath  string `env:"CITY_PROFILE" envDefault:""`
	Extractor    string `env:"EXTRACTOR" envDefault:"synthetic"`
	OverpassURL  string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	Seed         int64  `env:"SEED" envDefault:"42"`
	CacheSize    int    `env:"CACHE_SIZE" envDefault:"4096"`
	CacheTTLDays int    `env:"CACHE_TTL_DAYS" envDefault:"30"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	profile := cmd.LoadProfile(cfg.ProfilePath)

	pipeline, err := forest.Load(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to load model artifact (run the trainer first?): %v", err)
	}
	slog.Info("model loaded", "path", cfg.ModelPath, "classes", pipeline.Classes, "trees", len(pipeline.Forest.Trees), "accuracy", pipeline.Accuracy)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var extractor features.Extractor
	switch cfg.Extractor {
	case "synthetic":
		extractor = features.NewSyntheticExtractor(profile, cfg.Seed)
	case "overpass":
		extractor = features.NewOverpassExtractor(cfg.OverpassURL, profile, cfg.Seed)
	default:
		log.Fatalf("Invalid extractor type: %s. Must be either 'synthetic' or 'overpass'", cfg.Extractor)
	}

	featureCache := cache.New(db, cfg.CacheSize, time.Duration(cfg.CacheTTLDays)*24*time.Hour)
	predictor := core.NewPredictor(profile, pipeline, extractor, featureCache)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	apiHandler := api.NewBackendService(db, predictor)
	r.Route("/api/v1", func(r chi.Router) {
		apiHandler.AddRoutes(r)
	})

	// The map front end.
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	slog.Info("listening", "addr", server.Addr, "extractor", cfg.Extractor, "profile", profile.Name)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped.")
}
