package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/batiflow/batiflow-api/internal/config"     // Internal config loader
	"github.com/batiflow/batiflow-api/internal/database"   // MySQL pool setup
	"github.com/batiflow/batiflow-api/internal/repository" // Persistence layer
	"github.com/batiflow/batiflow-api/internal/router"     // Internal router setup
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins in production
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err) // No point serving without storage
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient() // nil when Redis is not configured; limiter falls back to memory

	repos := router.Repos{
		Utilisateurs:  repository.NewUtilisateurRepo(db),
		Projets:       repository.NewProjetRepo(db),
		Produits:      repository.NewProduitRepo(db),
		Fournisseurs:  repository.NewFournisseurRepo(db),
		Medias:        repository.NewMediaRepo(db),
		Devis:         repository.NewDevisRepo(db),
		Commandes:     repository.NewCommandeRepo(db),
		DevisProduits: repository.NewDevisProduitRepo(db),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, repos, rdb) // Register application routes

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
