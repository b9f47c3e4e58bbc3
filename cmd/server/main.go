package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/audit"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/catalog"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/config"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/db"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/migrations"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/seed"
)

type server struct {
	store   *catalog.Store
	audit   *audit.Log
	targets []float64
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
		stats, err := seed.Run(database)
		if err != nil {
			log.Fatalf("failed to run startup seed: %v", err)
		}
		if stats.Inserts > 0 {
			log.Printf("seeded %d sample catalog records", stats.Inserts)
		}
	}

	srv := &server{
		store:   catalog.NewStore(database),
		audit:   audit.NewLog(database),
		targets: cfg.CMVTargets,
	}

	r := chi.NewRouter()
	srv.routes(r)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	r.Get("/ingredients", s.handleIngredientsList)
	r.Post("/ingredients", s.handleIngredientsCreate)
	r.Get("/ingredients/{id}", s.handleIngredientGet)
	r.Put("/ingredients/{id}", s.handleIngredientUpdate)
	r.Get("/ingredients/{id}/comparison", s.handleIngredientComparison)

	r.Get("/suppliers", s.handleSuppliersList)

	r.Get("/recipes", s.handleRecipesList)
	r.Post("/recipes", s.handleRecipesCreate)
	r.Get("/recipes/{id}", s.handleRecipeGet)
	r.Put("/recipes/{id}", s.handleRecipeUpdate)
	r.Get("/recipes/{id}/cost", s.handleRecipeCost)
	r.Post("/recipes/{id}/as-ingredient", s.handleRecipeAsIngredient)

	r.Get("/price-changes", s.handlePriceChanges)
}
