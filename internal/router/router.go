// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/batiflow/batiflow-api/internal/config"
	"github.com/batiflow/batiflow-api/internal/handler"
	"github.com/batiflow/batiflow-api/internal/middleware"
	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/queue"
	"github.com/batiflow/batiflow-api/internal/repository"
	queue_publisher "github.com/batiflow/batiflow-api/internal/service"
	"github.com/batiflow/batiflow-api/internal/validation"
)

// Field rule sets mirror the per-entity write contracts.  Free-text
// fields are escaped before persistence; Required only binds on
// create, updates validate the fields present in the body.

var projetRules = []validation.Rule{
	{Field: "titre", Label: "Titre", Kind: validation.String, Required: true, Escape: true},
	{Field: "description", Label: "Description", Kind: validation.String, Escape: true},
	{Field: "type_projet", Label: "Type de projet", Kind: validation.String, Required: true, Escape: true},
	{Field: "statut", Label: "Statut", Kind: validation.String, Required: true, Escape: true},
	{Field: "id_utilisateur", Label: "ID utilisateur", Kind: validation.Int, Required: true},
}

var produitRules = []validation.Rule{
	{Field: "nom", Label: "Nom", Kind: validation.String, Required: true, Escape: true},
	{Field: "categorie", Label: "Categorie", Kind: validation.String, Required: true, Escape: true},
	{Field: "description", Label: "Description", Kind: validation.String, Escape: true},
	{Field: "prix", Label: "Prix", Kind: validation.Decimal, Required: true},
	{Field: "quantite", Label: "Quantite", Kind: validation.Int, Required: true, Min: validation.MinInt(0)},
	{Field: "unite_mesure", Label: "Unite de mesure", Kind: validation.String, Required: true, Escape: true},
	{Field: "id_fournisseurs", Label: "ID fournisseur", Kind: validation.Int},
}

var fournisseurRules = []validation.Rule{
	{Field: "nom_fournisseur", Label: "Nom du fournisseur", Kind: validation.String, Required: true, Escape: true},
	{Field: "categorie", Label: "Categorie", Kind: validation.String, Required: true, Escape: true},
}

var mediaRules = []validation.Rule{
	{Field: "url", Label: "URL", Kind: validation.String, Required: true},
	{Field: "id_projet", Label: "ID projet", Kind: validation.Int, Required: true},
}

var devisRules = []validation.Rule{
	{Field: "montant_estime", Label: "Montant estimé", Kind: validation.Decimal, Required: true},
	{Field: "montant_final", Label: "Montant final", Kind: validation.Decimal},
	{Field: "statut", Label: "Statut", Kind: validation.String, Required: true, Escape: true},
	{Field: "id_projet", Label: "ID projet", Kind: validation.Int, Required: true},
}

var commandeRules = []validation.Rule{
	{Field: "date_commande", Label: "Date de commande", Kind: validation.Date},
	{Field: "statut", Label: "Statut", Kind: validation.String, Enum: model.CommandeStatuts},
	{Field: "montant_total", Label: "Montant total", Kind: validation.Decimal, Required: true},
}

// checkDevisLignes validates the nested produits collection; the flat
// field rules cannot see inside it.
func checkDevisLignes(in model.DevisInput, _ bool) []validation.FieldError {
	if in.Produits == nil {
		return nil
	}
	var errs []validation.FieldError
	for _, l := range *in.Produits {
		if l.IDProduit < 1 {
			errs = append(errs, validation.FieldError{Field: "produits", Message: "id_produit doit être un entier positif"})
		}
		if l.Quantite < 1 {
			errs = append(errs, validation.FieldError{Field: "produits", Message: "quantite doit être un entier positif"})
		}
	}
	return errs
}

// Register wires every route of the API onto e.
func Register(e *echo.Echo, cfg config.Config, repos Repos, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	auth := handler.NewAuthHandler(cfg, repos.Utilisateurs)

	users := e.Group("/utilisateurs")
	users.POST("/login", auth.Login,
		middleware.RateLimit("login", config.LoadLoginRateLimit(), rdb))
	users.POST("/register", auth.Register,
		middleware.RateLimit("register", config.LoadRegisterRateLimit(), rdb))

	guard := middleware.JWTAuth(cfg.JWTSecret)
	users.GET("/profile", auth.Profile, guard)
	users.PUT("/profile", auth.UpdateProfile, guard)
	users.GET("", auth.List, guard)

	mount(e, "/projets", guard,
		handler.NewResource[model.Projet, model.ProjetInput]("Projet", "Projets", projetRules, repos.Projets))
	mount(e, "/produits", guard,
		handler.NewResource[model.Produit, model.ProduitInput]("Produit", "Produits", produitRules, repos.Produits))
	mount(e, "/fournisseurs", guard,
		handler.NewResource[model.Fournisseur, model.FournisseurInput]("Fournisseur", "Fournisseurs", fournisseurRules, repos.Fournisseurs))
	mount(e, "/medias", guard,
		handler.NewResource[model.Media, model.MediaInput]("Media", "Medias", mediaRules, repos.Medias))

	devis := handler.NewResource[model.Devis, model.DevisInput]("Devis", "Devis", devisRules, repos.Devis)
	devis.CheckInput = checkDevisLignes
	mount(e, "/devis", guard, devis)

	commandes := handler.NewResource[model.Commande, model.CommandeInput]("Commande", "Commandes", commandeRules, repos.Commandes)
	commandes.AfterWrite = func(ctx context.Context, cmd model.Commande) {
		// best effort: a broker outage must not fail the write
		evt := queue.CommandeStatusEvent{
			IDCommande:   cmd.IDCommande,
			Statut:       cmd.Statut,
			MontantTotal: cmd.MontantTotal,
			DateCommande: cmd.DateCommande.Format("2006-01-02"),
			OccurredAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishCommandeStatus(ctx, cfg.AMQPUrl, evt); err != nil {
			log.Printf("commande event publish skipped: %v", err)
		}
	}
	mount(e, "/commandes", guard, commandes)

	dp := handler.NewDevisProduitHandler(repos.DevisProduits)
	dpg := e.Group("/devis-produits", guard)
	dpg.GET("", dp.List)
	dpg.POST("", dp.Create)
	dpg.GET("/devis/:id_devis/produits", dp.ListByDevis)
	dpg.GET("/produit/:id_produit/devis", dp.ListByProduit)
	dpg.GET("/:id_devis/:id_produit", dp.GetByIDs)
	dpg.PUT("/:id_devis/:id_produit", dp.Update)
	dpg.DELETE("/:id_devis/:id_produit", dp.Delete)
}

// Repos bundles the persistence dependencies Register needs.
type Repos struct {
	Utilisateurs  *repository.UtilisateurRepo
	Projets       *repository.ProjetRepo
	Produits      *repository.ProduitRepo
	Fournisseurs  *repository.FournisseurRepo
	Medias        *repository.MediaRepo
	Devis         *repository.DevisRepo
	Commandes     *repository.CommandeRepo
	DevisProduits *repository.DevisProduitRepo
}

// mount registers the five CRUD routes of a resource under prefix.
func mount[T any, I any](e *echo.Echo, prefix string, guard echo.MiddlewareFunc, h *handler.Resource[T, I]) {
	g := e.Group(prefix, guard)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
