package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/validation"
)

// DevisProduitStore is the persistence capability of the join
// resource. The bool returned by Create and UpdateQuantite reports
// whether the post-commit read with related data succeeded; a false
// value still means the write is durable.
type DevisProduitStore interface {
	FindAll(ctx context.Context) ([]model.DevisProduit, error)
	FindByIDs(ctx context.Context, idDevis, idProduit int64) (model.DevisProduit, error)
	Create(ctx context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error)
	UpdateQuantite(ctx context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error)
	Delete(ctx context.Context, idDevis, idProduit int64) error
	ListByDevis(ctx context.Context, idDevis int64) ([]model.DevisProduit, error)
	ListByProduit(ctx context.Context, idProduit int64) ([]model.DevisProduit, error)
}

// DevisProduitHandler serves the devis↔produit association resource.
// It does not fit the generic Resource because its identifier is the
// composite (id_devis, id_produit) pair.
type DevisProduitHandler struct {
	Store DevisProduitStore
}

// NewDevisProduitHandler returns a DevisProduitHandler.
func NewDevisProduitHandler(store DevisProduitStore) *DevisProduitHandler {
	return &DevisProduitHandler{Store: store}
}

var devisProduitCreateRules = []validation.Rule{
	{Field: "id_devis", Label: "ID devis", Kind: validation.Int, Required: true},
	{Field: "id_produit", Label: "ID produit", Kind: validation.Int, Required: true},
	{Field: "quantite", Label: "Quantite", Kind: validation.Int, Required: true, Min: validation.MinInt(1)},
}

var devisProduitUpdateRules = []validation.Rule{
	{Field: "quantite", Label: "Quantite", Kind: validation.Int, Required: true, Min: validation.MinInt(1)},
}

// List handles GET /devis-produits.
func (h *DevisProduitHandler) List(c echo.Context) error {
	assocs, err := h.Store.FindAll(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return success(c, http.StatusOK, "DevisProduits retrieved", assocs)
}

// GetByIDs handles GET /devis-produits/:id_devis/:id_produit.
func (h *DevisProduitHandler) GetByIDs(c echo.Context) error {
	idDevis, idProduit, errs := pairParams(c)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	dp, err := h.Store.FindByIDs(c.Request().Context(), idDevis, idProduit)
	if err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, "DevisProduits retrieved", dp)
}

// Create handles POST /devis-produits. The referenced devis and
// produit must exist and the pair must not already be associated.
func (h *DevisProduitHandler) Create(c echo.Context) error {
	body, errs := readBody(c)
	if errs != nil {
		return failValidation(c, errs)
	}
	normalized, errs := validation.Validate(body, devisProduitCreateRules, false)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	idDevis := normalized["id_devis"].(int64)
	idProduit := normalized["id_produit"].(int64)
	quantite := normalized["quantite"].(int64)

	dp, complete, err := h.Store.Create(c.Request().Context(), idDevis, idProduit, quantite)
	if err != nil {
		return storageError(c, err)
	}
	if !complete {
		return success(c, http.StatusCreated, "DevisProduits created, but unable to fetch complete data", dp)
	}
	return success(c, http.StatusCreated, "DevisProduits created", dp)
}

// Update handles PUT /devis-produits/:id_devis/:id_produit and changes
// the association's quantity.
func (h *DevisProduitHandler) Update(c echo.Context) error {
	idDevis, idProduit, errs := pairParams(c)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	body, berrs := readBody(c)
	if berrs != nil {
		return failValidation(c, berrs)
	}
	normalized, errs := validation.Validate(body, devisProduitUpdateRules, false)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	quantite := normalized["quantite"].(int64)

	dp, complete, err := h.Store.UpdateQuantite(c.Request().Context(), idDevis, idProduit, quantite)
	if err != nil {
		return storageError(c, err)
	}
	if !complete {
		return success(c, http.StatusOK, "DevisProduits updated, but unable to fetch complete data", dp)
	}
	return success(c, http.StatusOK, "DevisProduits updated", dp)
}

// Delete handles DELETE /devis-produits/:id_devis/:id_produit.
func (h *DevisProduitHandler) Delete(c echo.Context) error {
	idDevis, idProduit, errs := pairParams(c)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	if err := h.Store.Delete(c.Request().Context(), idDevis, idProduit); err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, "DevisProduits deleted", nil)
}

// ListByDevis handles GET /devis-produits/devis/:id_devis/produits.
func (h *DevisProduitHandler) ListByDevis(c echo.Context) error {
	idDevis, err := validation.IntID(c.Param("id_devis"))
	if err != nil {
		return idParamError(c, "id_devis")
	}
	assocs, serr := h.Store.ListByDevis(c.Request().Context(), idDevis)
	if serr != nil {
		return storageError(c, serr)
	}
	return success(c, http.StatusOK, "Products retrieved", assocs)
}

// ListByProduit handles GET /devis-produits/produit/:id_produit/devis.
func (h *DevisProduitHandler) ListByProduit(c echo.Context) error {
	idProduit, err := validation.IntID(c.Param("id_produit"))
	if err != nil {
		return idParamError(c, "id_produit")
	}
	assocs, serr := h.Store.ListByProduit(c.Request().Context(), idProduit)
	if serr != nil {
		return storageError(c, serr)
	}
	return success(c, http.StatusOK, "Devis retrieved", assocs)
}

// pairParams validates the composite identifier path parameters,
// collecting both violations when both are malformed.
func pairParams(c echo.Context) (int64, int64, []validation.FieldError) {
	var errs []validation.FieldError
	idDevis, err := validation.IntID(c.Param("id_devis"))
	if err != nil {
		errs = append(errs, validation.FieldError{Field: "id_devis", Message: "ID doit être un entier"})
	}
	idProduit, err := validation.IntID(c.Param("id_produit"))
	if err != nil {
		errs = append(errs, validation.FieldError{Field: "id_produit", Message: "ID doit être un entier"})
	}
	return idDevis, idProduit, errs
}
