package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batiflow/batiflow-api/internal/validation"
)

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 1 << 20

// Store is the persistence capability a resource handler needs. T is
// the entity type returned to clients, I the input type decoded from
// request bodies (pointer fields, so absent and zero are distinct).
type Store[T any, I any] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in I) (T, error)
	Update(ctx context.Context, id int64, in I) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Resource implements the five CRUD operations for one entity over a
// Store. The same handler set serves every plain entity; per-entity
// behavior is confined to the field rules, the display names and the
// store implementation.
type Resource[T any, I any] struct {
	Nom     string // singular display name, e.g. "Produit"
	Pluriel string // plural display name used by List, e.g. "Produits"
	Rules   []validation.Rule
	Store   Store[T, I]

	// CheckInput, when set, adds violations the flat field rules
	// cannot express (e.g. nested line items).
	CheckInput func(in I, partial bool) []validation.FieldError

	// AfterWrite, when set, runs after a successful create or update.
	// It is best-effort: failures inside must not affect the response.
	AfterWrite func(ctx context.Context, item T)
}

// NewResource builds a Resource for one entity.
func NewResource[T any, I any](nom, pluriel string, rules []validation.Rule, store Store[T, I]) *Resource[T, I] {
	return &Resource[T, I]{Nom: nom, Pluriel: pluriel, Rules: rules, Store: store}
}

// List handles GET /<resource>.
func (h *Resource[T, I]) List(c echo.Context) error {
	items, err := h.Store.FindAll(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return success(c, http.StatusOK, h.Pluriel+" retrieved", items)
}

// GetByID handles GET /<resource>/:id.
func (h *Resource[T, I]) GetByID(c echo.Context) error {
	id, err := validation.IntID(c.Param("id"))
	if err != nil {
		return idParamError(c, "id")
	}
	item, err := h.Store.FindByID(c.Request().Context(), id)
	if err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, h.Nom+" retrieved", item)
}

// Create handles POST /<resource>.
func (h *Resource[T, I]) Create(c echo.Context) error {
	in, errs := h.bindInput(c, false)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	item, err := h.Store.Create(c.Request().Context(), in)
	if err != nil {
		return storageError(c, err)
	}
	if h.AfterWrite != nil {
		h.AfterWrite(c.Request().Context(), item)
	}
	return success(c, http.StatusCreated, h.Nom+" created", item)
}

// Update handles PUT /<resource>/:id. Fields absent from the body keep
// their prior values.
func (h *Resource[T, I]) Update(c echo.Context) error {
	id, err := validation.IntID(c.Param("id"))
	if err != nil {
		return idParamError(c, "id")
	}
	in, errs := h.bindInput(c, true)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	item, err := h.Store.Update(c.Request().Context(), id, in)
	if err != nil {
		return storageError(c, err)
	}
	if h.AfterWrite != nil {
		h.AfterWrite(c.Request().Context(), item)
	}
	return success(c, http.StatusOK, h.Nom+" updated", item)
}

// Delete handles DELETE /<resource>/:id.
func (h *Resource[T, I]) Delete(c echo.Context) error {
	id, err := validation.IntID(c.Param("id"))
	if err != nil {
		return idParamError(c, "id")
	}
	if err := h.Store.Delete(c.Request().Context(), id); err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, h.Nom+" deleted", nil)
}

// bindInput decodes the request body, runs the field rules collecting
// every violation, and converts the normalized map into the typed
// input. The map round-trip matters: it is how sanitized strings and
// normalized numbers reach the value that gets persisted.
func (h *Resource[T, I]) bindInput(c echo.Context, partial bool) (I, []validation.FieldError) {
	var in I
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return in, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
	}
	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return in, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
		}
	}
	normalized, errs := validation.Validate(body, h.Rules, partial)
	if len(errs) > 0 {
		return in, errs
	}
	buf, err := json.Marshal(normalized)
	if err != nil {
		return in, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
	}
	if err := json.Unmarshal(buf, &in); err != nil {
		return in, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
	}
	if h.CheckInput != nil {
		if errs := h.CheckInput(in, partial); len(errs) > 0 {
			return in, errs
		}
	}
	return in, nil
}
