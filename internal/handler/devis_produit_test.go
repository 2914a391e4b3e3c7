package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/repository"
)

type dpKey struct{ devis, produit int64 }

// memDevisProduitStore mirrors the repository's existence checks and
// the post-commit refetch contract via the incomplete flag.
type memDevisProduitStore struct {
	devis      map[int64]bool
	produits   map[int64]bool
	assocs     map[dpKey]int64
	incomplete bool // force the refetch-failed path
}

func newMemDevisProduitStore() *memDevisProduitStore {
	return &memDevisProduitStore{
		devis:    map[int64]bool{1: true},
		produits: map[int64]bool{10: true},
		assocs:   map[dpKey]int64{},
	}
}

func (s *memDevisProduitStore) record(k dpKey, q int64) model.DevisProduit {
	return model.DevisProduit{IDDevis: k.devis, IDProduit: k.produit, Quantite: q}
}

func (s *memDevisProduitStore) FindAll(_ context.Context) ([]model.DevisProduit, error) {
	out := make([]model.DevisProduit, 0, len(s.assocs))
	for k, q := range s.assocs {
		out = append(out, s.record(k, q))
	}
	return out, nil
}

func (s *memDevisProduitStore) FindByIDs(_ context.Context, idDevis, idProduit int64) (model.DevisProduit, error) {
	k := dpKey{idDevis, idProduit}
	q, ok := s.assocs[k]
	if !ok {
		return model.DevisProduit{}, repository.NotFound("DevisProduits")
	}
	return s.record(k, q), nil
}

func (s *memDevisProduitStore) Create(_ context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error) {
	if !s.devis[idDevis] {
		return model.DevisProduit{}, false, repository.NotFound("Devis")
	}
	if !s.produits[idProduit] {
		return model.DevisProduit{}, false, repository.NotFound("Produit")
	}
	k := dpKey{idDevis, idProduit}
	if _, ok := s.assocs[k]; ok {
		return model.DevisProduit{}, false, &repository.ConflictError{Message: "This association already exists"}
	}
	s.assocs[k] = quantite
	return s.record(k, quantite), !s.incomplete, nil
}

func (s *memDevisProduitStore) UpdateQuantite(_ context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error) {
	k := dpKey{idDevis, idProduit}
	if _, ok := s.assocs[k]; !ok {
		return model.DevisProduit{}, false, repository.NotFound("DevisProduits")
	}
	s.assocs[k] = quantite
	return s.record(k, quantite), !s.incomplete, nil
}

func (s *memDevisProduitStore) Delete(_ context.Context, idDevis, idProduit int64) error {
	k := dpKey{idDevis, idProduit}
	if _, ok := s.assocs[k]; !ok {
		return repository.NotFound("DevisProduits")
	}
	delete(s.assocs, k)
	return nil
}

func (s *memDevisProduitStore) ListByDevis(_ context.Context, idDevis int64) ([]model.DevisProduit, error) {
	var out []model.DevisProduit
	for k, q := range s.assocs {
		if k.devis == idDevis {
			out = append(out, s.record(k, q))
		}
	}
	return out, nil
}

func (s *memDevisProduitStore) ListByProduit(_ context.Context, idProduit int64) ([]model.DevisProduit, error) {
	var out []model.DevisProduit
	for k, q := range s.assocs {
		if k.produit == idProduit {
			out = append(out, s.record(k, q))
		}
	}
	return out, nil
}

type dpFixture struct {
	store *memDevisProduitStore
	h     *DevisProduitHandler
	e     *echo.Echo
}

func newDPFixture() *dpFixture {
	store := newMemDevisProduitStore()
	return &dpFixture{store: store, h: NewDevisProduitHandler(store), e: echo.New()}
}

func (f *dpFixture) create(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/devis-produits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, f.h.Create(f.e.NewContext(req, rec)))
	return rec
}

func (f *dpFixture) withPair(t *testing.T, handler echo.HandlerFunc, method, body, idDevis, idProduit string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/devis-produits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id_devis", "id_produit")
	c.SetParamValues(idDevis, idProduit)
	require.NoError(t, handler(c))
	return rec
}

func TestDevisProduitCreate(t *testing.T) {
	f := newDPFixture()

	rec := f.create(t, `{"id_devis":1,"id_produit":10,"quantite":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	env := envelope(t, rec)
	assert.Equal(t, "DevisProduits created", env["message"])
	assert.Equal(t, int64(3), f.store.assocs[dpKey{1, 10}])
}

func TestDevisProduitCreateIncompleteRefetch(t *testing.T) {
	f := newDPFixture()
	f.store.incomplete = true

	rec := f.create(t, `{"id_devis":1,"id_produit":10,"quantite":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, "the write is durable even when the read-back fails")
	env := envelope(t, rec)
	assert.Equal(t, "success", env["status"])
	assert.Equal(t, "DevisProduits created, but unable to fetch complete data", env["message"])
}

func TestDevisProduitCreateRejections(t *testing.T) {
	f := newDPFixture()
	f.create(t, `{"id_devis":1,"id_produit":10,"quantite":3}`)

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"unknown devis", `{"id_devis":99,"id_produit":10,"quantite":1}`, http.StatusNotFound, "Devis not found"},
		{"unknown produit", `{"id_devis":1,"id_produit":99,"quantite":1}`, http.StatusNotFound, "Produit not found"},
		{"duplicate pair", `{"id_devis":1,"id_produit":10,"quantite":1}`, http.StatusBadRequest, "This association already exists"},
		{"zero quantite", `{"id_devis":1,"id_produit":10,"quantite":0}`, http.StatusBadRequest, "Validation error"},
		{"missing fields", `{}`, http.StatusBadRequest, "Validation error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.create(t, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			env := envelope(t, rec)
			assert.Equal(t, "fail", env["status"])
			assert.Equal(t, tt.message, env["message"])
		})
	}
}

func TestDevisProduitGetUpdateDelete(t *testing.T) {
	f := newDPFixture()
	f.create(t, `{"id_devis":1,"id_produit":10,"quantite":3}`)

	rec := f.withPair(t, f.h.GetByIDs, http.MethodGet, "", "1", "10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DevisProduits retrieved", envelope(t, rec)["message"])

	rec = f.withPair(t, f.h.Update, http.MethodPut, `{"quantite":8}`, "1", "10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DevisProduits updated", envelope(t, rec)["message"])
	assert.Equal(t, int64(8), f.store.assocs[dpKey{1, 10}])

	rec = f.withPair(t, f.h.Delete, http.MethodDelete, "", "1", "10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.store.assocs)

	rec = f.withPair(t, f.h.GetByIDs, http.MethodGet, "", "1", "10")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DevisProduits not found", envelope(t, rec)["message"])
}

func TestDevisProduitPairParamValidation(t *testing.T) {
	f := newDPFixture()

	rec := f.withPair(t, f.h.GetByIDs, http.MethodGet, "", "abc", "xyz")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "Validation error", env["message"])
	assert.Len(t, env["errors"].([]any), 2, "both malformed ids reported")
}

func TestDevisProduitListings(t *testing.T) {
	f := newDPFixture()
	f.store.devis[2] = true
	f.store.produits[20] = true
	f.create(t, `{"id_devis":1,"id_produit":10,"quantite":3}`)
	f.create(t, `{"id_devis":1,"id_produit":20,"quantite":1}`)
	f.create(t, `{"id_devis":2,"id_produit":10,"quantite":5}`)

	req := httptest.NewRequest(http.MethodGet, "/devis-produits/devis/1/produits", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id_devis")
	c.SetParamValues("1")
	require.NoError(t, f.h.ListByDevis(c))
	env := envelope(t, rec)
	assert.Equal(t, "Products retrieved", env["message"])
	assert.Len(t, env["data"].([]any), 2)

	req = httptest.NewRequest(http.MethodGet, "/devis-produits/produit/10/devis", nil)
	rec = httptest.NewRecorder()
	c = f.e.NewContext(req, rec)
	c.SetParamNames("id_produit")
	c.SetParamValues("10")
	require.NoError(t, f.h.ListByProduit(c))
	env = envelope(t, rec)
	assert.Equal(t, "Devis retrieved", env["message"])
	assert.Len(t, env["data"].([]any), 2)
}
