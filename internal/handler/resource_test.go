package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/repository"
	"github.com/batiflow/batiflow-api/internal/validation"
)

// memProduitStore keeps produits in a map, mirroring the repository's
// not-found and partial-update semantics.
type memProduitStore struct {
	seq   int64
	items map[int64]model.Produit
}

func newMemProduitStore() *memProduitStore {
	return &memProduitStore{items: map[int64]model.Produit{}}
}

func (s *memProduitStore) FindAll(_ context.Context) ([]model.Produit, error) {
	out := make([]model.Produit, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	return out, nil
}

func (s *memProduitStore) FindByID(_ context.Context, id int64) (model.Produit, error) {
	p, ok := s.items[id]
	if !ok {
		return model.Produit{}, repository.NotFound("Produit")
	}
	return p, nil
}

func (s *memProduitStore) Create(_ context.Context, in model.ProduitInput) (model.Produit, error) {
	s.seq++
	p := model.Produit{IDProduit: s.seq}
	applyProduit(&p, in)
	s.items[s.seq] = p
	return p, nil
}

func (s *memProduitStore) Update(_ context.Context, id int64, in model.ProduitInput) (model.Produit, error) {
	p, ok := s.items[id]
	if !ok {
		return model.Produit{}, repository.NotFound("Produit")
	}
	applyProduit(&p, in)
	s.items[id] = p
	return p, nil
}

func (s *memProduitStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return repository.NotFound("Produit")
	}
	delete(s.items, id)
	return nil
}

func applyProduit(p *model.Produit, in model.ProduitInput) {
	if in.Nom != nil {
		p.Nom = *in.Nom
	}
	if in.Categorie != nil {
		p.Categorie = *in.Categorie
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Prix != nil {
		p.Prix = *in.Prix
	}
	if in.Quantite != nil {
		p.Quantite = *in.Quantite
	}
	if in.UniteMesure != nil {
		p.UniteMesure = *in.UniteMesure
	}
}

var produitTestRules = []validation.Rule{
	{Field: "nom", Label: "Nom", Kind: validation.String, Required: true, Escape: true},
	{Field: "categorie", Label: "Categorie", Kind: validation.String, Required: true, Escape: true},
	{Field: "description", Label: "Description", Kind: validation.String, Escape: true},
	{Field: "prix", Label: "Prix", Kind: validation.Decimal, Required: true},
	{Field: "quantite", Label: "Quantite", Kind: validation.Int, Required: true, Min: validation.MinInt(0)},
	{Field: "unite_mesure", Label: "Unite de mesure", Kind: validation.String, Required: true, Escape: true},
}

type produitFixture struct {
	store *memProduitStore
	res   *Resource[model.Produit, model.ProduitInput]
	e     *echo.Echo
}

func newProduitFixture() *produitFixture {
	store := newMemProduitStore()
	return &produitFixture{
		store: store,
		res:   NewResource[model.Produit, model.ProduitInput]("Produit", "Produits", produitTestRules, store),
		e:     echo.New(),
	}
}

func (f *produitFixture) do(t *testing.T, h echo.HandlerFunc, method, body string, id int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/produits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if id != 0 {
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatInt(id, 10))
	}
	require.NoError(t, h(c))
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestResourceCreateThenGet(t *testing.T) {
	f := newProduitFixture()

	body := `{"nom":"Widget","categorie":"Hardware","prix":"19.99","quantite":5,"unite_mesure":"pcs"}`
	rec := f.do(t, f.res.Create, http.MethodPost, body, 0)
	require.Equal(t, http.StatusCreated, rec.Code)

	env := envelope(t, rec)
	assert.Equal(t, "success", env["status"])
	assert.Equal(t, "Produit created", env["message"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "Widget", data["nom"])
	assert.Equal(t, "19.99", data["prix"])
	assert.Equal(t, float64(5), data["quantite"])

	rec = f.do(t, f.res.GetByID, http.MethodGet, "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	env = envelope(t, rec)
	assert.Equal(t, "Produit retrieved", env["message"])
}

func TestResourceCreateCollectsAllViolations(t *testing.T) {
	f := newProduitFixture()

	rec := f.do(t, f.res.Create, http.MethodPost, `{"prix":"abc","quantite":-1}`, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := envelope(t, rec)
	assert.Equal(t, "fail", env["status"])
	assert.Equal(t, "Validation error", env["message"])
	errs := env["errors"].([]any)
	// nom, categorie, unite_mesure missing + bad prix + negative quantite
	assert.Len(t, errs, 5)
	assert.Empty(t, f.store.items, "nothing persisted on validation failure")
}

func TestResourceCreateSanitizesPersistedStrings(t *testing.T) {
	f := newProduitFixture()

	body := `{"nom":"<b>Vis</b>","categorie":"Fixation","prix":"0.10","quantite":100,"unite_mesure":"pcs"}`
	rec := f.do(t, f.res.Create, http.MethodPost, body, 0)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "&lt;b&gt;Vis&lt;&#x2F;b&gt;", f.store.items[1].Nom)
}

func TestResourcePartialUpdateRetainsOtherFields(t *testing.T) {
	f := newProduitFixture()
	f.do(t, f.res.Create, http.MethodPost,
		`{"nom":"Widget","categorie":"Hardware","prix":"19.99","quantite":5,"unite_mesure":"pcs"}`, 0)

	rec := f.do(t, f.res.Update, http.MethodPut, `{"quantite":12}`, 1)
	require.Equal(t, http.StatusOK, rec.Code)

	env := envelope(t, rec)
	assert.Equal(t, "Produit updated", env["message"])
	p := f.store.items[1]
	assert.Equal(t, int64(12), p.Quantite)
	assert.Equal(t, "Widget", p.Nom)
	assert.Equal(t, "19.99", p.Prix)
}

func TestResourceNotFound(t *testing.T) {
	f := newProduitFixture()

	for _, tc := range []struct {
		name string
		h    echo.HandlerFunc
	}{
		{"get", f.res.GetByID},
		{"update", f.res.Update},
		{"delete", f.res.Delete},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.h, http.MethodGet, `{}`, 99)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			env := envelope(t, rec)
			assert.Equal(t, "fail", env["status"])
			assert.Equal(t, "Produit not found", env["message"])
		})
	}
}

func TestResourceRejectsNonIntegerID(t *testing.T) {
	f := newProduitFixture()

	req := httptest.NewRequest(http.MethodGet, "/produits/abc", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, f.res.GetByID(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "Validation error", env["message"])
	errs := env["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "id", first["field"])
	assert.Equal(t, "ID doit être un entier", first["message"])
}

func TestResourceDelete(t *testing.T) {
	f := newProduitFixture()
	f.do(t, f.res.Create, http.MethodPost,
		`{"nom":"Widget","categorie":"Hardware","prix":"19.99","quantite":5,"unite_mesure":"pcs"}`, 0)

	rec := f.do(t, f.res.Delete, http.MethodDelete, "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Produit deleted", envelope(t, rec)["message"])
	assert.Empty(t, f.store.items)
}

func TestResourceAfterWriteHook(t *testing.T) {
	f := newProduitFixture()
	var seen []int64
	f.res.AfterWrite = func(_ context.Context, p model.Produit) {
		seen = append(seen, p.IDProduit)
	}

	f.do(t, f.res.Create, http.MethodPost,
		`{"nom":"Widget","categorie":"Hardware","prix":"19.99","quantite":5,"unite_mesure":"pcs"}`, 0)
	f.do(t, f.res.Update, http.MethodPut, `{"quantite":6}`, 1)
	f.do(t, f.res.Create, http.MethodPost, `{"prix":"bad"}`, 0) // validation failure

	assert.Equal(t, []int64{1, 1}, seen, "hook fires on successful writes only")
}
