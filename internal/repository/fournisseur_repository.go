package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
)

// FournisseurRepo encapsulates queries on the `cataloguefournisseurs`
// table.
type FournisseurRepo struct {
	db *sql.DB
}

// NewFournisseurRepo returns a FournisseurRepo bound to the given database.
func NewFournisseurRepo(db *sql.DB) *FournisseurRepo { return &FournisseurRepo{db: db} }

// FindAll returns every fournisseur.
func (r *FournisseurRepo) FindAll(ctx context.Context) ([]model.Fournisseur, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id_fournisseurs, nom_fournisseur, categorie FROM cataloguefournisseurs ORDER BY id_fournisseurs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fournisseurs := []model.Fournisseur{}
	for rows.Next() {
		var f model.Fournisseur
		if err := rows.Scan(&f.IDFournisseurs, &f.NomFournisseur, &f.Categorie); err != nil {
			return nil, err
		}
		fournisseurs = append(fournisseurs, f)
	}
	return fournisseurs, rows.Err()
}

// FindByID returns one fournisseur, or NotFoundError.
func (r *FournisseurRepo) FindByID(ctx context.Context, id int64) (model.Fournisseur, error) {
	var f model.Fournisseur
	err := r.db.QueryRowContext(ctx,
		"SELECT id_fournisseurs, nom_fournisseur, categorie FROM cataloguefournisseurs WHERE id_fournisseurs = ?", id).
		Scan(&f.IDFournisseurs, &f.NomFournisseur, &f.Categorie)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Fournisseur{}, NotFound("Fournisseur")
	}
	return f, err
}

// Create inserts a new fournisseur.
func (r *FournisseurRepo) Create(ctx context.Context, in model.FournisseurInput) (model.Fournisseur, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cataloguefournisseurs (nom_fournisseur, categorie) VALUES (?,?)",
		strVal(in.NomFournisseur), strVal(in.Categorie))
	if err != nil {
		return model.Fournisseur{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Fournisseur{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies the provided fields; absent fields keep their prior
// values.
func (r *FournisseurRepo) Update(ctx context.Context, id int64, in model.FournisseurInput) (model.Fournisseur, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Fournisseur{}, err
	}
	sets := []string{}
	args := []interface{}{}
	if in.NomFournisseur != nil {
		sets = append(sets, "nom_fournisseur = ?")
		args = append(args, *in.NomFournisseur)
	}
	if in.Categorie != nil {
		sets = append(sets, "categorie = ?")
		args = append(args, *in.Categorie)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE cataloguefournisseurs SET "+strings.Join(sets, ", ")+" WHERE id_fournisseurs = ?", args...); err != nil {
			return model.Fournisseur{}, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a fournisseur by id, or returns NotFoundError.
func (r *FournisseurRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cataloguefournisseurs WHERE id_fournisseurs = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Fournisseur")
	}
	return nil
}
