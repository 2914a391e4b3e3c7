package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
)

// ProduitRepo encapsulates queries on the `produit` table. Reads
// attach the supplier summary when the produit references one.
type ProduitRepo struct {
	db *sql.DB
}

// NewProduitRepo returns a ProduitRepo bound to the given database.
func NewProduitRepo(db *sql.DB) *ProduitRepo { return &ProduitRepo{db: db} }

const produitSelect = `SELECT pr.id_produit, pr.nom, pr.categorie, pr.description, pr.prix,
	pr.quantite, pr.unite_mesure, pr.id_fournisseurs, f.nom_fournisseur, f.categorie
	FROM produit pr
	LEFT JOIN cataloguefournisseurs f ON f.id_fournisseurs = pr.id_fournisseurs`

func scanProduit(sc interface{ Scan(...interface{}) error }) (model.Produit, error) {
	var p model.Produit
	var desc sql.NullString
	var idF sql.NullInt64
	var fNom, fCat sql.NullString
	err := sc.Scan(&p.IDProduit, &p.Nom, &p.Categorie, &desc, &p.Prix,
		&p.Quantite, &p.UniteMesure, &idF, &fNom, &fCat)
	if err != nil {
		return model.Produit{}, err
	}
	if desc.Valid {
		d := desc.String
		p.Description = &d
	}
	if idF.Valid {
		v := idF.Int64
		p.IDFournisseurs = &v
		p.Fournisseur = &model.FournisseurResume{NomFournisseur: fNom.String, Categorie: fCat.String}
	}
	return p, nil
}

// FindAll returns every produit with its supplier summary attached.
func (r *ProduitRepo) FindAll(ctx context.Context) ([]model.Produit, error) {
	rows, err := r.db.QueryContext(ctx, produitSelect+" ORDER BY pr.id_produit")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	produits := []model.Produit{}
	for rows.Next() {
		p, err := scanProduit(rows)
		if err != nil {
			return nil, err
		}
		produits = append(produits, p)
	}
	return produits, rows.Err()
}

// FindByID returns one produit with related data, or NotFoundError.
func (r *ProduitRepo) FindByID(ctx context.Context, id int64) (model.Produit, error) {
	p, err := scanProduit(r.db.QueryRowContext(ctx, produitSelect+" WHERE pr.id_produit = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Produit{}, NotFound("Produit")
	}
	return p, err
}

// Create inserts a new produit. A nonexistent supplier reference
// surfaces as NotFoundError("Fournisseur").
func (r *ProduitRepo) Create(ctx context.Context, in model.ProduitInput) (model.Produit, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO produit (nom, categorie, description, prix, quantite, unite_mesure, id_fournisseurs) VALUES (?,?,?,?,?,?,?)",
		strVal(in.Nom), strVal(in.Categorie), in.Description, strVal(in.Prix),
		intVal(in.Quantite), strVal(in.UniteMesure), in.IDFournisseurs)
	if err != nil {
		if isFKErr(err) {
			return model.Produit{}, NotFound("Fournisseur")
		}
		return model.Produit{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Produit{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies the provided fields; absent fields keep their prior
// values.
func (r *ProduitRepo) Update(ctx context.Context, id int64, in model.ProduitInput) (model.Produit, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Produit{}, err
	}
	sets := []string{}
	args := []interface{}{}
	if in.Nom != nil {
		sets = append(sets, "nom = ?")
		args = append(args, *in.Nom)
	}
	if in.Categorie != nil {
		sets = append(sets, "categorie = ?")
		args = append(args, *in.Categorie)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Prix != nil {
		sets = append(sets, "prix = ?")
		args = append(args, *in.Prix)
	}
	if in.Quantite != nil {
		sets = append(sets, "quantite = ?")
		args = append(args, *in.Quantite)
	}
	if in.UniteMesure != nil {
		sets = append(sets, "unite_mesure = ?")
		args = append(args, *in.UniteMesure)
	}
	if in.IDFournisseurs != nil {
		sets = append(sets, "id_fournisseurs = ?")
		args = append(args, *in.IDFournisseurs)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE produit SET "+strings.Join(sets, ", ")+" WHERE id_produit = ?", args...); err != nil {
			if isFKErr(err) {
				return model.Produit{}, NotFound("Fournisseur")
			}
			return model.Produit{}, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a produit by id, or returns NotFoundError.
func (r *ProduitRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM produit WHERE id_produit = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Produit")
	}
	return nil
}
