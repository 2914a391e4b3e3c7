package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/batiflow/batiflow-api/internal/model"
)

// DevisProduitRepo encapsulates queries on the `devis_produits` join
// table. The (id_devis, id_produit) pair is the composite key and may
// only exist once.
type DevisProduitRepo struct {
	db *sql.DB
}

// NewDevisProduitRepo returns a DevisProduitRepo bound to the given database.
func NewDevisProduitRepo(db *sql.DB) *DevisProduitRepo { return &DevisProduitRepo{db: db} }

const devisProduitSelect = `SELECT dp.id_devis, dp.id_produit, dp.quantite,
	d.date_creation, d.montant_estime, d.montant_final, d.statut,
	pr.nom, pr.prix, pr.unite_mesure
	FROM devis_produits dp
	JOIN devis d ON d.id_devis = dp.id_devis
	JOIN produit pr ON pr.id_produit = dp.id_produit`

func scanDevisProduit(sc interface{ Scan(...interface{}) error }) (model.DevisProduit, error) {
	var dp model.DevisProduit
	var devis model.DevisResume
	var produit model.ProduitResume
	var final sql.NullString
	err := sc.Scan(&dp.IDDevis, &dp.IDProduit, &dp.Quantite,
		&devis.DateCreation, &devis.MontantEstime, &final, &devis.Statut,
		&produit.Nom, &produit.Prix, &produit.UniteMesure)
	if err != nil {
		return model.DevisProduit{}, err
	}
	if final.Valid {
		v := final.String
		devis.MontantFinal = &v
	}
	devis.IDDevis = dp.IDDevis
	produit.IDProduit = dp.IDProduit
	dp.Devis = &devis
	dp.Produit = &produit
	return dp, nil
}

// FindAll returns every association with devis and produit summaries.
func (r *DevisProduitRepo) FindAll(ctx context.Context) ([]model.DevisProduit, error) {
	rows, err := r.db.QueryContext(ctx, devisProduitSelect+" ORDER BY dp.id_devis, dp.id_produit")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assocs := []model.DevisProduit{}
	for rows.Next() {
		dp, err := scanDevisProduit(rows)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, dp)
	}
	return assocs, rows.Err()
}

// FindByIDs returns the association for the given pair, or
// NotFoundError("DevisProduits").
func (r *DevisProduitRepo) FindByIDs(ctx context.Context, idDevis, idProduit int64) (model.DevisProduit, error) {
	dp, err := scanDevisProduit(r.db.QueryRowContext(ctx,
		devisProduitSelect+" WHERE dp.id_devis = ? AND dp.id_produit = ?", idDevis, idProduit))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DevisProduit{}, NotFound("DevisProduits")
	}
	return dp, err
}

// Create associates a produit with a devis inside a transaction. Both
// referenced rows must exist and the pair must be new. The returned
// bool reports whether the post-commit read with related data
// succeeded; when it is false the association is nonetheless durable
// and the bare triple is returned.
func (r *DevisProduitRepo) Create(ctx context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DevisProduit{}, false, err
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM devis WHERE id_devis = ?", idDevis).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DevisProduit{}, false, NotFound("Devis")
		}
		return model.DevisProduit{}, false, err
	}
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM produit WHERE id_produit = ?", idProduit).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DevisProduit{}, false, NotFound("Produit")
		}
		return model.DevisProduit{}, false, err
	}
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM devis_produits WHERE id_devis = ? AND id_produit = ?", idDevis, idProduit).Scan(&one)
	if err == nil {
		return model.DevisProduit{}, false, &ConflictError{Message: "This association already exists"}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.DevisProduit{}, false, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO devis_produits (id_devis, id_produit, quantite) VALUES (?,?,?)",
		idDevis, idProduit, quantite); err != nil {
		if isDuplicateErr(err) {
			return model.DevisProduit{}, false, &ConflictError{Message: "This association already exists"}
		}
		return model.DevisProduit{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return model.DevisProduit{}, false, err
	}

	dp, err := r.FindByIDs(ctx, idDevis, idProduit)
	if err != nil {
		// Commit stands; only the enriched response data is lost.
		return model.DevisProduit{IDDevis: idDevis, IDProduit: idProduit, Quantite: quantite}, false, nil
	}
	return dp, true, nil
}

// UpdateQuantite changes the quantity of an existing association. The
// returned bool has the same meaning as in Create.
func (r *DevisProduitRepo) UpdateQuantite(ctx context.Context, idDevis, idProduit, quantite int64) (model.DevisProduit, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DevisProduit{}, false, err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM devis_produits WHERE id_devis = ? AND id_produit = ?", idDevis, idProduit).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DevisProduit{}, false, NotFound("DevisProduits")
	}
	if err != nil {
		return model.DevisProduit{}, false, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE devis_produits SET quantite = ? WHERE id_devis = ? AND id_produit = ?",
		quantite, idDevis, idProduit); err != nil {
		return model.DevisProduit{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return model.DevisProduit{}, false, err
	}

	dp, err := r.FindByIDs(ctx, idDevis, idProduit)
	if err != nil {
		return model.DevisProduit{IDDevis: idDevis, IDProduit: idProduit, Quantite: quantite}, false, nil
	}
	return dp, true, nil
}

// Delete removes an association, or returns NotFoundError.
func (r *DevisProduitRepo) Delete(ctx context.Context, idDevis, idProduit int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM devis_produits WHERE id_devis = ? AND id_produit = ?", idDevis, idProduit)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("DevisProduits")
	}
	return nil
}

// ListByDevis returns the line items of one devis with produit
// summaries. The devis itself must exist.
func (r *DevisProduitRepo) ListByDevis(ctx context.Context, idDevis int64) ([]model.DevisProduit, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM devis WHERE id_devis = ?", idDevis).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("Devis")
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT dp.id_devis, dp.id_produit, dp.quantite, pr.nom, pr.prix, pr.unite_mesure
		 FROM devis_produits dp
		 JOIN produit pr ON pr.id_produit = dp.id_produit
		 WHERE dp.id_devis = ? ORDER BY dp.id_produit`, idDevis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assocs := []model.DevisProduit{}
	for rows.Next() {
		var dp model.DevisProduit
		var produit model.ProduitResume
		if err := rows.Scan(&dp.IDDevis, &dp.IDProduit, &dp.Quantite, &produit.Nom, &produit.Prix, &produit.UniteMesure); err != nil {
			return nil, err
		}
		produit.IDProduit = dp.IDProduit
		dp.Produit = &produit
		assocs = append(assocs, dp)
	}
	return assocs, rows.Err()
}

// ListByProduit returns the devis referencing one produit with devis
// summaries. The produit itself must exist.
func (r *DevisProduitRepo) ListByProduit(ctx context.Context, idProduit int64) ([]model.DevisProduit, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM produit WHERE id_produit = ?", idProduit).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("Produit")
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT dp.id_devis, dp.id_produit, dp.quantite,
		        d.date_creation, d.montant_estime, d.montant_final, d.statut
		 FROM devis_produits dp
		 JOIN devis d ON d.id_devis = dp.id_devis
		 WHERE dp.id_produit = ? ORDER BY dp.id_devis`, idProduit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assocs := []model.DevisProduit{}
	for rows.Next() {
		var dp model.DevisProduit
		var devis model.DevisResume
		var final sql.NullString
		if err := rows.Scan(&dp.IDDevis, &dp.IDProduit, &dp.Quantite,
			&devis.DateCreation, &devis.MontantEstime, &final, &devis.Statut); err != nil {
			return nil, err
		}
		if final.Valid {
			v := final.String
			devis.MontantFinal = &v
		}
		devis.IDDevis = dp.IDDevis
		dp.Devis = &devis
		assocs = append(assocs, dp)
	}
	return assocs, rows.Err()
}
