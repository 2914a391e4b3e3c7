package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
)

// DevisRepo encapsulates queries on the `devis` table and its
// `devis_produits` line items. Writes that carry a nested produits
// collection run inside a single transaction: the parent row and every
// line commit together or roll back together.
type DevisRepo struct {
	db *sql.DB
}

// NewDevisRepo returns a DevisRepo bound to the given database.
func NewDevisRepo(db *sql.DB) *DevisRepo { return &DevisRepo{db: db} }

const devisSelect = `SELECT d.id_devis, d.date_creation, d.montant_estime, d.montant_final,
	d.statut, d.id_projet
	FROM devis d`

func scanDevis(sc interface{ Scan(...interface{}) error }) (model.Devis, error) {
	var d model.Devis
	var final sql.NullString
	err := sc.Scan(&d.IDDevis, &d.DateCreation, &d.MontantEstime, &final, &d.Statut, &d.IDProjet)
	if err != nil {
		return model.Devis{}, err
	}
	if final.Valid {
		v := final.String
		d.MontantFinal = &v
	}
	return d, nil
}

// FindAll returns every devis with its projet and line items attached.
func (r *DevisRepo) FindAll(ctx context.Context) ([]model.Devis, error) {
	rows, err := r.db.QueryContext(ctx, devisSelect+" ORDER BY d.id_devis")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devis := []model.Devis{}
	for rows.Next() {
		d, err := scanDevis(rows)
		if err != nil {
			return nil, err
		}
		devis = append(devis, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, devis); err != nil {
		return nil, err
	}
	return devis, nil
}

// FindByID returns one devis with related data, or NotFoundError.
func (r *DevisRepo) FindByID(ctx context.Context, id int64) (model.Devis, error) {
	d, err := scanDevis(r.db.QueryRowContext(ctx, devisSelect+" WHERE d.id_devis = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Devis{}, NotFound("Devis")
	}
	if err != nil {
		return model.Devis{}, err
	}
	ds := []model.Devis{d}
	if err := r.attachRelations(ctx, ds); err != nil {
		return model.Devis{}, err
	}
	return ds[0], nil
}

// attachRelations loads the projets and line items of the given devis,
// one batched query per relation regardless of how many devis are in
// the slice.
func (r *DevisRepo) attachRelations(ctx context.Context, devis []model.Devis) error {
	if len(devis) == 0 {
		return nil
	}
	index := make(map[int64][]int, len(devis))
	placeholders := make([]string, 0, len(devis))
	args := make([]interface{}, 0, len(devis))
	projetIDs := make([]int64, 0, len(devis))
	seenProjet := make(map[int64]bool, len(devis))
	for i := range devis {
		id := devis[i].IDDevis
		if _, seen := index[id]; !seen {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		index[id] = append(index[id], i)
		if !seenProjet[devis[i].IDProjet] {
			seenProjet[devis[i].IDProjet] = true
			projetIDs = append(projetIDs, devis[i].IDProjet)
		}
	}
	projets, err := NewProjetRepo(r.db).FindByIDs(ctx, projetIDs)
	if err != nil {
		return err
	}
	for i := range devis {
		if p, ok := projets[devis[i].IDProjet]; ok {
			pc := p
			devis[i].Projet = &pc
		}
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT dp.id_devis, dp.id_produit, dp.quantite, pr.nom, pr.prix, pr.unite_mesure
		 FROM devis_produits dp
		 JOIN produit pr ON pr.id_produit = dp.id_produit
		 WHERE dp.id_devis IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY dp.id_produit`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var idDevis int64
		var ligne model.DevisLigne
		var res model.ProduitResume
		if err := rows.Scan(&idDevis, &ligne.IDProduit, &ligne.Quantite, &res.Nom, &res.Prix, &res.UniteMesure); err != nil {
			return err
		}
		res.IDProduit = ligne.IDProduit
		ligne.Produit = &res
		for _, i := range index[idDevis] {
			devis[i].Produits = append(devis[i].Produits, ligne)
		}
	}
	return rows.Err()
}

// Create inserts a devis and, when the input carries a produits
// collection, its line items, all in one transaction. Any failure
// before commit rolls the whole write back. After a successful commit
// the devis is re-read with related data; if that read fails the
// commit stands and a best-effort record is returned instead.
func (r *DevisRepo) Create(ctx context.Context, in model.DevisInput) (model.Devis, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Devis{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO devis (date_creation, montant_estime, montant_final, statut, id_projet) VALUES (NOW(),?,?,?,?)",
		strVal(in.MontantEstime), in.MontantFinal, strVal(in.Statut), intVal(in.IDProjet))
	if err != nil {
		if isFKErr(err) {
			return model.Devis{}, NotFound("Projet")
		}
		return model.Devis{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Devis{}, err
	}
	if in.Produits != nil {
		if err := r.insertLignesTx(ctx, tx, id, *in.Produits); err != nil {
			return model.Devis{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Devis{}, err
	}

	d, err := r.FindByID(ctx, id)
	if err != nil {
		// The write is durable; degrade the response data only.
		log.Printf("devis: refetch after create failed: %v", err)
		return bestEffortDevis(id, in), nil
	}
	return d, nil
}

// Update applies the provided fields and, when the input carries a
// produits collection, replaces the existing line items with it,
// atomically with the parent update.
func (r *DevisRepo) Update(ctx context.Context, id int64, in model.DevisInput) (model.Devis, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Devis{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Devis{}, err
	}
	defer tx.Rollback()

	sets := []string{}
	args := []interface{}{}
	if in.MontantEstime != nil {
		sets = append(sets, "montant_estime = ?")
		args = append(args, *in.MontantEstime)
	}
	if in.MontantFinal != nil {
		sets = append(sets, "montant_final = ?")
		args = append(args, *in.MontantFinal)
	}
	if in.Statut != nil {
		sets = append(sets, "statut = ?")
		args = append(args, *in.Statut)
	}
	if in.IDProjet != nil {
		sets = append(sets, "id_projet = ?")
		args = append(args, *in.IDProjet)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE devis SET "+strings.Join(sets, ", ")+" WHERE id_devis = ?", args...); err != nil {
			if isFKErr(err) {
				return model.Devis{}, NotFound("Projet")
			}
			return model.Devis{}, err
		}
	}
	if in.Produits != nil {
		// The provided collection fully replaces the existing lines.
		if _, err := tx.ExecContext(ctx, "DELETE FROM devis_produits WHERE id_devis = ?", id); err != nil {
			return model.Devis{}, err
		}
		if err := r.insertLignesTx(ctx, tx, id, *in.Produits); err != nil {
			return model.Devis{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Devis{}, err
	}

	d, err := r.FindByID(ctx, id)
	if err != nil {
		log.Printf("devis: refetch after update failed: %v", err)
		return bestEffortDevis(id, in), nil
	}
	return d, nil
}

// insertLignesTx bulk-inserts line items within the transaction. A
// produit reference that does not exist surfaces as
// NotFoundError("Produit"); a repeated (devis, produit) pair as a
// ConflictError.
func (r *DevisRepo) insertLignesTx(ctx context.Context, tx *sql.Tx, idDevis int64, lignes []model.DevisLigneInput) error {
	if len(lignes) == 0 {
		return nil
	}
	query := "INSERT INTO devis_produits (id_devis, id_produit, quantite) VALUES "
	args := make([]interface{}, 0, len(lignes)*3)
	for i, l := range lignes {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?)"
		args = append(args, idDevis, l.IDProduit, l.Quantite)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if isDuplicateErr(err) {
		return &ConflictError{Message: "This association already exists"}
	}
	if isFKErr(err) {
		return NotFound("Produit")
	}
	return err
}

// bestEffortDevis rebuilds a response record from the input after a
// post-commit read failure.
func bestEffortDevis(id int64, in model.DevisInput) model.Devis {
	d := model.Devis{
		IDDevis:       id,
		MontantEstime: strVal(in.MontantEstime),
		MontantFinal:  in.MontantFinal,
		Statut:        strVal(in.Statut),
		IDProjet:      intVal(in.IDProjet),
	}
	if in.Produits != nil {
		for _, l := range *in.Produits {
			d.Produits = append(d.Produits, model.DevisLigne{IDProduit: l.IDProduit, Quantite: l.Quantite})
		}
	}
	return d
}

// Delete removes a devis and its line items, or returns NotFoundError.
func (r *DevisRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM devis_produits WHERE id_devis = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM devis WHERE id_devis = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Devis")
	}
	return tx.Commit()
}
