package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/batiflow/batiflow-api/internal/model"
)

// CommandeRepo encapsulates queries on the `commandes` table.
type CommandeRepo struct {
	db *sql.DB
}

// NewCommandeRepo returns a CommandeRepo bound to the given database.
func NewCommandeRepo(db *sql.DB) *CommandeRepo { return &CommandeRepo{db: db} }

// FindAll returns every commande.
func (r *CommandeRepo) FindAll(ctx context.Context) ([]model.Commande, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id_commande, date_commande, statut, montant_total FROM commandes ORDER BY id_commande")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	commandes := []model.Commande{}
	for rows.Next() {
		var c model.Commande
		if err := rows.Scan(&c.IDCommande, &c.DateCommande, &c.Statut, &c.MontantTotal); err != nil {
			return nil, err
		}
		commandes = append(commandes, c)
	}
	return commandes, rows.Err()
}

// FindByID returns one commande, or NotFoundError.
func (r *CommandeRepo) FindByID(ctx context.Context, id int64) (model.Commande, error) {
	var c model.Commande
	err := r.db.QueryRowContext(ctx,
		"SELECT id_commande, date_commande, statut, montant_total FROM commandes WHERE id_commande = ?", id).
		Scan(&c.IDCommande, &c.DateCommande, &c.Statut, &c.MontantTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Commande{}, NotFound("Commande")
	}
	return c, err
}

// Create inserts a new commande. An absent date defaults to now and an
// absent statut to en_attente, mirroring the column defaults.
func (r *CommandeRepo) Create(ctx context.Context, in model.CommandeInput) (model.Commande, error) {
	date := time.Now().UTC()
	if in.DateCommande != nil {
		d, err := time.Parse("2006-01-02", *in.DateCommande)
		if err == nil {
			date = d
		}
	}
	statut := model.CommandeEnAttente
	if in.Statut != nil {
		statut = *in.Statut
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO commandes (date_commande, statut, montant_total) VALUES (?,?,?)",
		date, statut, strVal(in.MontantTotal))
	if err != nil {
		return model.Commande{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Commande{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies the provided fields; absent fields keep their prior
// values.
func (r *CommandeRepo) Update(ctx context.Context, id int64, in model.CommandeInput) (model.Commande, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Commande{}, err
	}
	sets := []string{}
	args := []interface{}{}
	if in.DateCommande != nil {
		d, err := time.Parse("2006-01-02", *in.DateCommande)
		if err == nil {
			sets = append(sets, "date_commande = ?")
			args = append(args, d)
		}
	}
	if in.Statut != nil {
		sets = append(sets, "statut = ?")
		args = append(args, *in.Statut)
	}
	if in.MontantTotal != nil {
		sets = append(sets, "montant_total = ?")
		args = append(args, *in.MontantTotal)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE commandes SET "+strings.Join(sets, ", ")+" WHERE id_commande = ?", args...); err != nil {
			return model.Commande{}, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a commande by id, or returns NotFoundError.
func (r *CommandeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM commandes WHERE id_commande = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Commande")
	}
	return nil
}
