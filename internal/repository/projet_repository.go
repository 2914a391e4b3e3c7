package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
)

// ProjetRepo encapsulates queries on the `projet` table. Reads attach
// the owning utilisateur and the projet's medias.
type ProjetRepo struct {
	db *sql.DB
}

// NewProjetRepo returns a ProjetRepo bound to the given database.
func NewProjetRepo(db *sql.DB) *ProjetRepo { return &ProjetRepo{db: db} }

const projetSelect = `SELECT p.id_projet, p.titre, p.description, p.type_projet, p.statut,
	p.date_creation, p.date_maj, p.id_utilisateur, u.nom, u.prenom, u.email
	FROM projet p
	LEFT JOIN utilisateur u ON u.id_utilisateur = p.id_utilisateur`

func scanProjet(sc interface{ Scan(...interface{}) error }) (model.Projet, error) {
	var p model.Projet
	var desc sql.NullString
	var uNom, uPrenom, uEmail sql.NullString
	err := sc.Scan(&p.IDProjet, &p.Titre, &desc, &p.TypeProjet, &p.Statut,
		&p.DateCreation, &p.DateMaj, &p.IDUtilisateur, &uNom, &uPrenom, &uEmail)
	if err != nil {
		return model.Projet{}, err
	}
	if desc.Valid {
		d := desc.String
		p.Description = &d
	}
	if uEmail.Valid {
		p.Utilisateur = &model.UtilisateurResume{Nom: uNom.String, Prenom: uPrenom.String, Email: uEmail.String}
	}
	return p, nil
}

// FindAll returns every projet with its owner and media URLs attached.
func (r *ProjetRepo) FindAll(ctx context.Context) ([]model.Projet, error) {
	rows, err := r.db.QueryContext(ctx, projetSelect+" ORDER BY p.id_projet")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projets := []model.Projet{}
	for rows.Next() {
		p, err := scanProjet(rows)
		if err != nil {
			return nil, err
		}
		projets = append(projets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMedias(ctx, projets); err != nil {
		return nil, err
	}
	return projets, nil
}

// FindByID returns one projet with related data, or NotFoundError.
func (r *ProjetRepo) FindByID(ctx context.Context, id int64) (model.Projet, error) {
	p, err := scanProjet(r.db.QueryRowContext(ctx, projetSelect+" WHERE p.id_projet = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Projet{}, NotFound("Projet")
	}
	if err != nil {
		return model.Projet{}, err
	}
	ps := []model.Projet{p}
	if err := r.attachMedias(ctx, ps); err != nil {
		return model.Projet{}, err
	}
	return ps[0], nil
}

// FindByIDs returns the projets for the given ids in one query, with
// related data attached, keyed by id. Ids without a matching row are
// simply absent from the map.
func (r *ProjetRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Projet, error) {
	if len(ids) == 0 {
		return map[int64]model.Projet{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		projetSelect+" WHERE p.id_projet IN ("+strings.Join(placeholders, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projets := []model.Projet{}
	for rows.Next() {
		p, err := scanProjet(rows)
		if err != nil {
			return nil, err
		}
		projets = append(projets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMedias(ctx, projets); err != nil {
		return nil, err
	}
	out := make(map[int64]model.Projet, len(projets))
	for _, p := range projets {
		out[p.IDProjet] = p
	}
	return out, nil
}

// attachMedias loads the media URLs of the given projets in one query.
func (r *ProjetRepo) attachMedias(ctx context.Context, projets []model.Projet) error {
	if len(projets) == 0 {
		return nil
	}
	placeholders := make([]string, len(projets))
	args := make([]interface{}, len(projets))
	index := make(map[int64]int, len(projets))
	for i := range projets {
		placeholders[i] = "?"
		args[i] = projets[i].IDProjet
		index[projets[i].IDProjet] = i
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id_projet, url FROM medias WHERE id_projet IN ("+strings.Join(placeholders, ",")+") ORDER BY id_media",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var idProjet int64
		var url string
		if err := rows.Scan(&idProjet, &url); err != nil {
			return err
		}
		if i, ok := index[idProjet]; ok {
			projets[i].Medias = append(projets[i].Medias, model.MediaResume{URL: url})
		}
	}
	return rows.Err()
}

// Create inserts a new projet and returns it with related data. A
// nonexistent owner surfaces as NotFoundError("Utilisateur").
func (r *ProjetRepo) Create(ctx context.Context, in model.ProjetInput) (model.Projet, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO projet (titre, description, type_projet, statut, date_creation, date_maj, id_utilisateur) VALUES (?,?,?,?,NOW(),NOW(),?)",
		strVal(in.Titre), in.Description, strVal(in.TypeProjet), strVal(in.Statut), intVal(in.IDUtilisateur))
	if err != nil {
		if isFKErr(err) {
			return model.Projet{}, NotFound("Utilisateur")
		}
		return model.Projet{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Projet{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies the provided fields; absent fields keep their prior
// values. date_maj is always refreshed.
func (r *ProjetRepo) Update(ctx context.Context, id int64, in model.ProjetInput) (model.Projet, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Projet{}, err
	}
	sets := []string{"date_maj = NOW()"}
	args := []interface{}{}
	if in.Titre != nil {
		sets = append(sets, "titre = ?")
		args = append(args, *in.Titre)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.TypeProjet != nil {
		sets = append(sets, "type_projet = ?")
		args = append(args, *in.TypeProjet)
	}
	if in.Statut != nil {
		sets = append(sets, "statut = ?")
		args = append(args, *in.Statut)
	}
	if in.IDUtilisateur != nil {
		sets = append(sets, "id_utilisateur = ?")
		args = append(args, *in.IDUtilisateur)
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE projet SET "+strings.Join(sets, ", ")+" WHERE id_projet = ?", args...)
	if err != nil {
		if isFKErr(err) {
			return model.Projet{}, NotFound("Utilisateur")
		}
		return model.Projet{}, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a projet by id, or returns NotFoundError.
func (r *ProjetRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projet WHERE id_projet = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Projet")
	}
	return nil
}

// strVal and intVal dereference optional input fields that validation
// guarantees to be present on create.
func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intVal(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
