package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/utils"
)

// UtilisateurRepo encapsulates queries on the `utilisateur` table.
type UtilisateurRepo struct {
	db *sql.DB
}

// NewUtilisateurRepo returns a UtilisateurRepo bound to the given database.
func NewUtilisateurRepo(db *sql.DB) *UtilisateurRepo { return &UtilisateurRepo{db: db} }

const utilisateurCols = "id_utilisateur, nom, prenom, email, role, telephone, mot_de_passe"

// Create hashes the password and inserts a new user, returning the
// generated id. Hashing happens here, before the row exists, so the
// plaintext is never written anywhere. A duplicate email yields
// ErrEmailExists.
func (r *UtilisateurRepo) Create(ctx context.Context, u *model.Utilisateur, password string, cost int) (int64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO utilisateur (nom, prenom, email, role, telephone, mot_de_passe) VALUES (?,?,?,?,?,?)",
		u.Nom, u.Prenom, u.Email, u.Role, u.Telephone, hash)
	if err != nil {
		if isDuplicateErr(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.IDUtilisateur = id
	u.MotDePasse = hash
	return id, nil
}

// GetByEmail fetches a user by exact email. Email comparison is
// case-sensitive as stored.
func (r *UtilisateurRepo) GetByEmail(ctx context.Context, email string) (model.Utilisateur, error) {
	var u model.Utilisateur
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT "+utilisateurCols+" FROM utilisateur WHERE email = ? LIMIT 1",
		strings.TrimSpace(email)).
		Scan(&u.IDUtilisateur, &u.Nom, &u.Prenom, &u.Email, &u.Role, &u.Telephone, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Utilisateur{}, NotFound("Utilisateur")
	}
	if err != nil {
		return model.Utilisateur{}, err
	}
	u.MotDePasse = hash.String
	return u, nil
}

// GetByID fetches a user by primary key.
func (r *UtilisateurRepo) GetByID(ctx context.Context, id int64) (model.Utilisateur, error) {
	var u model.Utilisateur
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT "+utilisateurCols+" FROM utilisateur WHERE id_utilisateur = ? LIMIT 1", id).
		Scan(&u.IDUtilisateur, &u.Nom, &u.Prenom, &u.Email, &u.Role, &u.Telephone, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Utilisateur{}, NotFound("Utilisateur")
	}
	if err != nil {
		return model.Utilisateur{}, err
	}
	u.MotDePasse = hash.String
	return u, nil
}

// List returns every user record.
func (r *UtilisateurRepo) List(ctx context.Context) ([]model.Utilisateur, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+utilisateurCols+" FROM utilisateur ORDER BY id_utilisateur")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.Utilisateur{}
	for rows.Next() {
		var u model.Utilisateur
		var hash sql.NullString
		if err := rows.Scan(&u.IDUtilisateur, &u.Nom, &u.Prenom, &u.Email, &u.Role, &u.Telephone, &hash); err != nil {
			return nil, err
		}
		u.MotDePasse = hash.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// ProfileUpdate carries the optional profile fields a user may change.
// NewHash, when non-nil, replaces the stored password hash; callers
// must have verified the previous plaintext first.
type ProfileUpdate struct {
	Nom       *string
	Prenom    *string
	Telephone *string
	NewHash   *string
}

// UpdateProfile applies the provided fields to the user row. Absent
// fields keep their prior values.
func (r *UtilisateurRepo) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error {
	sets := []string{}
	args := []interface{}{}
	if upd.Nom != nil {
		sets = append(sets, "nom = ?")
		args = append(args, *upd.Nom)
	}
	if upd.Prenom != nil {
		sets = append(sets, "prenom = ?")
		args = append(args, *upd.Prenom)
	}
	if upd.Telephone != nil {
		sets = append(sets, "telephone = ?")
		args = append(args, *upd.Telephone)
	}
	if upd.NewHash != nil {
		sets = append(sets, "mot_de_passe = ?")
		args = append(args, *upd.NewHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE utilisateur SET "+strings.Join(sets, ", ")+" WHERE id_utilisateur = ?", args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows is ambiguous (identical values also report 0);
		// confirm the row exists before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM utilisateur WHERE id_utilisateur = ?", id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return NotFound("Utilisateur")
		}
	}
	return nil
}
