package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/batiflow/batiflow-api/internal/model"
)

// MediaRepo encapsulates queries on the `medias` table.
type MediaRepo struct {
	db *sql.DB
}

// NewMediaRepo returns a MediaRepo bound to the given database.
func NewMediaRepo(db *sql.DB) *MediaRepo { return &MediaRepo{db: db} }

// FindAll returns every media.
func (r *MediaRepo) FindAll(ctx context.Context) ([]model.Media, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id_media, url, date_ajout, id_projet FROM medias ORDER BY id_media")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	medias := []model.Media{}
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(&m.IDMedia, &m.URL, &m.DateAjout, &m.IDProjet); err != nil {
			return nil, err
		}
		medias = append(medias, m)
	}
	return medias, rows.Err()
}

// FindByID returns one media, or NotFoundError.
func (r *MediaRepo) FindByID(ctx context.Context, id int64) (model.Media, error) {
	var m model.Media
	err := r.db.QueryRowContext(ctx,
		"SELECT id_media, url, date_ajout, id_projet FROM medias WHERE id_media = ?", id).
		Scan(&m.IDMedia, &m.URL, &m.DateAjout, &m.IDProjet)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Media{}, NotFound("Media")
	}
	return m, err
}

// Create inserts a new media. A nonexistent projet reference surfaces
// as NotFoundError("Projet").
func (r *MediaRepo) Create(ctx context.Context, in model.MediaInput) (model.Media, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO medias (url, date_ajout, id_projet) VALUES (?,NOW(),?)",
		strVal(in.URL), intVal(in.IDProjet))
	if err != nil {
		if isFKErr(err) {
			return model.Media{}, NotFound("Projet")
		}
		return model.Media{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Media{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies the provided fields; absent fields keep their prior
// values.
func (r *MediaRepo) Update(ctx context.Context, id int64, in model.MediaInput) (model.Media, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return model.Media{}, err
	}
	sets := []string{}
	args := []interface{}{}
	if in.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *in.URL)
	}
	if in.IDProjet != nil {
		sets = append(sets, "id_projet = ?")
		args = append(args, *in.IDProjet)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE medias SET "+strings.Join(sets, ", ")+" WHERE id_media = ?", args...); err != nil {
			if isFKErr(err) {
				return model.Media{}, NotFound("Projet")
			}
			return model.Media{}, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a media by id, or returns NotFoundError.
func (r *MediaRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM medias WHERE id_media = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFound("Media")
	}
	return nil
}
