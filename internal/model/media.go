package model

import "time"

// Media represents a row of the `medias` table.  Each media belongs
// to a projet.
type Media struct {
	IDMedia   int64     `json:"id_media"` // medias.id_media
	URL       string    `json:"url"`
	DateAjout time.Time `json:"date_ajout"`
	IDProjet  int64     `json:"id_projet"`
}

// MediaResume is the subset of media fields attached to a projet on
// reads with related data.
type MediaResume struct {
	URL string `json:"url"`
}

// MediaInput carries the writable fields of a media.
type MediaInput struct {
	URL      *string `json:"url"`
	IDProjet *int64  `json:"id_projet"`
}
