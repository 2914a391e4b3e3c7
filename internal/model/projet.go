package model

import "time"

// Projet represents a row of the `projet` table.  A projet belongs to
// an utilisateur and owns zero or more medias.  The Utilisateur and
// Medias fields are only populated on reads that attach related data.
type Projet struct {
	IDProjet      int64              `json:"id_projet"`     // projet.id_projet
	Titre         string             `json:"titre"`         // projet.titre
	Description   *string            `json:"description"`   // projet.description (nullable)
	TypeProjet    string             `json:"type_projet"`   // projet.type_projet
	Statut        string             `json:"statut"`        // projet.statut
	DateCreation  time.Time          `json:"date_creation"` // projet.date_creation
	DateMaj       time.Time          `json:"date_maj"`      // projet.date_maj
	IDUtilisateur int64              `json:"id_utilisateur"`
	Utilisateur   *UtilisateurResume `json:"utilisateur,omitempty"`
	Medias        []MediaResume      `json:"medias,omitempty"`
}

// ProjetInput carries the writable fields of a projet.  Pointer fields
// distinguish "absent" from "zero value" so that partial updates leave
// unspecified columns untouched.
type ProjetInput struct {
	Titre         *string `json:"titre"`
	Description   *string `json:"description"`
	TypeProjet    *string `json:"type_projet"`
	Statut        *string `json:"statut"`
	IDUtilisateur *int64  `json:"id_utilisateur"`
}
