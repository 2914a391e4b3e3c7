package model

// Fournisseur represents a row of the `cataloguefournisseurs` table.
type Fournisseur struct {
	IDFournisseurs int64  `json:"id_fournisseurs"` // cataloguefournisseurs.id_fournisseurs
	NomFournisseur string `json:"nom_fournisseur"`
	Categorie      string `json:"categorie"`
}

// FournisseurResume is the subset of supplier fields attached to a
// produit on reads with related data.
type FournisseurResume struct {
	NomFournisseur string `json:"nom_fournisseur"`
	Categorie      string `json:"categorie"`
}

// FournisseurInput carries the writable fields of a fournisseur.
type FournisseurInput struct {
	NomFournisseur *string `json:"nom_fournisseur"`
	Categorie      *string `json:"categorie"`
}
