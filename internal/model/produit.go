package model

// Produit represents a row of the `produit` table.  Prix is a
// DECIMAL(15,2) column carried as a string to avoid float rounding.
// Fournisseur is attached on reads that include related data and is
// nil when the produit has no supplier.
type Produit struct {
	IDProduit      int64              `json:"id_produit"` // produit.id_produit
	Nom            string             `json:"nom"`
	Categorie      string             `json:"categorie"`
	Description    *string            `json:"description"` // nullable
	Prix           string             `json:"prix"`        // DECIMAL(15,2)
	Quantite       int64              `json:"quantite"`
	UniteMesure    string             `json:"unite_mesure"`
	IDFournisseurs *int64             `json:"id_fournisseurs"` // nullable FK
	Fournisseur    *FournisseurResume `json:"fournisseur,omitempty"`
}

// ProduitResume is the subset of produit fields attached to devis
// line items.
type ProduitResume struct {
	IDProduit   int64  `json:"id_produit"`
	Nom         string `json:"nom"`
	Prix        string `json:"prix"`
	UniteMesure string `json:"unite_mesure"`
}

// ProduitInput carries the writable fields of a produit.
type ProduitInput struct {
	Nom            *string `json:"nom"`
	Categorie      *string `json:"categorie"`
	Description    *string `json:"description"`
	Prix           *string `json:"prix"`
	Quantite       *int64  `json:"quantite"`
	UniteMesure    *string `json:"unite_mesure"`
	IDFournisseurs *int64  `json:"id_fournisseurs"`
}
