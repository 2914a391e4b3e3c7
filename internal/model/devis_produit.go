package model

// DevisProduit represents a row of the `devis_produits` join table.
// The (IDDevis, IDProduit) pair is the composite primary key and is
// unique. Devis and Produit summaries are attached on reads with
// related data.
type DevisProduit struct {
	IDDevis   int64          `json:"id_devis"`
	IDProduit int64          `json:"id_produit"`
	Quantite  int64          `json:"quantite"`
	Devis     *DevisResume   `json:"devis,omitempty"`
	Produit   *ProduitResume `json:"produit,omitempty"`
}

// DevisProduitInput carries the writable fields of a devis-produit
// association.
type DevisProduitInput struct {
	IDDevis   *int64 `json:"id_devis"`
	IDProduit *int64 `json:"id_produit"`
	Quantite  *int64 `json:"quantite"`
}
