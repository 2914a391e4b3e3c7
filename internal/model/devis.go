package model

import "time"

// Devis represents a row of the `devis` table.  A devis belongs to a
// projet and optionally carries line items (rows of `devis_produits`)
// when read with related data or written with a nested `produits`
// collection.
type Devis struct {
	IDDevis       int64        `json:"id_devis"` // devis.id_devis
	DateCreation  time.Time    `json:"date_creation"`
	MontantEstime string       `json:"montant_estime"` // DECIMAL(15,2)
	MontantFinal  *string      `json:"montant_final"`  // nullable DECIMAL(15,2)
	Statut        string       `json:"statut"`
	IDProjet      int64        `json:"id_projet"`
	Projet        *Projet      `json:"projet,omitempty"`
	Produits      []DevisLigne `json:"produits,omitempty"`
}

// DevisLigne is one line item of a devis: a produit with a quantity.
// Produit is attached on reads with related data.
type DevisLigne struct {
	IDProduit int64          `json:"id_produit"`
	Quantite  int64          `json:"quantite"`
	Produit   *ProduitResume `json:"produit,omitempty"`
}

// DevisResume is the subset of devis fields attached to a
// devis-produit association.
type DevisResume struct {
	IDDevis       int64     `json:"id_devis"`
	DateCreation  time.Time `json:"date_creation"`
	MontantEstime string    `json:"montant_estime"`
	MontantFinal  *string   `json:"montant_final"`
	Statut        string    `json:"statut"`
}

// DevisInput carries the writable fields of a devis.  Produits is a
// pointer to a slice so an absent collection (keep existing lines on
// update) is distinguishable from an explicit empty one (remove all
// lines).
type DevisInput struct {
	MontantEstime *string            `json:"montant_estime"`
	MontantFinal  *string            `json:"montant_final"`
	Statut        *string            `json:"statut"`
	IDProjet      *int64             `json:"id_projet"`
	Produits      *[]DevisLigneInput `json:"produits"`
}

// DevisLigneInput is one nested line item in a devis create or update
// payload.
type DevisLigneInput struct {
	IDProduit int64 `json:"id_produit"`
	Quantite  int64 `json:"quantite"`
}
