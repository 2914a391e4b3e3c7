package model

import "time"

// Valid commande statuses, matching the ENUM of the `commandes` table.
const (
	CommandeEnAttente = "en_attente"
	CommandeConfirmee = "confirmée"
	CommandeExpediee  = "expédiée"
	CommandeLivree    = "livrée"
)

// CommandeStatuts lists the accepted statut values in declaration order.
var CommandeStatuts = []string{CommandeEnAttente, CommandeConfirmee, CommandeExpediee, CommandeLivree}

// Commande represents a row of the `commandes` table.
type Commande struct {
	IDCommande   int64     `json:"id_commande"`
	DateCommande time.Time `json:"date_commande"`
	Statut       string    `json:"statut"`
	MontantTotal string    `json:"montant_total"` // DECIMAL(10,2)
}

// CommandeInput carries the writable fields of a commande.
// DateCommande is a YYYY-MM-DD string; when absent on create, the
// current date is used.
type CommandeInput struct {
	DateCommande *string `json:"date_commande"`
	Statut       *string `json:"statut"`
	MontantTotal *string `json:"montant_total"`
}
