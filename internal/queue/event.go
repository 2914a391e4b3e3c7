// Package queue defines message payloads exchanged over the message broker.
package queue

// CommandeStatusEvent is published whenever an order is created or its
// status changes. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type CommandeStatusEvent struct {
    IDCommande   int64  `json:"id_commande"`
    Statut       string `json:"statut"`
    MontantTotal string `json:"montant_total"`
    DateCommande string `json:"date_commande"`
    OccurredAt   string `json:"occurred_at"`
}
