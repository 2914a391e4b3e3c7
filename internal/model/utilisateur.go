package model

// Utilisateur represents a row of the `utilisateur` table.  The
// MotDePasse field always holds the bcrypt hash of the password,
// never the plaintext, and is excluded from every JSON response.
//
// Fields:
//  IDUtilisateur – primary key identifier.
//  Nom           – last name.
//  Prenom        – first name.
//  Email         – unique email address.
//  Role          – free-form role tag (e.g. "client", "artisan").
//  Telephone     – contact phone number.
//  MotDePasse    – bcrypt password hash (nullable in the schema,
//                  populated before the row becomes durable).
type Utilisateur struct {
	IDUtilisateur int64  `json:"id_utilisateur"` // utilisateur.id_utilisateur
	Nom           string `json:"nom"`            // utilisateur.nom
	Prenom        string `json:"prenom"`         // utilisateur.prenom
	Email         string `json:"email"`          // utilisateur.email (unique)
	Role          string `json:"role"`           // utilisateur.role
	Telephone     string `json:"telephone"`      // utilisateur.telephone
	MotDePasse    string `json:"-"`              // utilisateur.mot_de_passe (bcrypt hash)
}

// UtilisateurResume is the subset of user fields attached to related
// entities (e.g. the owner of a projet).
type UtilisateurResume struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}
