package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/batiflow/batiflow-api/internal/config"
	"github.com/batiflow/batiflow-api/internal/model"
	"github.com/batiflow/batiflow-api/internal/repository"
	"github.com/batiflow/batiflow-api/internal/utils"
	"github.com/batiflow/batiflow-api/internal/validation"
)

// UserStore is the persistence capability the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *model.Utilisateur, password string, cost int) (int64, error)
	GetByEmail(ctx context.Context, email string) (model.Utilisateur, error)
	GetByID(ctx context.Context, id int64) (model.Utilisateur, error)
	List(ctx context.Context) ([]model.Utilisateur, error)
	UpdateProfile(ctx context.Context, id int64, upd repository.ProfileUpdate) error
}

// AuthHandler bundles dependencies for the user endpoints: signing
// secret and hashing cost come from the configuration, persistence
// from the user store.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// credentialsMessage is the single message returned for every failed
// credential check; it never reveals which factor was wrong.
const credentialsMessage = "Email ou mot de passe incorrect"

// registerRules are the field rules for POST /utilisateurs/register.
var registerRules = []validation.Rule{
	{Field: "nom", Label: "Nom", Kind: validation.String, Required: true, Escape: true},
	{Field: "prenom", Label: "Prénom", Kind: validation.String, Required: true, Escape: true},
	{Field: "email", Label: "Email", Kind: validation.String, Required: true},
	{Field: "mot_de_passe", Label: "Mot de passe", Kind: validation.String, Required: true, MinLen: 6},
	{Field: "telephone", Label: "Téléphone", Kind: validation.String, Required: true, Escape: true},
	{Field: "role", Label: "Role", Kind: validation.String, Required: true, Escape: true},
}

type registerReq struct {
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Email      string `json:"email"`
	MotDePasse string `json:"mot_de_passe"`
	Telephone  string `json:"telephone"`
	Role       string `json:"role"`
}

type loginReq struct {
	Email      string `json:"email"`
	MotDePasse string `json:"mot_de_passe"`
}

type userPart struct {
	ID    int64  `json:"id_utilisateur"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates a user and returns a token immediately. The
// password is hashed before the row becomes durable; the plaintext is
// never persisted.
func (h *AuthHandler) Register(c echo.Context) error {
	body, errs := readBody(c)
	if errs != nil {
		return failValidation(c, errs)
	}
	normalized, errs := validation.Validate(body, registerRules, false)
	if email, ok := normalized["email"].(string); ok {
		if !validation.IsEmail(strings.TrimSpace(email)) {
			errs = append(errs, validation.FieldError{Field: "email", Message: "Email invalide"})
		}
	}
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	var req registerReq
	if err := remarshal(normalized, &req); err != nil {
		return serverError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.Utilisateur{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Email:     strings.TrimSpace(req.Email),
		Role:      req.Role,
		Telephone: req.Telephone,
	}
	id, err := h.Users.Create(ctx, &u, req.MotDePasse, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusBadRequest, "Cet email est déjà utilisé")
		}
		return serverError(c, err)
	}

	token, err := utils.NewToken(h.Cfg.JWTSecret, id, u.Email, u.Role, h.tokenTTL())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Utilisateur créé avec succès",
		"utilisateur": echo.Map{
			"id_utilisateur": id,
			"email":          u.Email,
		},
		"token": token,
	})
}

// Login verifies credentials and returns a token with the user's
// non-sensitive identity fields. Unknown email and wrong password are
// indistinguishable to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": credentialsMessage})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": credentialsMessage})
		}
		return serverError(c, err)
	}
	if !utils.VerifyPassword(u.MotDePasse, req.MotDePasse) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": credentialsMessage})
	}

	token, err := utils.NewToken(h.Cfg.JWTSecret, u.IDUtilisateur, u.Email, u.Role, h.tokenTTL())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  userPart{ID: u.IDUtilisateur, Email: u.Email, Role: u.Role},
		"token": token,
	})
}

// Profile returns the authenticated user's record.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentification requise"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, "Utilisateur retrieved", u)
}

// List returns every user. The password hash field never serializes.
func (h *AuthHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return success(c, http.StatusOK, "Utilisateurs retrieved", users)
}

// profileUpdateRules are the field rules for PUT /utilisateurs/profile.
var profileUpdateRules = []validation.Rule{
	{Field: "nom", Label: "Nom", Kind: validation.String, Escape: true},
	{Field: "prenom", Label: "Prénom", Kind: validation.String, Escape: true},
	{Field: "telephone", Label: "Téléphone", Kind: validation.String, Escape: true},
	{Field: "ancien_mot_de_passe", Label: "Ancien mot de passe", Kind: validation.String},
	{Field: "nouveau_mot_de_passe", Label: "Nouveau mot de passe", Kind: validation.String, MinLen: 6},
}

type profileUpdateReq struct {
	Nom               *string `json:"nom"`
	Prenom            *string `json:"prenom"`
	Telephone         *string `json:"telephone"`
	AncienMotDePasse  *string `json:"ancien_mot_de_passe"`
	NouveauMotDePasse *string `json:"nouveau_mot_de_passe"`
}

// UpdateProfile changes the authenticated user's name and contact
// fields freely; replacing the password additionally requires the
// previous plaintext to verify against the stored hash.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentification requise"})
	}
	body, errs := readBody(c)
	if errs != nil {
		return failValidation(c, errs)
	}
	normalized, errs := validation.Validate(body, profileUpdateRules, true)
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	var req profileUpdateReq
	if err := remarshal(normalized, &req); err != nil {
		return serverError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	upd := repository.ProfileUpdate{Nom: req.Nom, Prenom: req.Prenom, Telephone: req.Telephone}
	if req.NouveauMotDePasse != nil {
		u, err := h.Users.GetByID(ctx, id)
		if err != nil {
			return storageError(c, err)
		}
		if req.AncienMotDePasse == nil || !utils.VerifyPassword(u.MotDePasse, *req.AncienMotDePasse) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": credentialsMessage})
		}
		hash, err := utils.HashPassword(*req.NouveauMotDePasse, h.Cfg.BcryptCost)
		if err != nil {
			return serverError(c, err)
		}
		upd.NewHash = &hash
	}
	if err := h.Users.UpdateProfile(ctx, id, upd); err != nil {
		return storageError(c, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return storageError(c, err)
	}
	return success(c, http.StatusOK, "Utilisateur updated", u)
}

func (h *AuthHandler) tokenTTL() time.Duration {
	return time.Duration(h.Cfg.TokenTTLHours) * time.Hour
}

// readBody decodes a JSON object body, tolerating an empty body.
func readBody(c echo.Context) (map[string]any, []validation.FieldError) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
	}
	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, []validation.FieldError{{Field: "body", Message: "Corps de requête invalide"}}
		}
	}
	return body, nil
}

// remarshal converts a normalized map into a typed request struct.
func remarshal(m map[string]any, dst interface{}) error {
	buf, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}
