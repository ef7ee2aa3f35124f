package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"assethub/apperr"
	"assethub/models"
	"assethub/utils"
)

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Image        string `json:"image,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	CompanyLogo  string `json:"companyLogo,omitempty"`
	PackageLimit int    `json:"packageLimit,omitempty"`
	Subscription string `json:"subscription,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

// Register creates an employee or HR account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "name, email and a password of at least 6 characters are required")
		return
	}
	if req.Role != models.RoleEmployee && req.Role != models.RoleHR {
		utils.RespondWithError(w, http.StatusBadRequest, "role must be employee or hr")
		return
	}
	if req.Role == models.RoleHR && req.CompanyName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "company name is required for hr accounts")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	account := &models.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Image:        req.Image,
		BirthDate:    req.BirthDate,
		CreatedAt:    time.Now().UTC(),
	}
	if req.Role == models.RoleHR {
		account.CompanyName = req.CompanyName
		account.CompanyLogo = req.CompanyLogo
		account.PackageLimit = req.PackageLimit
		if account.PackageLimit == 0 {
			account.PackageLimit = 5 // basic tier default
		}
		account.Subscription = req.Subscription
		if account.Subscription == "" {
			account.Subscription = "basic"
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.Insert(ctx, account); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			utils.RespondWithError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		respondError(w, err)
		return
	}

	token, err := utils.GenerateJWT(account.Email, account.Name, account.Role, account.CompanyName)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, Account: account})
}

// Login verifies credentials and issues a JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	account, err := h.Accounts.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil || !utils.CheckPasswordHash(req.Password, account.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(account.Email, account.Name, account.Role, account.CompanyName)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, AuthResponse{Token: token, Account: account})
}
