package handlers

import (
	"context"
	"net/http"
	"time"

	"assethub/models"
	"assethub/store"
	"assethub/utils"
)

type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	Image       *string `json:"image,omitempty"`
	BirthDate   *string `json:"birthDate,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	CompanyLogo *string `json:"companyLogo,omitempty"`
}

// GetProfile returns the calling account.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	account, err := h.Accounts.FindByEmail(ctx, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	account.PasswordHash = ""
	utils.RespondWithJSON(w, http.StatusOK, account)
}

// UpdateProfile edits the calling account's profile fields. Company
// fields are accepted from HR accounts only.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := store.ProfileUpdate{
		Name:      req.Name,
		Image:     req.Image,
		BirthDate: req.BirthDate,
	}
	if callerRole(r) == models.RoleHR {
		upd.CompanyName = req.CompanyName
		upd.CompanyLogo = req.CompanyLogo
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Accounts.UpdateProfile(ctx, callerEmail(r), upd); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.Accounts.FindByEmail(ctx, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	account.PasswordHash = ""
	utils.RespondWithJSON(w, http.StatusOK, account)
}
