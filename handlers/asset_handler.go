package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/inventory"
	"assethub/models"
	"assethub/store"
	"assethub/utils"
)

type CreateAssetRequest struct {
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Kind     string `json:"kind"`
	Quantity int    `json:"quantity"`
}

type UpdateAssetRequest struct {
	Name     string `json:"name,omitempty"`
	Image    string `json:"image,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
}

// CreateAsset adds an asset to the acting HR's inventory.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hr, err := h.Accounts.FindByEmail(ctx, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	asset, err := h.Ledger.Create(ctx, inventory.CreateInput{
		Name:        req.Name,
		Image:       req.Image,
		Kind:        req.Kind,
		Quantity:    req.Quantity,
		HREmail:     hr.Email,
		CompanyName: hr.CompanyName,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, asset)
}

// ListAssets returns assets filtered by the query string. HR callers
// see their own inventory; employees browse every company's catalog
// unless they pass owner=.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := store.AssetFilter{
		NameSubstring: query.Get("search"),
		Kind:          query.Get("type"),
		OnlyAvailable: query.Get("available") == "true",
		SortByRecency: query.Get("sort") == "recent",
	}
	if owner := query.Get("owner"); owner != "" {
		filter.HREmail = owner
	} else if callerRole(r) == models.RoleHR {
		filter.HREmail = callerEmail(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assets, err := h.Ledger.List(ctx, filter)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assets)
}

// GetAsset returns one asset by id.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := h.Ledger.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, asset)
}

// UpdateAsset edits an asset owned by the acting HR.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req UpdateAssetRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := h.Ledger.Update(ctx, id, callerEmail(r), inventory.UpdateInput{
		Name:     req.Name,
		Image:    req.Image,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, asset)
}

// DeleteAsset removes an asset; refused with 409 while units are out
// on active assignments.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Controller.DeleteAsset(ctx, id, callerEmail(r)); err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"deleted": id.Hex()})
}
