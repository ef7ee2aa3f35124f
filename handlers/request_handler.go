package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/store"
	"assethub/utils"
)

type SubmitRequestBody struct {
	AssetID string `json:"assetId"`
	Note    string `json:"note,omitempty"`
}

// SubmitRequest files an employee's pending request for one unit.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assetID, err := primitive.ObjectIDFromHex(body.AssetID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req, err := h.Controller.Submit(ctx, callerEmail(r), assetID, body.Note)
	if err != nil {
		respondError(w, err)
		return
	}

	h.Hub.SendRequestSubmitted(req.HREmail, req, req.EmployeeEmail)
	utils.RespondWithJSON(w, http.StatusCreated, req)
}

// ApproveRequest processes a pending request owned by the acting HR.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	req, err := h.Controller.Approve(ctx, id, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	h.Hub.SendRequestProcessed(req.HREmail, req.ID.Hex(), req.Status, callerEmail(r))
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// RejectRequest declines a pending request. No side effects beyond the
// status flip.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req, err := h.Controller.Reject(ctx, id, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	h.Hub.SendRequestProcessed(req.HREmail, req.ID.Hex(), req.Status, callerEmail(r))
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// ReturnAsset closes custody for an approved returnable request and
// puts the unit back into inventory.
func (h *Handler) ReturnAsset(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req, err := h.Controller.Return(ctx, id, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	h.Hub.SendAssetReturned(req.HREmail, req.ID.Hex(), callerEmail(r))
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// ListMyAssets returns the calling employee's requests, newest first.
func (h *Handler) ListMyAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	requests, err := h.Controller.ListForEmployee(ctx, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, requests)
}

// ListRequests returns the acting HR's inbox with optional
// status/search filters.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.RequestFilter{
		Status: query.Get("status"),
		Search: query.Get("search"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	requests, err := h.Controller.ListForHR(ctx, callerEmail(r), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, requests)
}

// ListMyTeam returns the employees affiliated to the acting HR.
func (h *Handler) ListMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	team, err := h.Controller.Team(ctx, callerEmail(r))
	if err != nil {
		respondError(w, err)
		return
	}

	for i := range team {
		team[i].PasswordHash = ""
	}

	utils.RespondWithJSON(w, http.StatusOK, team)
}
