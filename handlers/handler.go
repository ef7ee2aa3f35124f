package handlers

import (
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"assethub/apperr"
	"assethub/inventory"
	"assethub/lifecycle"
	"assethub/store"
	"assethub/utils"
	"assethub/websocket"
)

// Handler carries the injected collaborators; one instance is built in
// main and shared by every route.
type Handler struct {
	Ledger     *inventory.Ledger
	Controller *lifecycle.Controller
	Accounts   store.AccountStore
	Hub        *websocket.Hub
	Mongo      *mongo.Client // nil when running against the in-memory store
}

// respondError translates a core error into its HTTP status.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		utils.RespondWithError(w, status, "internal error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}

func callerEmail(r *http.Request) string {
	email, _ := r.Context().Value("email").(string)
	return email
}

func callerRole(r *http.Request) string {
	role, _ := r.Context().Value("role").(string)
	return role
}
