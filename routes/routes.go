package routes

import (
	"github.com/gorilla/mux"

	"assethub/handlers"
	"assethub/middleware"
	"assethub/models"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

func RegisterRoutes(r *mux.Router, h *handlers.Handler) {
	// Public
	r.HandleFunc("/health", h.HealthCheck).Methods(MethodsGetOnly...)
	r.HandleFunc("/ws", h.Hub.ServeWS).Methods("GET")
	r.HandleFunc("/api/auth/register", h.Register).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", h.Login).Methods(MethodsPostOnly...)

	// Protected
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// Inventory
	apiRouter.HandleFunc("/assets", h.ListAssets).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets", middleware.RequireRole(models.RoleHR, h.CreateAsset)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/assets/{id}", h.GetAsset).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/assets/{id}", middleware.RequireRole(models.RoleHR, h.UpdateAsset)).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/assets/{id}", middleware.RequireRole(models.RoleHR, h.DeleteAsset)).Methods(MethodsDeleteOnly...)

	// Request lifecycle
	apiRouter.HandleFunc("/requests", middleware.RequireRole(models.RoleEmployee, h.SubmitRequest)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/requests", middleware.RequireRole(models.RoleHR, h.ListRequests)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/requests/{id}/approve", middleware.RequireRole(models.RoleHR, h.ApproveRequest)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/requests/{id}/reject", middleware.RequireRole(models.RoleHR, h.RejectRequest)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/return/{id}", h.ReturnAsset).Methods(MethodsPostOnly...)

	// Projections
	apiRouter.HandleFunc("/my-assets", middleware.RequireRole(models.RoleEmployee, h.ListMyAssets)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/my-team", middleware.RequireRole(models.RoleHR, h.ListMyTeam)).Methods(MethodsGetOnly...)

	// Profile
	apiRouter.HandleFunc("/profile", h.GetProfile).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/profile", h.UpdateProfile).Methods(MethodsPutOnly...)
}
