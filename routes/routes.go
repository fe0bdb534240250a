package routes

import (
	"net/http"

	"barangaylink/handler"
	"barangaylink/middleware"
	"barangaylink/models"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes.
func SetupRoutes(
	complaintHandler *handler.ComplaintHandler,
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	router := mux.NewRouter()

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// POST /api/v1/auth/login - Authenticate a resident or official
	apiV1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// GET /api/v1/categories - Active complaint categories (public, needed by the intake form)
	apiV1.HandleFunc("/categories", complaintHandler.ListCategories).Methods("GET")

	complaints := apiV1.PathPrefix("/complaints").Subrouter()

	// POST /api/v1/complaints - File a complaint (anonymous allowed)
	complaints.Handle("", authMiddleware.OptionalAuth(http.HandlerFunc(complaintHandler.CreateComplaint))).Methods("POST")

	// GET /api/v1/complaints - The viewer's queue (role decides visibility)
	complaints.Handle("", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.ListComplaints))).Methods("GET")

	// GET /api/v1/complaints/statistics - Per-status totals (management only)
	complaints.Handle("/statistics", authMiddleware.RequireAuth(
		middleware.RequireRole(models.ReviewerRole, models.AuthorityRole)(
			http.HandlerFunc(complaintHandler.Statistics)))).Methods("GET")

	// GET /api/v1/complaints/{id} - Complaint detail with comments
	complaints.Handle("/{id}", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.GetComplaint))).Methods("GET")

	// DELETE /api/v1/complaints/{id} - Remove a resolved or closed complaint
	complaints.Handle("/{id}", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.DeleteComplaint))).Methods("DELETE")

	// Approval gate (secretary)
	complaints.Handle("/{id}/approve", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Approve))).Methods("POST")
	complaints.Handle("/{id}/reject", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Reject))).Methods("POST")

	// Lifecycle actions (chairman)
	complaints.Handle("/{id}/accept", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Accept))).Methods("POST")
	complaints.Handle("/{id}/resolve", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Resolve))).Methods("POST")
	complaints.Handle("/{id}/close", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Close))).Methods("POST")
	complaints.Handle("/{id}/reopen", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Reopen))).Methods("POST")
	complaints.Handle("/{id}/comments", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.AddComment))).Methods("POST")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return router
}
