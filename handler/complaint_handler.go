package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"barangaylink/middleware"
	"barangaylink/models"
	"barangaylink/service"

	"github.com/gorilla/mux"
)

// ComplaintHandler handles HTTP requests for the complaint lifecycle.
type ComplaintHandler struct {
	service *ServiceSet
}

// ServiceSet bundles the services the handlers depend on.
type ServiceSet struct {
	Complaints *service.ComplaintService
	Categories CategoryLister
}

// CategoryLister exposes the active categories for the intake form.
type CategoryLister interface {
	ListCategories() ([]models.Category, error)
}

// NewComplaintHandler creates a new complaint handler.
func NewComplaintHandler(services *ServiceSet) *ComplaintHandler {
	return &ComplaintHandler{service: services}
}

func complaintID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// CreateComplaint handles POST /api/v1/complaints. Accepts both
// authenticated resident submissions and anonymous ones.
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req models.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	account := middleware.AccountFromContext(r.Context())
	if account == nil && !req.IsAnonymous {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Log in or submit anonymously")
		return
	}

	resp, err := h.service.Complaints.CreateComplaint(&req, account)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

// ListComplaints handles GET /api/v1/complaints. The viewer's role decides
// what is visible; query parameters narrow further.
func (h *ComplaintHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	var filter models.ComplaintFilter
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status := models.Status(s)
		filter.Status = &status
	}
	if p := q.Get("priority"); p != "" {
		priority := models.Priority(p)
		filter.Priority = &priority
	}
	if c := q.Get("category_id"); c != "" {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			filter.CategoryID = &id
		}
	}
	filter.Search = q.Get("search")

	complaints, err := h.service.Complaints.ListComplaints(account, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// GetComplaint handles GET /api/v1/complaints/{id}.
func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	account := middleware.AccountFromContext(r.Context())

	complaint, comments, err := h.service.Complaints.GetComplaint(id, account)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaint": complaint,
		"comments":  comments,
	})
}

// Approve handles POST /api/v1/complaints/{id}/approve.
func (h *ComplaintHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, account *models.Account) (*models.TransitionResponse, error) {
		return h.service.Complaints.Approve(id, account)
	})
}

// Reject handles POST /api/v1/complaints/{id}/reject.
func (h *ComplaintHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	var req models.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	account := middleware.AccountFromContext(r.Context())

	resp, err := h.service.Complaints.Reject(id, account, req.Reason)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// Accept handles POST /api/v1/complaints/{id}/accept.
func (h *ComplaintHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, account *models.Account) (*models.TransitionResponse, error) {
		return h.service.Complaints.Accept(id, account)
	})
}

// Resolve handles POST /api/v1/complaints/{id}/resolve.
func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	var req models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	account := middleware.AccountFromContext(r.Context())

	resp, err := h.service.Complaints.MarkResolved(id, account, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// Close handles POST /api/v1/complaints/{id}/close.
func (h *ComplaintHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, account *models.Account) (*models.TransitionResponse, error) {
		return h.service.Complaints.Close(id, account)
	})
}

// Reopen handles POST /api/v1/complaints/{id}/reopen.
func (h *ComplaintHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, account *models.Account) (*models.TransitionResponse, error) {
		return h.service.Complaints.Reopen(id, account)
	})
}

func (h *ComplaintHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(int64, *models.Account) (*models.TransitionResponse, error),
) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	resp, err := fn(id, middleware.AccountFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// AddComment handles POST /api/v1/complaints/{id}/comments.
func (h *ComplaintHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	account := middleware.AccountFromContext(r.Context())

	comment, err := h.service.Complaints.AddComment(id, account, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

// DeleteComplaint handles DELETE /api/v1/complaints/{id}.
func (h *ComplaintHandler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid complaint ID")
		return
	}
	account := middleware.AccountFromContext(r.Context())

	if err := h.service.Complaints.Delete(id, account); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Complaint deleted"})
}

// Statistics handles GET /api/v1/complaints/statistics.
func (h *ComplaintHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	counts, err := h.service.Complaints.Statistics(account)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}

// ListCategories handles GET /api/v1/categories. Public; the intake form
// needs it before login.
func (h *ComplaintHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories.ListCategories()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
