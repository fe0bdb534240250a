package service

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"barangaylink/models"

	"github.com/google/uuid"
)

// ComplaintService is the complaint entity's only save/mutate surface. It
// composes the assignment resolver, the SLA calculator, the approval gate
// and the lifecycle state machine on every create and update; handlers and
// workers never touch the store directly.
type ComplaintService struct {
	complaints ComplaintStore
	comments   CommentStore
	categories CategoryStore
	directory  RoleDirectory
	resolver   *AssignmentResolver
	notifier   NotificationQueue

	now func() time.Time
}

// NewComplaintService creates the lifecycle orchestrator. notifier may be
// nil; every notification is best-effort.
func NewComplaintService(
	complaints ComplaintStore,
	comments CommentStore,
	categories CategoryStore,
	directory RoleDirectory,
	notifier NotificationQueue,
) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		comments:   comments,
		categories: categories,
		directory:  directory,
		resolver:   NewAssignmentResolver(directory),
		notifier:   notifier,
		now:        time.Now,
	}
}

// newReferenceNumber generates the citizen-facing complaint number.
// Format: BRGY-YYYYMMDD-{8 uuid chars}.
func newReferenceNumber(now time.Time) string {
	return fmt.Sprintf("BRGY-%s-%s", now.UTC().Format("20060102"), uuid.New().String()[:8])
}

// CreateComplaint persists a new complaint: approval=pending, status=pending,
// owner from the assignment resolver (possibly none), deadlines from the SLA
// calculator. complainant is nil for anonymous submissions.
func (s *ComplaintService) CreateComplaint(req *models.CreateComplaintRequest, complainant *models.Account) (*models.CreateComplaintResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if !req.IsAnonymous && complainant == nil {
		return nil, &ValidationError{Field: "is_anonymous", Message: "a non-anonymous complaint requires a logged-in complainant"}
	}
	// Officials handle complaints; they do not file them.
	if complainant != nil && complainant.Role.CanManageComplaints() {
		return nil, &PermissionError{Role: complainant.Role, Action: "file complaints"}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", req.Priority)}
	}

	category, err := s.categories.GetCategory(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil || !category.IsActive {
		return nil, &ValidationError{Field: "category_id", Message: "unknown or inactive category"}
	}

	// Routing failures never block intake: a missing rule or an unreachable
	// directory just means the fallback chain decides, possibly nobody.
	rule, err := s.categories.GetRuleForCategory(req.CategoryID)
	if err != nil {
		log.Printf("[intake] assignment rule lookup failed for category %d: %v", req.CategoryID, err)
		rule = nil
	}
	owner, assignmentNote := s.resolver.Resolve(rule)

	now := s.now()
	assignmentDue, responseDue := ComputeDeadlines(priority, now)

	complaint := &models.Complaint{
		ReferenceNumber: newReferenceNumber(now),
		IsAnonymous:     req.IsAnonymous,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          models.StatusPending,
		Priority:        priority,
		Approval:        models.ApprovalPending,
		AssignmentDue:   sql.NullTime{Time: assignmentDue, Valid: true},
		ResponseDue:     sql.NullTime{Time: responseDue, Valid: true},
		CreatedAt:       now,
	}
	if complainant != nil && !req.IsAnonymous {
		complaint.ComplainantID = sql.NullInt64{Int64: complainant.AccountID, Valid: true}
	}
	if req.IsAnonymous && req.AnonymousContact != nil && *req.AnonymousContact != "" {
		complaint.AnonymousContact = sql.NullString{String: *req.AnonymousContact, Valid: true}
	}
	if req.Location != nil && *req.Location != "" {
		complaint.Location = sql.NullString{String: *req.Location, Valid: true}
	}
	if owner != nil {
		complaint.AssignedToID = sql.NullInt64{Int64: owner.AccountID, Valid: true}
	}
	if assignmentNote != "" {
		complaint.AssignmentNotes = sql.NullString{String: assignmentNote, Valid: true}
	}

	if err := s.complaints.Create(complaint); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	if owner == nil {
		log.Printf("[intake] no eligible assignee for complaint %d (%s); flagged for manual triage",
			complaint.ComplaintID, complaint.ReferenceNumber)
	} else {
		s.notifyAccount(complaint, owner.AccountID, models.EventComplaintAssigned,
			fmt.Sprintf("New Complaint Assigned - %s", complaint.Title),
			fmt.Sprintf("Complaint %s (%s priority, category %s) has been assigned to you.",
				complaint.ReferenceNumber, priority, category.Name))
	}
	s.notifyComplainant(complaint, models.EventComplaintReceived,
		fmt.Sprintf("Complaint Received - %s", complaint.Title),
		fmt.Sprintf("Your complaint %s has been received and is awaiting review.", complaint.ReferenceNumber))

	resp := &models.CreateComplaintResponse{
		ComplaintID:     complaint.ComplaintID,
		ReferenceNumber: complaint.ReferenceNumber,
		Status:          complaint.Status,
		Approval:        complaint.Approval,
		Message:         "Complaint submitted successfully",
	}
	if complaint.AssignedToID.Valid {
		id := complaint.AssignedToID.Int64
		resp.AssignedToID = &id
	}
	ad, rd := assignmentDue, responseDue
	resp.AssignmentDue = &ad
	resp.ResponseDue = &rd
	return resp, nil
}

// Approve passes the approval gate and hands the case to the chairman: the
// lifecycle auto-advances pending → in_progress and the eligible chairman
// becomes the owner, bypassing the resolver for this one transition. When the
// chairman already accepted the complaint, the gate decision is recorded on
// its own and status and owner stay untouched. Legal only while the gate is
// pending; a second approve fails instead of silently re-applying.
func (s *ComplaintService) Approve(complaintID int64, actor *models.Account) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionApprove); err != nil {
		return nil, err
	}

	// Eligibility snapshot before the transactional boundary; the directory
	// is read-only and a later eligibility change does not retract the
	// assignment.
	chairman := s.firstEligible(models.AuthorityRole)

	var oldStatus models.Status
	updated, err := s.complaints.Mutate(complaintID, func(c *models.Complaint) error {
		if c.Approval != models.ApprovalPending {
			return &ApprovalStateError{ComplaintID: c.ComplaintID, Current: c.Approval}
		}
		now := s.now()
		ensureDeadlines(c, now)
		oldStatus = c.Status

		c.Approval = models.ApprovalApproved
		c.ApprovedByID = sql.NullInt64{Int64: actor.AccountID, Valid: true}
		c.ApprovedAt = sql.NullTime{Time: now, Valid: true}

		// Already accepted before the gate decision: the lifecycle moved on
		// its own and the acceptor stays the owner. Record the gate only.
		if c.Status != models.StatusPending {
			c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
			return nil
		}

		var actorID int64
		if chairman != nil {
			actorID = chairman.AccountID
		}
		if err := applyTransition(c, models.StatusInProgress, actorID, now); err != nil {
			return err
		}
		if chairman != nil {
			c.AssignedToID = sql.NullInt64{Int64: chairman.AccountID, Valid: true}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldStatus == models.StatusPending {
		if chairman != nil {
			s.notifyAccount(updated, chairman.AccountID, models.EventComplaintAssigned,
				fmt.Sprintf("Complaint Approved for Action - %s", updated.Title),
				fmt.Sprintf("Complaint %s has been approved and assigned to you for processing.", updated.ReferenceNumber))
		} else {
			log.Printf("[approval] complaint %d approved with no eligible %s to hand off to", complaintID, models.AuthorityRole)
		}
	}
	s.notifyStatusChange(updated)

	return &models.TransitionResponse{
		ComplaintID:     updated.ComplaintID,
		ReferenceNumber: updated.ReferenceNumber,
		OldStatus:       oldStatus,
		NewStatus:       updated.Status,
		Message:         "Complaint approved",
	}, nil
}

// Reject closes the approval gate permanently. The lifecycle status is left
// untouched; the record becomes terminal and read-only, excluded from every
// active queue. A non-empty reason is mandatory.
func (s *ComplaintService) Reject(complaintID int64, actor *models.Account, reason string) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionReject); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "rejection_reason", Message: "rejection reason is required"}
	}

	updated, err := s.complaints.Mutate(complaintID, func(c *models.Complaint) error {
		if c.Approval != models.ApprovalPending {
			return &ApprovalStateError{ComplaintID: c.ComplaintID, Current: c.Approval}
		}
		now := s.now()
		c.Approval = models.ApprovalRejected
		c.ApprovedByID = sql.NullInt64{Int64: actor.AccountID, Valid: true} // who processed the decision
		c.RejectionReason = sql.NullString{String: reason, Valid: true}
		c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyComplainant(updated, models.EventComplaintRejected,
		fmt.Sprintf("Complaint Rejected - %s", updated.Title),
		fmt.Sprintf("Your complaint %s was not accepted for processing. Reason: %s", updated.ReferenceNumber, reason))

	return &models.TransitionResponse{
		ComplaintID:     updated.ComplaintID,
		ReferenceNumber: updated.ReferenceNumber,
		OldStatus:       updated.Status,
		NewStatus:       updated.Status,
		Message:         "Complaint rejected",
	}, nil
}

// Accept is the manual pending → in_progress action for a complaint that was
// not auto-advanced by approval. The acting chairman becomes the owner if
// the complaint has none.
func (s *ComplaintService) Accept(complaintID int64, actor *models.Account) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionAccept); err != nil {
		return nil, err
	}
	return s.transition(complaintID, actor, models.StatusInProgress, nil, "Complaint accepted")
}

// MarkResolved moves in_progress → resolved. Resolution notes are mandatory;
// proof must either accompany this call or already exist on the record
// (including a comment attachment). Timestamps are set exactly once.
func (s *ComplaintService) MarkResolved(complaintID int64, actor *models.Account, req *models.ResolveRequest) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionResolve); err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, &ValidationError{Field: "resolution_notes", Message: "resolution notes are required"}
	}
	var proof string
	if req.Proof != nil {
		proof = strings.TrimSpace(*req.Proof)
	}

	prepare := func(c *models.Complaint) error {
		if proof == "" && !c.ResolutionProof.Valid {
			hasProof, err := s.comments.HasProofAttachment(c.ComplaintID)
			if err != nil {
				return fmt.Errorf("failed to check for proof attachments: %w", err)
			}
			if !hasProof {
				return &ValidationError{Field: "resolution_proof", Message: "resolution proof is required"}
			}
		}
		c.ResolutionNotes = sql.NullString{String: notes, Valid: true}
		if proof != "" {
			c.ResolutionProof = sql.NullString{String: proof, Valid: true}
		}
		return nil
	}
	return s.transition(complaintID, actor, models.StatusResolved, prepare, "Complaint resolved")
}

// Close moves resolved → closed. Terminal.
func (s *ComplaintService) Close(complaintID int64, actor *models.Account) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionClose); err != nil {
		return nil, err
	}
	return s.transition(complaintID, actor, models.StatusClosed, nil, "Complaint closed")
}

// Reopen is the administrative resolved → in_progress correction. The
// resolution stamps are cleared so a later resolve sets them afresh.
func (s *ComplaintService) Reopen(complaintID int64, actor *models.Account) (*models.TransitionResponse, error) {
	if err := checkRole(actor, actionReopen); err != nil {
		return nil, err
	}
	guard := func(c *models.Complaint) error {
		if c.Status != models.StatusResolved {
			return &IllegalTransitionError{
				ComplaintID: c.ComplaintID,
				Current:     c.Status,
				Requested:   models.StatusInProgress,
				Allowed:     AllowedNext(c.Status),
			}
		}
		return nil
	}
	return s.transition(complaintID, actor, models.StatusInProgress, guard, "Complaint reopened")
}

// transition is the shared atomic read-modify-write for lifecycle edges.
// prepare (optional) runs against the re-read row before the edge is taken;
// legality is always checked against that re-read state so two racing
// callers cannot both advance.
func (s *ComplaintService) transition(
	complaintID int64,
	actor *models.Account,
	to models.Status,
	prepare func(*models.Complaint) error,
	message string,
) (*models.TransitionResponse, error) {
	var oldStatus models.Status
	updated, err := s.complaints.Mutate(complaintID, func(c *models.Complaint) error {
		if c.Rejected() {
			return &ApprovalStateError{ComplaintID: c.ComplaintID, Current: c.Approval}
		}
		now := s.now()
		ensureDeadlines(c, now)
		oldStatus = c.Status
		if !canTransition(c.Status, to) {
			return &IllegalTransitionError{
				ComplaintID: c.ComplaintID,
				Current:     c.Status,
				Requested:   to,
				Allowed:     AllowedNext(c.Status),
			}
		}
		if prepare != nil {
			if err := prepare(c); err != nil {
				return err
			}
		}
		return applyTransition(c, to, actor.AccountID, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(updated)

	return &models.TransitionResponse{
		ComplaintID:     updated.ComplaintID,
		ReferenceNumber: updated.ReferenceNumber,
		OldStatus:       oldStatus,
		NewStatus:       updated.Status,
		Message:         message,
	}, nil
}

// Delete permanently removes a complaint. Administrative action, gated to
// terminal lifecycle states only.
func (s *ComplaintService) Delete(complaintID int64, actor *models.Account) error {
	if err := checkRole(actor, actionDelete); err != nil {
		return err
	}
	c, err := s.complaints.GetByID(complaintID)
	if err != nil {
		return err
	}
	if c.Status != models.StatusResolved && c.Status != models.StatusClosed {
		return &ValidationError{Field: "status", Message: "only resolved or closed complaints can be deleted"}
	}
	return s.complaints.Delete(complaintID)
}

// AddComment records a chairman note, optionally with an attachment. An
// attachment stored here later satisfies the resolution-proof requirement.
func (s *ComplaintService) AddComment(complaintID int64, actor *models.Account, req *models.CommentRequest) (*models.ComplaintComment, error) {
	if err := checkRole(actor, actionComment); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, &ValidationError{Field: "comment", Message: "comment text is required"}
	}
	if _, err := s.complaints.GetByID(complaintID); err != nil {
		return nil, err
	}

	comment := &models.ComplaintComment{
		ComplaintID: complaintID,
		AuthorID:    actor.AccountID,
		Comment:     req.Comment,
		IsInternal:  req.IsInternal,
		CreatedAt:   s.now(),
	}
	if req.Attachment != nil && *req.Attachment != "" {
		comment.Attachment = sql.NullString{String: *req.Attachment, Valid: true}
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// GetComplaint returns a complaint with its comments, enforcing viewer
// visibility: residents see only their own complaints and never internal
// comments.
func (s *ComplaintService) GetComplaint(complaintID int64, viewer *models.Account) (*models.Complaint, []models.ComplaintComment, error) {
	c, err := s.complaints.GetByID(complaintID)
	if err != nil {
		return nil, nil, err
	}
	if viewer.Role == models.RoleResident {
		if !c.ComplainantID.Valid || c.ComplainantID.Int64 != viewer.AccountID {
			return nil, nil, ErrNotFound
		}
	}
	comments, err := s.comments.ListComments(complaintID, viewer.Role.IsOfficial())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return c, comments, nil
}

// ListComplaints returns the viewer's active queue. Rejected complaints are
// excluded for residents and the secretary; the chairman and other officials
// only ever see approved complaints.
func (s *ComplaintService) ListComplaints(viewer *models.Account, filter models.ComplaintFilter) ([]models.Complaint, error) {
	s.applyVisibility(viewer, &filter)
	return s.complaints.List(filter)
}

// Statistics returns per-status totals for the management dashboard.
func (s *ComplaintService) Statistics(viewer *models.Account) (*models.StatusCounts, error) {
	if !viewer.Role.CanManageComplaints() {
		return nil, &PermissionError{Role: viewer.Role, Action: "view complaint statistics"}
	}
	return s.complaints.CountByStatus(models.ComplaintFilter{})
}

func (s *ComplaintService) applyVisibility(viewer *models.Account, filter *models.ComplaintFilter) {
	switch {
	case viewer.Role == models.RoleResident:
		id := viewer.AccountID
		filter.ComplainantID = &id
		filter.ExcludeRejected = true
	case viewer.Role == models.ReviewerRole:
		filter.ExcludeRejected = true
	default:
		// Chairman and the other officials work the approved queue only.
		filter.ApprovedOnly = true
	}
}

func (s *ComplaintService) firstEligible(role models.Role) *models.Account {
	accounts, err := s.directory.ListEligible(role)
	if err != nil {
		log.Printf("[lifecycle] role directory lookup failed for %s: %v", role, err)
		return nil
	}
	for _, a := range accounts {
		if a.Eligible() {
			acc := a
			return &acc
		}
	}
	return nil
}
