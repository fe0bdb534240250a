package service

import (
	"database/sql"
	"time"

	"barangaylink/models"
)

// lifecycleEdges is the complete transition graph. Forward progress only,
// except resolved → in_progress which is the administrative reopen
// correction; no state is ever skipped.
var lifecycleEdges = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress},
	models.StatusInProgress: {models.StatusResolved},
	models.StatusResolved:   {models.StatusClosed, models.StatusInProgress},
	models.StatusClosed:     {},
}

// AllowedNext returns the legal next states for a lifecycle state.
func AllowedNext(s models.Status) []models.Status {
	next := lifecycleEdges[s]
	out := make([]models.Status, len(next))
	copy(out, next)
	return out
}

func canTransition(from, to models.Status) bool {
	for _, s := range lifecycleEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// applyTransition moves c along one lifecycle edge and applies the
// exactly-once timestamp side effects. Evidence requirements (resolution
// notes/proof) are the caller's job; the graph is enforced here regardless
// of who calls.
func applyTransition(c *models.Complaint, to models.Status, actorID int64, now time.Time) error {
	if !canTransition(c.Status, to) {
		return &IllegalTransitionError{
			ComplaintID: c.ComplaintID,
			Current:     c.Status,
			Requested:   to,
			Allowed:     AllowedNext(c.Status),
		}
	}

	from := c.Status
	switch to {
	case models.StatusInProgress:
		if from == models.StatusResolved {
			// Reopen: the one backward edge. Resolution stamps are cleared so
			// a later resolve sets them afresh.
			c.ResolvedAt = sql.NullTime{}
			c.ResolvedByID = sql.NullInt64{}
		} else {
			if !c.AcceptedAt.Valid {
				c.AcceptedAt = sql.NullTime{Time: now, Valid: true}
			}
			if !c.AssignedToID.Valid && actorID != 0 {
				c.AssignedToID = sql.NullInt64{Int64: actorID, Valid: true}
			}
		}
	case models.StatusResolved:
		if !c.ResolvedAt.Valid {
			c.ResolvedAt = sql.NullTime{Time: now, Valid: true}
		}
		if !c.ResolvedByID.Valid && actorID != 0 {
			c.ResolvedByID = sql.NullInt64{Int64: actorID, Valid: true}
		}
	case models.StatusClosed:
		// No additional fields.
	}

	c.Status = to
	c.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

// Engine actions and the roles allowed to perform them. Authorization is
// checked once per operation against this table, never inline in handlers.
type action string

const (
	actionApprove action = "approve complaints"
	actionReject  action = "reject complaints"
	actionAccept  action = "accept complaints"
	actionResolve action = "resolve complaints"
	actionClose   action = "close complaints"
	actionReopen  action = "reopen complaints"
	actionDelete  action = "delete complaints"
	actionComment action = "comment on complaints"
)

var actionRoles = map[action][]models.Role{
	actionApprove: {models.ReviewerRole},
	actionReject:  {models.ReviewerRole},
	actionAccept:  {models.AuthorityRole},
	actionResolve: {models.AuthorityRole},
	actionClose:   {models.AuthorityRole},
	actionReopen:  {models.AuthorityRole},
	actionDelete:  {models.RoleSecretary, models.RoleChairman},
	actionComment: {models.AuthorityRole},
}

func checkRole(actor *models.Account, a action) error {
	for _, r := range actionRoles[a] {
		if actor.Role == r {
			return nil
		}
	}
	return &PermissionError{Role: actor.Role, Action: string(a)}
}
