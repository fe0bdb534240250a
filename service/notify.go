package service

import (
	"fmt"
	"log"
	"strings"

	"barangaylink/models"
)

// Notification plumbing for the orchestrator. Everything here is best-effort
// and happens strictly after the state change has committed: a queueing or
// delivery failure is logged and swallowed, never propagated, and never
// rolls back a transition.

func (s *ComplaintService) notifyStatusChange(c *models.Complaint) {
	s.notifyComplainant(c, models.EventStatusChanged,
		fmt.Sprintf("Complaint Status Update - %s", c.Title),
		fmt.Sprintf("Your complaint %q status has been updated to: %s.", c.Title, statusLabel(c.Status)))
}

func (s *ComplaintService) notifyComplainant(c *models.Complaint, event models.NotificationEvent, subject, body string) {
	recipient := s.complainantEmail(c)
	if recipient == "" {
		return
	}
	s.queue(&models.Notification{
		ComplaintID: c.ComplaintID,
		Event:       event,
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
	})
}

func (s *ComplaintService) notifyAccount(c *models.Complaint, accountID int64, event models.NotificationEvent, subject, body string) {
	acc, err := s.directory.GetAccount(accountID)
	if err != nil || acc == nil {
		log.Printf("[notify] failed to look up account %d for complaint %d: %v", accountID, c.ComplaintID, err)
		return
	}
	if !acc.Email.Valid || acc.Email.String == "" {
		return
	}
	s.queue(&models.Notification{
		ComplaintID: c.ComplaintID,
		Event:       event,
		Recipient:   acc.Email.String,
		Subject:     subject,
		Body:        body,
	})
}

// complainantEmail resolves where complainant-facing mail goes. Anonymous
// complaints are only notified when the optional contact looks like an email
// address.
func (s *ComplaintService) complainantEmail(c *models.Complaint) string {
	if c.IsAnonymous {
		if c.AnonymousContact.Valid && strings.Contains(c.AnonymousContact.String, "@") {
			return c.AnonymousContact.String
		}
		return ""
	}
	if !c.ComplainantID.Valid {
		return ""
	}
	acc, err := s.directory.GetAccount(c.ComplainantID.Int64)
	if err != nil || acc == nil {
		log.Printf("[notify] failed to look up complainant %d: %v", c.ComplainantID.Int64, err)
		return ""
	}
	if acc.Email.Valid {
		return acc.Email.String
	}
	return ""
}

func (s *ComplaintService) queue(n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Queue(n); err != nil {
		log.Printf("[notify] failed to queue %s notification for complaint %d: %v", n.Event, n.ComplaintID, err)
	}
}

func statusLabel(status models.Status) string {
	switch status {
	case models.StatusPending:
		return "Pending"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusResolved:
		return "Resolved"
	case models.StatusClosed:
		return "Closed"
	}
	return string(status)
}
