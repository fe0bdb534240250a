package service

import (
	"fmt"
	"log"

	"barangaylink/models"
)

// OverdueResult reports one reminder produced by an overdue scan.
type OverdueResult struct {
	ComplaintID     int64
	ReferenceNumber string
	Recipient       string
}

// ProcessOverdue scans for complaints past their response SLA that are still
// open and queues a single reminder per complaint to the owner, falling back
// to the secretary when the complaint has no owner. Safe to call repeatedly;
// a complaint is reminded at most once.
func (s *ComplaintService) ProcessOverdue() ([]OverdueResult, error) {
	now := s.now()
	overdue, err := s.complaints.ListOverdue(now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue complaints: %w", err)
	}

	var results []OverdueResult
	for i := range overdue {
		c := &overdue[i]

		var recipient string
		if c.AssignedToID.Valid {
			if acc, err := s.directory.GetAccount(c.AssignedToID.Int64); err == nil && acc != nil && acc.Email.Valid {
				recipient = acc.Email.String
			}
		}
		if recipient == "" {
			if sec := s.firstEligible(models.FallbackRole); sec != nil && sec.Email.Valid {
				recipient = sec.Email.String
			}
		}
		if recipient == "" {
			log.Printf("[overdue] complaint %d (%s) is overdue with no reachable recipient", c.ComplaintID, c.ReferenceNumber)
			continue
		}

		s.queue(&models.Notification{
			ComplaintID: c.ComplaintID,
			Event:       models.EventResponseOverdue,
			Recipient:   recipient,
			Subject:     fmt.Sprintf("Complaint Overdue - %s", c.Title),
			Body: fmt.Sprintf("Complaint %s (%s priority) has passed its response deadline of %s and is still %s.",
				c.ReferenceNumber, c.Priority, c.ResponseDue.Time.Format("Jan 2, 2006 3:04 PM"), statusLabel(c.Status)),
		})
		if err := s.complaints.MarkOverdueNotified(c.ComplaintID, now); err != nil {
			log.Printf("[overdue] failed to mark complaint %d as notified: %v", c.ComplaintID, err)
			continue
		}
		results = append(results, OverdueResult{
			ComplaintID:     c.ComplaintID,
			ReferenceNumber: c.ReferenceNumber,
			Recipient:       recipient,
		})
	}
	return results, nil
}
