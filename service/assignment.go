package service

import (
	"log"
	"math/rand"

	"barangaylink/models"
)

// referralNotePrefix is prepended to the rule's escalation notes when the
// rule flags requires_referral. Advisory text only; never parsed back.
const referralNotePrefix = "May require external referral. "

// AssignmentResolver picks an owner for a new complaint from the role
// directory: the category rule's primary role first, then its backup role,
// then the universal fallback (secretary). Selection among multiple eligible
// holders is uniformly random to spread load; any fair selection would do.
type AssignmentResolver struct {
	directory RoleDirectory

	// pick chooses an index in [0, n); replaced in tests for determinism.
	pick func(n int) int
}

// NewAssignmentResolver creates a resolver over the given role directory.
func NewAssignmentResolver(directory RoleDirectory) *AssignmentResolver {
	return &AssignmentResolver{
		directory: directory,
		pick:      rand.Intn,
	}
}

// Resolve returns the chosen owner and an optional assignment note. A nil
// owner is a valid outcome, not an error: the complaint is persisted without
// an owner and flagged for manual triage. Directory lookup failures are
// logged and treated as "no eligible holder" so intake never fails on a
// routing problem.
func (r *AssignmentResolver) Resolve(rule *models.AssignmentRule) (*models.Account, string) {
	var owner *models.Account

	if rule != nil {
		owner = r.pickEligible(rule.PrimaryRole)
		if owner == nil && rule.BackupRole.Valid {
			owner = r.pickEligible(models.Role(rule.BackupRole.String))
		}
	}
	if owner == nil {
		owner = r.pickEligible(models.FallbackRole)
	}

	note := ""
	if rule != nil && rule.RequiresReferral {
		note = referralNotePrefix + rule.EscalationNotes.String
	}
	return owner, note
}

func (r *AssignmentResolver) pickEligible(role models.Role) *models.Account {
	accounts, err := r.directory.ListEligible(role)
	if err != nil {
		log.Printf("[assign] role directory lookup failed for %s: %v", role, err)
		return nil
	}

	eligible := accounts[:0:0]
	for _, a := range accounts {
		if a.Eligible() && a.Role == role {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	chosen := eligible[r.pick(len(eligible))]
	return &chosen
}
