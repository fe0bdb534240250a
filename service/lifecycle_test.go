package service

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"barangaylink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleEdges(t *testing.T) {
	all := []models.Status{
		models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusClosed,
	}
	legal := map[[2]models.Status]bool{
		{models.StatusPending, models.StatusInProgress}:    true,
		{models.StatusInProgress, models.StatusResolved}:   true,
		{models.StatusResolved, models.StatusClosed}:       true,
		{models.StatusResolved, models.StatusInProgress}:   true, // reopen
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]models.Status{from, to}], canTransition(from, to),
				"transition %s → %s", from, to)
		}
	}
}

func TestApplyTransitionRejectsIllegalEdge(t *testing.T) {
	c := &models.Complaint{ComplaintID: 7, Status: models.StatusPending}

	err := applyTransition(c, models.StatusResolved, 1, time.Now())

	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, models.StatusPending, ite.Current)
	assert.Equal(t, []models.Status{models.StatusInProgress}, ite.Allowed)
	assert.Equal(t, models.StatusPending, c.Status, "a failed transition must not move the state")
}

func TestApplyTransitionSideEffectsExactlyOnce(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	c := &models.Complaint{ComplaintID: 1, Status: models.StatusPending}

	require.NoError(t, applyTransition(c, models.StatusInProgress, 42, now))
	assert.Equal(t, now, c.AcceptedAt.Time)
	assert.Equal(t, int64(42), c.AssignedToID.Int64, "an unowned complaint is claimed by the actor")

	require.NoError(t, applyTransition(c, models.StatusResolved, 42, now.Add(time.Hour)))
	assert.Equal(t, now.Add(time.Hour), c.ResolvedAt.Time)
	assert.Equal(t, int64(42), c.ResolvedByID.Int64)

	// Reopen clears the resolution stamps but not accepted_at.
	require.NoError(t, applyTransition(c, models.StatusInProgress, 43, now.Add(2*time.Hour)))
	assert.False(t, c.ResolvedAt.Valid)
	assert.False(t, c.ResolvedByID.Valid)
	assert.Equal(t, now, c.AcceptedAt.Time, "accepted_at is immutable once set")

	// Resolving again stamps fresh values.
	require.NoError(t, applyTransition(c, models.StatusResolved, 43, now.Add(3*time.Hour)))
	assert.Equal(t, now.Add(3*time.Hour), c.ResolvedAt.Time)
	assert.Equal(t, int64(43), c.ResolvedByID.Int64)
}

func TestApplyTransitionKeepsExistingOwner(t *testing.T) {
	c := &models.Complaint{
		ComplaintID:  2,
		Status:       models.StatusPending,
		AssignedToID: sql.NullInt64{Int64: 5, Valid: true},
	}

	require.NoError(t, applyTransition(c, models.StatusInProgress, 42, time.Now()))

	assert.Equal(t, int64(5), c.AssignedToID.Int64)
}

// TestLifecycleNeverSkipsStates drives random walks over the engine and
// asserts every observed consecutive status pair is an allowed edge.
func TestLifecycleNeverSkipsStates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	targets := []models.Status{
		models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusClosed,
	}

	for walk := 0; walk < 100; walk++ {
		c := &models.Complaint{ComplaintID: int64(walk), Status: models.StatusPending}
		observed := []models.Status{c.Status}

		for step := 0; step < 20; step++ {
			to := targets[rng.Intn(len(targets))]
			if err := applyTransition(c, to, 1, time.Now()); err != nil {
				var ite *IllegalTransitionError
				require.ErrorAs(t, err, &ite)
				continue
			}
			observed = append(observed, c.Status)
		}

		for i := 1; i < len(observed); i++ {
			assert.True(t, canTransition(observed[i-1], observed[i]),
				"walk %d observed illegal pair %s → %s", walk, observed[i-1], observed[i])
		}
	}
}

func TestCheckRoleTable(t *testing.T) {
	secretary := &models.Account{AccountID: 1, Role: models.RoleSecretary}
	chairman := &models.Account{AccountID: 2, Role: models.RoleChairman}
	resident := &models.Account{AccountID: 3, Role: models.RoleResident}

	assert.NoError(t, checkRole(secretary, actionApprove))
	assert.NoError(t, checkRole(secretary, actionReject))
	assert.NoError(t, checkRole(chairman, actionResolve))
	assert.NoError(t, checkRole(chairman, actionClose))
	assert.NoError(t, checkRole(secretary, actionDelete))
	assert.NoError(t, checkRole(chairman, actionDelete))

	var pe *PermissionError
	require.ErrorAs(t, checkRole(chairman, actionApprove), &pe)
	require.ErrorAs(t, checkRole(secretary, actionResolve), &pe)
	require.ErrorAs(t, checkRole(secretary, actionComment), &pe)
	require.ErrorAs(t, checkRole(resident, actionAccept), &pe)
	assert.Equal(t, models.RoleResident, pe.Role)
}
