package service

import (
	"sync"
	"testing"
	"time"

	"barangaylink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

// seedInfrastructure wires a category "Infrastructure" whose primary role
// kagawad_infra has no eligible holder and whose backup role secretary has
// exactly one.
func seedInfrastructure(env *testEnv) *models.Account {
	env.categories.addCategory(1, "Infrastructure")
	env.categories.addRule(1, models.RoleKagawadInfra, string(models.RoleSecretary), false, "")
	env.directory.add(10, "infra", models.RoleKagawadInfra, false) // ineligible
	return env.directory.add(20, "sec", models.RoleSecretary, true)
}

func createComplaint(t *testing.T, env *testEnv, priority models.Priority) *models.CreateComplaintResponse {
	t.Helper()
	resident := env.directory.add(100, "juan", models.RoleResident, true)
	resp, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID:  1,
		Title:       "Broken street light",
		Description: "The light at Purok 3 has been out for a week.",
		Priority:    priority,
	}, resident)
	require.NoError(t, err)
	return resp
}

func TestCreateComplaintEndToEnd(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)

	resp := createComplaint(t, env, models.PriorityHigh)

	assert.Equal(t, models.StatusPending, resp.Status)
	assert.Equal(t, models.ApprovalPending, resp.Approval)
	require.NotNil(t, resp.AssignedToID)
	assert.Equal(t, secretary.AccountID, *resp.AssignedToID, "backup secretary S owns the complaint")
	assert.Equal(t, env.now.Add(4*time.Hour), *resp.AssignmentDue)
	assert.Equal(t, env.now.Add(48*time.Hour), *resp.ResponseDue)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, env.now, stored.CreatedAt)
	assert.NotEmpty(t, stored.ReferenceNumber)

	assert.Len(t, env.queue.byEvent(models.EventComplaintReceived), 1)
	assert.Len(t, env.queue.byEvent(models.EventComplaintAssigned), 1)
}

func TestCreateComplaintWithNoEligibleAssignee(t *testing.T) {
	env := newTestEnv()
	env.categories.addCategory(1, "Infrastructure")
	env.categories.addRule(1, models.RoleKagawadInfra, "", false, "")

	resp := createComplaint(t, env, models.PriorityNormal)

	assert.Nil(t, resp.AssignedToID, "no eligible assignee leaves the owner unset for manual triage")
	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.False(t, stored.AssignedToID.Valid)
}

func TestCreateComplaintAnonymous(t *testing.T) {
	env := newTestEnv()
	seedInfrastructure(env)

	resp, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID:       1,
		Title:            "Noise at night",
		Description:      "Loud videoke past midnight.",
		IsAnonymous:      true,
		AnonymousContact: strptr("tip@mail.test"),
	}, nil)
	require.NoError(t, err)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.True(t, stored.IsAnonymous)
	assert.False(t, stored.ComplainantID.Valid)
	assert.Equal(t, "tip@mail.test", stored.AnonymousContact.String)

	received := env.queue.byEvent(models.EventComplaintReceived)
	require.Len(t, received, 1)
	assert.Equal(t, "tip@mail.test", received[0].Recipient)
}

func TestCreateComplaintValidation(t *testing.T) {
	env := newTestEnv()
	seedInfrastructure(env)
	resident := env.directory.add(100, "juan", models.RoleResident, true)

	var ve *ValidationError
	_, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{CategoryID: 1, Description: "x"}, resident)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = env.svc.CreateComplaint(&models.CreateComplaintRequest{CategoryID: 99, Title: "t", Description: "d"}, resident)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category_id", ve.Field)

	_, err = env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID: 1, Title: "t", Description: "d", Priority: "critical",
	}, resident)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "priority", ve.Field)

	// Officials handle complaints; they do not file them.
	chairman := env.directory.add(2, "cap", models.RoleChairman, true)
	var pe *PermissionError
	_, err = env.svc.CreateComplaint(&models.CreateComplaintRequest{CategoryID: 1, Title: "t", Description: "d"}, chairman)
	require.ErrorAs(t, err, &pe)
}

func TestApproveAdvancesAndHandsToChairman(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	out, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, out.OldStatus)
	assert.Equal(t, models.StatusInProgress, out.NewStatus)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.Approval)
	assert.Equal(t, secretary.AccountID, stored.ApprovedByID.Int64)
	assert.Equal(t, env.now, stored.ApprovedAt.Time)
	assert.Equal(t, chairman.AccountID, stored.AssignedToID.Int64,
		"approval bypasses the resolver and hands the case to the chairman")
	assert.Equal(t, env.now, stored.AcceptedAt.Time)
}

func TestApproveAfterAcceptRecordsGateOnly(t *testing.T) {
	env := newTestEnv()
	env.categories.addCategory(1, "Infrastructure")
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	secretary := &models.Account{
		AccountID: 20, Username: "sec", Role: models.RoleSecretary,
		IsActive: true, IsApproved: true,
	}
	resp := createComplaint(t, env, models.PriorityNormal) // unowned

	// The chairman takes the case before the secretary's review.
	_, err := env.svc.Accept(resp.ComplaintID, chairman)
	require.NoError(t, err)

	out, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err, "the gate decision must still be recordable after accept")
	assert.Equal(t, models.StatusInProgress, out.OldStatus)
	assert.Equal(t, models.StatusInProgress, out.NewStatus)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.Approval)
	assert.Equal(t, secretary.AccountID, stored.ApprovedByID.Int64)
	assert.Equal(t, env.now, stored.ApprovedAt.Time)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Equal(t, chairman.AccountID, stored.AssignedToID.Int64, "the acceptor keeps ownership")

	// The complaint is now visible in the chairman's approved-only queue.
	chairmanView, err := env.svc.ListComplaints(chairman, models.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, chairmanView, 1)
	assert.Equal(t, resp.ComplaintID, chairmanView[0].ComplaintID)

	// The gate is still one-shot.
	var ase *ApprovalStateError
	_, err = env.svc.Approve(resp.ComplaintID, secretary)
	require.ErrorAs(t, err, &ase)
}

func TestApproveRequiresSecretary(t *testing.T) {
	env := newTestEnv()
	seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	var pe *PermissionError
	_, err := env.svc.Approve(resp.ComplaintID, chairman)
	require.ErrorAs(t, err, &pe)
}

func TestApproveTwiceFails(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	_, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)

	var ase *ApprovalStateError
	_, err = env.svc.Approve(resp.ComplaintID, secretary)
	require.ErrorAs(t, err, &ase)
	assert.Equal(t, models.ApprovalApproved, ase.Current)
}

func TestConcurrentApproveExactlyOneWins(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Approve(resp.ComplaintID, secretary)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var ase *ApprovalStateError
		require.ErrorAs(t, err, &ase, "the loser must fail the in-transaction legality re-check")
	}
	assert.Equal(t, 1, succeeded, "exactly one approve commits")
	assert.Equal(t, 1, failed)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	resp := createComplaint(t, env, models.PriorityNormal)

	var ve *ValidationError
	_, err := env.svc.Reject(resp.ComplaintID, secretary, "   ")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rejection_reason", ve.Field)

	_, err = env.svc.Reject(resp.ComplaintID, secretary, "duplicate of #12")
	require.NoError(t, err)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, stored.Approval)
	assert.Equal(t, "duplicate of #12", stored.RejectionReason.String)
	assert.Equal(t, models.StatusPending, stored.Status, "rejection freezes the lifecycle status")

	rejections := env.queue.byEvent(models.EventComplaintRejected)
	require.Len(t, rejections, 1)
	assert.Contains(t, rejections[0].Body, "duplicate of #12")
}

func TestRejectedComplaintIsFrozen(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	_, err := env.svc.Reject(resp.ComplaintID, secretary, "spam")
	require.NoError(t, err)

	var ase *ApprovalStateError
	_, err = env.svc.Accept(resp.ComplaintID, chairman)
	require.ErrorAs(t, err, &ase, "a rejected complaint is a terminal, read-only record")

	_, err = env.svc.Reject(resp.ComplaintID, secretary, "again")
	require.ErrorAs(t, err, &ase, "rejecting an already-decided complaint must not silently re-apply")
}

func TestRejectedExcludedFromActiveQueues(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resident := env.directory.add(100, "juan", models.RoleResident, true)

	first, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID: 1, Title: "Kept", Description: "d",
	}, resident)
	require.NoError(t, err)
	rejected, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID: 1, Title: "Dropped", Description: "d",
	}, resident)
	require.NoError(t, err)
	_, err = env.svc.Reject(rejected.ComplaintID, secretary, "duplicate")
	require.NoError(t, err)

	residentView, err := env.svc.ListComplaints(resident, models.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, residentView, 1)
	assert.Equal(t, first.ComplaintID, residentView[0].ComplaintID)

	secretaryView, err := env.svc.ListComplaints(secretary, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, secretaryView, 1)

	// The chairman works the approved queue only: nothing approved yet.
	chairmanView, err := env.svc.ListComplaints(chairman, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Empty(t, chairmanView)

	_, err = env.svc.Approve(first.ComplaintID, secretary)
	require.NoError(t, err)
	chairmanView, err = env.svc.ListComplaints(chairman, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, chairmanView, 1)
}

func TestMarkResolvedEvidenceLadder(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)
	_, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)

	var ve *ValidationError
	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "resolution_notes", ve.Field)

	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{Notes: "Replaced the bulb."})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "resolution_proof", ve.Field)

	resolvedAt := env.now
	out, err := env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{
		Notes: "Replaced the bulb.",
		Proof: strptr("resolution_proofs/2025/06/light.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, out.NewStatus)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, resolvedAt, stored.ResolvedAt.Time)
	assert.Equal(t, chairman.AccountID, stored.ResolvedByID.Int64)

	// Already resolved: legal only from in_progress.
	env.now = env.now.Add(time.Hour)
	var ite *IllegalTransitionError
	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{
		Notes: "Replaced the bulb.", Proof: strptr("again.jpg"),
	})
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, models.StatusResolved, ite.Current)

	stored, err = env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, resolvedAt, stored.ResolvedAt.Time, "resolved_at is immutable once set")
}

func TestMarkResolvedAcceptsCommentAttachmentAsProof(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)
	_, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)

	_, err = env.svc.AddComment(resp.ComplaintID, chairman, &models.CommentRequest{
		Comment:    "Site photo after repair.",
		Attachment: strptr("comment_attachments/2025/06/after.jpg"),
	})
	require.NoError(t, err)

	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{Notes: "Done, see photo."})
	require.NoError(t, err, "a pre-existing proof reference satisfies the requirement")
}

func TestCloseAndReopen(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)
	_, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)

	// Close is legal only from resolved.
	var ite *IllegalTransitionError
	_, err = env.svc.Close(resp.ComplaintID, chairman)
	require.ErrorAs(t, err, &ite)

	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{
		Notes: "Fixed.", Proof: strptr("proof.jpg"),
	})
	require.NoError(t, err)

	out, err := env.svc.Reopen(resp.ComplaintID, chairman)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, out.NewStatus)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.False(t, stored.ResolvedAt.Valid, "reopen clears the resolution stamps")
	assert.False(t, stored.ResolvedByID.Valid)

	// Reopen is only the resolved → in_progress correction.
	_, err = env.svc.Reopen(resp.ComplaintID, chairman)
	require.ErrorAs(t, err, &ite)

	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{Notes: "Fixed again."})
	require.NoError(t, err, "proof from the first resolution is still on the record")
	_, err = env.svc.Close(resp.ComplaintID, chairman)
	require.NoError(t, err)

	_, err = env.svc.Reopen(resp.ComplaintID, chairman)
	require.ErrorAs(t, err, &ite, "closed is terminal")
}

func TestAcceptClaimsUnownedComplaint(t *testing.T) {
	env := newTestEnv()
	env.categories.addCategory(1, "Infrastructure")
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal) // no eligible assignee: unowned

	out, err := env.svc.Accept(resp.ComplaintID, chairman)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, out.NewStatus)

	stored, err := env.complaints.GetByID(resp.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, chairman.AccountID, stored.AssignedToID.Int64)
	assert.Equal(t, env.now, stored.AcceptedAt.Time)
}

func TestDeleteGatedToTerminalStates(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	resp := createComplaint(t, env, models.PriorityNormal)

	var ve *ValidationError
	require.ErrorAs(t, env.svc.Delete(resp.ComplaintID, secretary), &ve)

	_, err := env.svc.Approve(resp.ComplaintID, secretary)
	require.NoError(t, err)
	_, err = env.svc.MarkResolved(resp.ComplaintID, chairman, &models.ResolveRequest{
		Notes: "Fixed.", Proof: strptr("proof.jpg"),
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(resp.ComplaintID, secretary))
	_, err = env.complaints.GetByID(resp.ComplaintID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetComplaintVisibility(t *testing.T) {
	env := newTestEnv()
	seedInfrastructure(env)
	chairman := env.directory.add(30, "cap", models.RoleChairman, true)
	owner := env.directory.add(100, "juan", models.RoleResident, true)
	other := env.directory.add(101, "maria", models.RoleResident, true)

	resp, err := env.svc.CreateComplaint(&models.CreateComplaintRequest{
		CategoryID: 1, Title: "t", Description: "d",
	}, owner)
	require.NoError(t, err)

	_, err = env.svc.AddComment(resp.ComplaintID, chairman, &models.CommentRequest{
		Comment: "public note",
	})
	require.NoError(t, err)
	_, err = env.svc.AddComment(resp.ComplaintID, chairman, &models.CommentRequest{
		Comment: "internal note", IsInternal: true,
	})
	require.NoError(t, err)

	_, comments, err := env.svc.GetComplaint(resp.ComplaintID, owner)
	require.NoError(t, err)
	require.Len(t, comments, 1, "internal comments are hidden from residents")
	assert.Equal(t, "public note", comments[0].Comment)

	_, comments, err = env.svc.GetComplaint(resp.ComplaintID, chairman)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	_, _, err = env.svc.GetComplaint(resp.ComplaintID, other)
	assert.ErrorIs(t, err, ErrNotFound, "residents only ever see their own complaints")
}

func TestProcessOverdue(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	resp := createComplaint(t, env, models.PriorityEmergency) // response due +4h

	results, err := env.svc.ProcessOverdue()
	require.NoError(t, err)
	assert.Empty(t, results, "nothing is overdue yet")

	env.now = env.now.Add(5 * time.Hour)
	results, err = env.svc.ProcessOverdue()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, resp.ComplaintID, results[0].ComplaintID)
	assert.Equal(t, secretary.Email.String, results[0].Recipient)
	assert.Len(t, env.queue.byEvent(models.EventResponseOverdue), 1)

	// Reminded at most once.
	results, err = env.svc.ProcessOverdue()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStatisticsRequiresManagementRole(t *testing.T) {
	env := newTestEnv()
	secretary := seedInfrastructure(env)
	resident := env.directory.add(100, "juan", models.RoleResident, true)
	createComplaint(t, env, models.PriorityNormal)

	var pe *PermissionError
	_, err := env.svc.Statistics(resident)
	require.ErrorAs(t, err, &pe)

	counts, err := env.svc.Statistics(secretary)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total)
	assert.Equal(t, 1, counts.Pending)
}
