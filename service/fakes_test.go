package service

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"barangaylink/models"
)

// In-memory fakes standing in for the MySQL repositories. memComplaints
// serializes Mutate calls with a mutex, mirroring the row lock the real
// store takes, which is what the concurrency tests exercise.

type memComplaints struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.Complaint
}

func newMemComplaints() *memComplaints {
	return &memComplaints{rows: make(map[int64]*models.Complaint)}
}

func (m *memComplaints) Create(c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ComplaintID = m.seq
	cp := *c
	m.rows[c.ComplaintID] = &cp
	return nil
}

func (m *memComplaints) GetByID(id int64) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memComplaints) Mutate(id int64, fn func(*models.Complaint) error) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.rows[id] = &cp
	out := cp
	return &out, nil
}

func (m *memComplaints) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memComplaints) List(f models.ComplaintFilter) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, row := range m.rows {
		if matchesFilter(row, f) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memComplaints) CountByStatus(f models.ComplaintFilter) (*models.StatusCounts, error) {
	rows, _ := m.List(f)
	counts := &models.StatusCounts{}
	for _, c := range rows {
		counts.Total++
		switch c.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusInProgress:
			counts.InProgress++
		case models.StatusResolved:
			counts.Resolved++
		case models.StatusClosed:
			counts.Closed++
		}
	}
	return counts, nil
}

func (m *memComplaints) ListOverdue(now time.Time) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, row := range m.rows {
		open := row.Status == models.StatusPending || row.Status == models.StatusInProgress
		if open && !row.Rejected() && row.IsOverdue(now) && !row.OverdueNotifiedAt.Valid {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memComplaints) MarkOverdueNotified(id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.OverdueNotifiedAt = sql.NullTime{Time: at, Valid: true}
	return nil
}

func matchesFilter(c *models.Complaint, f models.ComplaintFilter) bool {
	if f.ComplainantID != nil && (!c.ComplainantID.Valid || c.ComplainantID.Int64 != *f.ComplainantID) {
		return false
	}
	if f.AssignedToID != nil && (!c.AssignedToID.Valid || c.AssignedToID.Int64 != *f.AssignedToID) {
		return false
	}
	if f.CategoryID != nil && c.CategoryID != *f.CategoryID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Priority != nil && c.Priority != *f.Priority {
		return false
	}
	if f.ExcludeRejected && c.Rejected() {
		return false
	}
	if f.ApprovedOnly && c.Approval != models.ApprovalApproved {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(c.Title+" "+c.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type memComments struct {
	mu   sync.Mutex
	seq  int64
	rows []models.ComplaintComment
}

func (m *memComments) CreateComment(c *models.ComplaintComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.CommentID = m.seq
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memComments) ListComments(complaintID int64, includeInternal bool) ([]models.ComplaintComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ComplaintComment
	for _, c := range m.rows {
		if c.ComplaintID != complaintID {
			continue
		}
		if c.IsInternal && !includeInternal {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memComments) HasProofAttachment(complaintID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.ComplaintID == complaintID && c.Attachment.Valid && c.Attachment.String != "" {
			return true, nil
		}
	}
	return false, nil
}

type memCategories struct {
	categories map[int64]*models.Category
	rules      map[int64]*models.AssignmentRule
}

func newMemCategories() *memCategories {
	return &memCategories{
		categories: make(map[int64]*models.Category),
		rules:      make(map[int64]*models.AssignmentRule),
	}
}

func (m *memCategories) addCategory(id int64, name string) {
	m.categories[id] = &models.Category{CategoryID: id, Name: name, IsActive: true}
}

func (m *memCategories) addRule(categoryID int64, primary models.Role, backup string, referral bool, notes string) {
	rule := &models.AssignmentRule{
		RuleID:           categoryID,
		CategoryID:       categoryID,
		PrimaryRole:      primary,
		RequiresReferral: referral,
	}
	if backup != "" {
		rule.BackupRole = sql.NullString{String: backup, Valid: true}
	}
	if notes != "" {
		rule.EscalationNotes = sql.NullString{String: notes, Valid: true}
	}
	m.rules[categoryID] = rule
}

func (m *memCategories) GetCategory(id int64) (*models.Category, error) {
	return m.categories[id], nil
}

func (m *memCategories) GetRuleForCategory(categoryID int64) (*models.AssignmentRule, error) {
	return m.rules[categoryID], nil
}

type memDirectory struct {
	accounts map[int64]*models.Account
}

func newMemDirectory() *memDirectory {
	return &memDirectory{accounts: make(map[int64]*models.Account)}
}

func (d *memDirectory) add(id int64, username string, role models.Role, eligible bool) *models.Account {
	acc := &models.Account{
		AccountID:  id,
		Username:   username,
		Email:      sql.NullString{String: username + "@barangay.test", Valid: true},
		Role:       role,
		IsActive:   eligible,
		IsApproved: eligible,
	}
	d.accounts[id] = acc
	return acc
}

func (d *memDirectory) ListEligible(role models.Role) ([]models.Account, error) {
	var out []models.Account
	for _, a := range d.accounts {
		if a.Role == role && a.Eligible() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (d *memDirectory) GetAccount(id int64) (*models.Account, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

type memQueue struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (q *memQueue) Queue(n *models.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, *n)
	return nil
}

func (q *memQueue) byEvent(event models.NotificationEvent) []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []models.Notification
	for _, n := range q.rows {
		if n.Event == event {
			out = append(out, n)
		}
	}
	return out
}

// testEnv bundles a service wired to fakes with a frozen clock.
type testEnv struct {
	svc        *ComplaintService
	complaints *memComplaints
	comments   *memComments
	categories *memCategories
	directory  *memDirectory
	queue      *memQueue
	now        time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		complaints: newMemComplaints(),
		comments:   &memComments{},
		categories: newMemCategories(),
		directory:  newMemDirectory(),
		queue:      &memQueue{},
		now:        time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	env.svc = NewComplaintService(env.complaints, env.comments, env.categories, env.directory, env.queue)
	env.svc.now = func() time.Time { return env.now }
	return env
}
