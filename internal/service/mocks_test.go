package service

import (
	"sync"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"gorm.io/gorm"
)

// In-memory stores for service tests. The tx parameter is accepted and
// ignored; tests run every closure against nil.

type memTxRunner struct{}

func (memTxRunner) InTx(fn func(tx *gorm.DB) error) error { return fn(nil) }

type memAssignments struct {
	mu       sync.Mutex
	seq      uint
	rows     map[uint]models.PaymentAssignment
	projects *memProjects
}

func newMemAssignments(projects *memProjects) *memAssignments {
	return &memAssignments{rows: make(map[uint]models.PaymentAssignment), projects: projects}
}

func (m *memAssignments) put(a models.PaymentAssignment) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		m.seq++
		a.ID = m.seq
	}
	m.rows[a.ID] = a
	return a.ID
}

func (m *memAssignments) Create(a *models.PaymentAssignment) error {
	a.ID = m.put(*a)
	return nil
}

func (m *memAssignments) GetByID(id uint) (*models.PaymentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (m *memAssignments) GetForUpdate(_ *gorm.DB, id uint) (*models.PaymentAssignment, error) {
	return m.GetByID(id)
}

func (m *memAssignments) Save(_ *gorm.DB, a *models.PaymentAssignment) error {
	m.put(*a)
	return nil
}

func (m *memAssignments) Delete(a *models.PaymentAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, a.ID)
	return nil
}

func (m *memAssignments) ListByProject(projectID uint) ([]models.PaymentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentAssignment
	for _, a := range m.rows {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignments) ListUnpaidWithAmount(_ *gorm.DB, projectID uint) ([]models.PaymentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentAssignment
	for _, a := range m.rows {
		if a.ProjectID == projectID && a.PaymentStatus == domain.PaymentStatusUnpaid && a.PaymentAmount != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignments) ListPayable(_ *gorm.DB, contractorID uint) ([]models.PaymentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentAssignment
	for _, a := range m.rows {
		if a.ContractorID != contractorID ||
			a.PaymentStatus != domain.PaymentStatusPending ||
			a.ApprovalState != domain.ApprovalApproved {
			continue
		}
		if p, err := m.projects.GetByID(a.ProjectID); err != nil || p.Status != domain.ProjectStatusCompleted {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memAssignments) ListByPayout(_ *gorm.DB, payoutID uint) ([]models.PaymentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentAssignment
	for _, a := range m.rows {
		if a.PayoutID != nil && *a.PayoutID == payoutID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memProjects struct {
	mu   sync.Mutex
	seq  uint
	rows map[uint]models.Project
}

func newMemProjects() *memProjects {
	return &memProjects{rows: make(map[uint]models.Project)}
}

func (m *memProjects) put(p models.Project) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.seq++
		p.ID = m.seq
	}
	m.rows[p.ID] = p
	return p.ID
}

func (m *memProjects) GetByID(id uint) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memProjects) GetByIDTx(_ *gorm.DB, id uint) (*models.Project, error) {
	return m.GetByID(id)
}

func (m *memProjects) Save(_ *gorm.DB, p *models.Project) error {
	m.put(*p)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[uint]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{rows: make(map[uint]models.User)}
}

func (m *memUsers) put(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = u
}

func (m *memUsers) GetByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := u
	return &cp, nil
}

type memPayouts struct {
	mu   sync.Mutex
	seq  uint
	rows map[uint]models.Payout
}

func newMemPayouts() *memPayouts {
	return &memPayouts{rows: make(map[uint]models.Payout)}
}

func (m *memPayouts) Create(_ *gorm.DB, p *models.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = m.seq
	m.rows[p.ID] = *p
	return nil
}

func (m *memPayouts) GetByID(id uint) (*models.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memPayouts) GetForUpdate(_ *gorm.DB, id uint) (*models.Payout, error) {
	return m.GetByID(id)
}

func (m *memPayouts) GetByTransferID(transferID string) (*models.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.ExternalTransferID == transferID {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPayouts) GetByIdempotencyKey(key string) (*models.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.IdempotencyKey == key {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPayouts) Save(_ *gorm.DB, p *models.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = *p
	return nil
}

func (m *memPayouts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memCredits struct {
	mu       sync.Mutex
	seq      uint
	balances map[uint]models.CreditBalance
	txs      []models.CreditTransaction
}

func newMemCredits() *memCredits {
	return &memCredits{balances: make(map[uint]models.CreditBalance)}
}

func (m *memCredits) GetOrCreateBalance(userID uint) (*models.CreditBalance, error) {
	return m.GetBalanceForUpdate(nil, userID)
}

func (m *memCredits) GetBalanceForUpdate(_ *gorm.DB, userID uint) (*models.CreditBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		m.seq++
		b = models.CreditBalance{ID: m.seq, UserID: userID}
		m.balances[userID] = b
	}
	cp := b
	return &cp, nil
}

func (m *memCredits) SaveBalance(_ *gorm.DB, b *models.CreditBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[b.UserID] = *b
	return nil
}

func (m *memCredits) CreateTransaction(_ *gorm.DB, ct *models.CreditTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct.ID = uint(len(m.txs) + 1)
	m.txs = append(m.txs, *ct)
	return nil
}

type memInvoices struct {
	mu   sync.Mutex
	rows map[uint]models.Invoice
}

func newMemInvoices() *memInvoices {
	return &memInvoices{rows: make(map[uint]models.Invoice)}
}

func (m *memInvoices) put(inv models.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[inv.ID] = inv
}

func (m *memInvoices) GetForUpdate(_ *gorm.DB, id uint) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := inv
	return &cp, nil
}

func (m *memInvoices) Save(_ *gorm.DB, inv *models.Invoice) error {
	m.put(*inv)
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memAudit) Record(_ *gorm.DB, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAudit) countType(t string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Type == t {
			n++
		}
	}
	return n
}
