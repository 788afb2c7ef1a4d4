package service

import (
	"fmt"
	"log"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssignmentService owns the payment-assignment state machine. Every mutation
// of one assignment runs inside a transaction with the row locked, so an
// assignment can never be concurrently approved and amount-edited.
type AssignmentService struct {
	txr         TxRunner
	assignments AssignmentStore
	projects    ProjectStore
	users       UserStore
	audit       *Auditor
}

func NewAssignmentService(txr TxRunner, assignments AssignmentStore, projects ProjectStore, users UserStore, audit *Auditor) *AssignmentService {
	return &AssignmentService{
		txr:         txr,
		assignments: assignments,
		projects:    projects,
		users:       users,
		audit:       audit,
	}
}

// Create links a contractor to a project. The assignment starts UNPAID and
// UNREVIEWED with no amount.
func (s *AssignmentService) Create(projectID, contractorID, createdBy uint) (*models.PaymentAssignment, error) {
	if _, err := s.projects.GetByID(projectID); err != nil {
		return nil, err
	}
	contractor, err := s.users.GetByID(contractorID)
	if err != nil {
		return nil, err
	}
	if !contractor.IsContractor() {
		return nil, fmt.Errorf("%w: user %d is not a contractor", domain.ErrValidation, contractorID)
	}
	a := &models.PaymentAssignment{
		ProjectID:     projectID,
		ContractorID:  contractorID,
		PaymentStatus: domain.PaymentStatusUnpaid,
		ApprovalState: domain.ApprovalUnreviewed,
		AssignedAt:    time.Now(),
	}
	if err := s.assignments.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Unassign removes an assignment that has not entered the payment pipeline.
func (s *AssignmentService) Unassign(id, actorID uint) error {
	a, err := s.assignments.GetByID(id)
	if err != nil {
		return err
	}
	if a.PaymentStatus != domain.PaymentStatusUnpaid {
		return fmt.Errorf("%w: assignment %d is %s, only UNPAID assignments can be removed", domain.ErrInvalidState, id, a.PaymentStatus)
	}
	if err := s.assignments.Delete(a); err != nil {
		return err
	}
	return s.audit.Record(nil, domain.AuditUnassigned, &actorID, assignmentSubject(id), a.PaymentStatus, "", nil)
}

// SetPaymentAmount sets or edits the payable amount. Any amount change on a
// reviewed assignment resets the approval gate: the assignment goes back to
// UNREVIEWED and all approver metadata is cleared, so re-review is mandatory.
// If the project already completed, an UNPAID assignment is promoted to
// PENDING in the same commit.
func (s *AssignmentService) SetPaymentAmount(id uint, amount decimal.Decimal, actorID uint) (*models.PaymentAssignment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, amount)
	}
	var out *models.PaymentAssignment
	err := s.txr.InTx(func(tx *gorm.DB) error {
		a, err := s.assignments.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if a.PaymentStatus == domain.PaymentStatusPaid {
			return fmt.Errorf("%w: assignment %d is already PAID", domain.ErrInvalidState, id)
		}
		oldAmount := ""
		if a.PaymentAmount != nil {
			oldAmount = a.PaymentAmount.String()
		}
		if a.ApprovalState != domain.ApprovalUnreviewed {
			prior := a.ApprovalState
			a.ApprovalState = domain.ApprovalUnreviewed
			a.ApprovedBy = nil
			a.ApprovedAt = nil
			a.RejectionReason = ""
			a.ReviewNotes = ""
			if err := s.audit.Record(tx, domain.AuditApprovalReset, &actorID, assignmentSubject(id), prior, domain.ApprovalUnreviewed, map[string]interface{}{
				"reason": "payment amount changed",
			}); err != nil {
				return err
			}
		}
		a.PaymentAmount = &amount
		if err := s.audit.Record(tx, domain.AuditAmountSet, &actorID, assignmentSubject(id), oldAmount, amount.String(), nil); err != nil {
			return err
		}
		// Late amount on an already-completed project: fire the
		// completion promotion retroactively.
		if a.PaymentStatus == domain.PaymentStatusUnpaid {
			project, err := s.projects.GetByIDTx(tx, a.ProjectID)
			if err != nil {
				return err
			}
			if project.Status == domain.ProjectStatusCompleted {
				if err := s.promote(tx, a, &actorID); err != nil {
					return err
				}
			}
		}
		if err := s.assignments.Save(tx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve moves the review gate to APPROVED. Re-approval after a rejection is
// allowed; approving anything not PENDING, without an amount, or on an
// incomplete project is not.
func (s *AssignmentService) Approve(id, approverID uint, notes string) (*models.PaymentAssignment, error) {
	var out *models.PaymentAssignment
	err := s.txr.InTx(func(tx *gorm.DB) error {
		a, err := s.assignments.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if a.PaymentStatus != domain.PaymentStatusPending {
			return fmt.Errorf("%w: assignment %d is %s, approval requires PENDING", domain.ErrInvalidState, id, a.PaymentStatus)
		}
		project, err := s.projects.GetByIDTx(tx, a.ProjectID)
		if err != nil {
			return err
		}
		if project.Status != domain.ProjectStatusCompleted {
			return fmt.Errorf("%w: project %d is %s, approval requires COMPLETED", domain.ErrInvalidState, a.ProjectID, project.Status)
		}
		if !a.HasAmount() {
			return fmt.Errorf("%w: assignment %d has no payment amount", domain.ErrInvalidAmount, id)
		}
		prior := a.ApprovalState
		now := time.Now()
		a.ApprovalState = domain.ApprovalApproved
		a.ApprovedBy = &approverID
		a.ApprovedAt = &now
		a.ReviewNotes = notes
		a.RejectionReason = ""
		if err := s.assignments.Save(tx, a); err != nil {
			return err
		}
		if err := s.audit.Record(tx, domain.AuditApproved, &approverID, assignmentSubject(id), prior, domain.ApprovalApproved, map[string]interface{}{
			"amount": a.PaymentAmount.String(),
			"notes":  notes,
		}); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject moves the review gate to REJECTED. A non-empty reason is required
// before any state is touched.
func (s *AssignmentService) Reject(id, approverID uint, reason, notes string) (*models.PaymentAssignment, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	var out *models.PaymentAssignment
	err := s.txr.InTx(func(tx *gorm.DB) error {
		a, err := s.assignments.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if a.PaymentStatus != domain.PaymentStatusPending {
			return fmt.Errorf("%w: assignment %d is %s, rejection requires PENDING", domain.ErrInvalidState, id, a.PaymentStatus)
		}
		prior := a.ApprovalState
		a.ApprovalState = domain.ApprovalRejected
		a.RejectionReason = reason
		a.ReviewNotes = notes
		a.ApprovedBy = nil
		a.ApprovedAt = nil
		if err := s.assignments.Save(tx, a); err != nil {
			return err
		}
		if err := s.audit.Record(tx, domain.AuditRejected, &approverID, assignmentSubject(id), prior, domain.ApprovalRejected, map[string]interface{}{
			"reason": reason,
			"notes":  notes,
		}); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BatchApprovalResult is the per-id outcome of ApproveBatch.
type BatchApprovalResult struct {
	AssignmentID uint   `json:"assignment_id"`
	Approved     bool   `json:"approved"`
	Error        string `json:"error,omitempty"`
}

// ApproveBatch applies Approve to each id independently. One failure does not
// abort the others; the caller gets a per-id breakdown.
func (s *AssignmentService) ApproveBatch(ids []uint, approverID uint, notes string) []BatchApprovalResult {
	results := make([]BatchApprovalResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.Approve(id, approverID, notes)
		if err != nil {
			log.Printf("[Assignments] batch approve %d failed: %v", id, err)
			results = append(results, BatchApprovalResult{AssignmentID: id, Error: err.Error()})
			continue
		}
		results = append(results, BatchApprovalResult{AssignmentID: id, Approved: true})
	}
	return results
}

// OnProjectCompleted promotes every UNPAID assignment on the project that
// already carries an amount to PENDING, inside the caller's transaction.
func (s *AssignmentService) OnProjectCompleted(tx *gorm.DB, projectID uint, actorID *uint) error {
	list, err := s.assignments.ListUnpaidWithAmount(tx, projectID)
	if err != nil {
		return err
	}
	for i := range list {
		a := &list[i]
		if err := s.promote(tx, a, actorID); err != nil {
			return err
		}
		if err := s.assignments.Save(tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *AssignmentService) promote(tx *gorm.DB, a *models.PaymentAssignment, actorID *uint) error {
	now := time.Now()
	a.PaymentStatus = domain.PaymentStatusPending
	a.PaymentDueDate = &now
	return s.audit.Record(tx, domain.AuditPendingPromotion, actorID, assignmentSubject(a.ID), domain.PaymentStatusUnpaid, domain.PaymentStatusPending, nil)
}

func (s *AssignmentService) Get(id uint) (*models.PaymentAssignment, error) {
	return s.assignments.GetByID(id)
}

func (s *AssignmentService) ListByProject(projectID uint) ([]models.PaymentAssignment, error) {
	return s.assignments.ListByProject(projectID)
}
