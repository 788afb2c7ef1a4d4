package repository

import (
	"errors"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(a *models.PaymentAssignment) error {
	return r.db.Create(a).Error
}

func (r *AssignmentRepository) GetByID(id uint) (*models.PaymentAssignment, error) {
	var a models.PaymentAssignment
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetForUpdate locks the assignment row for the duration of the caller's
// transaction, serializing conflicting admin actions on one assignment.
func (r *AssignmentRepository) GetForUpdate(tx *gorm.DB, id uint) (*models.PaymentAssignment, error) {
	var a models.PaymentAssignment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) Save(tx *gorm.DB, a *models.PaymentAssignment) error {
	return tx.Save(a).Error
}

func (r *AssignmentRepository) Delete(a *models.PaymentAssignment) error {
	return r.db.Delete(a).Error
}

func (r *AssignmentRepository) ListByProject(projectID uint) ([]models.PaymentAssignment, error) {
	var list []models.PaymentAssignment
	if err := r.db.Where("project_id = ?", projectID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AssignmentRepository) ListByContractor(contractorID uint) ([]models.PaymentAssignment, error) {
	var list []models.PaymentAssignment
	if err := r.db.Where("contractor_id = ?", contractorID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListUnpaidWithAmount returns assignments on a project still UNPAID that
// already carry an amount, locked for the completion-hook promotion.
func (r *AssignmentRepository) ListUnpaidWithAmount(tx *gorm.DB, projectID uint) ([]models.PaymentAssignment, error) {
	var list []models.PaymentAssignment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND payment_status = ? AND payment_amount IS NOT NULL", projectID, domain.PaymentStatusUnpaid).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListPayable returns a contractor's assignments eligible for a payout:
// PENDING payment status, APPROVED review, project COMPLETED. Rows are
// locked so a concurrent dispatch cannot pick them up twice.
func (r *AssignmentRepository) ListPayable(tx *gorm.DB, contractorID uint) ([]models.PaymentAssignment, error) {
	var list []models.PaymentAssignment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "payment_assignments"}}).
		Joins("JOIN projects ON projects.id = payment_assignments.project_id").
		Where("payment_assignments.contractor_id = ?", contractorID).
		Where("payment_assignments.payment_status = ?", domain.PaymentStatusPending).
		Where("payment_assignments.approval_state = ?", domain.ApprovalApproved).
		Where("projects.status = ?", domain.ProjectStatusCompleted).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListByPayout returns the assignments attached to one payout.
func (r *AssignmentRepository) ListByPayout(tx *gorm.DB, payoutID uint) ([]models.PaymentAssignment, error) {
	var list []models.PaymentAssignment
	if err := tx.Where("payout_id = ?", payoutID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
