package service

import (
	"fmt"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"gorm.io/gorm"
)

// ProjectService covers the thin project CRUD the portal needs and triggers
// the assignment promotion hook on completion.
type ProjectService struct {
	txr         TxRunner
	projects    ProjectStore
	assignments *AssignmentService
}

func NewProjectService(txr TxRunner, projects ProjectStore, assignments *AssignmentService) *ProjectService {
	return &ProjectService{txr: txr, projects: projects, assignments: assignments}
}

// Complete marks the project COMPLETED and, in the same commit, promotes its
// amount-bearing UNPAID assignments to PENDING.
func (s *ProjectService) Complete(projectID, actorID uint) (*models.Project, error) {
	var out *models.Project
	err := s.txr.InTx(func(tx *gorm.DB) error {
		p, err := s.projects.GetByIDTx(tx, projectID)
		if err != nil {
			return err
		}
		if p.Status == domain.ProjectStatusCompleted {
			return fmt.Errorf("%w: project %d is already COMPLETED", domain.ErrInvalidState, projectID)
		}
		now := time.Now()
		p.Status = domain.ProjectStatusCompleted
		p.CompletedAt = &now
		if err := s.projects.Save(tx, p); err != nil {
			return err
		}
		if err := s.assignments.OnProjectCompleted(tx, projectID, &actorID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
