package repository

import (
	"errors"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	return r.getByID(r.db, id)
}

// GetByIDTx reads the project inside the caller's transaction.
func (r *ProjectRepository) GetByIDTx(tx *gorm.DB, id uint) (*models.Project, error) {
	return r.getByID(tx, id)
}

func (r *ProjectRepository) getByID(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(status string) ([]models.Project, error) {
	var projects []models.Project
	q := r.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Save(tx *gorm.DB, p *models.Project) error {
	return tx.Save(p).Error
}
