package repositories

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
)

type componentDependencyRepository struct {
	*GormRepository[uuid.UUID, models.ComponentDependency]
	db *gorm.DB
}

func NewComponentDependencyRepository(db *gorm.DB) *componentDependencyRepository {
	return &componentDependencyRepository{
		GormRepository: newGormRepository[uuid.UUID, models.ComponentDependency](db),
		db:             db,
	}
}

func (r *componentDependencyRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentDependency, error) {
	var edges []models.ComponentDependency
	err := r.db.Where("sbom_id = ?", sbomID).Find(&edges).Error
	return edges, err
}

func (r *componentDependencyRepository) DeleteBySBOMID(tx *gorm.DB, sbomID uuid.UUID) error {
	return r.GetDB(tx).Where("sbom_id = ?", sbomID).Delete(&models.ComponentDependency{}).Error
}
