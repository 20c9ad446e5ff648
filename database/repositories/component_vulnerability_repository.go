package repositories

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
)

type componentVulnerabilityRepository struct {
	*GormRepository[uuid.UUID, models.ComponentVulnerability]
	db *gorm.DB
}

func NewComponentVulnerabilityRepository(db *gorm.DB) *componentVulnerabilityRepository {
	return &componentVulnerabilityRepository{
		GormRepository: newGormRepository[uuid.UUID, models.ComponentVulnerability](db),
		db:             db,
	}
}

func (r *componentVulnerabilityRepository) FindByComponentAndCVE(tx *gorm.DB, componentID uuid.UUID, cveID string) (models.ComponentVulnerability, error) {
	var link models.ComponentVulnerability
	err := r.GetDB(tx).Where("component_id = ? AND cve_id = ?", componentID, cveID).First(&link).Error
	return link, err
}

func (r *componentVulnerabilityRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentVulnerability, error) {
	var links []models.ComponentVulnerability
	err := r.db.Preload("Vuln").Where("sbom_id = ?", sbomID).Find(&links).Error
	return links, err
}

func (r *componentVulnerabilityRepository) DeleteBySBOMID(tx *gorm.DB, sbomID uuid.UUID) error {
	return r.GetDB(tx).Where("sbom_id = ?", sbomID).Delete(&models.ComponentVulnerability{}).Error
}
