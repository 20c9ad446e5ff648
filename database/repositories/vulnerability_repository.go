package repositories

import (
	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
)

type vulnerabilityRepository struct {
	*GormRepository[string, models.Vulnerability]
	db *gorm.DB
}

func NewVulnerabilityRepository(db *gorm.DB) *vulnerabilityRepository {
	return &vulnerabilityRepository{
		GormRepository: newGormRepository[string, models.Vulnerability](db),
		db:             db,
	}
}

func (r *vulnerabilityRepository) FindByCVEID(tx *gorm.DB, cveID string) (models.Vulnerability, error) {
	var vulnerability models.Vulnerability
	err := r.GetDB(tx).First(&vulnerability, "cve_id = ?", cveID).Error
	return vulnerability, err
}
