package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
)

type sbomRepository struct {
	*GormRepository[uuid.UUID, models.SBOM]
	db *gorm.DB
}

func NewSBOMRepository(db *gorm.DB) *sbomRepository {
	return &sbomRepository{
		GormRepository: newGormRepository[uuid.UUID, models.SBOM](db),
		db:             db,
	}
}

func (r *sbomRepository) FindOrCreate(tx *gorm.DB, projectID uuid.UUID, name string) (models.SBOM, error) {
	var sbom models.SBOM
	err := r.GetDB(tx).Where("project_id = ? AND name = ?", projectID, name).First(&sbom).Error
	if err == nil {
		return sbom, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SBOM{}, err
	}

	sbom = models.SBOM{ProjectID: projectID, Name: name}
	if err := r.GetDB(tx).Create(&sbom).Error; err != nil {
		return models.SBOM{}, err
	}
	return sbom, nil
}
