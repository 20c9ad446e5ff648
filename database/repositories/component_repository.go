// Copyright (C) 2025 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package repositories

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/risk"
	"gorm.io/gorm"
)

type componentRepository struct {
	*GormRepository[uuid.UUID, models.Component]
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *componentRepository {
	return &componentRepository{
		GormRepository: newGormRepository[uuid.UUID, models.Component](db),
		db:             db,
	}
}

func (r *componentRepository) FindByNameGroupVersion(tx *gorm.DB, sbomID uuid.UUID, name string, group *string, version string) (models.Component, error) {
	var component models.Component
	query := r.GetDB(tx).Where("sbom_id = ? AND name = ? AND version = ?", sbomID, name, version)
	if group == nil {
		query = query.Where("group_name IS NULL")
	} else {
		query = query.Where("group_name = ?", *group)
	}
	err := query.First(&component).Error
	return component, err
}

func (r *componentRepository) FindByNameVersion(tx *gorm.DB, sbomID uuid.UUID, name, version string) (models.Component, error) {
	var component models.Component
	err := r.GetDB(tx).Where("sbom_id = ? AND name = ? AND version = ?", sbomID, name, version).First(&component).Error
	return component, err
}

func (r *componentRepository) FindByName(tx *gorm.DB, sbomID uuid.UUID, name string) (models.Component, error) {
	var component models.Component
	err := r.GetDB(tx).Where("sbom_id = ? AND name = ?", sbomID, name).First(&component).Error
	return component, err
}

func (r *componentRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.Component, error) {
	var components []models.Component
	err := r.db.Where("sbom_id = ?", sbomID).Find(&components).Error
	return components, err
}

// ResetRiskLevels is called when a scope gets re-ingested and all prior
// vulnerability links are cleared. Risk levels never decrease otherwise.
func (r *componentRepository) ResetRiskLevels(tx *gorm.DB, sbomID uuid.UUID) error {
	return r.GetDB(tx).Model(&models.Component{}).
		Where("sbom_id = ?", sbomID).
		Update("risk_level", risk.LevelNone).Error
}

func (r *componentRepository) DeleteBySBOMID(tx *gorm.DB, sbomID uuid.UUID) error {
	return r.GetDB(tx).Where("sbom_id = ?", sbomID).Delete(&models.Component{}).Error
}

// RaiseRiskLevel applies the raise-only aggregation: the stored level is
// only ever replaced by a strictly higher one.
func (r *componentRepository) RaiseRiskLevel(tx *gorm.DB, componentID uuid.UUID, level risk.Level) error {
	var component models.Component
	if err := r.GetDB(tx).First(&component, "id = ?", componentID).Error; err != nil {
		return err
	}
	if risk.Rank(level) <= risk.Rank(component.RiskLevel) {
		return nil
	}
	return r.GetDB(tx).Model(&models.Component{}).Where("id = ?", componentID).Update("risk_level", level).Error
}
