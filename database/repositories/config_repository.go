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
	"encoding/json"

	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type configRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *configRepository {
	return &configRepository{db: db}
}

func (r *configRepository) GetJSONConfig(key string, v any) error {
	var config models.Config
	if err := r.db.First(&config, "config_key = ?", key).Error; err != nil {
		return err
	}
	return json.Unmarshal(config.Val, v)
}

func (r *configRepository) SetJSONConfig(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"val", "updated_at"}),
	}).Create(&models.Config{Key: key, Val: val}).Error
}
