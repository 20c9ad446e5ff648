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

package models

import (
	"github.com/google/uuid"
)

// ComponentDependency is a directed edge "source depends on target" scoped
// to one SBOM. The edge set plus the component set defines a directed graph
// which may contain cycles.
type ComponentDependency struct {
	ID uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	// nil for direct dependencies of the scope root
	SourceComponentID *uuid.UUID `json:"sourceComponentId" gorm:"column:source_component_id;type:uuid;index:dependency_source_idx"`
	SourceComponent   *Component `json:"-" gorm:"foreignKey:SourceComponentID;references:ID;constraint:OnDelete:CASCADE;"`
	TargetComponentID uuid.UUID  `json:"targetComponentId" gorm:"column:target_component_id;type:uuid;not null;index:dependency_target_idx"`
	TargetComponent   Component  `json:"-" gorm:"foreignKey:TargetComponentID;references:ID;constraint:OnDelete:CASCADE;"`

	SBOMID uuid.UUID `json:"sbomId" gorm:"column:sbom_id;type:uuid;not null;index:dependency_sbom_idx"`

	DependencyType string `json:"type" gorm:"column:dependency_type"`
	Scope          string `json:"scope"`
	Direct         bool   `json:"direct"`
	Purl           string `json:"purl"`
}

func (d ComponentDependency) TableName() string {
	return "component_dependencies"
}
