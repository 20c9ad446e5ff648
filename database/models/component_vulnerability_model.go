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
	"time"

	"github.com/google/uuid"
)

// ComponentVulnerability links a component to a vulnerability and carries
// the per-occurrence detail, since the reported severity and score can vary
// by source. At most one link exists per (component, vulnerability) pair.
type ComponentVulnerability struct {
	ID uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	ComponentID uuid.UUID     `json:"componentId" gorm:"column:component_id;type:uuid;not null;index:component_vuln_idx,unique"`
	Component   Component     `json:"-" gorm:"foreignKey:ComponentID;references:ID;constraint:OnDelete:CASCADE;"`
	CVEID       string        `json:"cveId" gorm:"column:cve_id;type:text;not null;index:component_vuln_idx,unique"`
	Vuln        Vulnerability `json:"vulnerability" gorm:"foreignKey:CVEID;references:CVEID;constraint:OnDelete:CASCADE;"`

	Severity string  `json:"severity"`
	Score    float64 `json:"score" gorm:"type:decimal(4,2)"`

	SBOMID uuid.UUID `json:"sbomId" gorm:"column:sbom_id;type:uuid;not null;index:component_vuln_sbom_idx"`

	AIRecommendation *string `json:"aiRecommendation" gorm:"column:ai_recommendation;type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l ComponentVulnerability) TableName() string {
	return "component_vulnerabilities"
}
