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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/package-url/packageurl-go"
)

type Component struct {
	ID   uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"column:name;index:component_identity_idx"`
	// nullable namespace, e.g. a maven groupId or an npm scope
	Group      *string            `json:"group" gorm:"column:group_name;index:component_identity_idx"`
	Version    string             `json:"version" gorm:"column:version;index:component_identity_idx"`
	Type       dtos.ComponentType `json:"type" gorm:"column:component_type"`
	PackageURL *string            `json:"packageUrl" gorm:"column:package_url"`
	License    *string            `json:"license"`
	RiskLevel  risk.Level         `json:"riskLevel" gorm:"column:risk_level;default:'none'"`
	Hash       string             `json:"hash"`
	Evidence   string             `json:"evidence" gorm:"type:text"`

	SBOMID uuid.UUID `json:"sbomId" gorm:"column:sbom_id;type:uuid;not null;index:component_identity_idx"`
	SBOM   SBOM      `json:"-" gorm:"foreignKey:SBOMID;references:ID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Component) TableName() string {
	return "components"
}

func (c Component) Purl() (packageurl.PackageURL, error) {
	if c.PackageURL == nil {
		return packageurl.PackageURL{}, fmt.Errorf("component %s has no package url", c.ID)
	}
	return packageurl.FromString(*c.PackageURL)
}
