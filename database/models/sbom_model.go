package models

import (
	"time"

	"github.com/google/uuid"
)

// SBOM is one ingestion scope: a single bill-of-materials or a single
// build's component set. Re-ingestion of the same scope replaces its
// component, link and edge sets.
type SBOM struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"projectId" gorm:"column:project_id;type:uuid;index:idx_sbom_project_name,unique"`
	Name      string    `json:"name" gorm:"column:name;index:idx_sbom_project_name,unique"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s SBOM) TableName() string {
	return "sboms"
}
