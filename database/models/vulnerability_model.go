package models

import (
	"time"

	"github.com/l3montree-dev/vulntrack/risk"
)

// Vulnerability is a de-duplicated record of a known security issue. CVEID
// is globally unique - sources without a canonical identifier get a
// synthetic stable one minted by the merger.
type Vulnerability struct {
	CVEID            string     `json:"cveId" gorm:"primaryKey;column:cve_id;type:text"`
	Title            string     `json:"title" gorm:"type:text"`
	Description      string     `json:"description" gorm:"type:text"`
	Severity         string     `json:"severity"`
	CVSSScore        float64    `json:"cvssScore" gorm:"column:cvss_score;type:decimal(4,2)"`
	CVSSVector       string     `json:"cvssVector" gorm:"column:cvss_vector;type:text"`
	CWE              string     `json:"cwe" gorm:"column:cwe"`
	PublishedDate    *time.Time `json:"publishedDate" gorm:"column:published_date"`
	LastModifiedDate *time.Time `json:"lastModifiedDate" gorm:"column:last_modified_date"`
	Source           string     `json:"source"`
	Remediation      string     `json:"remediation" gorm:"type:text"`
	Recommendation   string     `json:"recommendation" gorm:"type:text"`
	RiskLevel        risk.Level `json:"riskLevel" gorm:"column:risk_level;default:'unknown'"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (v Vulnerability) TableName() string {
	return "vulnerabilities"
}
