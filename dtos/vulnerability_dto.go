package dtos

import "time"

// VulnerabilityRaw is what every vulnerability source - the SBOM itself, a
// scanner result or an external feed - gets normalized into before it hits
// the merger.
type VulnerabilityRaw struct {
	CVEID            string     `json:"cveId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	CVSSScore        float64    `json:"cvssScore"`
	CVSSVector       string     `json:"cvssVector"`
	CWE              string     `json:"cwe"`
	PublishedDate    *time.Time `json:"publishedDate"`
	LastModifiedDate *time.Time `json:"lastModifiedDate"`
	Source           string     `json:"source"`
	Remediation      string     `json:"remediation"`
	Recommendation   string     `json:"recommendation"`
}
