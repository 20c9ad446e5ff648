package dtos

// ScanFinding is a single raw vulnerability finding reported by a third
// party scanner for one ingestion unit.
type ScanFinding struct {
	PackageName    string          `json:"packageName" validate:"required"`
	PackageManager string          `json:"packageManager"`
	Version        string          `json:"version"`
	Severity       string          `json:"severity"`
	CvssScore      float64         `json:"cvssScore"`
	CvssVector     string          `json:"cvssVector"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Identifiers    ScanIdentifiers `json:"identifiers"`
	From           []string        `json:"from"`
	Remediation    string          `json:"remediation"`
}

type ScanIdentifiers struct {
	CVE []string `json:"CVE"`
}

// ScanReport sums up one scan merge pass. Batch operations report partial
// success instead of all-or-nothing failure.
type ScanReport struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
