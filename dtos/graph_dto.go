package dtos

import (
	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/risk"
)

// ScanStatusNoScanYet marks a graph request for a scope without any
// ingestion unit. The caller surfaces it instead of an error.
const ScanStatusNoScanYet = "no scan yet"

type GraphView struct {
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	ScanStatus *string     `json:"scanStatus"`
}

type GraphNode struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Version         string                 `json:"version"`
	Type            ComponentType          `json:"type"`
	RiskLevel       risk.Level             `json:"riskLevel"`
	PackageURL      *string                `json:"packageUrl"`
	Vulnerabilities []VulnerabilitySummary `json:"vulnerabilities"`
	Dependencies    int                    `json:"dependencies"`
	Dependents      int                    `json:"dependents"`
	Size            int                    `json:"size"`
}

type VulnerabilitySummary struct {
	CVEID       string  `json:"cveId"`
	Severity    string  `json:"severity"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type GraphEdge struct {
	Source uuid.UUID `json:"source"`
	Target uuid.UUID `json:"target"`
	Weight int       `json:"weight"`
}
