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

package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/package-url/packageurl-go"
)

// useful for integration testing - use in production to just fire and forget a function "go func()"
// during testing, this can be used to synchronize the execution of multiple goroutines - and wait for them to finish
type FireAndForgetSynchronizer interface {
	FireAndForget(fn func())
}

type SBOMRepository interface {
	GetDB(tx DB) DB
	Transaction(fn func(tx DB) error) error
	Read(id uuid.UUID) (models.SBOM, error)
	All() ([]models.SBOM, error)
	FindOrCreate(tx DB, projectID uuid.UUID, name string) (models.SBOM, error)
}

type ComponentRepository interface {
	GetDB(tx DB) DB
	Transaction(fn func(tx DB) error) error
	Create(tx DB, component *models.Component) error
	Save(tx DB, component *models.Component) error
	FindByNameGroupVersion(tx DB, sbomID uuid.UUID, name string, group *string, version string) (models.Component, error)
	FindByNameVersion(tx DB, sbomID uuid.UUID, name, version string) (models.Component, error)
	FindByName(tx DB, sbomID uuid.UUID, name string) (models.Component, error)
	ListBySBOMID(sbomID uuid.UUID) ([]models.Component, error)
	DeleteBySBOMID(tx DB, sbomID uuid.UUID) error
	RaiseRiskLevel(tx DB, componentID uuid.UUID, level risk.Level) error
	ResetRiskLevels(tx DB, sbomID uuid.UUID) error
}

type VulnerabilityRepository interface {
	GetDB(tx DB) DB
	Transaction(fn func(tx DB) error) error
	FindByCVEID(tx DB, cveID string) (models.Vulnerability, error)
	Save(tx DB, vulnerability *models.Vulnerability) error
}

type ComponentVulnerabilityRepository interface {
	GetDB(tx DB) DB
	Save(tx DB, link *models.ComponentVulnerability) error
	FindByComponentAndCVE(tx DB, componentID uuid.UUID, cveID string) (models.ComponentVulnerability, error)
	ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentVulnerability, error)
	DeleteBySBOMID(tx DB, sbomID uuid.UUID) error
}

type ComponentDependencyRepository interface {
	GetDB(tx DB) DB
	CreateBatch(tx DB, edges []models.ComponentDependency) error
	ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentDependency, error)
	DeleteBySBOMID(tx DB, sbomID uuid.UUID) error
}

type ConfigService interface {
	GetJSONConfig(key string, v any) error
	SetJSONConfig(key string, v any) error
}

// IdentityResolver decides create-vs-reuse for component descriptors coming
// from heterogeneous ingestion sources.
type IdentityResolver interface {
	ResolveOrCreate(tx DB, sbomID uuid.UUID, descriptor dtos.ComponentDescriptor) (models.Component, error)
	// ResolveScannerPackage matches a scanner-reported package against the
	// stored component set. It never creates - unmatched packages are the
	// caller's skip case.
	ResolveScannerPackage(tx DB, sbomID uuid.UUID, packageName, packageManager, version string) (models.Component, bool, error)
}

type VulnerabilityMerger interface {
	MergeVulnerability(tx DB, raw dtos.VulnerabilityRaw) (models.Vulnerability, error)
	LinkToComponent(tx DB, component models.Component, vulnerability models.Vulnerability, occurrence dtos.VulnerabilityRaw, sbomID uuid.UUID) (models.ComponentVulnerability, error)
	ProcessScanResult(sbomID uuid.UUID, findings []dtos.ScanFinding) (dtos.ScanReport, error)
}

type SBOMService interface {
	IngestSBOM(projectID uuid.UUID, name string, bom *normalize.NormalizedBOM) (models.SBOM, error)
}

type GraphService interface {
	BuildGraph(sbomID uuid.UUID) (dtos.GraphView, error)
}

type EnrichmentService interface {
	ScheduleComponentEnrichment(component models.Component) string
	ScheduleSBOMEnrichment(sbomID uuid.UUID) string
	JobStatus(jobID string) (dtos.EnrichmentJob, bool)
}

// VulnDatabaseClient is the contract either external vulnerability feed has
// to fulfill. Implementations handle their own rate limiting and retries.
type VulnDatabaseClient interface {
	Search(ctx context.Context, purl packageurl.PackageURL) ([]dtos.VulnerabilityRaw, error)
}

// EnrichmentStatusStore tracks enrichment job progress. The in-memory
// default is process-local and best-effort; swap it for something durable
// if job status has to survive restarts.
type EnrichmentStatusStore interface {
	Create(job dtos.EnrichmentJob)
	Update(jobID string, fn func(job *dtos.EnrichmentJob))
	Get(jobID string) (dtos.EnrichmentJob, bool)
}
