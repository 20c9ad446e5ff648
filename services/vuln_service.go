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

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/utils"
	"gorm.io/gorm"
)

// vulnService deduplicates vulnerability records across sources. The CVE id
// is the canonical key; records without one get a synthetic id derived from
// their source and content so repeated ingestion stays idempotent.
type vulnService struct {
	vulnerabilityRepository          shared.VulnerabilityRepository
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository
	componentRepository              shared.ComponentRepository
	identityResolver                 shared.IdentityResolver

	// serializes risk aggregation per component. Two concurrent link
	// writes for the same component must not lose a raise.
	componentLocks utils.KeyedMutex
	// serializes find-or-create per CVE id. Enrichment workers reach the
	// same CVE from different components at the same time.
	vulnLocks utils.KeyedMutex
}

func NewVulnService(
	vulnerabilityRepository shared.VulnerabilityRepository,
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository,
	componentRepository shared.ComponentRepository,
	identityResolver shared.IdentityResolver,
) *vulnService {
	return &vulnService{
		vulnerabilityRepository:          vulnerabilityRepository,
		componentVulnerabilityRepository: componentVulnerabilityRepository,
		componentRepository:              componentRepository,
		identityResolver:                 identityResolver,
	}
}

var _ shared.VulnerabilityMerger = &vulnService{}

// syntheticCVEID builds a stable identifier for records which carry no CVE
// id at all. The hash input only contains content fields, so the same
// advisory produces the same id on every ingestion.
func syntheticCVEID(raw dtos.VulnerabilityRaw) string {
	source := strings.ToUpper(raw.Source)
	if source == "" {
		source = "UNKNOWN"
	}
	hash := utils.HashString(raw.Title + "|" + raw.Description)
	return fmt.Sprintf("%s-%s", source, hash[:12])
}

// effectiveScore prefers the reported numeric score and falls back to
// deriving one from the CVSS vector.
func effectiveScore(score float64, vector string) float64 {
	if score > 0 || vector == "" {
		return score
	}
	return risk.ScoreFromVector(vector)
}

func (s *vulnService) MergeVulnerability(tx shared.DB, raw dtos.VulnerabilityRaw) (models.Vulnerability, error) {
	cveID := strings.TrimSpace(raw.CVEID)
	if cveID == "" {
		cveID = syntheticCVEID(raw)
	}
	score := effectiveScore(raw.CVSSScore, raw.CVSSVector)

	unlock := s.vulnLocks.Lock(cveID)
	defer unlock()

	existing, err := s.vulnerabilityRepository.FindByCVEID(tx, cveID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vulnerability := models.Vulnerability{
			CVEID:            cveID,
			Title:            raw.Title,
			Description:      raw.Description,
			Severity:         raw.Severity,
			CVSSScore:        score,
			CVSSVector:       raw.CVSSVector,
			CWE:              raw.CWE,
			PublishedDate:    raw.PublishedDate,
			LastModifiedDate: raw.LastModifiedDate,
			Source:           raw.Source,
			Remediation:      raw.Remediation,
			Recommendation:   raw.Recommendation,
			RiskLevel:        risk.Classify(score, raw.Severity),
		}
		err = s.vulnerabilityRepository.Save(tx, &vulnerability)
		if err == nil {
			return vulnerability, nil
		}
		if !database.IsDuplicateKeyError(err) {
			return models.Vulnerability{}, err
		}
		// another process created the record in the meantime - fall
		// through to the merge path against its row.
		existing, err = s.vulnerabilityRepository.FindByCVEID(tx, cveID)
		if err != nil {
			return models.Vulnerability{}, err
		}
	} else if err != nil {
		return models.Vulnerability{}, err
	}

	// merge policy: descriptive fields are first writer wins, while the
	// score and severity only ever increase.
	changed := false
	fillIfEmpty := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fillIfEmpty(&existing.Title, raw.Title)
	fillIfEmpty(&existing.Description, raw.Description)
	fillIfEmpty(&existing.CWE, raw.CWE)
	fillIfEmpty(&existing.Remediation, raw.Remediation)
	fillIfEmpty(&existing.Recommendation, raw.Recommendation)
	if existing.PublishedDate == nil && raw.PublishedDate != nil {
		existing.PublishedDate = raw.PublishedDate
		changed = true
	}
	if existing.LastModifiedDate == nil && raw.LastModifiedDate != nil {
		existing.LastModifiedDate = raw.LastModifiedDate
		changed = true
	}

	if score > existing.CVSSScore {
		existing.CVSSScore = score
		if raw.CVSSVector != "" {
			existing.CVSSVector = raw.CVSSVector
		}
		changed = true
	}
	incomingLevel := risk.Classify(score, raw.Severity)
	if risk.Rank(incomingLevel) > risk.Rank(existing.RiskLevel) {
		existing.RiskLevel = incomingLevel
		existing.Severity = raw.Severity
		changed = true
	}

	if !changed {
		return existing, nil
	}
	if err := s.vulnerabilityRepository.Save(tx, &existing); err != nil {
		return models.Vulnerability{}, err
	}
	return existing, nil
}

// LinkToComponent creates or updates the occurrence record for one
// (component, vulnerability) pair and raises the component risk level. The
// per-component lock keeps the read-compare-write race free.
func (s *vulnService) LinkToComponent(tx shared.DB, component models.Component, vulnerability models.Vulnerability, occurrence dtos.VulnerabilityRaw, sbomID uuid.UUID) (models.ComponentVulnerability, error) {
	unlock := s.componentLocks.Lock(component.ID.String())
	defer unlock()

	score := effectiveScore(occurrence.CVSSScore, occurrence.CVSSVector)
	if score == 0 {
		score = vulnerability.CVSSScore
	}
	severity := occurrence.Severity
	if severity == "" {
		severity = vulnerability.Severity
	}

	link, err := s.componentVulnerabilityRepository.FindByComponentAndCVE(tx, component.ID, vulnerability.CVEID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		link = models.ComponentVulnerability{
			ComponentID: component.ID,
			CVEID:       vulnerability.CVEID,
			Severity:    severity,
			Score:       score,
			SBOMID:      sbomID,
		}
		if err := s.componentVulnerabilityRepository.Save(tx, &link); err != nil {
			return models.ComponentVulnerability{}, err
		}
	} else if err != nil {
		return models.ComponentVulnerability{}, err
	} else if score > link.Score {
		link.Score = score
		link.Severity = severity
		if err := s.componentVulnerabilityRepository.Save(tx, &link); err != nil {
			return models.ComponentVulnerability{}, err
		}
	}

	level := risk.Classify(score, severity)
	if err := s.componentRepository.RaiseRiskLevel(tx, component.ID, level); err != nil {
		return models.ComponentVulnerability{}, err
	}
	return link, nil
}

// ProcessScanResult merges a batch of scanner findings into one ingestion
// unit. Prior links of the unit get cleared first, so re-running the scan
// converges to the same state. Findings which match no stored component are
// counted as skipped, per-finding errors as failed.
func (s *vulnService) ProcessScanResult(sbomID uuid.UUID, findings []dtos.ScanFinding) (dtos.ScanReport, error) {
	var report dtos.ScanReport
	err := s.vulnerabilityRepository.Transaction(func(tx shared.DB) error {
		if err := s.componentVulnerabilityRepository.DeleteBySBOMID(tx, sbomID); err != nil {
			return err
		}
		if err := s.componentRepository.ResetRiskLevels(tx, sbomID); err != nil {
			return err
		}

		for _, finding := range findings {
			component, found, err := s.identityResolver.ResolveScannerPackage(tx, sbomID, finding.PackageName, finding.PackageManager, finding.Version)
			if err != nil {
				slog.Error("could not resolve scanner package", "package", finding.PackageName, "err", err)
				report.Failed++
				continue
			}
			if !found {
				slog.Debug("scanner package matches no component", "package", finding.PackageName, "sbomID", sbomID)
				report.Skipped++
				continue
			}

			raw := scanFindingToRaw(finding)
			vulnerability, err := s.MergeVulnerability(tx, raw)
			if err != nil {
				slog.Error("could not merge vulnerability", "package", finding.PackageName, "err", err)
				report.Failed++
				continue
			}
			if _, err := s.LinkToComponent(tx, component, vulnerability, raw, sbomID); err != nil {
				slog.Error("could not link vulnerability to component", "cveID", vulnerability.CVEID, "err", err)
				report.Failed++
				continue
			}
			report.Processed++
		}
		return nil
	})
	if err != nil {
		return dtos.ScanReport{}, err
	}
	return report, nil
}

func scanFindingToRaw(finding dtos.ScanFinding) dtos.VulnerabilityRaw {
	var cveID string
	if len(finding.Identifiers.CVE) > 0 {
		cveID = finding.Identifiers.CVE[0]
	}
	return dtos.VulnerabilityRaw{
		CVEID:       cveID,
		Title:       finding.Title,
		Description: finding.Description,
		Severity:    finding.Severity,
		CVSSScore:   finding.CvssScore,
		CVSSVector:  finding.CvssVector,
		Source:      "scanner",
		Remediation: finding.Remediation,
	}
}
