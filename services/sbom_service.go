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
	"log/slog"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/utils"
)

type sbomService struct {
	sbomRepository                   shared.SBOMRepository
	componentRepository              shared.ComponentRepository
	componentDependencyRepository    shared.ComponentDependencyRepository
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository
	identityResolver                 shared.IdentityResolver
	vulnerabilityMerger              shared.VulnerabilityMerger
}

func NewSBOMService(
	sbomRepository shared.SBOMRepository,
	componentRepository shared.ComponentRepository,
	componentDependencyRepository shared.ComponentDependencyRepository,
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository,
	identityResolver shared.IdentityResolver,
	vulnerabilityMerger shared.VulnerabilityMerger,
) *sbomService {
	return &sbomService{
		sbomRepository:                   sbomRepository,
		componentRepository:              componentRepository,
		componentDependencyRepository:    componentDependencyRepository,
		componentVulnerabilityRepository: componentVulnerabilityRepository,
		identityResolver:                 identityResolver,
		vulnerabilityMerger:              vulnerabilityMerger,
	}
}

var _ shared.SBOMService = &sbomService{}

// IngestSBOM replaces the component inventory of one (project, name) scope
// with the content of the decoded document. The whole ingestion runs in a
// single transaction: a re-upload of the same document converges to the
// same rows, a failing upload leaves the previous state untouched.
func (s *sbomService) IngestSBOM(projectID uuid.UUID, name string, bom *normalize.NormalizedBOM) (models.SBOM, error) {
	var sbom models.SBOM
	err := s.sbomRepository.Transaction(func(tx shared.DB) error {
		var err error
		sbom, err = s.sbomRepository.FindOrCreate(tx, projectID, name)
		if err != nil {
			return err
		}

		// clear the scope before rebuilding it. Links first, then edges,
		// then the components themselves.
		if err := s.componentVulnerabilityRepository.DeleteBySBOMID(tx, sbom.ID); err != nil {
			return err
		}
		if err := s.componentDependencyRepository.DeleteBySBOMID(tx, sbom.ID); err != nil {
			return err
		}
		if err := s.componentRepository.DeleteBySBOMID(tx, sbom.ID); err != nil {
			return err
		}

		// bom-ref -> stored component, needed to resolve dependency edges
		// and embedded vulnerability targets.
		refIndex := make(map[string]models.Component, len(bom.Components))
		scopeIndex := make(map[string]string, len(bom.Components))
		for _, descriptor := range bom.Components {
			component, err := s.identityResolver.ResolveOrCreate(tx, sbom.ID, descriptor)
			if err != nil {
				return err
			}
			refIndex[descriptor.BOMRef] = component
			scopeIndex[descriptor.BOMRef] = descriptor.Scope
		}

		edges := buildDependencyEdges(sbom.ID, bom.Dependencies, refIndex, scopeIndex)
		if len(edges) > 0 {
			if err := s.componentDependencyRepository.CreateBatch(tx, edges); err != nil {
				return err
			}
		}

		skipped := 0
		for _, embedded := range bom.Vulnerabilities {
			vulnerability, err := s.vulnerabilityMerger.MergeVulnerability(tx, embedded.Raw)
			if err != nil {
				return err
			}
			for _, ref := range embedded.Affects {
				component, ok := refIndex[ref]
				if !ok {
					skipped++
					continue
				}
				if _, err := s.vulnerabilityMerger.LinkToComponent(tx, component, vulnerability, embedded.Raw, sbom.ID); err != nil {
					return err
				}
			}
		}
		if skipped > 0 {
			slog.Warn("embedded vulnerabilities reference unknown bom-refs", "sbomID", sbom.ID, "skipped", skipped)
		}
		return nil
	})
	if err != nil {
		return models.SBOM{}, err
	}
	return sbom, nil
}

// buildDependencyEdges turns the flat bom dependency list into edge rows.
// A dependency entry whose ref is not a component of the document is
// treated as the scope root: its dependencies become direct edges with a
// nil source.
func buildDependencyEdges(sbomID uuid.UUID, dependencies []dtos.DependencyDescriptor, refIndex map[string]models.Component, scopeIndex map[string]string) []models.ComponentDependency {
	var edges []models.ComponentDependency
	for _, dependency := range dependencies {
		var sourceID *uuid.UUID
		if source, ok := refIndex[dependency.Ref]; ok {
			sourceID = utils.Ptr(source.ID)
		}
		for _, targetRef := range dependency.DependsOn {
			target, ok := refIndex[targetRef]
			if !ok {
				slog.Debug("dependency edge targets unknown bom-ref", "ref", targetRef)
				continue
			}
			edges = append(edges, models.ComponentDependency{
				SourceComponentID: sourceID,
				TargetComponentID: target.ID,
				SBOMID:            sbomID,
				DependencyType:    string(target.Type),
				Scope:             scopeIndex[targetRef],
				Direct:            sourceID == nil,
				Purl:              utils.SafeDereference(target.PackageURL),
			})
		}
	}
	return edges
}
