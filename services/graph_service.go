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
	"math"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/utils"
	"gorm.io/gorm"
)

type graphService struct {
	sbomRepository                   shared.SBOMRepository
	componentRepository              shared.ComponentRepository
	componentDependencyRepository    shared.ComponentDependencyRepository
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository
}

func NewGraphService(
	sbomRepository shared.SBOMRepository,
	componentRepository shared.ComponentRepository,
	componentDependencyRepository shared.ComponentDependencyRepository,
	componentVulnerabilityRepository shared.ComponentVulnerabilityRepository,
) *graphService {
	return &graphService{
		sbomRepository:                   sbomRepository,
		componentRepository:              componentRepository,
		componentDependencyRepository:    componentDependencyRepository,
		componentVulnerabilityRepository: componentVulnerabilityRepository,
	}
}

var _ shared.GraphService = &graphService{}

// nodeSize maps risk and connectivity onto a rendering size between 24 and
// 72. The connectivity contribution is capped so hub nodes do not drown out
// the risk signal.
func nodeSize(maxCvssScore float64, dependencies, dependents int) int {
	connectivity := (dependencies + dependents) * 2
	if connectivity > 24 {
		connectivity = 24
	}
	size := 24 + int(math.Round(maxCvssScore*3)) + connectivity
	if size > 72 {
		size = 72
	}
	return size
}

// BuildGraph renders the stored inventory of one ingestion unit as a
// directed dependency graph. An unknown unit yields an empty graph with a
// scan status marker instead of an error - the caller cannot tell a fresh
// project from a missing one and should not have to.
func (g *graphService) BuildGraph(sbomID uuid.UUID) (dtos.GraphView, error) {
	if _, err := g.sbomRepository.Read(sbomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dtos.GraphView{
				Nodes:      []dtos.GraphNode{},
				Edges:      []dtos.GraphEdge{},
				ScanStatus: utils.Ptr(dtos.ScanStatusNoScanYet),
			}, nil
		}
		return dtos.GraphView{}, err
	}

	components, err := g.componentRepository.ListBySBOMID(sbomID)
	if err != nil {
		return dtos.GraphView{}, err
	}
	dependencies, err := g.componentDependencyRepository.ListBySBOMID(sbomID)
	if err != nil {
		return dtos.GraphView{}, err
	}
	links, err := g.componentVulnerabilityRepository.ListBySBOMID(sbomID)
	if err != nil {
		return dtos.GraphView{}, err
	}

	outgoing := make(map[uuid.UUID]int)
	incoming := make(map[uuid.UUID]int)
	edges := make([]dtos.GraphEdge, 0, len(dependencies))
	for _, dependency := range dependencies {
		incoming[dependency.TargetComponentID]++
		if dependency.SourceComponentID == nil {
			// edges from the scope root are counted for the target but
			// have no source node to render
			continue
		}
		outgoing[*dependency.SourceComponentID]++
		edges = append(edges, dtos.GraphEdge{
			Source: *dependency.SourceComponentID,
			Target: dependency.TargetComponentID,
			Weight: 1,
		})
	}

	vulnerabilitiesByComponent := make(map[uuid.UUID][]models.ComponentVulnerability)
	for _, link := range links {
		vulnerabilitiesByComponent[link.ComponentID] = append(vulnerabilitiesByComponent[link.ComponentID], link)
	}

	nodes := make([]dtos.GraphNode, 0, len(components))
	for _, component := range components {
		componentLinks := vulnerabilitiesByComponent[component.ID]
		summaries := make([]dtos.VulnerabilitySummary, 0, len(componentLinks))
		maxCvssScore := 0.0
		for _, link := range componentLinks {
			score := link.Score
			if link.Vuln.CVSSScore > score {
				score = link.Vuln.CVSSScore
			}
			if score > maxCvssScore {
				maxCvssScore = score
			}
			summaries = append(summaries, dtos.VulnerabilitySummary{
				CVEID:       link.CVEID,
				Severity:    link.Severity,
				Score:       score,
				Description: link.Vuln.Description,
			})
		}

		nodes = append(nodes, dtos.GraphNode{
			ID:              component.ID,
			Name:            component.Name,
			Version:         component.Version,
			Type:            component.Type,
			RiskLevel:       component.RiskLevel,
			PackageURL:      component.PackageURL,
			Vulnerabilities: summaries,
			Dependencies:    outgoing[component.ID],
			Dependents:      incoming[component.ID],
			Size:            nodeSize(maxCvssScore, outgoing[component.ID], incoming[component.ID]),
		})
	}

	return dtos.GraphView{Nodes: nodes, Edges: edges}, nil
}
