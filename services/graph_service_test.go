package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/stretchr/testify/assert"
)

func TestNodeSize(t *testing.T) {
	// a critical, well connected node
	assert.Equal(t, 61, nodeSize(9.8, 3, 1))
	// no vulnerabilities, no edges
	assert.Equal(t, 24, nodeSize(0, 0, 0))
	// the connectivity contribution is capped at 24
	assert.Equal(t, 48, nodeSize(0, 100, 100))
	// the total is capped at 72
	assert.Equal(t, 72, nodeSize(10, 100, 100))
}

func TestBuildGraph(t *testing.T) {
	t.Run("unknown scope yields an empty graph with a scan status", func(t *testing.T) {
		service := NewGraphService(newFakeSBOMRepository(), newFakeComponentRepository(), newFakeComponentDependencyRepository(), newFakeComponentVulnerabilityRepository())

		graph, err := service.BuildGraph(uuid.New())

		assert.NoError(t, err)
		assert.Empty(t, graph.Nodes)
		assert.Empty(t, graph.Edges)
		if assert.NotNil(t, graph.ScanStatus) {
			assert.Equal(t, dtos.ScanStatusNoScanYet, *graph.ScanStatus)
		}
	})

	t.Run("renders nodes, edges and vulnerability summaries", func(t *testing.T) {
		sbomRepository := newFakeSBOMRepository()
		componentRepository := newFakeComponentRepository()
		dependencyRepository := newFakeComponentDependencyRepository()
		linkRepository := newFakeComponentVulnerabilityRepository()
		service := NewGraphService(sbomRepository, componentRepository, dependencyRepository, linkRepository)

		sbom, err := sbomRepository.FindOrCreate(nil, uuid.New(), "default")
		assert.NoError(t, err)

		app := models.Component{Name: "app", Version: "1.0.0", Type: dtos.ComponentTypeApplication, SBOMID: sbom.ID}
		lodash := models.Component{Name: "lodash", Version: "4.17.21", Type: dtos.ComponentTypeLibrary, RiskLevel: risk.LevelCritical, SBOMID: sbom.ID}
		assert.NoError(t, componentRepository.Create(nil, &app))
		assert.NoError(t, componentRepository.Create(nil, &lodash))

		assert.NoError(t, dependencyRepository.CreateBatch(nil, []models.ComponentDependency{
			// root edge, only counted for the target
			{TargetComponentID: app.ID, SBOMID: sbom.ID, Direct: true},
			{SourceComponentID: utils.Ptr(app.ID), TargetComponentID: lodash.ID, SBOMID: sbom.ID},
		}))

		assert.NoError(t, linkRepository.Save(nil, &models.ComponentVulnerability{
			ComponentID: lodash.ID,
			CVEID:       "CVE-2024-1234",
			Severity:    "CRITICAL",
			Score:       9.8,
			SBOMID:      sbom.ID,
			Vuln:        models.Vulnerability{CVEID: "CVE-2024-1234", Description: "prototype pollution"},
		}))

		graph, err := service.BuildGraph(sbom.ID)
		assert.NoError(t, err)
		assert.Nil(t, graph.ScanStatus)
		assert.Len(t, graph.Nodes, 2)
		assert.Len(t, graph.Edges, 1)
		assert.Equal(t, 1, graph.Edges[0].Weight)

		var lodashNode dtos.GraphNode
		for _, node := range graph.Nodes {
			if node.ID == lodash.ID {
				lodashNode = node
			}
		}
		assert.Equal(t, risk.LevelCritical, lodashNode.RiskLevel)
		assert.Equal(t, 0, lodashNode.Dependencies)
		assert.Equal(t, 1, lodashNode.Dependents)
		// 24 + round(9.8*3) + min(1*2, 24) = 24 + 29 + 2
		assert.Equal(t, 55, lodashNode.Size)
		if assert.Len(t, lodashNode.Vulnerabilities, 1) {
			assert.Equal(t, "CVE-2024-1234", lodashNode.Vulnerabilities[0].CVEID)
			assert.Equal(t, 9.8, lodashNode.Vulnerabilities[0].Score)
			assert.Equal(t, "prototype pollution", lodashNode.Vulnerabilities[0].Description)
		}
	})
}
