// Copyright 2025 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/labstack/echo/v4"
)

type SBOMController struct {
	sbomService  shared.SBOMService
	graphService shared.GraphService
}

func NewSBOMController(sbomService shared.SBOMService, graphService shared.GraphService) *SBOMController {
	return &SBOMController{
		sbomService:  sbomService,
		graphService: graphService,
	}
}

// Ingest accepts a CycloneDX JSON document and replaces the component
// inventory of the (project, name) scope with its content.
func (c *SBOMController) Ingest(ctx shared.Context) error {
	projectID, err := uuid.Parse(ctx.Param("projectID"))
	if err != nil {
		return echo.NewHTTPError(400, "invalid project id").WithInternal(err)
	}
	name := ctx.QueryParam("name")
	if name == "" {
		name = "default"
	}

	bom, err := normalize.DecodeBOM(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(400, "Invalid SBOM format").WithInternal(err)
	}

	begin := time.Now()
	sbom, err := c.sbomService.IngestSBOM(projectID, name, bom)
	if err != nil {
		return echo.NewHTTPError(500, "could not ingest sbom").WithInternal(err)
	}
	monitoring.SBOMIngestionDuration.Observe(time.Since(begin).Seconds())
	monitoring.ComponentsIngestedAmount.Add(float64(len(bom.Components)))
	slog.Info("sbom ingested", "projectID", projectID, "name", name, "components", len(bom.Components), "duration", time.Since(begin))

	return ctx.JSON(http.StatusOK, sbom)
}

// Graph renders the dependency graph of one ingestion unit.
func (c *SBOMController) Graph(ctx shared.Context) error {
	sbomID, err := uuid.Parse(ctx.Param("sbomID"))
	if err != nil {
		return echo.NewHTTPError(400, "invalid sbom id").WithInternal(err)
	}

	graph, err := c.graphService.BuildGraph(sbomID)
	if err != nil {
		return echo.NewHTTPError(500, "could not build dependency graph").WithInternal(err)
	}
	return ctx.JSON(http.StatusOK, graph)
}
