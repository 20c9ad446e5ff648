// Copyright 2025 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/labstack/echo/v4"
)

type EnrichmentController struct {
	enrichmentService shared.EnrichmentService
}

func NewEnrichmentController(enrichmentService shared.EnrichmentService) *EnrichmentController {
	return &EnrichmentController{
		enrichmentService: enrichmentService,
	}
}

// Schedule enqueues an asynchronous enrichment job for one ingestion unit
// and returns the job id immediately.
func (c *EnrichmentController) Schedule(ctx shared.Context) error {
	sbomID, err := uuid.Parse(ctx.Param("sbomID"))
	if err != nil {
		return echo.NewHTTPError(400, "invalid sbom id").WithInternal(err)
	}

	jobID := c.enrichmentService.ScheduleSBOMEnrichment(sbomID)
	return ctx.JSON(http.StatusAccepted, map[string]string{
		"jobId": jobID,
	})
}

func (c *EnrichmentController) Status(ctx shared.Context) error {
	job, ok := c.enrichmentService.JobStatus(ctx.Param("jobID"))
	if !ok {
		return echo.NewHTTPError(404, "job not found")
	}
	return ctx.JSON(http.StatusOK, job)
}
