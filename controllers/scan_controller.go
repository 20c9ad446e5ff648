// Copyright 2025 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/labstack/echo/v4"
)

type ScanController struct {
	vulnerabilityMerger shared.VulnerabilityMerger
}

func NewScanController(vulnerabilityMerger shared.VulnerabilityMerger) *ScanController {
	return &ScanController{
		vulnerabilityMerger: vulnerabilityMerger,
	}
}

// Process merges a third party scanner result into an existing ingestion
// unit. The response reports partial success: how many findings were
// processed, skipped and failed.
func (c *ScanController) Process(ctx shared.Context) error {
	sbomID, err := uuid.Parse(ctx.Param("sbomID"))
	if err != nil {
		return echo.NewHTTPError(400, "invalid sbom id").WithInternal(err)
	}

	findings, err := normalize.DecodeScanResult(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(400, "Invalid scan result format").WithInternal(err)
	}

	report, err := c.vulnerabilityMerger.ProcessScanResult(sbomID, findings)
	if err != nil {
		return echo.NewHTTPError(500, "could not process scan result").WithInternal(err)
	}
	monitoring.ScanFindingsSkippedAmount.Add(float64(report.Skipped))
	slog.Info("scan result processed", "sbomID", sbomID, "processed", report.Processed, "skipped", report.Skipped, "failed", report.Failed)

	return ctx.JSON(http.StatusOK, report)
}
