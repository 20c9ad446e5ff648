// Copyright 2025 l3montree UG (haftungsbeschraenkt).
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ComponentsIngestedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vulntrack_components_ingested_total",
	Help: "Total number of components resolved or created during sbom ingestion",
})

var VulnerabilitiesMergedAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vulntrack_vulnerabilities_merged_total",
	Help: "Total number of vulnerability records merged, by source",
}, []string{"source"})

var ScanFindingsSkippedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vulntrack_scan_findings_skipped_total",
	Help: "Total number of scanner findings which matched no stored component",
})

var SBOMIngestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "vulntrack_sbom_ingestion_duration_seconds",
	Help:    "Duration of sbom ingestion in seconds",
	Buckets: prometheus.DefBuckets,
})
