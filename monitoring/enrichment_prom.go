// Copyright 2025 l3montree UG (haftungsbeschraenkt).
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EnrichmentJobsAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vulntrack_enrichment_jobs_total",
	Help: "Total number of enrichment jobs, by final state",
}, []string{"state"})

var EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "vulntrack_enrichment_job_duration_minutes",
	Help:    "Duration of enrichment jobs in minutes",
	Buckets: prometheus.DefBuckets,
})

var FeedRequestsAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vulntrack_feed_requests_total",
	Help: "Total number of requests against external vulnerability feeds",
}, []string{"feed", "outcome"})
