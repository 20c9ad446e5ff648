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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"
)

const defaultWorkerCount = 5
const defaultFeedTimeout = 60 * time.Second

// enrichmentService runs asynchronous enrichment jobs which look up every
// component of a scope against the configured external feeds and merge the
// results. Jobs run on a bounded worker pool, progress is tracked in the
// status store.
type enrichmentService struct {
	componentRepository shared.ComponentRepository
	vulnerabilityMerger shared.VulnerabilityMerger
	clients             []shared.VulnDatabaseClient
	statusStore         shared.EnrichmentStatusStore
	synchronizer        shared.FireAndForgetSynchronizer

	workerCount int
	feedTimeout time.Duration
}

func NewEnrichmentService(
	componentRepository shared.ComponentRepository,
	vulnerabilityMerger shared.VulnerabilityMerger,
	clients []shared.VulnDatabaseClient,
	statusStore shared.EnrichmentStatusStore,
	synchronizer shared.FireAndForgetSynchronizer,
) *enrichmentService {
	return &enrichmentService{
		componentRepository: componentRepository,
		vulnerabilityMerger: vulnerabilityMerger,
		clients:             clients,
		statusStore:         statusStore,
		synchronizer:        synchronizer,
		workerCount:         defaultWorkerCount,
		feedTimeout:         defaultFeedTimeout,
	}
}

var _ shared.EnrichmentService = &enrichmentService{}

func (s *enrichmentService) ScheduleComponentEnrichment(component models.Component) string {
	jobID := uuid.NewString()
	s.statusStore.Create(dtos.EnrichmentJob{
		ID:              jobID,
		State:           dtos.EnrichmentStateQueued,
		TotalComponents: 1,
	})
	s.synchronizer.FireAndForget(func() {
		s.runJob(jobID, []models.Component{component})
	})
	return jobID
}

func (s *enrichmentService) ScheduleSBOMEnrichment(sbomID uuid.UUID) string {
	jobID := uuid.NewString()
	s.statusStore.Create(dtos.EnrichmentJob{
		ID:    jobID,
		State: dtos.EnrichmentStateQueued,
	})
	s.synchronizer.FireAndForget(func() {
		components, err := s.componentRepository.ListBySBOMID(sbomID)
		if err != nil {
			s.finishJob(jobID, dtos.EnrichmentStateFailed, utils.Ptr(err.Error()))
			return
		}
		s.runJob(jobID, components)
	})
	return jobID
}

func (s *enrichmentService) JobStatus(jobID string) (dtos.EnrichmentJob, bool) {
	return s.statusStore.Get(jobID)
}

func (s *enrichmentService) runJob(jobID string, components []models.Component) {
	begin := time.Now()
	s.statusStore.Update(jobID, func(job *dtos.EnrichmentJob) {
		job.State = dtos.EnrichmentStateInProgress
		job.TotalComponents = len(components)
	})

	wg := utils.ErrGroup[bool](s.workerCount)
	for _, component := range components {
		wg.Go(func() (bool, error) {
			err := s.enrichComponent(component)
			if err != nil {
				slog.Warn("component enrichment failed", "component", component.Name, "err", err)
			}
			s.statusStore.Update(jobID, func(job *dtos.EnrichmentJob) {
				job.ProcessedComponents++
			})
			// a single failing component does not fail the job
			return err == nil, nil
		})
	}
	results, _ := wg.WaitAndCollect() // the workers never return an error

	failed := 0
	for _, succeeded := range results {
		if !succeeded {
			failed++
		}
	}

	monitoring.EnrichmentDuration.Observe(time.Since(begin).Minutes())
	if len(components) > 0 && failed == len(components) {
		monitoring.Alert("enrichment job failed", fmt.Errorf("all %d component lookups failed for job %s", len(components), jobID))
		s.finishJob(jobID, dtos.EnrichmentStateFailed, utils.Ptr("all component lookups failed"))
		return
	}
	s.finishJob(jobID, dtos.EnrichmentStateCompleted, nil)
}

func (s *enrichmentService) finishJob(jobID string, state dtos.EnrichmentState, errorMessage *string) {
	monitoring.EnrichmentJobsAmount.WithLabelValues(string(state)).Inc()
	s.statusStore.Update(jobID, func(job *dtos.EnrichmentJob) {
		job.State = state
		job.ErrorMessage = errorMessage
	})
}

// enrichComponent queries every configured feed for one component and
// merges the results. It only errors if no feed could be reached at all -
// that is the signal the caller uses to detect a total outage.
func (s *enrichmentService) enrichComponent(component models.Component) error {
	purl, err := component.Purl()
	if err != nil {
		// components without a purl get a canonical one built from the
		// identity triple
		purl, err = packageurl.FromString(normalize.CanonicalPurl("", component.Name, component.Version))
		if err != nil {
			return errors.Wrap(err, "could not build canonical purl")
		}
	}

	unreachable := 0
	for _, client := range s.clients {
		ctx, cancel := context.WithTimeout(context.Background(), s.feedTimeout)
		results, err := client.Search(ctx, purl)
		cancel()
		if err != nil {
			slog.Warn("feed lookup failed", "purl", purl.ToString(), "err", err)
			unreachable++
			continue
		}
		for _, raw := range results {
			vulnerability, err := s.vulnerabilityMerger.MergeVulnerability(nil, raw)
			if err != nil {
				return errors.Wrap(err, "could not merge feed vulnerability")
			}
			if _, err := s.vulnerabilityMerger.LinkToComponent(nil, component, vulnerability, raw, component.SBOMID); err != nil {
				return errors.Wrap(err, "could not link feed vulnerability")
			}
			monitoring.VulnerabilitiesMergedAmount.WithLabelValues(raw.Source).Inc()
		}
	}
	if len(s.clients) > 0 && unreachable == len(s.clients) {
		return fmt.Errorf("no vulnerability feed reachable for %s", purl.ToString())
	}
	return nil
}
