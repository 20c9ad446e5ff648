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

package daemons

import (
	"log/slog"
	"time"

	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const batchEnrichmentInterval = 6 * time.Hour

type DaemonRunner struct {
	configService     shared.ConfigService
	sbomRepository    shared.SBOMRepository
	enrichmentService shared.EnrichmentService
}

func NewDaemonRunner(configService shared.ConfigService, sbomRepository shared.SBOMRepository, enrichmentService shared.EnrichmentService) DaemonRunner {
	return DaemonRunner{
		configService:     configService,
		sbomRepository:    sbomRepository,
		enrichmentService: enrichmentService,
	}
}

func getLastRunTime(configService shared.ConfigService, key string) (time.Time, error) {
	var lastRun struct {
		Time time.Time `json:"time"`
	}

	err := configService.GetJSONConfig(key, &lastRun)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("could not get last run time", "err", err, "key", key)
		return time.Time{}, err
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("no last run time found. Setting to 0", "key", key)
		return time.Time{}, nil
	}

	return lastRun.Time, nil
}

func shouldRun(configService shared.ConfigService, key string, interval time.Duration) bool {
	lastTime, err := getLastRunTime(configService, key)
	if err != nil {
		return false
	}

	return time.Since(lastTime) > interval
}

func markRan(configService shared.ConfigService, key string) error {
	return configService.SetJSONConfig(key, struct {
		Time time.Time `json:"time"`
	}{
		Time: time.Now(),
	})
}

func (runner DaemonRunner) Start() {
	go func() {
		for {
			if err := runner.runDaemons(); err != nil {
				monitoring.Alert("could not run background jobs", err)
			}
		}
	}()
}

func (runner DaemonRunner) runDaemons() error {
	daemonStart := time.Now()
	defer time.Sleep(5 * time.Minute) // wait for 5 minutes before checking again - always - even in case of error
	slog.Info("starting background jobs", "time", time.Now())

	if shouldRun(runner.configService, "enrichment.batch", batchEnrichmentInterval) {
		start := time.Now()
		if err := runner.scheduleBatchEnrichment(); err != nil {
			slog.Error("could not schedule batch enrichment", "err", err)
			return nil
		}
		if err := markRan(runner.configService, "enrichment.batch"); err != nil {
			slog.Error("could not mark enrichment.batch as ran", "err", err)
		}
		slog.Info("batch enrichment scheduled", "duration", time.Since(start))
	}

	slog.Info("background jobs finished", "duration", time.Since(daemonStart))
	return nil
}

// scheduleBatchEnrichment enqueues one enrichment job per known ingestion
// unit. The jobs themselves run on the enrichment worker pool.
func (runner DaemonRunner) scheduleBatchEnrichment() error {
	sboms, err := runner.sbomRepository.All()
	if err != nil {
		return err
	}

	for _, sbom := range sboms {
		jobID := runner.enrichmentService.ScheduleSBOMEnrichment(sbom.ID)
		slog.Info("scheduled enrichment job", "sbomID", sbom.ID, "jobID", jobID)
	}
	return nil
}
