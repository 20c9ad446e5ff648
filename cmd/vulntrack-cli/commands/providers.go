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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package commands

import (
	"time"

	"github.com/l3montree-dev/vulntrack/database/repositories"
	"github.com/l3montree-dev/vulntrack/services"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/statusstore"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/l3montree-dev/vulntrack/vulndb"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

// app bundles the service wiring the cli commands share. Every command
// talks straight to the database, there is no running server involved.
type app struct {
	db                  shared.DB
	sbomRepository      shared.SBOMRepository
	sbomService         shared.SBOMService
	vulnerabilityMerger shared.VulnerabilityMerger
	enrichmentService   shared.EnrichmentService
}

func newApp() (app, error) {
	db, err := shared.DatabaseFactory()
	if err != nil {
		return app{}, errors.Wrap(err, "could not connect to database")
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return app{}, errors.Wrap(err, "could not run database migrations")
	}

	sbomRepository := repositories.NewSBOMRepository(db)
	componentRepository := repositories.NewComponentRepository(db)
	vulnerabilityRepository := repositories.NewVulnerabilityRepository(db)
	componentVulnerabilityRepository := repositories.NewComponentVulnerabilityRepository(db)
	componentDependencyRepository := repositories.NewComponentDependencyRepository(db)

	identityResolver := services.NewComponentService(componentRepository)
	vulnerabilityMerger := services.NewVulnService(vulnerabilityRepository, componentVulnerabilityRepository, componentRepository, identityResolver)
	sbomService := services.NewSBOMService(sbomRepository, componentRepository, componentDependencyRepository, componentVulnerabilityRepository, identityResolver, vulnerabilityMerger)

	osvService := vulndb.NewOSVService()
	nvdService := vulndb.NewNVDService()
	enrichmentService := services.NewEnrichmentService(
		componentRepository,
		vulnerabilityMerger,
		[]shared.VulnDatabaseClient{&osvService, &nvdService},
		statusstore.NewInMemoryStore(1024, 24*time.Hour),
		// the cli waits for enrichment to finish instead of polling
		utils.NewInlineSynchronizer(),
	)

	return app{
		db:                  db,
		sbomRepository:      sbomRepository,
		sbomService:         sbomService,
		vulnerabilityMerger: vulnerabilityMerger,
		enrichmentService:   enrichmentService,
	}, nil
}
