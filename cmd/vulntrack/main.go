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

package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/l3montree-dev/vulntrack/controllers"
	"github.com/l3montree-dev/vulntrack/daemons"
	"github.com/l3montree-dev/vulntrack/database/repositories"
	"github.com/l3montree-dev/vulntrack/middlewares"
	"github.com/l3montree-dev/vulntrack/router"
	"github.com/l3montree-dev/vulntrack/services"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/statusstore"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/l3montree-dev/vulntrack/vulndb"

	_ "github.com/lib/pq"
)

var release string // Will be filled at build time

func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	if os.Getenv("ERROR_TRACKING_DSN") != "" {
		initSentry()

		// Catch panics
		defer func() {
			if err := recover(); err != nil {
				sentry.CurrentHub().Recover(err)
				// Wait for events to be send to server
				sentry.Flush(time.Second * 5)
			}
		}()
	}

	db, err := shared.DatabaseFactory()
	if err != nil {
		slog.Error(err.Error()) // print detailed error message to stdout
		panic(errors.New("failed to setup database connection"))
	}

	if os.Getenv("DISABLE_AUTOMIGRATE") != "true" {
		slog.Info("running database migrations...")
		if err := repositories.AutoMigrate(db); err != nil {
			slog.Error("failed to run database migrations", "error", err)
			panic(errors.New("failed to run database migrations"))
		}
	} else {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
	}

	sbomRepository := repositories.NewSBOMRepository(db)
	componentRepository := repositories.NewComponentRepository(db)
	vulnerabilityRepository := repositories.NewVulnerabilityRepository(db)
	componentVulnerabilityRepository := repositories.NewComponentVulnerabilityRepository(db)
	componentDependencyRepository := repositories.NewComponentDependencyRepository(db)
	configRepository := repositories.NewConfigRepository(db)

	identityResolver := services.NewComponentService(componentRepository)
	vulnerabilityMerger := services.NewVulnService(vulnerabilityRepository, componentVulnerabilityRepository, componentRepository, identityResolver)
	sbomService := services.NewSBOMService(sbomRepository, componentRepository, componentDependencyRepository, componentVulnerabilityRepository, identityResolver, vulnerabilityMerger)
	graphService := services.NewGraphService(sbomRepository, componentRepository, componentDependencyRepository, componentVulnerabilityRepository)

	osvService := vulndb.NewOSVService()
	nvdService := vulndb.NewNVDService()
	enrichmentService := services.NewEnrichmentService(
		componentRepository,
		vulnerabilityMerger,
		[]shared.VulnDatabaseClient{&osvService, &nvdService},
		statusstore.NewInMemoryStore(1024, 24*time.Hour),
		utils.NewFireAndForgetSynchronizer(),
	)

	daemons.NewDaemonRunner(configRepository, sbomRepository, enrichmentService).Start()

	e := middlewares.Server()
	router.NewAPIV1Router(
		e,
		controllers.NewSBOMController(sbomService, graphService),
		controllers.NewScanController(vulnerabilityMerger),
		controllers.NewEnrichmentController(enrichmentService),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Error("server stopped", "err", e.Start(":"+port))
}

func initSentry() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         os.Getenv("ERROR_TRACKING_DSN"),
		Environment: environment,
		Release:     release,

		// In debug mode, the debug information is printed to stdout to help you
		// understand what Sentry is doing.
		Debug: environment == "dev",

		// Configures whether SDK should generate and attach stack traces to pure
		// capture message calls.
		AttachStacktrace: true,
	})
	if err != nil {
		slog.Error("Failed to init error tracking", "err", err)
	}
}
