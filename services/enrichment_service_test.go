package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/l3montree-dev/vulntrack/statusstore"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeFeedClient struct {
	results map[string][]dtos.VulnerabilityRaw
	err     error
}

func (f *fakeFeedClient) Search(ctx context.Context, purl packageurl.PackageURL) ([]dtos.VulnerabilityRaw, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results[purl.ToString()], nil
}

func newEnrichmentServiceForTest(clients []shared.VulnDatabaseClient) (*enrichmentService, *fakeComponentRepository, *fakeComponentVulnerabilityRepository) {
	componentRepository := newFakeComponentRepository()
	vulnerabilityRepository := newFakeVulnerabilityRepository()
	linkRepository := newFakeComponentVulnerabilityRepository()
	identityResolver := NewComponentService(componentRepository)
	vulnerabilityMerger := NewVulnService(vulnerabilityRepository, linkRepository, componentRepository, identityResolver)

	service := NewEnrichmentService(
		componentRepository,
		vulnerabilityMerger,
		clients,
		statusstore.NewInMemoryStore(16, time.Minute),
		// run the job inline so the test does not have to poll
		utils.NewInlineSynchronizer(),
	)
	return service, componentRepository, linkRepository
}

func TestScheduleSBOMEnrichment(t *testing.T) {
	t.Run("merges feed results and completes the job", func(t *testing.T) {
		sbomID := uuid.New()
		purl := "pkg:npm/lodash@4.17.21"
		client := &fakeFeedClient{results: map[string][]dtos.VulnerabilityRaw{
			purl: {{CVEID: "CVE-2024-1234", CVSSScore: 9.8, Severity: "CRITICAL", Source: "osv"}},
		}}
		service, componentRepository, linkRepository := newEnrichmentServiceForTest([]shared.VulnDatabaseClient{client})

		component := models.Component{Name: "lodash", Version: "4.17.21", PackageURL: utils.Ptr(purl), SBOMID: sbomID}
		assert.NoError(t, componentRepository.Create(nil, &component))

		jobID := service.ScheduleSBOMEnrichment(sbomID)

		job, ok := service.JobStatus(jobID)
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateCompleted, job.State)
		assert.Equal(t, 1, job.TotalComponents)
		assert.Equal(t, 1, job.ProcessedComponents)

		links, err := linkRepository.ListBySBOMID(sbomID)
		assert.NoError(t, err)
		assert.Len(t, links, 1)
		assert.Equal(t, risk.LevelCritical, componentRepository.get(component.ID).RiskLevel)
	})

	t.Run("a total feed outage fails the job", func(t *testing.T) {
		sbomID := uuid.New()
		client := &fakeFeedClient{err: errors.New("connection refused")}
		service, componentRepository, _ := newEnrichmentServiceForTest([]shared.VulnDatabaseClient{client})

		component := models.Component{Name: "lodash", Version: "4.17.21", SBOMID: sbomID}
		assert.NoError(t, componentRepository.Create(nil, &component))

		jobID := service.ScheduleSBOMEnrichment(sbomID)

		job, ok := service.JobStatus(jobID)
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateFailed, job.State)
		assert.NotNil(t, job.ErrorMessage)
	})

	t.Run("an empty scope completes immediately", func(t *testing.T) {
		service, _, _ := newEnrichmentServiceForTest([]shared.VulnDatabaseClient{&fakeFeedClient{}})

		jobID := service.ScheduleSBOMEnrichment(uuid.New())

		job, ok := service.JobStatus(jobID)
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateCompleted, job.State)
		assert.Equal(t, 0, job.TotalComponents)
	})
}

func TestScheduleComponentEnrichment(t *testing.T) {
	t.Run("enriches a single component", func(t *testing.T) {
		sbomID := uuid.New()
		purl := "pkg:npm/minimist@1.2.5"
		client := &fakeFeedClient{results: map[string][]dtos.VulnerabilityRaw{
			purl: {{CVEID: "CVE-2021-44906", CVSSScore: 9.8, Severity: "CRITICAL", Source: "osv"}},
		}}
		service, componentRepository, linkRepository := newEnrichmentServiceForTest([]shared.VulnDatabaseClient{client})

		component := models.Component{Name: "minimist", Version: "1.2.5", PackageURL: utils.Ptr(purl), SBOMID: sbomID}
		assert.NoError(t, componentRepository.Create(nil, &component))

		jobID := service.ScheduleComponentEnrichment(component)

		job, ok := service.JobStatus(jobID)
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateCompleted, job.State)

		links, err := linkRepository.ListBySBOMID(sbomID)
		assert.NoError(t, err)
		assert.Len(t, links, 1)
	})
}
