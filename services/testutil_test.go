package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/shared"
	"gorm.io/gorm"
)

// in-memory repository fakes. They ignore the tx parameter - the service
// logic under test never depends on actual transaction semantics.

type fakeSBOMRepository struct {
	mut   sync.Mutex
	sboms map[uuid.UUID]models.SBOM
}

func newFakeSBOMRepository() *fakeSBOMRepository {
	return &fakeSBOMRepository{sboms: map[uuid.UUID]models.SBOM{}}
}

func (f *fakeSBOMRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (f *fakeSBOMRepository) Transaction(fn func(tx shared.DB) error) error { return fn(nil) }

func (f *fakeSBOMRepository) Read(id uuid.UUID) (models.SBOM, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	sbom, ok := f.sboms[id]
	if !ok {
		return models.SBOM{}, gorm.ErrRecordNotFound
	}
	return sbom, nil
}

func (f *fakeSBOMRepository) All() ([]models.SBOM, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	sboms := make([]models.SBOM, 0, len(f.sboms))
	for _, sbom := range f.sboms {
		sboms = append(sboms, sbom)
	}
	return sboms, nil
}

func (f *fakeSBOMRepository) FindOrCreate(tx shared.DB, projectID uuid.UUID, name string) (models.SBOM, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, sbom := range f.sboms {
		if sbom.ProjectID == projectID && sbom.Name == name {
			return sbom, nil
		}
	}
	sbom := models.SBOM{ID: uuid.New(), ProjectID: projectID, Name: name}
	f.sboms[sbom.ID] = sbom
	return sbom, nil
}

type fakeComponentRepository struct {
	mut        sync.Mutex
	components map[uuid.UUID]models.Component
}

func newFakeComponentRepository() *fakeComponentRepository {
	return &fakeComponentRepository{components: map[uuid.UUID]models.Component{}}
}

func (f *fakeComponentRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (f *fakeComponentRepository) Transaction(fn func(tx shared.DB) error) error { return fn(nil) }

func (f *fakeComponentRepository) Create(tx shared.DB, component *models.Component) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	if component.ID == uuid.Nil {
		component.ID = uuid.New()
	}
	f.components[component.ID] = *component
	return nil
}

func (f *fakeComponentRepository) Save(tx shared.DB, component *models.Component) error {
	return f.Create(tx, component)
}

func groupEquals(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeComponentRepository) FindByNameGroupVersion(tx shared.DB, sbomID uuid.UUID, name string, group *string, version string) (models.Component, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, component := range f.components {
		if component.SBOMID == sbomID && component.Name == name && component.Version == version && groupEquals(component.Group, group) {
			return component, nil
		}
	}
	return models.Component{}, gorm.ErrRecordNotFound
}

func (f *fakeComponentRepository) FindByNameVersion(tx shared.DB, sbomID uuid.UUID, name, version string) (models.Component, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, component := range f.components {
		if component.SBOMID == sbomID && component.Name == name && component.Version == version {
			return component, nil
		}
	}
	return models.Component{}, gorm.ErrRecordNotFound
}

func (f *fakeComponentRepository) FindByName(tx shared.DB, sbomID uuid.UUID, name string) (models.Component, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, component := range f.components {
		if component.SBOMID == sbomID && component.Name == name {
			return component, nil
		}
	}
	return models.Component{}, gorm.ErrRecordNotFound
}

func (f *fakeComponentRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.Component, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	var components []models.Component
	for _, component := range f.components {
		if component.SBOMID == sbomID {
			components = append(components, component)
		}
	}
	return components, nil
}

func (f *fakeComponentRepository) DeleteBySBOMID(tx shared.DB, sbomID uuid.UUID) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	for id, component := range f.components {
		if component.SBOMID == sbomID {
			delete(f.components, id)
		}
	}
	return nil
}

func (f *fakeComponentRepository) RaiseRiskLevel(tx shared.DB, componentID uuid.UUID, level risk.Level) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	component, ok := f.components[componentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if risk.Rank(level) > risk.Rank(component.RiskLevel) {
		component.RiskLevel = level
		f.components[componentID] = component
	}
	return nil
}

func (f *fakeComponentRepository) ResetRiskLevels(tx shared.DB, sbomID uuid.UUID) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	for id, component := range f.components {
		if component.SBOMID == sbomID {
			component.RiskLevel = risk.LevelNone
			f.components[id] = component
		}
	}
	return nil
}

func (f *fakeComponentRepository) get(componentID uuid.UUID) models.Component {
	f.mut.Lock()
	defer f.mut.Unlock()
	return f.components[componentID]
}

type fakeVulnerabilityRepository struct {
	mut             sync.Mutex
	vulnerabilities map[string]models.Vulnerability
	// runs once before the next Save, used to interleave a competing writer
	beforeSave func(*fakeVulnerabilityRepository) error
}

func newFakeVulnerabilityRepository() *fakeVulnerabilityRepository {
	return &fakeVulnerabilityRepository{vulnerabilities: map[string]models.Vulnerability{}}
}

func (f *fakeVulnerabilityRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (f *fakeVulnerabilityRepository) Transaction(fn func(tx shared.DB) error) error {
	return fn(nil)
}

func (f *fakeVulnerabilityRepository) FindByCVEID(tx shared.DB, cveID string) (models.Vulnerability, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	vulnerability, ok := f.vulnerabilities[cveID]
	if !ok {
		return models.Vulnerability{}, gorm.ErrRecordNotFound
	}
	return vulnerability, nil
}

func (f *fakeVulnerabilityRepository) Save(tx shared.DB, vulnerability *models.Vulnerability) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	if f.beforeSave != nil {
		hook := f.beforeSave
		f.beforeSave = nil
		if err := hook(f); err != nil {
			return err
		}
	}
	f.vulnerabilities[vulnerability.CVEID] = *vulnerability
	return nil
}

type fakeComponentVulnerabilityRepository struct {
	mut   sync.Mutex
	links map[uuid.UUID]models.ComponentVulnerability
}

func newFakeComponentVulnerabilityRepository() *fakeComponentVulnerabilityRepository {
	return &fakeComponentVulnerabilityRepository{links: map[uuid.UUID]models.ComponentVulnerability{}}
}

func (f *fakeComponentVulnerabilityRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (f *fakeComponentVulnerabilityRepository) Save(tx shared.DB, link *models.ComponentVulnerability) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	f.links[link.ID] = *link
	return nil
}

func (f *fakeComponentVulnerabilityRepository) FindByComponentAndCVE(tx shared.DB, componentID uuid.UUID, cveID string) (models.ComponentVulnerability, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, link := range f.links {
		if link.ComponentID == componentID && link.CVEID == cveID {
			return link, nil
		}
	}
	return models.ComponentVulnerability{}, gorm.ErrRecordNotFound
}

func (f *fakeComponentVulnerabilityRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentVulnerability, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	var links []models.ComponentVulnerability
	for _, link := range f.links {
		if link.SBOMID == sbomID {
			links = append(links, link)
		}
	}
	return links, nil
}

func (f *fakeComponentVulnerabilityRepository) DeleteBySBOMID(tx shared.DB, sbomID uuid.UUID) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	for id, link := range f.links {
		if link.SBOMID == sbomID {
			delete(f.links, id)
		}
	}
	return nil
}

type fakeComponentDependencyRepository struct {
	mut   sync.Mutex
	edges []models.ComponentDependency
}

func newFakeComponentDependencyRepository() *fakeComponentDependencyRepository {
	return &fakeComponentDependencyRepository{}
}

func (f *fakeComponentDependencyRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (f *fakeComponentDependencyRepository) CreateBatch(tx shared.DB, edges []models.ComponentDependency) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.edges = append(f.edges, edges...)
	return nil
}

func (f *fakeComponentDependencyRepository) ListBySBOMID(sbomID uuid.UUID) ([]models.ComponentDependency, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	var edges []models.ComponentDependency
	for _, edge := range f.edges {
		if edge.SBOMID == sbomID {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

func (f *fakeComponentDependencyRepository) DeleteBySBOMID(tx shared.DB, sbomID uuid.UUID) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	var kept []models.ComponentDependency
	for _, edge := range f.edges {
		if edge.SBOMID != sbomID {
			kept = append(kept, edge)
		}
	}
	f.edges = kept
	return nil
}
