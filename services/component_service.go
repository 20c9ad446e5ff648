package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/database/models"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/shared"
	"gorm.io/gorm"
)

// componentService resolves component identity across ingestion sources
// which key components differently: a structured bill-of-materials reports
// (name, group, version), scanner output reports bare names, and either
// side may carry the purl form.
type componentService struct {
	componentRepository shared.ComponentRepository
}

func NewComponentService(componentRepository shared.ComponentRepository) *componentService {
	return &componentService{
		componentRepository: componentRepository,
	}
}

var _ shared.IdentityResolver = &componentService{}

// resolve applies the ordered matching policy. First match wins.
func (s *componentService) resolve(tx shared.DB, sbomID uuid.UUID, name string, group *string, packageManager, version string) (models.Component, bool, error) {
	version = normalize.OrLatest(version)

	// 1. exact match on (name, group, version) within the scope
	component, err := s.componentRepository.FindByNameGroupVersion(tx, sbomID, name, group, version)
	if err == nil {
		return component, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Component{}, false, err
	}

	// 2. match on (normalizedName, version, scope). The scanner reports
	// bare names while the stored record may hold the locator form - and
	// vice versa.
	normalizedName := normalize.NormalizeName(name)
	component, err = s.componentRepository.FindByNameVersion(tx, sbomID, normalizedName, version)
	if err == nil {
		return component, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Component{}, false, err
	}

	// 3. fallback: canonical locator form against the stored name field
	canonical := normalize.CanonicalPurl(packageManager, normalizedName, version)
	component, err = s.componentRepository.FindByName(tx, sbomID, canonical)
	if err == nil {
		return component, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Component{}, false, err
	}

	return models.Component{}, false, nil
}

func (s *componentService) ResolveOrCreate(tx shared.DB, sbomID uuid.UUID, descriptor dtos.ComponentDescriptor) (models.Component, error) {
	packageManager := ""
	if descriptor.PackageURL != nil {
		if parsed, err := normalize.ParsePurl(*descriptor.PackageURL); err == nil {
			packageManager = parsed.Type
		}
	}

	component, found, err := s.resolve(tx, sbomID, descriptor.Name, descriptor.Group, packageManager, descriptor.Version)
	if err != nil {
		return models.Component{}, err
	}
	if found {
		return component, nil
	}

	component = models.Component{
		Name:       descriptor.Name,
		Group:      descriptor.Group,
		Version:    normalize.OrLatest(descriptor.Version),
		Type:       descriptor.Type,
		PackageURL: descriptor.PackageURL,
		License:    descriptor.License,
		Hash:       descriptor.Hash,
		Evidence:   descriptor.Evidence,
		RiskLevel:  risk.LevelNone,
		SBOMID:     sbomID,
	}
	if err := s.componentRepository.Create(tx, &component); err != nil {
		return models.Component{}, err
	}
	return component, nil
}

func (s *componentService) ResolveScannerPackage(tx shared.DB, sbomID uuid.UUID, packageName, packageManager, version string) (models.Component, bool, error) {
	return s.resolve(tx, sbomID, packageName, nil, packageManager, version)
}
