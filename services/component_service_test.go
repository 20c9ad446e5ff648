package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/stretchr/testify/assert"
)

func TestResolveOrCreate(t *testing.T) {
	t.Run("should create a new component when nothing matches", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		component, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "lodash",
			Version: "4.17.21",
			Type:    dtos.ComponentTypeLibrary,
		})

		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, component.ID)
		assert.Equal(t, "lodash", component.Name)
		assert.Equal(t, risk.LevelNone, component.RiskLevel)
	})

	t.Run("should reuse the component on exact identity match", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		first, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "lodash",
			Version: "4.17.21",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		second, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "lodash",
			Version: "4.17.21",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("should treat a missing version as latest", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		component, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name: "lodash",
			Type: dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)
		assert.Equal(t, "latest", component.Version)

		again, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name: "lodash",
			Type: dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)
		assert.Equal(t, component.ID, again.ID)
	})

	t.Run("should distinguish groups", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		withGroup, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "guava",
			Group:   utils.Ptr("com.google.guava"),
			Version: "32.1.0",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		withoutGroup, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "guava",
			Version: "32.1.0",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)
		assert.NotEqual(t, withGroup.ID, withoutGroup.ID)
	})
}

func TestResolveScannerPackage(t *testing.T) {
	t.Run("should match a purl-form scanner name against the bare stored name", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		stored, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "lodash",
			Version: "4.17.21",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		component, found, err := service.ResolveScannerPackage(nil, sbomID, "pkg:npm/lodash@4.17.21", "npm", "4.17.21")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, stored.ID, component.ID)
	})

	t.Run("should match when the stored name carries the purl form", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		stored, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "pkg:npm/lodash@4.17.21",
			Version: "4.17.21",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		component, found, err := service.ResolveScannerPackage(nil, sbomID, "lodash", "npm", "4.17.21")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, stored.ID, component.ID)
	})

	t.Run("should match a bare scanner name against a grouped component", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		stored, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "commons-lang3",
			Group:   utils.Ptr("org.apache.commons"),
			Version: "3.12.0",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		// scanners report maven packages without the group, so neither the
		// exact tuple nor the locator form can match here
		component, found, err := service.ResolveScannerPackage(nil, sbomID, "commons-lang3", "maven", "3.12.0")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, stored.ID, component.ID)
	})

	t.Run("should never create a component", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)

		_, found, err := service.ResolveScannerPackage(nil, uuid.New(), "unknown-package", "npm", "1.0.0")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, componentRepository.components)
	})

	t.Run("should resolve deterministically to the same component", func(t *testing.T) {
		componentRepository := newFakeComponentRepository()
		service := NewComponentService(componentRepository)
		sbomID := uuid.New()

		stored, err := service.ResolveOrCreate(nil, sbomID, dtos.ComponentDescriptor{
			Name:    "@angular/core",
			Version: "17.0.0",
			Type:    dtos.ComponentTypeLibrary,
		})
		assert.NoError(t, err)

		for range 5 {
			component, found, err := service.ResolveScannerPackage(nil, sbomID, "pkg:npm/%40angular/core@17.0.0", "npm", "17.0.0")
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, stored.ID, component.ID)
		}
	})
}
