package dtos

type ComponentType string

const (
	ComponentTypeApplication ComponentType = "application"
	ComponentTypeContainer   ComponentType = "container"
	ComponentTypeFile        ComponentType = "file"
	ComponentTypeFramework   ComponentType = "framework"
	ComponentTypeLibrary     ComponentType = "library"
	ComponentTypeOS          ComponentType = "operating-system"
)

// ComponentDescriptor is the typed, validated form of a component entry
// coming out of an ingestion source. Producing one of these at the boundary
// is the only way component data enters the engine.
type ComponentDescriptor struct {
	BOMRef     string        `json:"bomRef"`
	Type       ComponentType `json:"type" validate:"required"`
	Name       string        `json:"name" validate:"required"`
	Group      *string       `json:"group"`
	Version    string        `json:"version"`
	License    *string       `json:"license"`
	PackageURL *string       `json:"packageUrl"`
	Hash       string        `json:"hash"`
	Evidence   string        `json:"evidence"`
	// cyclonedx component scope: required, optional or excluded
	Scope string `json:"scope"`
}

// DependencyDescriptor is one entry of an SBOM dependency section: the
// referenced component depends on every entry of DependsOn.
type DependencyDescriptor struct {
	Ref       string   `json:"ref" validate:"required"`
	DependsOn []string `json:"dependsOn"`
}
