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

package normalize

import (
	"fmt"
	"io"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/utils"
	"github.com/pkg/errors"
)

// EmbeddedVulnerability carries a vulnerability entry from the SBOM itself
// together with the bom-refs of the components it affects.
type EmbeddedVulnerability struct {
	Raw     dtos.VulnerabilityRaw
	Affects []string
}

// NormalizedBOM is the typed result of decoding one CycloneDX document. It
// is the only shape an SBOM ingestion unit can take inside the engine.
type NormalizedBOM struct {
	Components      []dtos.ComponentDescriptor
	Dependencies    []dtos.DependencyDescriptor
	Vulnerabilities []EmbeddedVulnerability
}

// DecodeBOM decodes and validates a CycloneDX JSON document. A malformed
// payload fails the whole ingestion unit with a descriptive error - no
// partial result is returned.
func DecodeBOM(r io.Reader) (*NormalizedBOM, error) {
	var bom cdx.BOM
	if err := cdx.NewBOMDecoder(r, cdx.BOMFileFormatJSON).Decode(&bom); err != nil {
		return nil, errors.Wrap(err, "could not decode cyclonedx document")
	}
	return FromCdxBOM(&bom)
}

func FromCdxBOM(bom *cdx.BOM) (*NormalizedBOM, error) {
	normalized := &NormalizedBOM{}

	var validationErrors []string
	if bom.Components != nil {
		for i, component := range *bom.Components {
			descriptor, err := fromCdxComponent(component)
			if err != nil {
				validationErrors = append(validationErrors, fmt.Sprintf("components[%d]: %s", i, err))
				continue
			}
			normalized.Components = append(normalized.Components, descriptor)
		}
	}

	if bom.Dependencies != nil {
		for _, dependency := range *bom.Dependencies {
			if dependency.Ref == "" {
				validationErrors = append(validationErrors, "dependency entry without ref")
				continue
			}
			descriptor := dtos.DependencyDescriptor{Ref: dependency.Ref}
			if dependency.Dependencies != nil {
				descriptor.DependsOn = append(descriptor.DependsOn, *dependency.Dependencies...)
			}
			normalized.Dependencies = append(normalized.Dependencies, descriptor)
		}
	}

	if bom.Vulnerabilities != nil {
		for _, vulnerability := range *bom.Vulnerabilities {
			normalized.Vulnerabilities = append(normalized.Vulnerabilities, fromCdxVulnerability(vulnerability))
		}
	}

	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("invalid sbom: %s", strings.Join(validationErrors, "; "))
	}

	return normalized, nil
}

func fromCdxComponent(component cdx.Component) (dtos.ComponentDescriptor, error) {
	componentType := dtos.ComponentType(component.Type)
	if componentType == "" {
		componentType = dtos.ComponentTypeLibrary
	}

	ref := component.BOMRef
	if ref == "" {
		ref = component.PackageURL
	}
	if ref == "" {
		ref = component.Name
	}

	hash := ""
	if component.Hashes != nil && len(*component.Hashes) > 0 {
		hash = (*component.Hashes)[0].Value
	}

	descriptor := dtos.ComponentDescriptor{
		BOMRef:     ref,
		Type:       componentType,
		Name:       component.Name,
		Group:      utils.EmptyThenNil(component.Group),
		Version:    component.Version,
		License:    licenseFromCdx(component.Licenses),
		PackageURL: utils.EmptyThenNil(component.PackageURL),
		Hash:       hash,
		Scope:      string(component.Scope),
	}
	if err := validate.Struct(descriptor); err != nil {
		return dtos.ComponentDescriptor{}, err
	}
	return descriptor, nil
}

func licenseFromCdx(licenses *cdx.Licenses) *string {
	if licenses == nil {
		return nil
	}
	for _, choice := range *licenses {
		if choice.Expression != "" {
			return utils.Ptr(choice.Expression)
		}
		if choice.License != nil {
			if choice.License.ID != "" {
				return utils.Ptr(choice.License.ID)
			}
			if choice.License.Name != "" {
				return utils.Ptr(choice.License.Name)
			}
		}
	}
	return nil
}

func fromCdxVulnerability(vulnerability cdx.Vulnerability) EmbeddedVulnerability {
	raw := dtos.VulnerabilityRaw{
		CVEID:          vulnerability.ID,
		Description:    vulnerability.Description,
		Recommendation: vulnerability.Recommendation,
		Source:         "sbom",
	}
	if vulnerability.Source != nil && vulnerability.Source.Name != "" {
		raw.Source = vulnerability.Source.Name
	}

	if vulnerability.Ratings != nil {
		for _, rating := range *vulnerability.Ratings {
			if rating.Score != nil && *rating.Score > raw.CVSSScore {
				raw.CVSSScore = *rating.Score
			}
			if raw.Severity == "" && rating.Severity != "" {
				raw.Severity = string(rating.Severity)
			}
			if raw.CVSSVector == "" && rating.Vector != "" {
				raw.CVSSVector = rating.Vector
			}
		}
	}

	if vulnerability.CWEs != nil && len(*vulnerability.CWEs) > 0 {
		raw.CWE = fmt.Sprintf("CWE-%d", (*vulnerability.CWEs)[0])
	}

	if published, err := time.Parse(time.RFC3339, vulnerability.Published); err == nil {
		raw.PublishedDate = &published
	}
	if updated, err := time.Parse(time.RFC3339, vulnerability.Updated); err == nil {
		raw.LastModifiedDate = &updated
	}

	embedded := EmbeddedVulnerability{Raw: raw}
	if vulnerability.Affects != nil {
		for _, affects := range *vulnerability.Affects {
			embedded.Affects = append(embedded.Affects, affects.Ref)
		}
	}
	return embedded
}
