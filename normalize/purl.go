package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/package-url/packageurl-go"
)

// VersionLatest keeps identity keys total: a descriptor without a version
// is treated as "latest" instead of null.
const VersionLatest = "latest"

func OrLatest(version string) string {
	if version == "" {
		return VersionLatest
	}
	return version
}

// NormalizeName strips a canonical-locator prefix (e.g. "pkg:npm/") and any
// trailing version down to the bare package name. Scanner output reports
// bare names while the stored record may hold the purl form - this bridges
// the two representations.
func NormalizeName(name string) string {
	if !strings.HasPrefix(name, "pkg:") {
		return stripVersionSuffix(name)
	}

	parsed, err := packageurl.FromString(name)
	if err != nil {
		// not a parseable purl - fall back to cutting the prefix by hand
		trimmed := strings.TrimPrefix(name, "pkg:")
		if idx := strings.Index(trimmed, "/"); idx != -1 {
			trimmed = trimmed[idx+1:]
		}
		unescaped, unescapeErr := url.PathUnescape(trimmed)
		if unescapeErr == nil {
			trimmed = unescaped
		}
		return stripVersionSuffix(trimmed)
	}

	if parsed.Namespace != "" {
		return parsed.Namespace + "/" + parsed.Name
	}
	return parsed.Name
}

func stripVersionSuffix(name string) string {
	// a scoped npm name starts with "@" - only cut version markers after
	// the first character
	if at := strings.LastIndex(name, "@"); at > 0 {
		return name[:at]
	}
	return name
}

// CanonicalPurl builds the "pkg:{manager}/{name}@{version}" locator form
// used as the fallback identity-matching key.
func CanonicalPurl(manager, name, version string) string {
	if manager == "" {
		manager = "generic"
	}
	return fmt.Sprintf("pkg:%s/%s@%s", manager, name, OrLatest(version))
}

// ParsePurl is a thin wrapper which also unescapes path segments.
func ParsePurl(purl string) (packageurl.PackageURL, error) {
	return packageurl.FromString(purl)
}
