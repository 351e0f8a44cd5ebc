// Package xcm implements the version-aware JSON wire codec for XCM
// locations, assets, weights and instructions.
//
// Every value is encoded against an explicit Version. There is no ambient
// version state: composite values pass the active version down to each leaf.
package xcm

import "fmt"

// Version is an XCM protocol version.
type Version uint8

// Supported XCM versions.
const (
	V0 Version = iota
	V1
	V2
	V3
	V4
	V5
)

// LatestVersion is the newest version the codec understands.
const LatestVersion = V5

var versionNames = [...]string{"V0", "V1", "V2", "V3", "V4", "V5"}

// String returns the wire tag of the version ("V0".."V5").
func (v Version) String() string {
	if int(v) < len(versionNames) {
		return versionNames[v]
	}
	return fmt.Sprintf("V%d", uint8(v))
}

// Valid reports whether v is a version known to the codec.
func (v Version) Valid() bool {
	return v <= LatestVersion
}

// ParseVersion parses a wire tag such as "V3".
func ParseVersion(s string) (Version, error) {
	for i, name := range versionNames {
		if name == s {
			return Version(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}

// legacyJunctions is true for versions that encode multi-junction interiors
// as index-keyed objects.
func (v Version) legacyJunctions() bool { return v < V4 }

// optionalNetwork is true for versions where junction networks are
// Option<NetworkId> (Any encodes as null).
func (v Version) optionalNetwork() bool { return v >= V3 }

// weightV2 is true for versions using two-dimensional weights.
func (v Version) weightV2() bool { return v >= V3 }

// hasMaxAssets is true for versions where deposits carry max_assets.
func (v Version) hasMaxAssets() bool { return v < V3 }

// concreteAssetID is true for versions wrapping asset ids in Concrete.
func (v Version) concreteAssetID() bool { return v < V4 }

// sizedGeneralKey is true for versions encoding GeneralKey as {length, data}.
func (v Version) sizedGeneralKey() bool { return v >= V3 }
