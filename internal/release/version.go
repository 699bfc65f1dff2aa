// Package release turns the packaging version of this tool into the version
// string Godot publishes its release archives under.
//
// Godot used a fourth "subpatch" component for some releases (3.2.3.1 and
// friends), which semantic versioning cannot express. The package therefore
// reads the numeric fields itself and only hands the three-component core plus
// suffix to the semver parser.
package release

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/tanq16/godotfetch/internal/utils"
)

const (
	coreFields = 3
	maxFields  = 4
)

// ParsePackageVersion parses raw into a semantic version and an optional
// subpatch. The returned subpatch is nil when raw has only three numeric fields.
func ParsePackageVersion(raw string) (*version.Version, *int, error) {
	fields, suffix := splitNumericFields(strings.TrimPrefix(strings.TrimSpace(raw), "v"), maxFields)
	if len(fields) < coreFields {
		return nil, nil, &utils.VersionParseError{Raw: raw, Err: errors.New("expected major.minor.patch")}
	}
	for _, f := range fields {
		if hasLeadingZero(f) {
			return nil, nil, &utils.VersionParseError{Raw: raw, Err: fmt.Errorf("numeric field %q has a leading zero", f)}
		}
	}

	var subpatch *int
	if len(fields) == maxFields {
		n, err := strconv.Atoi(fields[coreFields])
		if err != nil {
			return nil, nil, &utils.VersionParseError{Raw: raw, Err: err}
		}
		subpatch = &n
	}

	v, err := version.NewSemver(strings.Join(fields[:coreFields], ".") + suffix)
	if err != nil {
		return nil, nil, &utils.VersionParseError{Raw: raw, Err: err}
	}
	// go-version tolerates what strict semver forbids here
	for _, id := range strings.Split(v.Prerelease(), ".") {
		if isNumeric(id) && hasLeadingZero(id) {
			return nil, nil, &utils.VersionParseError{Raw: raw, Err: fmt.Errorf("prerelease identifier %q has a leading zero", id)}
		}
	}
	return v, subpatch, nil
}

// ToAssetVersion renders the release directory name used on the download
// server: 4.1.0 -> "4.1", 4.0.0.2 -> "4.0.0.2", 4.1.2-rc.1 -> "4.1.2/rc.1".
func ToAssetVersion(v *version.Version, subpatch *int) string {
	segments := v.Segments()
	numbers := []int{segments[0], segments[1], segments[2]}
	if subpatch != nil {
		numbers = append(numbers, *subpatch)
	}
	// only the very last element is ever dropped
	if numbers[len(numbers)-1] == 0 {
		numbers = numbers[:len(numbers)-1]
	}

	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	out := strings.Join(parts, ".")
	if pre := v.Prerelease(); pre != "" {
		out += "/" + pre
	}
	return out
}

// Resolve is ParsePackageVersion followed by ToAssetVersion.
func Resolve(raw string) (*version.Version, *int, string, error) {
	v, subpatch, err := ParsePackageVersion(raw)
	if err != nil {
		return nil, nil, "", err
	}
	return v, subpatch, ToAssetVersion(v, subpatch), nil
}

// FormatPackageVersion is the inverse of ParsePackageVersion, used for display.
func FormatPackageVersion(v *version.Version, subpatch *int) string {
	segments := v.Segments()
	out := fmt.Sprintf("%d.%d.%d", segments[0], segments[1], segments[2])
	if subpatch != nil {
		out += fmt.Sprintf(".%d", *subpatch)
	}
	if pre := v.Prerelease(); pre != "" {
		out += "-" + pre
	}
	return out
}

// splitNumericFields reads up to limit leading dot-separated digit runs and
// returns them together with the untouched remainder of s.
func splitNumericFields(s string, limit int) ([]string, string) {
	var fields []string
	pos := 0
	for len(fields) < limit {
		start := pos
		if len(fields) > 0 {
			if start >= len(s) || s[start] != '.' {
				break
			}
			start++
		}
		end := start
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == start {
			break
		}
		fields = append(fields, s[start:end])
		pos = end
	}
	return fields, s[pos:]
}

func hasLeadingZero(s string) bool {
	return len(s) > 1 && s[0] == '0'
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
