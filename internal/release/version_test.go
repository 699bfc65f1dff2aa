package release

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/godotfetch/internal/utils"
)

func intPtr(n int) *int { return &n }

func TestParsePackageVersion(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantCore     string
		wantPre      string
		wantSubpatch *int
	}{
		{name: "plain", raw: "4.1.2", wantCore: "4.1.2"},
		{name: "subpatch", raw: "4.1.2.3", wantCore: "4.1.2", wantSubpatch: intPtr(3)},
		{name: "subpatch with prerelease", raw: "4.1.2.3-beta.1", wantCore: "4.1.2", wantPre: "beta.1", wantSubpatch: intPtr(3)},
		{name: "prerelease", raw: "4.2.0-rc.1", wantCore: "4.2.0", wantPre: "rc.1"},
		{name: "zero subpatch", raw: "3.2.3.0", wantCore: "3.2.3", wantSubpatch: intPtr(0)},
		{name: "leading v", raw: "v3.5.0", wantCore: "3.5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, subpatch, err := ParsePackageVersion(tt.raw)
			require.NoError(t, err)

			segments := v.Segments()
			core := version.Must(version.NewSemver(tt.wantCore)).Segments()
			assert.Equal(t, core, segments[:3])
			assert.Equal(t, tt.wantPre, v.Prerelease())
			assert.Equal(t, tt.wantSubpatch, subpatch)
		})
	}
}

func TestParsePackageVersionErrors(t *testing.T) {
	for _, raw := range []string{"not-a-version", "", "4.1", "4.1.2.3.4", "4.1.2.x", "4.1.2 beta", "04.1.2", "4.01.2", "4.1.2.01", "4.1.2-rc.01"} {
		t.Run(raw, func(t *testing.T) {
			_, _, err := ParsePackageVersion(raw)
			require.Error(t, err)

			var parseErr *utils.VersionParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, raw, parseErr.Raw)
		})
	}
}

func TestParsePackageVersionAllowsZeroFields(t *testing.T) {
	v, subpatch, err := ParsePackageVersion("4.0.0.0-rc.10")
	require.NoError(t, err)
	require.NotNil(t, subpatch)
	assert.Equal(t, 0, *subpatch)
	assert.Equal(t, "rc.10", v.Prerelease())
}

func TestToAssetVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		subpatch *int
		want     string
	}{
		{name: "trailing zero patch dropped", version: "4.1.0", want: "4.1"},
		{name: "subpatch keeps zero patch", version: "4.0.0", subpatch: intPtr(2), want: "4.0.0.2"},
		{name: "zero subpatch dropped", version: "3.2.3", subpatch: intPtr(0), want: "3.2.3"},
		{name: "only last element dropped", version: "4.0.0", want: "4.0"},
		{name: "full version", version: "4.1.2", want: "4.1.2"},
		{name: "prerelease", version: "4.1.2-rc.1", want: "4.1.2/rc.1"},
		{name: "prerelease with zero patch", version: "4.2.0-beta.3", want: "4.2/beta.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := version.Must(version.NewSemver(tt.version))
			assert.Equal(t, tt.want, ToAssetVersion(v, tt.subpatch))
		})
	}
}

func TestResolve(t *testing.T) {
	v, subpatch, asset, err := Resolve("3.5.0")
	require.NoError(t, err)
	assert.Nil(t, subpatch)
	assert.Equal(t, "3.5", asset)
	assert.Equal(t, "3.5.0", FormatPackageVersion(v, subpatch))

	v, subpatch, asset, err = Resolve("3.2.3.1-rc.2")
	require.NoError(t, err)
	assert.Equal(t, "3.2.3.1/rc.2", asset)
	assert.Equal(t, "3.2.3.1-rc.2", FormatPackageVersion(v, subpatch))

	_, _, _, err = Resolve("garbage")
	assert.Error(t, err)
}
