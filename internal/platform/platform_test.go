package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/godotfetch/internal/utils"
)

func TestPlatformFromOS(t *testing.T) {
	tests := []struct {
		input string
		want  Platform
	}{
		{"linux", Linux},
		{"cygwin", Linux},
		{"darwin", OSX},
		{"windows", Windows},
		{"win32", Windows},
		{" Linux ", Linux},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := PlatformFromOS(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlatformFromOSUnsupported(t *testing.T) {
	_, err := PlatformFromOS("plan9")
	var platErr *utils.UnsupportedPlatformError
	require.True(t, errors.As(err, &platErr))
	assert.Equal(t, "plan9", platErr.Platform)
	assert.Contains(t, err.Error(), "plan9")
}

func TestArchitectureFromArch(t *testing.T) {
	tests := []struct {
		input string
		want  Architecture
	}{
		{"amd64", X64},
		{"x64", X64},
		{"x86_64", X64},
		{"386", X32},
		{"x32", X32},
		{"i686", X32},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ArchitectureFromArch(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ArchitectureFromArch("arm64")
	var archErr *utils.UnsupportedArchitectureError
	require.True(t, errors.As(err, &archErr))
	assert.Equal(t, "arm64", archErr.Architecture)
}

func TestEnumsCompareByValue(t *testing.T) {
	p, err := PlatformFromOS("linux")
	require.NoError(t, err)
	assert.True(t, p == Platform("linux"))
	assert.True(t, p.Valid())
	assert.False(t, Platform("beos").Valid())
	assert.True(t, Architecture("64").Valid())
	assert.False(t, Architecture("arm").Valid())
}

func TestDetect(t *testing.T) {
	info := Detect(context.Background())
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Greater(t, info.CPUCount, 0)
}

func TestHostInfoResolve(t *testing.T) {
	h := HostInfo{OS: "linux", Arch: "arm64"}
	_, _, err := h.Resolve("")
	assert.Error(t, err)

	p, a, err := h.Resolve("x86_64")
	require.NoError(t, err)
	assert.Equal(t, Linux, p)
	assert.Equal(t, X64, a)

	_, _, err = HostInfo{OS: "aix", Arch: "amd64"}.Resolve("")
	var platErr *utils.UnsupportedPlatformError
	assert.True(t, errors.As(err, &platErr))
}

func TestHostInfoResolveKernelArchFallback(t *testing.T) {
	h := HostInfo{OS: "linux", Arch: "wasm", KernelArch: "x86_64"}
	_, a, err := h.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, X64, a)

	// a mapped runtime architecture wins over the kernel one
	_, a, err = HostInfo{OS: "windows", Arch: "386", KernelArch: "x86_64"}.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, X32, a)

	// an explicit override never falls back
	_, _, err = h.Resolve("sparc")
	var archErr *utils.UnsupportedArchitectureError
	require.True(t, errors.As(err, &archErr))
	assert.Equal(t, "sparc", archErr.Architecture)

	// both unmapped: the runtime architecture is reported
	_, _, err = HostInfo{OS: "linux", Arch: "arm64", KernelArch: "aarch64"}.Resolve("")
	require.True(t, errors.As(err, &archErr))
	assert.Equal(t, "arm64", archErr.Architecture)
}
