package installer

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/platform"
	"github.com/tanq16/godotfetch/internal/release"
)

const (
	DefaultDownloadPath = "./download/godot.zip"
	DefaultBinPath      = "./bin"
)

// RunContext is everything resolved about one invocation before any network
// I/O. It is built once by NewRunContext and passed by value.
type RunContext struct {
	Version        *version.Version
	Subpatch       *int
	ReleaseVersion string
	Platform       platform.Platform
	Architecture   platform.Architecture
	DownloadPath   string
	BinPath        string
}

type ContextOptions struct {
	PackageVersion string
	ArchOverride   string
	DownloadPath   string
	BinPath        string
}

func NewRunContext(opts ContextOptions, host platform.HostInfo) (RunContext, error) {
	v, subpatch, releaseVersion, err := release.Resolve(opts.PackageVersion)
	if err != nil {
		return RunContext{}, err
	}
	p, a, err := host.Resolve(opts.ArchOverride)
	if err != nil {
		return RunContext{}, err
	}
	rc := RunContext{
		Version:        v,
		Subpatch:       subpatch,
		ReleaseVersion: releaseVersion,
		Platform:       p,
		Architecture:   a,
		DownloadPath:   opts.DownloadPath,
		BinPath:        opts.BinPath,
	}
	if rc.DownloadPath == "" {
		rc.DownloadPath = DefaultDownloadPath
	}
	if rc.BinPath == "" {
		rc.BinPath = DefaultBinPath
	}
	log.Debug().Str("op", "installer/context").Str("release", rc.ReleaseVersion).
		Str("platform", p.String()).Str("arch", a.String()).Msg("run context resolved")
	return rc, nil
}

func (rc RunContext) PackageVersion() string {
	return release.FormatPackageVersion(rc.Version, rc.Subpatch)
}

func (rc RunContext) String() string {
	return fmt.Sprintf("%s (release %s) for %s/%s", rc.PackageVersion(), rc.ReleaseVersion, rc.Platform, rc.Architecture)
}
