package platform

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// HostInfo holds the raw host identifiers the pipeline resolves against.
type HostInfo struct {
	OS         string
	Arch       string
	KernelArch string
	CPUCount   int
}

// Detect reads the host OS and architecture from the Go runtime and the logical
// CPU count from gopsutil. Host details are best-effort; only the kernel
// architecture is kept, as a fallback for Resolve.
func Detect(ctx context.Context) HostInfo {
	info := HostInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUCount: runtime.NumCPU(),
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		info.CPUCount = n
	} else if err != nil {
		log.Debug().Str("op", "platform/detect").Err(err).Msg("cpu count lookup failed, using runtime.NumCPU")
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.KernelArch = hi.KernelArch
		log.Debug().Str("op", "platform/detect").
			Str("platform", hi.Platform).
			Str("family", hi.PlatformFamily).
			Str("version", hi.PlatformVersion).
			Str("kernelArch", hi.KernelArch).
			Msg("host detected")
	} else {
		log.Debug().Str("op", "platform/detect").Err(err).Msg("host info lookup failed")
	}
	return info
}

// Resolve maps the host identifiers to the closed enums. An override, when
// non-empty, replaces the detected architecture. Without one, the kernel
// architecture is tried when the runtime architecture has no mapping, which
// covers e.g. a wasm or arm build of this tool running on an x86_64 kernel.
func (h HostInfo) Resolve(archOverride string) (Platform, Architecture, error) {
	p, err := PlatformFromOS(h.OS)
	if err != nil {
		return "", "", err
	}
	if archOverride != "" {
		a, err := ArchitectureFromArch(archOverride)
		if err != nil {
			return "", "", err
		}
		return p, a, nil
	}

	a, err := ArchitectureFromArch(h.Arch)
	if err != nil && h.KernelArch != "" {
		if ka, kerr := ArchitectureFromArch(h.KernelArch); kerr == nil {
			log.Debug().Str("op", "platform/detect").Str("arch", h.Arch).Str("kernelArch", h.KernelArch).Msg("using kernel architecture")
			return p, ka, nil
		}
	}
	if err != nil {
		return "", "", err
	}
	return p, a, nil
}
