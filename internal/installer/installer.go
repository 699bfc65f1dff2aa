// Package installer wires the acquisition pipeline together: resolve the run
// context and asset URL, download the archive, then extract it.
package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/assets"
	"github.com/tanq16/godotfetch/internal/downloader"
	"github.com/tanq16/godotfetch/internal/extract"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/platform"
	"github.com/tanq16/godotfetch/internal/scheduler"
	"github.com/tanq16/godotfetch/internal/utils"
)

type Config struct {
	ContextOptions
	Manifest assets.Manifest
	Download DownloadOptions
}

type Result struct {
	JobID      string
	Context    RunContext
	URL        string
	BinaryPath string
	Skipped    bool
}

type Installer struct {
	cfg   Config
	host  platform.HostInfo
	sched *scheduler.Scheduler
}

func New(cfg Config, host platform.HostInfo, out *output.Manager) *Installer {
	if cfg.Download.CPUCount <= 0 {
		cfg.Download.CPUCount = host.CPUCount
	}
	return &Installer{cfg: cfg, host: host, sched: scheduler.New(out)}
}

// Resolve builds the run context and the asset URL without touching the network.
func (i *Installer) Resolve() (RunContext, string, error) {
	rc, err := NewRunContext(i.cfg.ContextOptions, i.host)
	if err != nil {
		return RunContext{}, "", err
	}
	url, err := i.cfg.Manifest.Locate(rc.Platform, rc.Architecture, rc.ReleaseVersion)
	if err != nil {
		return RunContext{}, "", err
	}
	return rc, url, nil
}

// Run executes resolve, download and extract in order. An archive already at
// the download path is reused; extraction runs either way.
func (i *Installer) Run(ctx context.Context) (Result, error) {
	job := &utils.Job{ID: uuid.NewString(), HTTPConfig: i.cfg.Download.Sources.HTTP}
	res := Result{JobID: job.ID}
	log.Info().Str("op", "installer").Str("job", job.ID).Msgf("starting install of %s", i.cfg.PackageVersion)

	resolve := scheduler.Stage{
		Name: "resolve",
		Run: func(ctx context.Context, job *utils.Job, _ int) (string, error) {
			rc, url, err := i.Resolve()
			if err != nil {
				return "", err
			}
			job.URL = url
			job.OutputPath = rc.DownloadPath
			job.ExtractPath = rc.BinPath
			res.Context = rc
			res.URL = url
			return fmt.Sprintf("Resolved %s", rc), nil
		},
	}
	err := i.sched.Run(ctx, job, []scheduler.Stage{
		resolve,
		DownloadStage(i.sched.Output(), i.cfg.Download),
		ExtractStage(extract.New()),
	})
	res.BinaryPath = job.BinaryPath
	res.Skipped = job.Skipped
	if err != nil {
		return res, err
	}
	log.Info().Str("op", "installer").Str("job", job.ID).Str("binary", res.BinaryPath).Msg("install complete")
	return res, nil
}

type DownloadOptions struct {
	Sources SourceOptions
	// Connections forces the number of parallel connections when positive.
	Connections    int
	MaxConnections int
	CPUCount       int
	MaxChunkSize   int64
}

// DownloadStage fetches job.URL to job.OutputPath through the chunk engine and
// reports bucket progress under the stage.
func DownloadStage(out *output.Manager, opts DownloadOptions) scheduler.Stage {
	return scheduler.Stage{
		Name: "download",
		Run: func(ctx context.Context, job *utils.Job, stageID int) (string, error) {
			src, err := NewSource(ctx, job.URL, opts.Sources)
			if err != nil {
				return "", &utils.NetworkError{URL: job.URL, Err: err}
			}
			d := downloader.New(downloader.Config{
				Connections:   opts.Connections,
				ConnectionCap: opts.MaxConnections,
				CPUCount:      opts.CPUCount,
				MaxChunkSize:  opts.MaxChunkSize,
				Reporter:      out.ProgressReporter(stageID),
			})
			job.Connections = d.Concurrency()
			out.SetMessage(stageID, fmt.Sprintf("Downloading %s", job.URL))
			result, err := d.Download(ctx, src, job.OutputPath)
			if err != nil {
				return "", err
			}
			if result.Skipped {
				job.Skipped = true
				return fmt.Sprintf("Using existing %s", job.OutputPath), scheduler.ErrSkipped
			}
			job.DownloadTime = result.Elapsed
			return fmt.Sprintf("Downloaded %s (%s) in %s", job.OutputPath,
				utils.FormatBytes(uint64(result.Size)), result.Elapsed.Round(time.Millisecond)), nil
		},
	}
}

// ExtractStage unpacks job.OutputPath into job.ExtractPath.
func ExtractStage(e *extract.Extractor) scheduler.Stage {
	return scheduler.Stage{
		Name: "extract",
		Run: func(ctx context.Context, job *utils.Job, _ int) (string, error) {
			binary, err := e.Extract(ctx, job.OutputPath, job.ExtractPath)
			if err != nil {
				return "", err
			}
			job.BinaryPath = binary
			if binary == "" {
				return fmt.Sprintf("Extracted into %s", job.ExtractPath), nil
			}
			return fmt.Sprintf("Installed %s", binary), nil
		},
	}
}
