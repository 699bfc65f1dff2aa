package cmd

import (
	"net/url"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/installer"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/platform"
	"github.com/tanq16/godotfetch/internal/scheduler"
	"github.com/tanq16/godotfetch/internal/utils"
)

func newDownloadCmd() *cobra.Command {
	var outputPath string
	var connections int
	var maxConnections int
	var profile string

	cmd := &cobra.Command{
		Use:   "download [URL] [--output OUTPUT_PATH]",
		Short: "Download any http(s):// or s3:// URL through the chunked downloader",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := &utils.Job{ID: uuid.NewString(), URL: args[0], OutputPath: outputPath}
			if job.OutputPath == "" {
				job.OutputPath = defaultOutputName(job.URL)
			}
			httpCfg := globalHTTPConfig
			httpCfg.HighThreadMode = connections > 8
			out := output.NewManager(os.Stdout, output.IsTerminal())
			stage := installer.DownloadStage(out, installer.DownloadOptions{
				Sources:        installer.SourceOptions{HTTP: httpCfg, S3Profile: profile},
				Connections:    connections,
				MaxConnections: maxConnections,
				CPUCount:       platform.Detect(cmd.Context()).CPUCount,
			})
			if err := scheduler.New(out).Run(cmd.Context(), job, []scheduler.Stage{stage}); err != nil {
				fail("Download failed", err)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (defaults to the URL's file name)")
	cmd.Flags().IntVarP(&connections, "connections", "c", 0, "Force the number of parallel connections (0 derives it from the CPU count)")
	cmd.Flags().IntVar(&maxConnections, "max-connections", 10, "Upper bound on parallel connections")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile for s3:// URLs")
	return cmd
}

func defaultOutputName(rawURL string) string {
	name := "download.bin"
	if parsed, err := url.Parse(rawURL); err == nil {
		if base := path.Base(parsed.Path); base != "." && base != "/" && base != "" {
			name = base
		}
	}
	return name
}
