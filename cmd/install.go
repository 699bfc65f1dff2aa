package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/assets"
	"github.com/tanq16/godotfetch/internal/installer"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/platform"
)

// installFlags are shared by install and resolve.
type installFlags struct {
	packageVersion string
	assetsPath     string
	baseURL        string
	downloadPath   string
	binPath        string
	arch           string
	maxConnections int
	connections    int
	s3Profile      string
}

func (f *installFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.packageVersion, "version", "v", "", "Package version to resolve (defaults to the built-in version)")
	cmd.Flags().StringVar(&f.assetsPath, "assets", "", "Path to a YAML asset manifest (defaults to the embedded one)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Override the manifest base URL (http(s):// or s3://bucket/prefix)")
	cmd.Flags().StringVarP(&f.downloadPath, "download-path", "d", installer.DefaultDownloadPath, "Where the archive is downloaded")
	cmd.Flags().StringVarP(&f.binPath, "bin-path", "b", installer.DefaultBinPath, "Directory the archive is extracted into")
	cmd.Flags().StringVar(&f.arch, "arch", "", "Override the detected architecture (32 or 64)")
	cmd.Flags().IntVar(&f.maxConnections, "max-connections", 10, "Upper bound on parallel connections")
	cmd.Flags().IntVarP(&f.connections, "connections", "c", 0, "Force the number of parallel connections (0 derives it from the CPU count)")
	cmd.Flags().StringVar(&f.s3Profile, "profile", "", "AWS profile for s3:// base URLs")
}

func (f *installFlags) config() (installer.Config, error) {
	manifest := assets.Default()
	if f.assetsPath != "" {
		m, err := assets.Load(f.assetsPath)
		if err != nil {
			return installer.Config{}, err
		}
		manifest = m
	}
	packageVersion := f.packageVersion
	if packageVersion == "" {
		packageVersion = PackageVersion
	}
	httpCfg := globalHTTPConfig
	httpCfg.HighThreadMode = f.connections > 8
	return installer.Config{
		ContextOptions: installer.ContextOptions{
			PackageVersion: packageVersion,
			ArchOverride:   f.arch,
			DownloadPath:   f.downloadPath,
			BinPath:        f.binPath,
		},
		Manifest: manifest.WithBaseURL(f.baseURL),
		Download: installer.DownloadOptions{
			Sources:        installer.SourceOptions{HTTP: httpCfg, S3Profile: f.s3Profile},
			Connections:    f.connections,
			MaxConnections: f.maxConnections,
		},
	}, nil
}

func newInstallCmd() *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:   "install [--version VERSION] [--bin-path DIR]",
		Short: "Resolve, download and extract the engine binary",
		Long: `Resolve the release for this host, download its archive over several
connections and extract it, leaving the executable at <bin-path>/godot.

Examples:
  godotfetch install
  godotfetch install --version 3.2.3.1 --bin-path ./tools
  godotfetch install --base-url s3://mirror/godotengine --profile ci`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := flags.config()
			if err != nil {
				fail("Invalid configuration", err)
			}
			host := platform.Detect(cmd.Context())
			out := output.NewManager(os.Stdout, output.IsTerminal())
			res, err := installer.New(cfg, host, out).Run(cmd.Context())
			if err != nil {
				fail("Installation failed", err)
			}
			if res.BinaryPath != "" {
				output.PrintSuccess("Engine binary available at " + res.BinaryPath)
			} else {
				output.PrintWarning("Archive extracted into " + res.Context.BinPath + " but no engine binary was found in it")
			}
		},
	}

	flags.bind(cmd)
	return cmd
}
