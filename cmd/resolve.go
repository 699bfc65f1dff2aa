package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/installer"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/platform"
)

func newResolveCmd() *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:   "resolve [--version VERSION]",
		Short: "Print the release, platform and download URL without downloading",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := flags.config()
			if err != nil {
				fail("Invalid configuration", err)
			}
			host := platform.Detect(cmd.Context())
			rc, url, err := installer.New(cfg, host, output.NewManager(cmd.OutOrStdout(), false)).Resolve()
			if err != nil {
				fail("Resolution failed", err)
			}
			subpatch := "none"
			if rc.Subpatch != nil {
				subpatch = fmt.Sprint(*rc.Subpatch)
			}
			output.PrintHeader("Resolved " + rc.PackageVersion())
			printField("release", rc.ReleaseVersion)
			printField("subpatch", subpatch)
			printField("platform", rc.Platform.String())
			printField("arch", rc.Architecture.String())
			printField("cpus", fmt.Sprint(host.CPUCount))
			printField("url", url)
			printField("download", rc.DownloadPath)
			printField("bin", rc.BinPath)
		},
	}

	flags.bind(cmd)
	return cmd
}

func printField(name, value string) {
	fmt.Printf("  %s %s\n", output.FDetail(fmt.Sprintf("%-9s", name)), value)
}
