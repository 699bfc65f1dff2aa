package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/release"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version and the engine release it installs by default",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.PrintHeader(fmt.Sprintf("godotfetch %s", ToolVersion))
			_, _, assetVersion, err := release.Resolve(PackageVersion)
			if err != nil {
				fail("Invalid built-in package version", err)
			}
			output.PrintInfo(fmt.Sprintf("package version %s (release %s)", PackageVersion, assetVersion))
		},
	}
}
