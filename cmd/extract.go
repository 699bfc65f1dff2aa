package cmd

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/extract"
	"github.com/tanq16/godotfetch/internal/installer"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/scheduler"
	"github.com/tanq16/godotfetch/internal/utils"
)

func newExtractCmd() *cobra.Command {
	var binPath string
	e := extract.New()

	cmd := &cobra.Command{
		Use:   "extract [ARCHIVE] [--bin-path DIR]",
		Short: "Extract an already downloaded archive and normalize the engine binary",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := &utils.Job{ID: uuid.NewString(), OutputPath: installer.DefaultDownloadPath, ExtractPath: binPath}
			if len(args) == 1 {
				job.OutputPath = args[0]
			}
			out := output.NewManager(os.Stdout, output.IsTerminal())
			if err := scheduler.New(out).Run(cmd.Context(), job, []scheduler.Stage{installer.ExtractStage(e)}); err != nil {
				fail("Extraction failed", err)
			}
		},
	}

	cmd.Flags().StringVarP(&binPath, "bin-path", "b", installer.DefaultBinPath, "Directory the archive is extracted into")
	cmd.Flags().StringVar(&e.CanonicalName, "canonical-name", extract.DefaultCanonicalName, "File name the engine binary is renamed to")
	cmd.Flags().StringVar(&e.BinaryPrefix, "binary-prefix", extract.DefaultBinaryPrefix, "Entry name prefix identifying the engine binary")
	return cmd
}
