package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/utils"
)

var (
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	debug         bool

	globalHTTPConfig utils.HTTPClientConfig
	logCloser        io.Closer
)

// ToolVersion is the version of godotfetch itself.
var ToolVersion = "dev"

// PackageVersion is the packaging version the engine release is resolved from.
// Release builds set it with -ldflags "-X .../cmd.PackageVersion=...".
var PackageVersion = "3.5.0"

var rootCmd = &cobra.Command{
	Use:     "godotfetch",
	Short:   "godotfetch downloads and unpacks the Godot engine binary for this host",
	Version: ToolVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := utils.InitLogger(debug)
		if err != nil {
			output.PrintWarning(fmt.Sprintf("Logging disabled: %v", err))
		}
		logCloser = closer
		globalHTTPConfig = utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}
		utils.SplitProxyAuth(&globalHTTPConfig)
		log.Debug().Str("op", "cmd/root").Str("command", cmd.Name()).Msg("starting")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fail prints err and exits; the deferred cleanups of Execute do not run.
func fail(message string, err error) {
	if logCloser != nil {
		logCloser.Close()
	}
	output.PrintError(fmt.Sprintf("%s: %v", message, err))
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newVersionCmd())
}
