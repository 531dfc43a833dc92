package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/paper-updater/internal/logger"
	"github.com/oshokin/paper-updater/internal/service/updater"
	"github.com/oshokin/paper-updater/internal/version"
)

// Exit codes: a failed check or install is distinguished from a failed
// recovery, after which on-disk state is unknown.
const (
	exitCodeFailure        = 1
	exitCodeRecoveryFailed = 2
)

const banner = `+==========================================================+
|                 PaperMC Server Updater                   |
|  Checks, downloads and installs Paper server builds.     |
+==========================================================+`

var (
	// settingsPath is the optional tool settings YAML file.
	settingsPath string
	// historyPath overrides the version history file location.
	historyPath string
	// skipHistory disables reading the version history file.
	skipHistory bool
	// defaultVersion and defaultBuild seed the selection prompts.
	defaultVersion string
	defaultBuild   string
	// installedVersion and installedBuild override detection.
	installedVersion string
	installedBuild   int
	// checkOnly reports without installing; skipCheck installs without comparing.
	checkOnly bool
	skipCheck bool
	// interactive prompts for selection and confirmation.
	interactive bool
	// quiet limits output to errors and prompts.
	quiet bool
	// logLevel sets the minimum log level by name.
	logLevel string

	// rootCmd represents the base command for checking and installing server updates.
	rootCmd = &cobra.Command{
		Use:   "paper-updater <path-to-server-file>",
		Short: "Check for, download and install Paper server updates",
		Long: `Checks the Paper download API for newer builds of the server file at the
given path, downloads the selected build and swaps it into place, keeping a
backup for automatic recovery if any install step fails.

The currently installed version is read from version_history.json next to
the target file unless overridden.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogging()

			if !quiet {
				fmt.Println(banner)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				TargetPath:       args[0],
				SettingsPath:     settingsPath,
				HistoryPath:      historyPath,
				SkipHistory:      skipHistory,
				InstalledVersion: installedVersion,
				InstalledBuild:   installedBuild,
				DefaultVersion:   defaultVersion,
				DefaultBuild:     defaultBuild,
				CheckOnly:        checkOnly,
				SkipCheck:        skipCheck,
				Interactive:      interactive,
				Quiet:            quiet,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the paper-updater CLI and exits with a non-zero status on
// error: 2 when automatic recovery failed, 1 otherwise.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		var recoveryErr *updater.RecoveryError
		if errors.As(err, &recoveryErr) {
			os.Exit(exitCodeRecoveryFailed)
		}

		os.Exit(exitCodeFailure)
	}
}

// configureLogging applies the log-level flag; quiet wins and keeps only
// errors, interactive prompts and progress stay on their own channel.
func configureLogging() {
	if quiet {
		logger.SetLevel(zapcore.ErrorLevel)
		return
	}

	if level, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(level)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&defaultVersion, "version", "v", "latest", "server version to install (sets the selection default)")
	flags.StringVarP(&defaultBuild, "build", "b", "latest", "server build to install (sets the selection default)")
	flags.StringVar(&installedVersion, "installed-version", "0", "currently installed server version, ignores the history file")
	flags.IntVar(&installedBuild, "installed-build", 0, "currently installed server build, ignores the history file")
	flags.BoolVarP(&checkOnly, "check-only", "c", false, "check for an update without installing")
	flags.BoolVar(&skipCheck, "no-check", false, "skip the update check and go straight to install")
	flags.BoolVarP(&interactive, "interactive", "i", false, "prompt for the version and build to install")
	flags.BoolVar(&skipHistory, "no-load-config", false, "do not read the version history file")
	flags.StringVar(&historyPath, "config-file", "", "path to the version history file (defaults to a sibling of the target)")
	flags.StringVar(&settingsPath, "settings", "", "path to the tool settings YAML file")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only output errors and interactive prompts")
	flags.StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error, fatal)")
}
