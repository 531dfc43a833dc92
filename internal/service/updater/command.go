package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/oshokin/paper-updater/internal/config"
	"github.com/oshokin/paper-updater/internal/history"
	"github.com/oshokin/paper-updater/internal/logger"
	"github.com/oshokin/paper-updater/internal/paper"
)

var (
	// errEmptyVersionList is returned when the API offers no versions at all.
	errEmptyVersionList = errors.New("the API returned no versions")
	// errEmptyBuildList is returned when a version has no builds.
	errEmptyBuildList = errors.New("the API returned no builds for the version")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// TargetPath is the installed server file to be replaced.
	TargetPath string
	// SettingsPath is the optional path to the tool settings YAML file.
	SettingsPath string
	// HistoryPath overrides the version history location; empty means a
	// sibling of the target.
	HistoryPath string
	// SkipHistory disables reading the version history file.
	SkipHistory bool
	// InstalledVersion overrides the detected installed version ("0" = detect).
	InstalledVersion string
	// InstalledBuild overrides the detected installed build (0 = detect).
	InstalledBuild int
	// DefaultVersion is the selection default, usually "latest".
	DefaultVersion string
	// DefaultBuild is the selection default, usually "latest".
	DefaultBuild string
	// CheckOnly reports whether an update exists without installing it.
	CheckOnly bool
	// SkipCheck installs without comparing local and remote state first.
	SkipCheck bool
	// Interactive prompts for version/build selection and confirmation.
	Interactive bool
	// Quiet suppresses progress output; errors and prompts still show.
	Quiet bool
}

// Service drives the update sequence: check, select, download, install.
// It holds the in-memory installed state, which is only advanced after a
// successful install and is never persisted.
type Service struct {
	client *paper.Client
	cfg    *config.Config

	// targetPath is the file being kept up to date.
	targetPath string
	// version and build identify what is currently installed.
	version string
	build   string

	// available caches the remote versions list, fetched at most once per run.
	available []string

	interactive bool
	quiet       bool

	prompter *Prompter
	out      io.Writer
}

// Run executes the updater lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "paper-updater")

	cfg, err := config.Load(opts.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	installedVersion, installedBuild := resolveInstalled(ctx, opts)

	logger.InfoKV(ctx, "Current server state",
		"version", installedVersion, "build", installedBuild)

	service := NewService(cfg, opts.TargetPath, installedVersion, installedBuild,
		opts.Interactive, opts.Quiet, os.Stdin, os.Stdout)

	updateAvailable := true

	if !opts.SkipCheck {
		updateAvailable, err = service.Check(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "Update check failed", "error", err)
			return fmt.Errorf("check for updates: %w", err)
		}
	}

	if opts.CheckOnly || !updateAvailable {
		return nil
	}

	if err = service.GetNew(ctx, opts.DefaultVersion, opts.DefaultBuild); err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)
		return err
	}

	return nil
}

// resolveInstalled combines explicit overrides with the version history
// file. Overrides win; the sentinel values "0"/0 mean "detect".
func resolveInstalled(ctx context.Context, opts *Options) (string, string) {
	installed := history.Unknown

	if opts.SkipHistory {
		logger.Info(ctx, "Skipping the version history file")
	} else {
		historyPath := opts.HistoryPath
		if historyPath == "" {
			historyPath = history.DefaultPath(opts.TargetPath)
		}

		installed = history.Load(ctx, historyPath)
	}

	version := opts.InstalledVersion
	if version == "" || version == history.Unknown.Version {
		version = installed.Version
	}

	build := opts.InstalledBuild
	if build == 0 {
		build = installed.Build
	}

	return version, strconv.Itoa(build)
}

// NewService assembles a Service. The reader and writer carry interactive
// prompts and progress output and are injectable for tests.
func NewService(cfg *config.Config, targetPath, installedVersion, installedBuild string,
	interactive, quiet bool, in io.Reader, out io.Writer,
) *Service {
	return &Service{
		client:      paper.NewClient(cfg.APIBaseURL, cfg.Timeout),
		cfg:         cfg,
		targetPath:  targetPath,
		version:     installedVersion,
		build:       installedBuild,
		interactive: interactive,
		quiet:       quiet,
		prompter:    NewPrompter(in, out),
		out:         out,
	}
}

// Installed returns the current in-memory installed state.
func (s *Service) Installed() (version, build string) {
	return s.version, s.build
}

// Check reports whether a newer version or build exists. A differing newest
// version decides immediately, without consulting builds. On any fetch
// failure the answer is false together with the error: an update is never
// reported when remote state is unavailable.
func (s *Service) Check(ctx context.Context) (bool, error) {
	logger.Info(ctx, "Comparing local and remote server versions")

	versions, err := s.versions(ctx)
	if err != nil {
		return false, err
	}

	if versions[0] != s.version {
		logger.InfoKV(ctx, "New version available", "version", versions[0])
		return true, nil
	}

	logger.Info(ctx, "No new version available, comparing builds")

	builds, err := s.client.Builds(ctx, s.version)
	if err != nil {
		return false, err
	}

	if len(builds) == 0 {
		return false, fmt.Errorf("%s: %w", s.version, errEmptyBuildList)
	}

	if builds[0] != s.build {
		logger.InfoKV(ctx, "New build available", "build", builds[0])
		return true, nil
	}

	logger.Info(ctx, "No new builds found")

	return false, nil
}

// GetNew selects a version and build, downloads it into a fresh temporary
// directory and installs it over the target. On success the in-memory
// installed state advances to the new pair.
func (s *Service) GetNew(ctx context.Context, defaultVersion, defaultBuild string) error {
	version, build, err := s.selectTarget(ctx, defaultVersion, defaultBuild)
	if err != nil {
		return fmt.Errorf("select version and build: %w", err)
	}

	logger.InfoKV(ctx, "Selected for installation", "version", version, "build", build)

	if s.interactive && !s.prompter.ConfirmInstall() {
		logger.Info(ctx, "Installation canceled")
		return nil
	}

	tempDir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return fmt.Errorf("create temporary directory: %w", err)
	}

	// The installer removes the directory on success; this covers every
	// failure path, after recovery had its chance to use the backup.
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	logger.InfoKV(ctx, "Temporary directory created", "path", tempDir)

	if err = s.download(ctx, filepath.Join(tempDir, downloadFilename), version, build); err != nil {
		return fmt.Errorf("download build: %w", err)
	}

	warnIfServerRunning(ctx, s.cfg.ServerProcess)

	if err = newInstaller(s.targetPath, tempDir).Install(ctx); err != nil {
		return err
	}

	s.version, s.build = version, build

	logger.InfoKV(ctx, "Update complete", "version", version, "build", build)

	return nil
}

// selectTarget resolves the version, then its build, interactively or
// against the defaults.
func (s *Service) selectTarget(ctx context.Context, defaultVersion, defaultBuild string) (string, string, error) {
	versions, err := s.versions(ctx)
	if err != nil {
		return "", "", err
	}

	version, err := s.selectOne(ctx, "version", versions, defaultVersion)
	if err != nil {
		return "", "", err
	}

	builds, err := s.client.Builds(ctx, version)
	if err != nil {
		return "", "", err
	}

	if len(builds) == 0 {
		return "", "", fmt.Errorf("%s: %w", version, errEmptyBuildList)
	}

	build, err := s.selectOne(ctx, "build", builds, defaultBuild)
	if err != nil {
		return "", "", err
	}

	return version, build, nil
}

// selectOne applies the selection rules once in non-interactive mode or
// loops through the prompter otherwise.
func (s *Service) selectOne(ctx context.Context, label string, candidates []string, fallback string) (string, error) {
	if s.interactive {
		return s.prompter.SelectFrom(label, candidates, fallback)
	}

	value, err := resolve(selection{kind: selectDefault}, fallback, candidates)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", label, err)
	}

	logger.InfoKV(ctx, "Selected "+label, label, value)

	return value, nil
}

// versions returns the remote versions list, fetching it on first use and
// serving the cached copy afterwards.
func (s *Service) versions(ctx context.Context) ([]string, error) {
	if len(s.available) > 0 {
		return s.available, nil
	}

	logger.Info(ctx, "Fetching version information")

	versions, err := s.client.Versions(ctx)
	if err != nil {
		return nil, err
	}

	if len(versions) == 0 {
		return nil, errEmptyVersionList
	}

	s.available = versions

	return versions, nil
}
