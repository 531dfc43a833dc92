package updater

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/paper-updater/internal/logger"
)

const (
	// DownloadChunkSize is the fixed block size for chunked downloads.
	DownloadChunkSize = 4608

	// backupFilename names the pre-update copy of the target inside the temp directory.
	backupFilename = "backup"

	// downloadFilename names the freshly downloaded data inside the temp directory.
	downloadFilename = "download_data"

	// tempDirPattern prefixes the per-run staging directory.
	tempDirPattern = "paper-updater-"

	// defaultTargetMode is used when the original file mode cannot be read.
	defaultTargetMode os.FileMode = 0o644
)

// copyFile copies src to dst byte for byte, preserving the source mode and
// syncing before close. Each install step must be durable on disk before the
// next one starts, so a crash always leaves a recoverable state.
func copyFile(dst, src string) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	defer func() {
		_ = source.Close()
	}()

	mode := defaultTargetMode
	if info, statErr := source.Stat(); statErr == nil {
		mode = info.Mode()
	}

	destination, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err = io.Copy(destination, source); err != nil {
		_ = destination.Close()

		return fmt.Errorf("copy contents: %w", err)
	}

	if err = destination.Sync(); err != nil {
		_ = destination.Close()

		return fmt.Errorf("sync destination: %w", err)
	}

	if err = destination.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}

// warnIfServerRunning scans the process table for the configured server
// process and warns that it may hold the target file open. This is a
// diagnostic only; installation proceeds either way.
func warnIfServerRunning(ctx context.Context, processName string) {
	if processName == "" {
		return
	}

	processList, err := ps.Processes()
	if err != nil {
		logger.WarnKV(ctx, "Unable to scan running processes", "error", err)
		return
	}

	for _, process := range processList {
		if !executableMatches(process.Executable(), processName) {
			continue
		}

		logger.WarnKV(ctx, "A server process appears to be running and may hold the target file open",
			"process", process.Executable(), "pid", process.Pid())

		return
	}
}

// executableMatches compares a process executable name against the
// configured one, ignoring case and a Windows .exe suffix.
func executableMatches(executable, configured string) bool {
	if runtime.GOOS == "windows" {
		executable = strings.TrimSuffix(strings.ToLower(executable), ".exe")
		configured = strings.TrimSuffix(strings.ToLower(configured), ".exe")
	}

	return strings.EqualFold(executable, configured)
}
