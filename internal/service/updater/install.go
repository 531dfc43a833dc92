package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/paper-updater/internal/logger"
)

// installState tracks how far the backup/delete/copy sequence has advanced.
// The state is held explicitly instead of being inferred from which step
// returned an error.
type installState int

const (
	// stateUntouched: the target file has not been modified.
	stateUntouched installState = iota
	// stateBackedUp: a backup copy exists, the target is still in place.
	stateBackedUp
	// stateDeleted: the target is gone, only the backup remains.
	stateDeleted
	// stateInstalled: the new file is in place.
	stateInstalled
)

// RecoveryError reports that an install step failed and the automatic
// restore of the backup failed as well. On-disk state is unknown at that
// point and manual intervention is required.
type RecoveryError struct {
	// Cause is the install step failure that triggered recovery.
	Cause error
	// RecoveryCause is the failure hit while restoring the backup.
	RecoveryCause error
}

// Error spells out both failures so the operator sees the full picture.
func (e *RecoveryError) Error() string {
	return fmt.Sprintf("install failed: %v; automatic recovery also failed: %v; "+
		"the previous file could not be restored, manual intervention is required",
		e.Cause, e.RecoveryCause)
}

// Unwrap exposes the original install failure.
func (e *RecoveryError) Unwrap() error {
	return e.Cause
}

// installer swaps the downloaded file into place of the target, keeping a
// backup in the temp directory for recovery. One installer serves one
// install attempt.
type installer struct {
	// targetPath is the installed file being replaced.
	targetPath string
	// tempDir holds the downloaded data and the backup for this attempt.
	tempDir string
	// state is the current position in the install sequence.
	state installState
}

// newInstaller prepares an install attempt over an existing temp directory
// that already contains the downloaded data.
func newInstaller(targetPath, tempDir string) *installer {
	return &installer{
		targetPath: targetPath,
		tempDir:    tempDir,
		state:      stateUntouched,
	}
}

func (i *installer) backupPath() string {
	return filepath.Join(i.tempDir, backupFilename)
}

func (i *installer) downloadPath() string {
	return filepath.Join(i.tempDir, downloadFilename)
}

// Install runs the backup, delete and copy steps in strict order. A failure
// after the backup step triggers recovery; a failure of recovery itself
// surfaces as *RecoveryError. On success the temp directory is removed.
func (i *installer) Install(ctx context.Context) error {
	logger.Info(ctx, "Creating backup of the previous installation")

	if err := copyFile(i.backupPath(), i.targetPath); err != nil {
		// Nothing was deleted yet, so there is nothing to recover.
		return fmt.Errorf("back up current file: %w", err)
	}

	i.state = stateBackedUp

	logger.InfoKV(ctx, "Backup created", "path", i.backupPath())
	logger.InfoKV(ctx, "Deleting current file", "path", i.targetPath)

	if err := os.Remove(i.targetPath); err != nil {
		return i.recoverFrom(ctx, fmt.Errorf("delete current file: %w", err))
	}

	i.state = stateDeleted

	logger.InfoKV(ctx, "Copying downloaded data into place",
		"from", i.downloadPath(), "to", i.targetPath)

	if err := copyFile(i.targetPath, i.downloadPath()); err != nil {
		return i.recoverFrom(ctx, fmt.Errorf("copy new file into place: %w", err))
	}

	i.state = stateInstalled

	logger.Info(ctx, "Cleaning up the temporary directory")

	if err := os.RemoveAll(i.tempDir); err != nil {
		// The install itself succeeded; a leftover temp directory is not a failure.
		logger.WarnKV(ctx, "Unable to remove temporary directory", "path", i.tempDir, "error", err)
	}

	logger.Info(ctx, "Installation complete")

	return nil
}

// recoverFrom attempts to restore the backup after a failed step. The
// original failure is always returned; if recovery fails too, both are
// wrapped into a critical *RecoveryError.
func (i *installer) recoverFrom(ctx context.Context, cause error) error {
	logger.ErrorKV(ctx, "Installation failed, attempting to recover the previous file",
		"error", cause)

	if err := i.recoverBackup(ctx); err != nil {
		logger.ErrorKV(ctx, "Automatic recovery failed, the previous file could not be restored",
			"error", err)

		return &RecoveryError{Cause: cause, RecoveryCause: err}
	}

	i.state = stateUntouched

	logger.Info(ctx, "Previous file recovered, resolve the failure before retrying the update")

	return cause
}

// recoverBackup deletes whatever is at the target path (tolerating its
// absence) and copies the backup back into place.
func (i *installer) recoverBackup(_ context.Context) error {
	if err := os.Remove(i.targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete partial target: %w", err)
	}

	if err := copyFile(i.targetPath, i.backupPath()); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}
