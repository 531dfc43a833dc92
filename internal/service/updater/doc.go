// Package updater checks the Paper download API for newer server builds,
// downloads the selected build in fixed-size chunks and swaps it into place.
//
// The install sequence keeps a backup copy inside a per-run temporary
// directory and walks an explicit state machine (untouched, backed up,
// deleted, installed); any failed step after the backup attempts to restore
// the previous file, and a failed restore surfaces as *RecoveryError.
package updater
