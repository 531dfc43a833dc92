package updater

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/paper-updater/internal/logger"
	"github.com/oshokin/paper-updater/internal/progress"
)

// download streams one build into destPath in fixed-size chunks, reporting
// progress after each chunk. On any failure the destination file is closed
// and left behind; it lives inside the per-run temp directory, so cleanup
// is implicit.
func (s *Service) download(ctx context.Context, destPath, version, build string) error {
	logger.InfoKV(ctx, "Starting download", "version", version, "build", build)

	body, total, err := s.client.OpenDownload(ctx, version, build)
	if err != nil {
		return err
	}

	defer func() {
		_ = body.Close()
	}()

	logger.InfoKV(ctx, "Download size", "bytes", total)

	file, err := os.OpenFile(filepath.Clean(destPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultTargetMode)
	if err != nil {
		return fmt.Errorf("open download destination: %w", err)
	}

	if err = s.readChunks(body, file, total); err != nil {
		_ = file.Close()

		return err
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("sync downloaded data: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close downloaded data: %w", err)
	}

	logger.Info(ctx, "Download complete")

	return nil
}

// readChunks copies exactly total bytes from body to file in
// DownloadChunkSize blocks. The chunk count is the ceiling of
// total/DownloadChunkSize; the final chunk is trimmed so the last progress
// report equals the true total.
func (s *Service) readChunks(body io.Reader, file io.Writer, total int64) error {
	reporter := s.newReporter("Downloading: ")
	reporter.Start(total)

	buffer := make([]byte, DownloadChunkSize)

	var written int64
	for written < total {
		chunk := int64(DownloadChunkSize)
		if remaining := total - written; remaining < chunk {
			chunk = remaining
		}

		if _, err := io.ReadFull(body, buffer[:chunk]); err != nil {
			return fmt.Errorf("read download chunk: %w", err)
		}

		if _, err := file.Write(buffer[:chunk]); err != nil {
			return fmt.Errorf("write download chunk: %w", err)
		}

		written += chunk
		reporter.Update(written)
	}

	reporter.Finish()

	return nil
}

// newReporter picks the progress sink: a console bar normally, a discard
// sink in quiet mode. Progress is a side channel and never changes the
// success or failure of a download.
//
//nolint:ireturn // Deliberately returns the Reporter interface.
func (s *Service) newReporter(prefix string) progress.Reporter {
	if s.quiet {
		return progress.Discard()
	}

	return progress.NewBar(s.out, prefix)
}
