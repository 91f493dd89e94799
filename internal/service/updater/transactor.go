package updater

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/brave-tools/brave-updater/internal/logger"
	"github.com/brave-tools/brave-updater/internal/release"
)

const (
	// stagingSuffix names the staging directory next to the live one.
	stagingSuffix = ".new"

	// defaultDirectoryMode is used for directories the archive does not describe.
	defaultDirectoryMode os.FileMode = 0o755
)

var errBadHTTPStatus = errors.New("unexpected http status")

// install downloads the resolved release, extracts it into the staging
// directory, stamps the version marker, and promotes staging over the live
// installation. Only the final rename is atomic; staging stays invisible to
// the installed-version probe until renamed into place.
func (r *runner) install(ctx context.Context, resolved *release.Resolved) error {
	archive, err := r.download(ctx, resolved.URL)
	if err != nil {
		return fmt.Errorf("download release asset: %w", err)
	}

	defer func() {
		_ = archive.Close()
		_ = os.Remove(archive.Name())
	}()

	staging := r.cfg.Target + stagingSuffix

	if err = extractArchive(ctx, archive, staging); err != nil {
		return fmt.Errorf("extract release archive: %w", err)
	}

	if err = r.markers.Stamp(ctx, staging, resolved.Name); err != nil {
		return fmt.Errorf("stamp staged version: %w", err)
	}

	// Removal and rename are two steps; a failure between them leaves no
	// live installation and requires manual recovery.
	if err = os.RemoveAll(r.cfg.Target); err != nil {
		return fmt.Errorf("remove previous installation: %w", err)
	}

	if err = os.Rename(staging, r.cfg.Target); err != nil {
		return fmt.Errorf("promote staging directory: %w", err)
	}

	return nil
}

// download streams the asset body into an unnamed temporary file so the zip
// central directory, stored at the end of the archive, is seekable before
// extraction begins. The caller owns the returned file.
func (r *runner) download(ctx context.Context, rawURL string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, errBadHTTPStatus)
	}

	tmp, err := os.CreateTemp("", "brave-updater-*.zip")
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(tmp, response.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return nil, err
	}

	return tmp, nil
}

// extractArchive unpacks the buffered zip into a freshly created staging
// directory. Any entry or I/O failure aborts the remaining entries.
func extractArchive(ctx context.Context, archive *os.File, staging string) error {
	info, err := archive.Stat()
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(archive, info.Size())
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	// Leftovers from an aborted run must not leak into this one.
	if err = os.RemoveAll(staging); err != nil {
		return err
	}

	if err = os.MkdirAll(staging, defaultDirectoryMode); err != nil {
		return err
	}

	for _, entry := range reader.File {
		if err = extractEntry(ctx, entry, staging); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}

	return nil
}

// extractEntry writes one archive entry under the staging root. Entries
// that resolve outside staging are skipped, never an error.
func extractEntry(ctx context.Context, entry *zip.File, staging string) error {
	outPath := filepath.Join(staging, entry.Name)
	if !isContainedWithin(staging, outPath) {
		logger.DebugKV(ctx, "Skipping entry outside staging directory", "entry", entry.Name)
		return nil
	}

	if strings.HasSuffix(entry.Name, "/") {
		if err := os.MkdirAll(outPath, defaultDirectoryMode); err != nil {
			return err
		}

		return applyEntryMode(entry, outPath)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), defaultDirectoryMode); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = src.Close()
	}()

	dst, err := os.Create(outPath)
	if err != nil {
		return err
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()

		return err
	}

	if err = dst.Close(); err != nil {
		return err
	}

	return applyEntryMode(entry, outPath)
}

// applyEntryMode transfers the archived Unix permission bits, when present,
// to the extracted path.
func applyEntryMode(entry *zip.File, path string) error {
	mode := entry.Mode().Perm()
	if mode == 0 {
		return nil
	}

	return os.Chmod(path, mode)
}

// isContainedWithin reports whether path stays inside root after lexical
// resolution. Failing the predicate is a normal skip, not a fault.
func isContainedWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
