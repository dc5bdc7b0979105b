// Package compression packs sweep outputs into tar.xz archives.
package compression

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/quantsweep/internal/security"
)

// maxArchiveBytes bounds the decompressed size read back from an archive.
const maxArchiveBytes = 1 << 30

// Entry describes one file stored in an archive.
type Entry struct {
	Name string
	Size int64
}

// PackTarXz writes the named files, relative to baseDir, into a tar.xz at
// dest. Entries keep their relative names in the order given.
func PackTarXz(dest, baseDir string, names []string) (err error) {
	if len(names) == 0 {
		return fmt.Errorf("no files to archive")
	}

	out, err := os.Create(dest) // #nosec G304 - User-specified archive path
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", closeErr)
		}
	}()

	xzw, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}

	tw := tar.NewWriter(xzw)
	for _, name := range names {
		if err := security.ValidateArchiveName(name); err != nil {
			return err
		}
		if err := addFile(tw, filepath.Join(baseDir, name), filepath.ToSlash(name)); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("failed to finish xz stream: %w", err)
	}
	return nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path) // #nosec G304 - Sweep output inside the work directory
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", path, err)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// ListTarXz returns the entries of a tar.xz archive.
func ListTarXz(path string) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified archive path
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}

	tr := tar.NewReader(security.NewLimitedReader(xzr, maxArchiveBytes))
	var entries []Entry
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if err := security.ValidateArchiveName(header.Name); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: header.Name, Size: header.Size})
	}
	return entries, nil
}
