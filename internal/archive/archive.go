// Package archive provides safe zip extraction and filesystem install
// helpers shared by the package cache (§4.3) and the export/import
// subsystem (§4.6).
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Warner receives non-fatal warnings during extraction.
type Warner func(format string, args ...any)

// OpenBytes opens an in-memory zip archive.
func OpenBytes(data []byte) (*zip.Reader, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: open zip: %w", err)
	}
	return r, nil
}

// OpenFile opens a zip archive from disk.
func OpenFile(path string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip %s: %w", path, err)
	}
	return r, nil
}

// NormalizeEntryName converts backslashes to forward slashes (archives
// produced on Windows sometimes use them) and returns the cleaned,
// slash-separated relative path.
func NormalizeEntryName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return path.Clean(name)
}

// SafePath reports whether a cleaned zip-relative path stays within the
// archive root (no ".." components after cleaning) and returns it converted
// to the host's path separator, relative to base.
func SafePath(base, relPath string) (string, bool) {
	clean := NormalizeEntryName(relPath)
	if clean == "." || clean == "" {
		return "", false
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	hostRel := filepath.FromSlash(clean)
	return filepath.Join(base, hostRel), true
}

// ForEachFile iterates every non-directory entry of a zip archive, skipping
// (with a warning) any entry whose normalized path would escape the archive
// root. relPath is always forward-slash separated.
func ForEachFile(zr *zip.Reader, warn Warner, fn func(relPath string, f *zip.File) error) error {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		clean := NormalizeEntryName(f.Name)
		if clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
			warn("archive: skipping entry %q: escapes archive root", f.Name)
			continue
		}

		if err := fn(clean, f); err != nil {
			return err
		}
	}

	return nil
}

// ExtractFile copies a single zip entry's contents to destPath, creating
// parent directories as needed.
func ExtractFile(f interface{ Open() (io.ReadCloser, error) }, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("archive: mkdir %s: %w", filepath.Dir(destPath), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("archive: open entry: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("archive: write %s: %w", destPath, err)
	}

	return nil
}

// WriteZip creates a new zip archive at destPath containing every file
// under root, with entry names relative to root using forward slashes;
// files for which exclude returns true are skipped.
func WriteZip(destPath, root string, exclude func(relPath string) bool) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if exclude != nil && exclude(rel) {
			return nil
		}

		w, err := zw.Create(rel)
		if err != nil {
			return fmt.Errorf("archive: create entry %s: %w", rel, err)
		}

		in, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("archive: open %s: %w", p, err)
		}
		defer in.Close()

		_, err = io.Copy(w, in)
		return err
	})
}

// ExtractAll extracts every entry of a zip reader to destRoot, using
// SafePath containment and logging escapes via warn instead of failing.
func ExtractAll(zr *zip.Reader, destRoot string, warn Warner) error {
	return ForEachFile(zr, warn, func(relPath string, f *zip.File) error {
		dest, ok := SafePath(destRoot, relPath)
		if !ok {
			warn("archive: skipping entry %q: escapes archive root", relPath)
			return nil
		}
		return ExtractFile(f, dest)
	})
}
