// Package extract unpacks a downloaded release archive into the bin directory
// and normalizes the engine executable to a fixed name.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/utils"
)

const (
	DefaultCanonicalName = "godot"
	DefaultBinaryPrefix  = "Godot_"
	binaryMode           = 0755
	maxLinkTarget        = 4096
)

// Extractor writes every archive entry under a target directory, in the order
// the archive stores them. File entries whose archive path starts with
// BinaryPrefix are moved to CanonicalName and made executable.
type Extractor struct {
	CanonicalName string
	BinaryPrefix  string
}

func New() *Extractor {
	return &Extractor{CanonicalName: DefaultCanonicalName, BinaryPrefix: DefaultBinaryPrefix}
}

// Extract unpacks archivePath into targetDir, overwriting existing files, and
// returns the path of the canonical binary (empty when no entry matched).
// Entries are processed one at a time; a failure stops extraction and leaves
// whatever was already written.
func (e *Extractor) Extract(ctx context.Context, archivePath, targetDir string) (string, error) {
	wrap := func(entry string, err error) error {
		return &utils.ExtractionError{Archive: archivePath, Entry: entry, Err: err}
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", wrap("", fmt.Errorf("error creating target directory: %w", err))
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return "", wrap("", err)
	}
	defer f.Close()

	format, _, err := archives.Identify(ctx, filepath.Base(archivePath), f)
	if err != nil {
		return "", wrap("", fmt.Errorf("error identifying archive format: %w", err))
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return "", wrap("", fmt.Errorf("format %s cannot be extracted", format.Extension()))
	}
	// Identify may have consumed the header; zip needs the whole file again.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", wrap("", err)
	}

	var binary string
	var entries int
	err = extractor.Extract(ctx, f, func(ctx context.Context, info archives.FileInfo) error {
		entries++
		path, err := e.writeEntry(targetDir, info)
		if err != nil {
			return wrap(info.NameInArchive, err)
		}
		if path != "" {
			binary = path
		}
		return nil
	})
	if err != nil {
		var extractErr *utils.ExtractionError
		if errors.As(err, &extractErr) {
			return "", extractErr
		}
		return "", wrap("", err)
	}
	log.Info().Str("op", "extract").Int("entries", entries).Str("binary", binary).Msgf("extracted %s into %s", archivePath, targetDir)
	return binary, nil
}

// writeEntry materializes one entry and returns the canonical binary path when
// the entry was renamed to it.
func (e *Extractor) writeEntry(targetDir string, info archives.FileInfo) (string, error) {
	target, err := safeJoin(targetDir, info.NameInArchive)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.MkdirAll(target, 0755)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return "", writeSymlink(targetDir, target, info)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("unsupported entry type %s", info.Mode().Type())
	}
	if err := writeFile(target, info); err != nil {
		return "", err
	}
	if !e.isBinary(info.NameInArchive) {
		return "", nil
	}

	canonical := filepath.Join(targetDir, e.CanonicalName)
	if err := os.Rename(target, canonical); err != nil {
		return "", fmt.Errorf("error renaming binary: %w", err)
	}
	if err := os.Chmod(canonical, binaryMode); err != nil {
		return "", fmt.Errorf("error setting binary permissions: %w", err)
	}
	log.Debug().Str("op", "extract").Str("entry", info.NameInArchive).Str("path", canonical).Msg("binary normalized")
	return canonical, nil
}

func (e *Extractor) isBinary(name string) bool {
	return e.BinaryPrefix != "" && e.CanonicalName != "" && strings.HasPrefix(name, e.BinaryPrefix)
}

func writeFile(target string, info archives.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating parent directory: %w", err)
	}
	src, err := info.Open()
	if err != nil {
		return fmt.Errorf("error opening entry: %w", err)
	}
	defer src.Close()

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	buffer := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(dst, src, buffer); err != nil {
		dst.Close()
		return fmt.Errorf("error writing file: %w", err)
	}
	return dst.Close()
}

// writeSymlink recreates a link entry. The link must stay inside targetDir
// once resolved against the directory holding it.
func writeSymlink(targetDir, target string, info archives.FileInfo) error {
	link := info.LinkTarget
	if link == "" {
		// zip keeps the link target as the entry body
		src, err := info.Open()
		if err != nil {
			return fmt.Errorf("error opening entry: %w", err)
		}
		body, err := io.ReadAll(io.LimitReader(src, maxLinkTarget))
		src.Close()
		if err != nil {
			return fmt.Errorf("error reading link target: %w", err)
		}
		link = string(body)
	}
	if link == "" {
		return errors.New("empty link target")
	}
	if filepath.IsAbs(link) || strings.HasPrefix(link, "/") {
		return fmt.Errorf("absolute link target %q", link)
	}
	if !within(targetDir, filepath.Join(filepath.Dir(target), filepath.FromSlash(link))) {
		return fmt.Errorf("link target %q escapes target directory", link)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating parent directory: %w", err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error replacing existing entry: %w", err)
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("error creating symlink: %w", err)
	}
	return nil
}

// safeJoin resolves an archive entry name under dir, rejecting names that
// would land outside it.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("absolute entry path %q", name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !within(dir, target) {
		return "", fmt.Errorf("entry path %q escapes target directory", name)
	}
	return target, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
