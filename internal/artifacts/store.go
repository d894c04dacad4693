package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"weather-snapshot/internal/models"
	"weather-snapshot/pkg/logger"
)

type LatestMode string

const (
	LatestCopy    LatestMode = "copy"
	LatestSymlink LatestMode = "symlink"

	filePerm os.FileMode = 0o644
)

func ParseLatestMode(s string) (LatestMode, error) {
	switch LatestMode(s) {
	case LatestCopy, LatestSymlink:
		return LatestMode(s), nil
	}
	return "", fmt.Errorf("%w: unknown latest mode %q", models.ErrConfig, s)
}

// Store writes artifacts with temp-file-and-rename, so readers see either the
// previous file or the new one, never a partial write or a missing pointer.
type Store struct {
	mode LatestMode
	l    *logger.Logger
}

func NewStore(mode LatestMode, l *logger.Logger) *Store {
	return &Store{
		mode: mode,
		l:    l,
	}
}

// WriteJSON re-indents raw with two spaces. Key order and number literals are
// kept as received.
func (s *Store) WriteJSON(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("%w: indent forecast json: %w", models.ErrParse, err)
	}

	if err := s.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}

	s.l.Info("weather data saved", map[string]any{"path": path, "bytes": buf.Len()})
	return nil
}

func (s *Store) WriteFile(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %w", models.ErrFilesystem, path, err)
	}
	return nil
}

// UpdateLatest makes pointer reflect dated, by copy or by symlink to the
// absolute dated path depending on the store mode.
func (s *Store) UpdateLatest(dated, pointer string) error {
	switch s.mode {
	case LatestSymlink:
		target, err := filepath.Abs(dated)
		if err != nil {
			return fmt.Errorf("%w: resolve %s: %w", models.ErrFilesystem, dated, err)
		}
		if err := renameio.Symlink(target, pointer); err != nil {
			return fmt.Errorf("%w: link %s -> %s: %w", models.ErrFilesystem, pointer, target, err)
		}
		s.l.Info("symlink updated", map[string]any{"pointer": pointer, "target": target})
	default:
		data, err := os.ReadFile(dated)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", models.ErrFilesystem, dated, err)
		}
		if err := s.WriteFile(pointer, data); err != nil {
			return err
		}
		s.l.Info("latest copy updated", map[string]any{"pointer": pointer, "source": dated})
	}

	return nil
}
