package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"weather-snapshot/internal/models"
)

const dateLayout = "20060102"

// Paths holds the output locations of one run.
type Paths struct {
	Dir        string
	DatedJSON  string
	DatedPNG   string
	LatestJSON string
	LatestPNG  string
}

// BuildPaths depends only on its arguments: runs on the same calendar day share
// their dated names.
func BuildPaths(dir string, date time.Time, latestJSON, latestPNG string) Paths {
	stamp := date.Format(dateLayout)

	return Paths{
		Dir:        dir,
		DatedJSON:  filepath.Join(dir, stamp+".json"),
		DatedPNG:   filepath.Join(dir, stamp+".png"),
		LatestJSON: filepath.Join(dir, latestJSON),
		LatestPNG:  filepath.Join(dir, latestPNG),
	}
}

func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output directory %s: %w", models.ErrFilesystem, dir, err)
	}
	return nil
}
