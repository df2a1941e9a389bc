package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// Archive serves scenes from a directory of JSON files, one Scene per file.
// It implements domain.ImageryCatalog. Files that fail to decode are logged
// and skipped so one corrupt scene cannot block every analysis.
type Archive struct {
	dir    string
	logger *slog.Logger
}

// NewArchive creates a catalog over a scene directory. The directory must
// exist; scenes may be added while the service runs.
func NewArchive(dir string, logger *slog.Logger) (*Archive, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scene archive: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scene archive: %s is not a directory", dir)
	}
	return &Archive{dir: dir, logger: logger}, nil
}

// FetchCollection scans the archive for scenes matching the sensor, the
// half-open acquisition window [start, end), and the footprint. Results come
// back ordered ascending by acquisition time, ties broken by scene id, so the
// mosaicker's scan order is reproducible.
func (a *Archive) FetchCollection(ctx context.Context, sensor string, start, end time.Time, aoi domain.AreaOfInterest) (domain.ImageCollection, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "*.json"))
	if err != nil {
		return domain.ImageCollection{}, fmt.Errorf("scan scene archive: %w", err)
	}
	sort.Strings(paths)

	var scenes []domain.Scene
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return domain.ImageCollection{}, err
		}
		scene, err := readScene(path)
		if err != nil {
			a.logger.Warn("skipping unreadable scene", "path", path, "error", err)
			continue
		}
		if scene.Sensor != sensor {
			continue
		}
		if scene.AcquiredAt.Before(start) || !scene.AcquiredAt.Before(end) {
			continue
		}
		if !aoi.Overlaps(scene.Grid) {
			continue
		}
		scenes = append(scenes, scene)
	}

	sort.Slice(scenes, func(i, j int) bool {
		if !scenes[i].AcquiredAt.Equal(scenes[j].AcquiredAt) {
			return scenes[i].AcquiredAt.Before(scenes[j].AcquiredAt)
		}
		return scenes[i].ID < scenes[j].ID
	})

	return domain.ImageCollection{
		Sensor: sensor,
		Start:  start,
		End:    end,
		Scenes: scenes,
	}, nil
}

func readScene(path string) (domain.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Scene{}, err
	}
	var scene domain.Scene
	if err := json.Unmarshal(data, &scene); err != nil {
		return domain.Scene{}, err
	}
	if scene.ID == "" {
		return domain.Scene{}, fmt.Errorf("scene has no id")
	}
	if scene.Grid.Pixels() <= 0 {
		return domain.Scene{}, fmt.Errorf("scene %s has a degenerate grid", scene.ID)
	}
	return scene, nil
}
