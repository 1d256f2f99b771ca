package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dev-loop1/partial-week-converter/internal/exporter"
	"github.com/dev-loop1/partial-week-converter/internal/validation"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds convertible inputs in a directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInputs lists the workbooks and CSV files directly inside dir, sorted by name.
// Office lock files (~$name.xlsx), empty files and earlier conversion outputs are skipped.
func (d *Discovery) FindInputs(dir string) ([]FileInfo, error) {
	return d.find(dir, func(name string) bool {
		return validation.IsWorkbookName(name) || validation.IsCSVName(name)
	})
}

func (d *Discovery) find(dir string, match func(name string) bool) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if validation.IsLockFileName(name) || exporter.IsOutputName(name) || !match(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}
