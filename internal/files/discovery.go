package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered source file
type FileInfo struct {
	Path     string
	Name     string
	SourceID string
	Size     int64
	ModTime  time.Time
}

// Discovery provides source-file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if dir == "" || dir == "." {
		return d.basePath
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindSourceFiles finds all spreadsheet and CSV source files in the
// specified directory, sorted lexicographically by name. Source order in
// the merged table follows this ordering.
func (d *Discovery) FindSourceFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

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
		if !hasSourceExtension(name) {
			continue
		}
		// Excel lock files start with "~$"
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:     filepath.Join(fullPath, name),
			Name:     name,
			SourceID: SourceIDFromFilename(name),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindExcelFiles finds all Excel files in the specified directory
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	files, err := d.FindSourceFiles(dir)
	if err != nil {
		return nil, err
	}

	var excel []FileInfo
	for _, f := range files {
		if IsExcel(f.Name) {
			excel = append(excel, f)
		}
	}
	return excel, nil
}

// FindCSVFiles finds all CSV files in the specified directory
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	files, err := d.FindSourceFiles(dir)
	if err != nil {
		return nil, err
	}

	var csvs []FileInfo
	for _, f := range files {
		if IsCSV(f.Name) {
			csvs = append(csvs, f)
		}
	}
	return csvs, nil
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	searchPattern := filepath.Join(fullPath, pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}

		name := filepath.Base(match)
		files = append(files, FileInfo{
			Path:     match,
			Name:     name,
			SourceID: SourceIDFromFilename(name),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// SourceIDFromFilename derives the agent identifier from a source
// filename: the portion before the first "-", trimmed, with the
// extension stripped when no separator is present.
func SourceIDFromFilename(name string) string {
	base := name
	if idx := strings.Index(base, "-"); idx >= 0 {
		base = base[:idx]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSpace(base)
}

// IsExcel reports whether the filename has a spreadsheet extension.
func IsExcel(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}

// IsCSV reports whether the filename has a CSV extension.
func IsCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

func hasSourceExtension(name string) bool {
	return IsExcel(name) || IsCSV(name)
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
