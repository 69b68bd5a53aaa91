package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// DiscoverSTEPFiles walks the directory tree rooted at root and returns every
// .stp/.step file, sorted by path. Hidden directories are skipped.
func DiscoverSTEPFiles(root string, recursive bool) ([]domain.StepFile, error) {
	var files []domain.StepFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				// root itself is unreadable
				return err
			}
			// Skip directories we can't access
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !domain.IsSTEPFile(path) {
			return nil
		}

		files = append(files, domain.StepFile{
			Name:   relName(root, path),
			Path:   path,
			Status: domain.StatusPending,
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func relName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return rel
}
