package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pactlint/pactlint/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"bin":          true,
	"testdata":     true,
}

// FileScanner implements domain.ProjectScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

func (s *FileScanner) Scan(projectPath string, excludePaths ...string) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	// Merge extra excludes with built-in skip dirs. Excludes match either a
	// directory name or a root-relative prefix.
	extraSkip := make(map[string]bool, len(excludePaths))
	var prefixSkip []string
	for _, p := range excludePaths {
		p = strings.TrimSuffix(p, "/")
		if strings.Contains(p, "/") {
			prefixSkip = append(prefixSkip, p+"/")
			extraSkip[p] = true
			continue
		}
		extraSkip[p] = true
	}

	result := &domain.ScanResult{
		RootPath: absPath,
	}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[relPath] {
				return filepath.SkipDir
			}
			return nil
		}

		for _, prefix := range prefixSkip {
			if strings.HasPrefix(relPath, prefix) {
				return nil
			}
		}

		result.AllFiles = append(result.AllFiles, relPath)

		if d.Name() == "go.mod" && filepath.Dir(relPath) == "." {
			result.HasGoMod = true
		}

		if strings.HasSuffix(d.Name(), ".go") && !strings.HasSuffix(d.Name(), "_test.go") {
			result.GoFiles = append(result.GoFiles, relPath)
		}

		return nil
	})

	return result, err
}
