package fixture

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source enumerates fixtures. Order is significant: the runner processes
// fixtures in the order a Source returns them.
type Source interface {
	Files(ctx context.Context) ([]File, error)
}

// DirSource walks a directory tree in lexical order.
// Names are slash-separated paths relative to Root.
type DirSource struct {
	Root string

	// Filter is an optional glob matched against the base name without
	// extension (e.g. "paste-*").
	Filter string

	// Exts limits the walk to these extensions (with dot). Empty means all.
	Exts []string
}

// Files implements Source.
func (s DirSource) Files(ctx context.Context) ([]File, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, &EnumerationError{Source: s.Root, Err: err}
	}
	if !info.IsDir() {
		return nil, &EnumerationError{Source: s.Root, Err: fmt.Errorf("not a directory")}
	}

	var files []File
	err = filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !s.wantExt(path) {
			return nil
		}

		ok, err := s.matches(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fixture: %w", err)
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		files = append(files, File{Name: filepath.ToSlash(rel), Text: string(data)})
		return nil
	})
	if err != nil {
		return nil, &EnumerationError{Source: s.Root, Err: err}
	}

	return files, nil
}

func (s DirSource) wantExt(path string) bool {
	if len(s.Exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range s.Exts {
		if ext == want {
			return true
		}
	}
	return false
}

func (s DirSource) matches(path string) (bool, error) {
	if s.Filter == "" {
		return true, nil
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	matched, err := filepath.Match(s.Filter, name)
	if err != nil {
		return false, fmt.Errorf("invalid filter pattern: %w", err)
	}
	return matched, nil
}

// ListSource reads an explicit list of paths in declaration order.
// Relative paths are resolved against Base; names keep the declared form.
type ListSource struct {
	Base  string
	Paths []string
}

// Files implements Source.
func (s ListSource) Files(ctx context.Context) ([]File, error) {
	files := make([]File, 0, len(s.Paths))
	for _, p := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, &EnumerationError{Source: "fixture list", Err: err}
		}
		resolved := p
		if !filepath.IsAbs(p) && s.Base != "" {
			resolved = filepath.Join(s.Base, p)
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, &EnumerationError{Source: "fixture list", Err: fmt.Errorf("read %s: %w", p, err)}
		}
		files = append(files, File{Name: filepath.ToSlash(p), Text: string(data)})
	}
	return files, nil
}

// StaticSource serves in-memory fixtures.
type StaticSource []File

// Files implements Source.
func (s StaticSource) Files(context.Context) ([]File, error) {
	return append([]File(nil), s...), nil
}
