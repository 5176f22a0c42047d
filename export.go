package spacetraveling

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirWriter exports pages as static files under Dir. A path ending in "/"
// is written as its index.html, so /post/x/ becomes post/x/index.html.
type DirWriter struct {
	Dir string
}

// WritePages writes every page below Dir. Files of earlier builds are
// overwritten but not removed.
func (w DirWriter) WritePages(ctx context.Context, pages []Page) error {
	root, err := filepath.Abs(w.Dir)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		full, err := exportPath(root, p.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, p.Body, 0o644); err != nil {
			return fmt.Errorf("export %s: %w", p.Path, err)
		}
	}
	return nil
}

func exportPath(root, path string) (string, error) {
	rel := strings.TrimPrefix(path, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("export %s: path escapes %s", path, root)
	}
	return full, nil
}
