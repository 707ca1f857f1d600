package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"modelmgr/internal/catalog"
	"modelmgr/internal/common/fsutil"
	"modelmgr/internal/manager"
)

// LocalLister derives the host model listing from the catalog and the
// models directory: host IDs equal catalog keys, and a model counts as
// downloaded when its file is present.
type LocalLister struct {
	dir string
	cat *catalog.Catalog
}

// NewLocalLister builds a lister over dir.
func NewLocalLister(dir string, cat *catalog.Catalog) (*LocalLister, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	return &LocalLister{dir: base, cat: cat}, nil
}

// ListAvailableModels implements manager.ModelLister.
func (l *LocalLister) ListAvailableModels(ctx context.Context) ([]manager.ListedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	downloaded, err := l.cat.ScanDownloaded(l.dir)
	if err != nil {
		return nil, err
	}
	models := l.cat.Models()
	out := make([]manager.ListedModel, 0, len(models))
	for _, m := range models {
		out = append(out, manager.ListedModel{
			ID:           m.Key,
			DisplayName:  m.Name,
			IsDownloaded: downloaded[m.Key],
		})
	}
	return out, nil
}

// FileLoader is the default load collaborator: it verifies the model bytes
// exist and are non-empty. It stands in for an inference engine, which
// plugs in behind manager.Loader.
type FileLoader struct {
	dir string
	cat *catalog.Catalog
}

// NewFileLoader builds a loader over dir.
func NewFileLoader(dir string, cat *catalog.Catalog) (*FileLoader, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	return &FileLoader{dir: base, cat: cat}, nil
}

// Load implements manager.Loader.
func (l *FileLoader) Load(ctx context.Context, modelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	mdl, ok := l.cat.Lookup(modelID)
	if !ok {
		return false, fmt.Errorf("unknown model %q", modelID)
	}
	fi, err := os.Stat(filepath.Join(l.dir, mdl.File))
	if err != nil {
		return false, err
	}
	if fi.Size() == 0 {
		return false, nil
	}
	return true, nil
}
