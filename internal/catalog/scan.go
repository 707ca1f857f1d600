package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelmgr/internal/common/fsutil"
)

// ScanDownloaded reports which catalog entries already have their bytes in
// dir, keyed by catalog key. Files are matched by the entry's File name;
// partial downloads (*.part) do not count.
func (c *Catalog) ScanDownloaded(dir string) (map[string]bool, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".part") {
			continue
		}
		present[name] = true
	}
	out := make(map[string]bool, len(c.models))
	for _, m := range c.models {
		out[m.Key] = present[m.File]
	}
	return out, nil
}
