// Package download provides the default local collaborators for the
// lifecycle manager: an HTTP downloader that streams model bytes into the
// models directory with progress reporting, plus a filesystem-backed model
// lister and loader. A real inference engine can replace the loader without
// touching the orchestrator.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"modelmgr/internal/catalog"
	"modelmgr/internal/common/fsutil"
)

// copyBufSize is the transfer chunk size; progress is reported per chunk.
const copyBufSize = 1 << 20

// HTTPDownloader fetches catalog models over HTTP into a directory. Bytes
// are written to <file>.part and renamed on completion, so an interrupted
// transfer never counts as downloaded.
type HTTPDownloader struct {
	dir    string
	cat    *catalog.Catalog
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPDownloader builds a downloader writing into dir.
func NewHTTPDownloader(dir string, cat *catalog.Catalog, log zerolog.Logger) (*HTTPDownloader, error) {
	base, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &HTTPDownloader{
		dir: base,
		cat: cat,
		client: &http.Client{
			// No overall timeout: model files are multi-GB. Cancellation
			// comes from ctx.
			Timeout: 0,
		},
		log: log,
	}, nil
}

// Download streams the model's bytes to disk, invoking progress with the
// byte ratio in [0,1] as chunks arrive. In the default wiring the host model
// ID is the catalog key.
func (d *HTTPDownloader) Download(ctx context.Context, modelID string, progress func(float64)) error {
	mdl, ok := d.cat.Lookup(modelID)
	if !ok {
		return fmt.Errorf("unknown model %q", modelID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mdl.URL, nil)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", modelID, resp.Status)
	}

	final := filepath.Join(d.dir, mdl.File)
	part := final + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}

	total := resp.ContentLength
	var written int64
	buf := make([]byte, copyBufSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(part)
				return werr
			}
			written += int64(n)
			if total > 0 && progress != nil {
				progress(float64(written) / float64(total))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			os.Remove(part)
			return rerr
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(part)
		return err
	}
	if err := os.Rename(part, final); err != nil {
		os.Remove(part)
		return err
	}
	if progress != nil {
		progress(1)
	}
	d.log.Info().
		Str("model", modelID).
		Int64("bytes", written).
		Dur("dur", time.Since(start)).
		Msg("download complete")
	return nil
}
