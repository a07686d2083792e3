package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

type WatchConfig struct {
	Root     string        // input directory (not recursive, like Discover)
	Debounce time.Duration // coalesce rapid create/write bursts
}

// Watch emits a Document for every supported file created, written or renamed into
// cfg.Root until ctx is done. Both channels are closed when the watcher stops.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan entity.Document, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("watch root is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		_ = w.Close()
		logger.Error("ingest.watch.add_failed", "root", cfg.Root, "error", err)
		return nil, nil, err
	}

	docCh := make(chan entity.Document, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(docCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_failed", "error", err)
			}
		}()

		pending := map[string]struct{}{}
		timer := time.NewTimer(cfg.Debounce)
		timer.Stop()

		flush := func() bool {
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				delete(pending, p)
				doc, ok := watchable(p)
				if !ok {
					continue
				}
				select {
				case docCh <- doc:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if constants.MapExtToKind(filepath.Ext(e.Name)) == "" || IsHidden(e.Name) {
					continue
				}
				pending[e.Name] = struct{}{}
				timer.Reset(cfg.Debounce)
			case <-timer.C:
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	logger.Info("ingest.watch.started", "root", cfg.Root, "debounce", cfg.Debounce)
	return docCh, errCh, nil
}

// watchable resolves path to a Document if it still exists and is not a cached composite.
func watchable(path string) (entity.Document, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return entity.Document{}, false
	}
	doc, err := entity.NewDocument(path)
	if err != nil {
		return entity.Document{}, false
	}
	if doc.Kind == constants.IMAGE {
		for _, ext := range []string{".pdf", ".docx", ".doc"} {
			if _, err := os.Stat(filepath.Join(doc.Dir(), doc.Base+ext)); err == nil {
				return entity.Document{}, false
			}
		}
	}
	return doc, true
}
