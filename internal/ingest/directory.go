package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// Discover lists the supported documents directly under root, grouped by kind in
// batch order (PDF, DOCX, image, DOC) and in directory order within a group.
// A .jpg that shares its base name with a PDF or office document is that document's
// cached composite and is not treated as an input.
func Discover(root string, logger *slog.Logger) ([]entity.Document, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, common.NewAppError(common.CodeConfig, "input directory is required", common.ErrInvalidInput)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, stats, common.WrapError(err, "read input dir")
	}

	groups := map[constants.DocumentKind][]entity.Document{}
	sourceBases := map[string]struct{}{}
	for _, e := range entries {
		if e.IsDir() || IsHidden(e.Name()) {
			continue
		}
		stats.Scanned++
		doc, err := entity.NewDocument(filepath.Join(root, e.Name()))
		if err != nil {
			stats.Unsupported++
			logger.Debug("ingest.unsupported", "file", e.Name())
			continue
		}
		groups[doc.Kind] = append(groups[doc.Kind], doc)
		if doc.Kind != constants.IMAGE {
			sourceBases[doc.Base] = struct{}{}
		}
	}

	var docs []entity.Document
	for _, kind := range constants.Kinds {
		for _, doc := range groups[kind] {
			if isComposite(doc, sourceBases) {
				stats.Composites++
				logger.Debug("ingest.composite_skipped", "file", doc.Name)
				continue
			}
			stats.Matched++
			docs = append(docs, doc)
		}
	}

	logger.Info("ingest.discovered",
		"dir", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"unsupported", stats.Unsupported,
		"composites", stats.Composites,
	)
	return docs, stats, nil
}

// Single resolves one named file under root for single-file mode.
func Single(root, name string) (entity.Document, error) {
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return entity.Document{}, common.NewAppError(common.CodeConfig,
			fmt.Sprintf("file %q not found in %q", name, root), common.ErrInvalidInput)
	}
	if err != nil {
		return entity.Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return entity.Document{}, common.NewAppError(common.CodeConfig, path+" is a directory", common.ErrInvalidInput)
	}
	doc, err := entity.NewDocument(path)
	if err != nil {
		return entity.Document{}, common.NewAppError(common.CodeUnsupported, name, err)
	}
	return doc, nil
}

func isComposite(doc entity.Document, sourceBases map[string]struct{}) bool {
	if doc.Kind != constants.IMAGE || !strings.EqualFold(filepath.Ext(doc.Name), constants.CompositeExt) {
		return false
	}
	_, ok := sourceBases[doc.Base]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
