package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// Decision is the gate's verdict for one document.
type Decision string

const (
	DecisionWrite     Decision = "write"     // destination missing
	DecisionOverwrite Decision = "overwrite" // destination exists, write-all
	DecisionSkip      Decision = "skip"      // destination exists, already handled
)

// Proceed reports whether the decision leads to a write.
func (d Decision) Proceed() bool { return d != DecisionSkip }

// Gate decides whether a document's structured output is written, and writes it.
// The payload is stored as received and never inspected.
type Gate struct {
	dir    string
	mode   constants.RunMode
	logger *slog.Logger
}

func NewGate(dir string, mode constants.RunMode, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = constants.ModeDefault
	}
	return &Gate{dir: dir, mode: mode, logger: logger}
}

// Prepare creates the output directory if needed.
func (g *Gate) Prepare() error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return common.NewAppError(common.CodeWriteFailed, "create output dir "+g.dir, fmt.Errorf("%w: %v", common.ErrWriteFailed, err))
	}
	return nil
}

func (g *Gate) Mode() constants.RunMode { return g.mode }

// Destination is the output record path for doc.
func (g *Gate) Destination(doc entity.Document) string {
	return filepath.Join(g.dir, doc.OutputName())
}

// Decide applies the run mode to the current state of the destination.
func (g *Gate) Decide(doc entity.Document) Decision {
	return decide(exists(g.Destination(doc)), g.mode)
}

func decide(exists bool, mode constants.RunMode) Decision {
	switch {
	case !exists:
		return DecisionWrite
	case mode == constants.ModeWriteAll:
		return DecisionOverwrite
	default:
		// write-new and default both leave existing records alone
		return DecisionSkip
	}
}

// Write re-checks the gate and, unless the document is already handled, stores payload
// in a single full-content write.
func (g *Gate) Write(doc entity.Document, payload string) (Decision, string, error) {
	dest := g.Destination(doc)
	d := g.Decide(doc)

	switch d {
	case DecisionSkip:
		g.logger.Info("output.skip", "doc", doc.Name, "path", dest, "mode", g.mode, "reason", "already handled")
		return d, dest, nil
	case DecisionOverwrite:
		g.logger.Info("output.overwrite", "doc", doc.Name, "path", dest)
	default:
		g.logger.Info("output.write", "doc", doc.Name, "path", dest)
	}

	if err := os.WriteFile(dest, []byte(payload), 0o644); err != nil {
		g.logger.Error("output.write_failed", "doc", doc.Name, "path", dest, "error", err)
		return d, dest, common.NewAppError(common.CodeWriteFailed, dest, fmt.Errorf("%w: %v", common.ErrWriteFailed, err))
	}
	return d, dest, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
