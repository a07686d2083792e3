package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

func resume(t *testing.T) entity.Document {
	t.Helper()
	d, err := entity.NewDocument(filepath.Join("input_files", "john.pdf"))
	require.NoError(t, err)
	return d
}

func TestDestination(t *testing.T) {
	g := NewGate("extracted_json", constants.ModeDefault, nil)
	assert.Equal(t, filepath.Join("extracted_json", "john_extracted_info.json"), g.Destination(resume(t)))
}

func TestGateModes(t *testing.T) {
	cases := []struct {
		name     string
		mode     constants.RunMode
		existing bool
		want     Decision
		content  string
	}{
		{"missing/default", constants.ModeDefault, false, DecisionWrite, "new"},
		{"missing/write-new", constants.ModeWriteNew, false, DecisionWrite, "new"},
		{"missing/write-all", constants.ModeWriteAll, false, DecisionWrite, "new"},
		{"exists/write-all", constants.ModeWriteAll, true, DecisionOverwrite, "new"},
		{"exists/write-new", constants.ModeWriteNew, true, DecisionSkip, "old"},
		{"exists/default", constants.ModeDefault, true, DecisionSkip, "old"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			g := NewGate(dir, tc.mode, nil)
			doc := resume(t)
			if tc.existing {
				require.NoError(t, os.WriteFile(g.Destination(doc), []byte("old"), 0o644))
			}

			assert.Equal(t, tc.want, g.Decide(doc))
			d, dest, err := g.Write(doc, "new")
			require.NoError(t, err)
			assert.Equal(t, tc.want, d)

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tc.content, string(got))
		})
	}
}

func TestWriteStoresPayloadVerbatim(t *testing.T) {
	g := NewGate(t.TempDir(), constants.ModeDefault, nil)
	payload := "```json\n{\"Name\": \"John\"}\n```"

	_, dest, err := g.Write(resume(t), payload)
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestWriteFailure(t *testing.T) {
	g := NewGate(filepath.Join(t.TempDir(), "missing", "dir"), constants.ModeDefault, nil)

	_, _, err := g.Write(resume(t), "{}")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrWriteFailed)
	assert.Equal(t, common.CodeWriteFailed, common.Classify(err))
}

func TestPrepareCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	g := NewGate(dir, "", nil)
	require.NoError(t, g.Prepare())
	assert.DirExists(t, dir)
	assert.Equal(t, constants.ModeDefault, g.Mode())
}
