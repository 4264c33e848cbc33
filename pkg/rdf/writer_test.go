package rdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

func TestWriteOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.rdf")
	w := NewWriter(path, nil)

	n, err := w.Write([]types.Statement{
		types.Literal("j_1", "title", "A v B"),
		types.Ref("j_1", "cites", "j_2"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `<j_1> <title> "A v B" .`, lines[0])
	assert.Equal(t, `<j_1> <cites> <j_2> .`, lines[1])

	// A second overwrite run replaces the content entirely.
	_, err = w.Write([]types.Statement{types.Literal("j_3", "title", "X")}, false)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "A v B")
}

func TestWriteAppendAddsMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.rdf")
	w := NewWriter(path, nil)

	_, err := w.Write([]types.Statement{types.Literal("j_1", "title", "A v B")}, false)
	require.NoError(t, err)
	_, err = w.Write([]types.Statement{types.Literal("j_2", "title", "C v D")}, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"A v B"`)
	assert.Contains(t, content, `"C v D"`)
	assert.Contains(t, content, "# === Incremental update:")
	assert.Less(t, strings.Index(content, "A v B"), strings.Index(content, "# ==="))
}

func TestEscapedLiteralWrittenVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.rdf")
	w := NewWriter(path, nil)

	_, err := w.Write([]types.Statement{types.Literal("j_1", "title", `The \"Special\" Bench`)}, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"The \"Special\" Bench"`)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.rdf")
	w := NewWriter(path, nil)

	_, err := w.Write([]types.Statement{types.Literal("j_1", "title", "A v B")}, false)
	require.NoError(t, err)

	backup, err := w.Backup()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(backup), "out_backup_"))
	assert.True(t, strings.HasSuffix(backup, ".rdf"))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "original should be moved aside")
	_, err = os.Stat(backup)
	assert.NoError(t, err)
}

func TestBackupMissingFile(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "never-written.rdf"), nil)
	backup, err := w.Backup()
	require.NoError(t, err)
	assert.Empty(t, backup)
}
