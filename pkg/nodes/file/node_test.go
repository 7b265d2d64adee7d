package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, h protocol.Handler, data map[string]any) (any, error) {
	t.Helper()

	return h.Handle(context.Background(), protocol.Input{Data: data})
}

func TestWriteAndReadNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	out, err := handle(t, NewWriteNode(models.NodeTypeActionFileWrite), map[string]any{
		"path":    path,
		"content": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"success": true, "path": path}, out)

	_, err = handle(t, NewWriteNode(models.NodeTypeActionFileWrite), map[string]any{
		"path":    path,
		"content": " world",
		"append":  true,
	})
	require.NoError(t, err)

	content, err := handle(t, NewReadNode(), map[string]any{"path": path})
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)
}

func TestWriteNode_StructuredContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	_, err := handle(t, NewWriteNode(models.NodeTypeOutputFile), map[string]any{
		"path":    path,
		"content": map[string]any{"a": 1.0},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(data))
}

func TestWriteNode_NoOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	_, err := handle(t, NewWriteNode(models.NodeTypeActionFileWrite), map[string]any{
		"path":      path,
		"content":   "new",
		"overwrite": false,
	})
	require.ErrorIs(t, err, ErrFileExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestCopyMoveDelete(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.txt")
	copied := filepath.Join(dir, "copy", "b.txt")
	moved := filepath.Join(dir, "c.txt")

	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	out, err := handle(t, NewCopyNode(), map[string]any{"source": source, "destination": copied})
	require.NoError(t, err)
	assert.Equal(t, true, out.(map[string]any)["success"])
	assert.FileExists(t, source)
	assert.FileExists(t, copied)

	_, err = handle(t, NewMoveNode(), map[string]any{"source": copied, "destination": moved})
	require.NoError(t, err)
	assert.NoFileExists(t, copied)
	assert.FileExists(t, moved)

	_, err = handle(t, NewDeleteNode(), map[string]any{"path": moved})
	require.NoError(t, err)
	assert.NoFileExists(t, moved)
}

func TestFileNodes_Errors(t *testing.T) {
	_, err := handle(t, NewReadNode(), map[string]any{})
	require.ErrorIs(t, err, ErrPathRequired)

	_, err = handle(t, NewReadNode(), map[string]any{"path": filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)

	_, err = handle(t, NewCopyNode(), map[string]any{"source": "a"})
	require.ErrorIs(t, err, ErrSourceRequired)

	_, err = handle(t, NewDeleteNode(), map[string]any{"path": filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}
