// Package file provides the nodes that read and manipulate files on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
)

var (
	ErrPathRequired   = errors.New("path is required")
	ErrSourceRequired = errors.New("source and destination are required")
	ErrFileExists     = errors.New("file already exists and overwrite is false")
)

const (
	dirPerm  = os.FileMode(0o755)
	filePerm = os.FileMode(0o644)
)

// ReadNode returns the content of path as text.
type ReadNode struct{}

func NewReadNode() *ReadNode {
	return &ReadNode{}
}

func (n *ReadNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	path := nodeconfig.String(in.Data, "path", "")
	if path == "" {
		return nil, ErrPathRequired
	}

	in.Logf(models.LogLevelInfo, "Reading file: "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	in.Logf(models.LogLevelSuccess, fmt.Sprintf("Read %d bytes", len(data)))

	return string(data), nil
}

// WriteNode writes content to path, creating parent directories. It serves both
// action_file_write and output_file.
type WriteNode struct {
	nodeType models.NodeType
}

func NewWriteNode(nodeType models.NodeType) *WriteNode {
	return &WriteNode{nodeType: nodeType}
}

func (n *WriteNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	path := nodeconfig.String(in.Data, "path", "")
	if path == "" {
		return nil, ErrPathRequired
	}

	content, err := contentOf(in.Data["content"])
	if err != nil {
		return nil, err
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("Writing to: %s (%d bytes)", path, len(content)))

	if !nodeconfig.Bool(in.Data, "overwrite", true) {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if nodeconfig.Bool(in.Data, "append", false) {
		err = appendFile(path, content)
	} else {
		err = os.WriteFile(path, []byte(content), filePerm)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return map[string]any{"success": true, "path": path}, nil
}

// contentOf renders non-text content as indented JSON.
func contentOf(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return template.MarshalIndent(v)
	}
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)

	return err
}

// DeleteNode removes path.
type DeleteNode struct{}

func NewDeleteNode() *DeleteNode {
	return &DeleteNode{}
}

func (n *DeleteNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	path := nodeconfig.String(in.Data, "path", "")
	if path == "" {
		return nil, ErrPathRequired
	}

	in.Logf(models.LogLevelInfo, "Deleting: "+path)

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	return map[string]any{"success": true, "path": path}, nil
}

// CopyNode copies source to destination. With move set, the source is removed afterwards.
type CopyNode struct {
	move bool
}

func NewCopyNode() *CopyNode {
	return &CopyNode{}
}

func NewMoveNode() *CopyNode {
	return &CopyNode{move: true}
}

func (n *CopyNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	source := nodeconfig.String(in.Data, "source", "")
	destination := nodeconfig.String(in.Data, "destination", "")

	if source == "" || destination == "" {
		return nil, ErrSourceRequired
	}

	verb := "Copying"
	if n.move {
		verb = "Moving"
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("%s: %s -> %s", verb, source, destination))

	if err := copyFile(source, destination); err != nil {
		return nil, err
	}

	if n.move {
		if err := os.Remove(source); err != nil {
			return nil, fmt.Errorf("failed to remove source: %w", err)
		}
	}

	return map[string]any{"success": true, "source": source, "destination": destination}, nil
}

func copyFile(source, destination string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), dirPerm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.WriteFile(destination, data, filePerm); err != nil {
		return fmt.Errorf("failed to write destination: %w", err)
	}

	return nil
}
