// Package shell provides the node that runs a local command.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

var ErrCommandRequired = errors.New("command is required")

// ShellNode runs command with args in workDir. A non-zero exit code is reported in the output
// rather than failing the node.
type ShellNode struct{}

func NewShellNode() *ShellNode {
	return &ShellNode{}
}

func (n *ShellNode) Handle(ctx context.Context, in protocol.Input) (any, error) {
	command := nodeconfig.String(in.Data, "command", "")
	if command == "" {
		return nil, ErrCommandRequired
	}

	args := arguments(in.Data["args"])
	workDir := nodeconfig.String(in.Data, "workDir", "")

	in.Logf(models.LogLevelInfo, strings.TrimSpace("Command: "+command+" "+strings.Join(args, " ")))

	if workDir != "" {
		in.Logf(models.LogLevelInfo, "Working dir: "+workDir)
	}

	if timeout := nodeconfig.Int(in.Data, "timeout", 0); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("failed to run command: %w", err)
		}

		exitCode = exitErr.ExitCode()
	}

	level := models.LogLevelSuccess
	if exitCode != 0 {
		level = models.LogLevelWarn
	}

	in.Logf(level, fmt.Sprintf("Exit code: %d", exitCode))

	return map[string]any{
		"output":   stdout.String(),
		"stderr":   stderr.String(),
		"exitCode": exitCode,
		"success":  exitCode == 0,
	}, nil
}

// arguments accepts a list or a whitespace separated string.
func arguments(value any) []string {
	if list := nodeconfig.List(value); list != nil {
		args := make([]string, 0, len(list))
		for _, item := range list {
			args = append(args, fmt.Sprint(item))
		}

		return args
	}

	if text, ok := value.(string); ok {
		return strings.Fields(text)
	}

	return nil
}
