// Package log provides the log and notification nodes.
package log

import (
	"context"
	"log/slog"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

var logLevels = map[string]models.LogLevel{
	"info":    models.LogLevelInfo,
	"success": models.LogLevelSuccess,
	"warn":    models.LogLevelWarn,
	"error":   models.LogLevelError,
}

var slogLevels = map[models.LogLevel]slog.Level{
	models.LogLevelInfo:    slog.LevelInfo,
	models.LogLevelSuccess: slog.LevelInfo,
	models.LogLevelWarn:    slog.LevelWarn,
	models.LogLevelError:   slog.LevelError,
}

// LogNode writes its message to the run trace and to the process logger.
type LogNode struct {
	logger *slog.Logger
}

// NewLogNode creates the handler of action_log.
func NewLogNode(logger *slog.Logger) *LogNode {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogNode{logger: logger.With("module", "log_node")}
}

func (n *LogNode) Handle(ctx context.Context, in protocol.Input) (any, error) {
	message := nodeconfig.String(in.Data, "message", "")
	levelName := nodeconfig.String(in.Data, "level", "info")

	level, ok := logLevels[levelName]
	if !ok {
		level = models.LogLevelInfo
	}

	in.Logf(level, message)
	n.logger.Log(ctx, slogLevels[level], message, "node_id", in.NodeID)

	return map[string]any{
		"logged":  true,
		"message": message,
		"level":   levelName,
	}, nil
}

// NotificationNode delivers a titled message through the run trace.
type NotificationNode struct {
	nodeType models.NodeType
	logger   *slog.Logger
}

// NewNotificationNode creates the handler of action_notification or output_notification.
func NewNotificationNode(nodeType models.NodeType, logger *slog.Logger) *NotificationNode {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationNode{
		nodeType: nodeType,
		logger:   logger.With("module", "notification_node"),
	}
}

func (n *NotificationNode) Handle(ctx context.Context, in protocol.Input) (any, error) {
	title := nodeconfig.String(in.Data, "title", "ForgeFlow")
	message := nodeconfig.String(in.Data, "message", "")

	in.Logf(models.LogLevelInfo, "Notification: "+title)
	in.Logf(models.LogLevelInfo, message)
	n.logger.InfoContext(ctx, "Notification", "node_id", in.NodeID, "title", title, "message", message)
	in.Logf(models.LogLevelSuccess, "Notification sent")

	return map[string]any{"notified": true}, nil
}
