package registry

import (
	"net/http"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/collection"
	"github.com/forgeflow/forgeflow/pkg/nodes/conditional"
	"github.com/forgeflow/forgeflow/pkg/nodes/delay"
	"github.com/forgeflow/forgeflow/pkg/nodes/file"
	"github.com/forgeflow/forgeflow/pkg/nodes/httprequest"
	"github.com/forgeflow/forgeflow/pkg/nodes/log"
	"github.com/forgeflow/forgeflow/pkg/nodes/loop"
	"github.com/forgeflow/forgeflow/pkg/nodes/merge"
	"github.com/forgeflow/forgeflow/pkg/nodes/output"
	"github.com/forgeflow/forgeflow/pkg/nodes/shell"
	switchnode "github.com/forgeflow/forgeflow/pkg/nodes/switch"
	"github.com/forgeflow/forgeflow/pkg/nodes/text"
	"github.com/forgeflow/forgeflow/pkg/nodes/transform"
	"github.com/forgeflow/forgeflow/pkg/nodes/trigger"
	"github.com/forgeflow/forgeflow/pkg/nodes/variable"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

// DefaultNodes returns every built-in handler. The ai_* types, action_clipboard_write and
// action_open_url have no built-in handler and must be registered by the embedding program.
func DefaultNodes(client *http.Client) []protocol.NodeHandler {
	return []protocol.NodeHandler{
		// Triggers
		trigger.NewManualTriggerNode(),
		trigger.NewScheduleTriggerNode(),
		trigger.NewWebhookTriggerNode(),
		trigger.NewFileWatchTriggerNode(),
		trigger.NewQueueTriggerNode(),

		// Conditions
		conditional.NewConditionalNode(),
		switchnode.NewSwitchNode(),

		// Actions
		httprequest.NewHTTPRequestNode(client),
		file.NewReadNode(),
		file.NewWriteNode(models.NodeTypeActionFileWrite),
		file.NewDeleteNode(),
		file.NewCopyNode(),
		file.NewMoveNode(),
		shell.NewShellNode(),
		delay.NewDelayNode(),
		variable.NewSetVariableNode(),
		transform.NewJSONParseNode(),
		transform.NewJSONStringifyNode(),
		transform.NewTemplateNode(),
		transform.NewRegexNode(),
		transform.NewMathNode(),

		// Loops
		loop.NewForEachNode(),
		loop.NewRepeatNode(),
		loop.NewWhileNode(),

		// Utilities
		text.NewStringNode(),
		text.NewGenerateNode(),
		collection.NewArrayNode(),
		collection.NewFieldNode(),
		merge.NewMergeNode(),

		// Outputs
		file.NewWriteNode(models.NodeTypeOutputFile),
		output.NewHTTPResponseNode(),
	}
}

// RegisterDefaultNodes registers all built-in handlers with the default HTTP client.
func (r *Registry) RegisterDefaultNodes() error {
	return r.RegisterBuiltins(nil)
}

// RegisterBuiltins registers all built-in handlers. HTTP nodes use client when it is not nil.
// The log and notification nodes write through the logger the registry was created with.
func (r *Registry) RegisterBuiltins(client *http.Client) error {
	handlers := DefaultNodes(client)
	handlers = append(handlers,
		log.NewLogNode(r.base),
		log.NewNotificationNode(models.NodeTypeActionNotification, r.base),
		log.NewNotificationNode(models.NodeTypeOutputNotification, r.base),
	)

	for _, handler := range handlers {
		if err := r.RegisterNode(handler); err != nil {
			return err
		}
	}

	r.logger.Debug("Registered built-in nodes", "count", len(handlers))

	return nil
}
