package models

import "strings"

// NodeType identifies the handler a node dispatches to. The set of node types is closed:
// every valid value is declared below and listed by NodeTypes.
type NodeType string

const (
	NodeTypeTriggerManual    NodeType = "trigger_manual"
	NodeTypeTriggerSchedule  NodeType = "trigger_schedule"
	NodeTypeTriggerWebhook   NodeType = "trigger_webhook"
	NodeTypeTriggerFileWatch NodeType = "trigger_file_watch"
	NodeTypeTriggerQueue     NodeType = "trigger_queue"

	NodeTypeConditionIf     NodeType = "condition_if"
	NodeTypeConditionSwitch NodeType = "condition_switch"

	NodeTypeActionHTTP           NodeType = "action_http"
	NodeTypeActionFileRead       NodeType = "action_file_read"
	NodeTypeActionFileWrite      NodeType = "action_file_write"
	NodeTypeActionFileDelete     NodeType = "action_file_delete"
	NodeTypeActionFileCopy       NodeType = "action_file_copy"
	NodeTypeActionFileMove       NodeType = "action_file_move"
	NodeTypeActionShell          NodeType = "action_shell"
	NodeTypeActionNotification   NodeType = "action_notification"
	NodeTypeActionDelay          NodeType = "action_delay"
	NodeTypeActionSetVariable    NodeType = "action_set_variable"
	NodeTypeActionClipboardWrite NodeType = "action_clipboard_write"
	NodeTypeActionOpenURL        NodeType = "action_open_url"
	NodeTypeActionJSONParse      NodeType = "action_json_parse"
	NodeTypeActionJSONStringify  NodeType = "action_json_stringify"
	NodeTypeActionTemplate       NodeType = "action_template"
	NodeTypeActionRegex          NodeType = "action_regex"
	NodeTypeActionMath           NodeType = "action_math"
	NodeTypeActionLog            NodeType = "action_log"

	NodeTypeAISummarize NodeType = "ai_summarize"
	NodeTypeAIClassify  NodeType = "ai_classify"
	NodeTypeAIExtract   NodeType = "ai_extract"
	NodeTypeAIGenerate  NodeType = "ai_generate"

	NodeTypeLoopForEach NodeType = "loop_foreach"
	NodeTypeLoopRepeat  NodeType = "loop_repeat"
	NodeTypeLoopWhile   NodeType = "loop_while"

	NodeTypeUtilString   NodeType = "util_string"
	NodeTypeUtilArray    NodeType = "util_array"
	NodeTypeUtilField    NodeType = "util_field"
	NodeTypeUtilMerge    NodeType = "util_merge"
	NodeTypeUtilGenerate NodeType = "util_generate"

	NodeTypeOutputFile         NodeType = "output_file"
	NodeTypeOutputHTTP         NodeType = "output_http"
	NodeTypeOutputNotification NodeType = "output_notification"
)

var nodeTypes = []NodeType{
	NodeTypeTriggerManual,
	NodeTypeTriggerSchedule,
	NodeTypeTriggerWebhook,
	NodeTypeTriggerFileWatch,
	NodeTypeTriggerQueue,
	NodeTypeConditionIf,
	NodeTypeConditionSwitch,
	NodeTypeActionHTTP,
	NodeTypeActionFileRead,
	NodeTypeActionFileWrite,
	NodeTypeActionFileDelete,
	NodeTypeActionFileCopy,
	NodeTypeActionFileMove,
	NodeTypeActionShell,
	NodeTypeActionNotification,
	NodeTypeActionDelay,
	NodeTypeActionSetVariable,
	NodeTypeActionClipboardWrite,
	NodeTypeActionOpenURL,
	NodeTypeActionJSONParse,
	NodeTypeActionJSONStringify,
	NodeTypeActionTemplate,
	NodeTypeActionRegex,
	NodeTypeActionMath,
	NodeTypeActionLog,
	NodeTypeAISummarize,
	NodeTypeAIClassify,
	NodeTypeAIExtract,
	NodeTypeAIGenerate,
	NodeTypeLoopForEach,
	NodeTypeLoopRepeat,
	NodeTypeLoopWhile,
	NodeTypeUtilString,
	NodeTypeUtilArray,
	NodeTypeUtilField,
	NodeTypeUtilMerge,
	NodeTypeUtilGenerate,
	NodeTypeOutputFile,
	NodeTypeOutputHTTP,
	NodeTypeOutputNotification,
}

// NodeTypes returns every known node type in palette order.
func NodeTypes() []NodeType {
	out := make([]NodeType, len(nodeTypes))
	copy(out, nodeTypes)

	return out
}

// Valid reports whether t is one of the declared node types.
func (t NodeType) Valid() bool {
	for _, known := range nodeTypes {
		if known == t {
			return true
		}
	}

	return false
}

var categoryPrefixes = map[string]Category{
	"trigger":   CategoryTrigger,
	"condition": CategoryCondition,
	"action":    CategoryAction,
	"ai":        CategoryAI,
	"loop":      CategoryLoop,
	"util":      CategoryUtility,
	"output":    CategoryOutput,
}

// Category derives the palette category from the type prefix.
func (t NodeType) Category() Category {
	prefix, _, _ := strings.Cut(string(t), "_")

	return categoryPrefixes[prefix]
}

func (t NodeType) String() string {
	return string(t)
}
