package transform

import "github.com/forgeflow/forgeflow/pkg/models"

func (n *JSONParseNode) Type() models.NodeType { return models.NodeTypeActionJSONParse }
func (n *JSONParseNode) Name() string          { return "JSON Parse" }
func (n *JSONParseNode) Description() string   { return "Parses a JSON string into structured data." }
func (n *JSONParseNode) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"json"},
		"properties": map[string]any{
			"json": map[string]any{"type": "string", "description": "JSON text to parse"},
		},
	}
}

func (n *JSONStringifyNode) Type() models.NodeType { return models.NodeTypeActionJSONStringify }
func (n *JSONStringifyNode) Name() string          { return "JSON Stringify" }
func (n *JSONStringifyNode) Description() string   { return "Encodes a value as indented JSON." }
func (n *JSONStringifyNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"object": map[string]any{"description": "Value to encode"},
		},
	}
}

func (n *TemplateNode) Type() models.NodeType { return models.NodeTypeActionTemplate }
func (n *TemplateNode) Name() string          { return "Template" }
func (n *TemplateNode) Description() string {
	return "Produces text from a template with {{variable}} placeholders."
}
func (n *TemplateNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{"type": "string"},
			"engine": map[string]any{
				"type":        "string",
				"enum":        []string{"", TemplateEngineGo},
				"description": "Set to go to also render Go text/template syntax",
			},
		},
	}
}

func (n *RegexNode) Type() models.NodeType { return models.NodeTypeActionRegex }
func (n *RegexNode) Name() string          { return "Regex" }
func (n *RegexNode) Description() string {
	return "Matches, tests or replaces text with a regular expression."
}
func (n *RegexNode) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"pattern"},
		"properties": map[string]any{
			"pattern":     map[string]any{"type": "string"},
			"text":        map[string]any{"type": "string"},
			"replacement": map[string]any{"type": "string"},
			"mode": map[string]any{
				"type":    "string",
				"enum":    []string{RegexModeMatch, RegexModeMatchAll, RegexModeReplace, RegexModeTest},
				"default": RegexModeMatch,
			},
		},
	}
}

func (n *MathNode) Type() models.NodeType { return models.NodeTypeActionMath }
func (n *MathNode) Name() string          { return "Math" }
func (n *MathNode) Description() string   { return "Performs an arithmetic operation on two numbers." }
func (n *MathNode) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type": "string",
				"enum": []string{
					"add", "subtract", "multiply", "divide", "modulo",
					"power", "round", "floor", "ceil", "abs",
				},
				"default": "add",
			},
			"a": map[string]any{"type": []string{"number", "string"}},
			"b": map[string]any{"type": []string{"number", "string"}},
		},
	}
}
