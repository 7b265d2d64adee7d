// Package text provides the string manipulation and value generation nodes.
package text

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
	"github.com/forgeflow/forgeflow/pkg/template"
	"github.com/forgeflow/forgeflow/pkg/variables"
)

const (
	DefaultPadLength = 10
	DefaultDelimiter = ","

	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	wordStart  = regexp.MustCompile(`\b\w`)
	camelSep   = regexp.MustCompile(`[-_\s]+(.)?`)
	upperCase  = regexp.MustCompile(`([A-Z])`)
	dashSpace  = regexp.MustCompile(`[-\s]+`)
	underSpace = regexp.MustCompile(`[_\s]+`)
	underRun   = regexp.MustCompile(`_+`)
	dashRun    = regexp.MustCompile(`-+`)
)

// StringNode transforms the text config, falling back to the last node output.
type StringNode struct{}

func NewStringNode() *StringNode {
	return &StringNode{}
}

func (n *StringNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	text := nodeconfig.String(in.Data, "text", "")
	if text == "" && in.Variables != nil {
		if output, ok := in.Variables.Get(variables.AliasOutput); ok && output != nil {
			text = template.Stringify(output)
		}
	}

	mode := nodeconfig.String(in.Data, "mode", "lower")

	in.Logf(models.LogLevelInfo, "String: "+mode)

	var result any

	switch mode {
	case "lower":
		result = strings.ToLower(text)
	case "upper":
		result = strings.ToUpper(text)
	case "title":
		result = wordStart.ReplaceAllStringFunc(text, strings.ToUpper)
	case "camel":
		result = camelCase(text)
	case "snake":
		result = separated(text, "_", dashSpace, underRun)
	case "kebab":
		result = separated(text, "-", underSpace, dashRun)
	case "trim":
		result = strings.TrimSpace(text)
	case "padStart", "padEnd":
		result = pad(text, nodeconfig.Int(in.Data, "length", DefaultPadLength), nodeconfig.String(in.Data, "char", " "), mode == "padStart")
	case "split":
		delimiter := nodeconfig.Unescape(nodeconfig.String(in.Data, "delimiter", DefaultDelimiter))

		parts := strings.Split(text, delimiter)
		out := make([]any, len(parts))

		for i, part := range parts {
			out[i] = part
		}

		result = out
	case "replace":
		re, err := regexp.Compile(nodeconfig.String(in.Data, "delimiter", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}

		result = re.ReplaceAllLiteralString(text, nodeconfig.String(in.Data, "replacement", ""))
	case "substring":
		result = substring(text, nodeconfig.Int(in.Data, "start", 0), in.Data["length"])
	default:
		result = text
	}

	return result, nil
}

func camelCase(text string) string {
	out := camelSep.ReplaceAllStringFunc(strings.ToLower(text), func(match string) string {
		return strings.ToUpper(strings.TrimLeft(match, "-_ \t\n\r\f\v"))
	})

	if out == "" {
		return out
	}

	runes := []rune(out)
	runes[0] = []rune(strings.ToLower(string(runes[0])))[0]

	return string(runes)
}

func separated(text, sep string, others, runs *regexp.Regexp) string {
	out := upperCase.ReplaceAllString(text, sep+"$1")
	out = strings.ToLower(out)
	out = others.ReplaceAllLiteralString(out, sep)
	out = strings.TrimPrefix(out, sep)

	return runs.ReplaceAllLiteralString(out, sep)
}

func pad(text string, length int, char string, start bool) string {
	fill := []rune(char)
	if len(fill) == 0 {
		fill = []rune{' '}
	}

	missing := length - len([]rune(text))
	if missing <= 0 {
		return text
	}

	padding := strings.Repeat(string(fill[0]), missing)
	if start {
		return padding + text
	}

	return text + padding
}

func substring(text string, start int, length any) string {
	runes := []rune(text)
	start = min(max(start, 0), len(runes))
	end := len(runes)

	if n, ok := nodeconfig.ParseInt(length); ok {
		end = min(max(start+n, start), len(runes))
	}

	return string(runes[start:end])
}

// GenerateNode produces a uuid, a random integer or a random alphanumeric string.
type GenerateNode struct{}

func NewGenerateNode() *GenerateNode {
	return &GenerateNode{}
}

func (n *GenerateNode) Handle(_ context.Context, in protocol.Input) (any, error) {
	mode := nodeconfig.String(in.Data, "mode", "uuid")

	in.Logf(models.LogLevelInfo, "Generate: "+mode)

	var result any

	switch mode {
	case "number":
		low := nodeconfig.Int(in.Data, "min", 0)
		high := nodeconfig.Int(in.Data, "max", 100)

		if high < low {
			return nil, fmt.Errorf("max %d is lower than min %d", high, low)
		}

		result = low + rand.IntN(high-low+1)
	case "string":
		length := nodeconfig.Int(in.Data, "length", 8)
		buf := make([]byte, max(length, 0))

		for i := range buf {
			buf[i] = alphanumeric[rand.IntN(len(alphanumeric))]
		}

		result = string(buf)
	default:
		result = uuid.NewString()
	}

	in.Logf(models.LogLevelSuccess, fmt.Sprintf("Generated: %v", result))

	return result, nil
}
