package template

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"text/template"
	"time"
)

var renderFuncs = template.FuncMap{
	"now": func() string {
		return time.Now().UTC().Format(time.RFC3339)
	},
	"rand": func(max int) int {
		if max <= 0 {
			return 0
		}

		n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
		if err != nil {
			return 0
		}

		return int(n.Int64())
	},
	"json": func(value any) string {
		text, err := MarshalIndent(value)
		if err != nil {
			return ""
		}

		return text
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Render executes templateStr as a Go text/template with data as the dot value.
func Render(templateStr string, data any) (string, error) {
	tmpl, err := template.New("template").Funcs(renderFuncs).Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return buf.String(), nil
}
