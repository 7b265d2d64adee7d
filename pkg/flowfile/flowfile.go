// Package flowfile loads flow documents from JSON or YAML and validates them before they are run
// or stored.
package flowfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/forgeflow/forgeflow/pkg/models"
)

//go:embed flow.schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

var (
	ErrUnsupportedFormat = errors.New("unsupported flow file format")
	ErrSchema            = errors.New("flow document does not match schema")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and decodes the flow file at path.
func Load(path string) (*models.Flow, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	flow, err := Parse(body, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return flow, nil
}

// Parse decodes a flow document. YAML is normalized to JSON first so both formats are checked
// against the same schema and decode numbers the same way.
func Parse(body []byte, format Format) (*models.Flow, error) {
	switch format {
	case FormatJSON:
	case FormatYAML:
		var document any

		err := yaml.Unmarshal(body, &document)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}

		body, err = json.Marshal(document)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	err := CheckSchema(body)
	if err != nil {
		return nil, err
	}

	var flow models.Flow

	err = json.Unmarshal(body, &flow)
	if err != nil {
		return nil, fmt.Errorf("invalid flow document: %w", err)
	}

	return &flow, nil
}

// CheckSchema validates a JSON flow document against the embedded schema.
func CheckSchema(document []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(details, "; "))
}
