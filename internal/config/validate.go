package config

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/obbuild.v1.schema.json
var schemaFS embed.FS

// Validate checks raw .obbuild.yaml content against the configuration
// schema and returns a description of each violation. A nil slice means
// the document is valid.
func Validate(data []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if doc == nil {
		// An empty file is a valid all-defaults configuration.
		return nil, nil
	}

	schemaBytes, err := schemaFS.ReadFile("schemas/obbuild.v1.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to load JSON schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
