package config

import (
	"fmt"
	"strings"

	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/xeipuuv/gojsonschema"
)

const ssmStoreSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["path"],
  "additionalProperties": false,
  "properties": {
    "path":         {"type": "string", "minLength": 1},
    "decrypt":      {"type": "boolean"},
    "recursive":    {"type": "boolean"},
    "parsePath":    {"type": "boolean"},
    "strictPrefix": {"type": "boolean"},
    "maxResults":   {"type": "integer", "minimum": 1, "maximum": 10},
    "region":       {"type": "string"},
    "profile":      {"type": "string"},
    "endpoint":     {"type": "string"}
  }
}`

// storeSchemas maps store types to the JSON schema for their options.
var storeSchemas = map[string]*gojsonschema.Schema{}

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ssmStoreSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid aws-ssm store schema: %v", err))
	}
	storeSchemas["aws-ssm"] = schema
	storeSchemas["aws"] = schema
}

// ValidateStoreOptions checks options against the schema for storeType.
// Types without a schema are accepted as is.
func ValidateStoreOptions(store, storeType string, options map[string]interface{}) error {
	schema, ok := storeSchemas[storeType]
	if !ok {
		return nil
	}
	if options == nil {
		options = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(options))
	if err != nil {
		return dserrors.ConfigError{
			Store:   store,
			Message: fmt.Sprintf("schema validation error: %v", err),
		}
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return dserrors.ConfigError{
			Store:      store,
			Message:    fmt.Sprintf("schema validation failed:\n  - %s", strings.Join(errorMessages, "\n  - ")),
			Suggestion: "Supported options: path, decrypt, recursive, parsePath, strictPrefix, maxResults, region, profile, endpoint",
		}
	}

	return nil
}
