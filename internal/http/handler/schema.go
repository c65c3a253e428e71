package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const saveTextSchema = `{
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"}
  }
}`

const authSchema = `{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"enum": ["login", "login_with_token", "logout"]},
    "username": {"type": "string"},
    "password": {"type": "string"},
    "access_token": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"action": {"const": "login"}}},
      "then": {
        "required": ["username", "password"],
        "properties": {"username": {"minLength": 1}, "password": {"minLength": 1}}
      }
    },
    {
      "if": {"properties": {"action": {"const": "login_with_token"}}},
      "then": {
        "required": ["access_token"],
        "properties": {"access_token": {"minLength": 1}}
      }
    }
  ]
}`

var (
	saveTextBody = mustCompile("save_text.json", saveTextSchema)
	authBody     = mustCompile("sharepoint_auth.json", authSchema)
)

// errInvalidJSON means the body is not JSON at all; schema violations are reported separately.
var errInvalidJSON = errors.New("invalid json body")

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// decodeBody validates data against schema and then decodes it into dst.
// raw receives the generic decoded value so callers can inspect a rejected body.
func decodeBody(data []byte, schema *jsonschema.Schema, dst any) (raw any, err error) {
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errInvalidJSON
	}
	if err := schema.Validate(raw); err != nil {
		return raw, fmt.Errorf("body does not match schema: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return raw, fmt.Errorf("decode body: %w", err)
	}
	return raw, nil
}

// stringField reads a top-level string property of a generic JSON object.
func stringField(raw any, key string) string {
	m, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
