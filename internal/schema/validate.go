package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Validate checks a decoded vendor payload against the structural schema
// before it is unmarshaled into the typed model. A violation means the
// attempt failed; there is no partial success.
//
// The validation copy of the schema deliberately does not enum-constrain
// claim_type and admits both wire forms (integer code, packed-label string):
// vocabulary enforcement lives in exactly one place, taxonomy.FromCode, so an
// out-of-vocabulary code always surfaces as the distinct unmapped-code error
// rather than a generic schema violation.
func Validate(data []byte) error {
	compileOnce.Do(func() {
		raw, err := json.Marshal(validationDefinition())
		if err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = jsonschema.CompileString(Name+".json", string(raw))
	})
	if compileErr != nil {
		return fmt.Errorf("compile schema: %w", compileErr)
	}

	var instance any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}

	if err := compiled.Validate(instance); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}

func validationDefinition() map[string]any {
	def := Definition()

	claims := def["properties"].(map[string]any)["claims"].(map[string]any)
	items := claims["items"].(map[string]any)
	props := items["properties"].(map[string]any)
	props["claim_type"] = map[string]any{
		"type":        []string{"integer", "string"},
		"description": "Código TST do assunto do pedido",
	}

	pruneNullableRequired(def)
	return def
}

// pruneNullableRequired drops nullable fields from every required list. The
// canonical schema requires them because OpenAI strict decoding demands
// all-fields-required; Gemini instead omits optional fields outright, and
// validation has to accept both shapes.
func pruneNullableRequired(node map[string]any) {
	props, _ := node["properties"].(map[string]any)
	if props != nil {
		if required, ok := node["required"].([]string); ok {
			var kept []string
			for _, name := range required {
				child, _ := props[name].(map[string]any)
				if child != nil && !nullableType(child["type"]) {
					kept = append(kept, name)
				}
			}
			node["required"] = kept
		}
		for _, p := range props {
			if child, ok := p.(map[string]any); ok {
				pruneNullableRequired(child)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		pruneNullableRequired(items)
	}
}

func nullableType(v any) bool {
	union, ok := v.([]string)
	if !ok {
		return false
	}
	for _, t := range union {
		if t == "null" {
			return true
		}
	}
	return false
}
