package schema

import "fmt"

// GeminiDefinition converts the canonical schema into the OpenAPI-style
// subset Gemini's responseSchema accepts: uppercase type names, nullable as a
// flag instead of a null union, no additionalProperties, string enums only.
func GeminiDefinition() map[string]any {
	return toGemini(Definition())
}

func toGemini(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))

	typ, nullable := geminiType(node["type"])
	out["type"] = typ
	if nullable {
		out["nullable"] = true
	}

	if desc, ok := node["description"].(string); ok {
		out["description"] = desc
	}

	if enum, ok := node["enum"]; ok {
		// Gemini only enforces string enums. Integer enums (the taxonomy
		// codes) travel unconstrained; out-of-vocabulary codes are caught
		// when the decoded value is materialized through the taxonomy.
		if typ != "INTEGER" {
			out["enum"] = enumStrings(enum)
		}
	}

	if props, ok := node["properties"].(map[string]any); ok {
		converted := make(map[string]any, len(props))
		for name, p := range props {
			child, ok := p.(map[string]any)
			if !ok {
				continue
			}
			converted[name] = toGemini(child)
		}
		out["properties"] = converted

		// Nullable fields stay optional on the Gemini side; requiring them
		// alongside nullable trips its schema validator.
		if required, ok := node["required"].([]string); ok {
			var kept []string
			for _, name := range required {
				child, _ := props[name].(map[string]any)
				if child == nil {
					continue
				}
				if _, childNullable := geminiType(child["type"]); !childNullable {
					kept = append(kept, name)
				}
			}
			if len(kept) > 0 {
				out["required"] = kept
			}
		}
	}

	if items, ok := node["items"].(map[string]any); ok {
		out["items"] = toGemini(items)
	}

	return out
}

// geminiType maps a canonical type (string or [type, "null"] union) onto
// Gemini's uppercase type name plus a nullable flag.
func geminiType(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return upperType(t), false
	case []string:
		name := ""
		nullable := false
		for _, entry := range t {
			if entry == "null" {
				nullable = true
				continue
			}
			name = entry
		}
		return upperType(name), nullable
	default:
		return "STRING", false
	}
}

func upperType(t string) string {
	switch t {
	case "object":
		return "OBJECT"
	case "array":
		return "ARRAY"
	case "string":
		return "STRING"
	case "number":
		return "NUMBER"
	case "integer":
		return "INTEGER"
	case "boolean":
		return "BOOLEAN"
	default:
		return "STRING"
	}
}

func enumStrings(enum any) []string {
	switch values := enum.(type) {
	case []string:
		return values
	case []int:
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = fmt.Sprintf("%d", v)
		}
		return out
	case []any:
		// Nullable enums carry a null entry; Gemini expresses optionality
		// through the nullable flag instead, so the null is stripped here.
		out := make([]string, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
