// Package schema defines the one structured-output contract every provider is
// constrained to. The canonical form is a strict JSON schema (all fields
// required, optionality via null unions, no additional properties); adapters
// hand it to each vendor through that vendor's native mechanism.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/rbarros/sentex/internal/taxonomy"
)

// Name is the schema name reported to vendors that require one.
const Name = "labor_sentence_extraction"

// Definition returns the canonical JSON schema for LaborSentenceExtraction.
// Field descriptions double as extraction guidance for the model.
func Definition() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"decision_type", "claims", "custas", "gratuidade", "valor_total_decisao"},
		"properties": map[string]any{
			"decision_type": map[string]any{
				"type":        "string",
				"enum":        stringsOf(taxonomy.DecisionTypes),
				"description": "Natureza da decisão: sentença de mérito, homologação de acordo ou extinção sem julgamento do mérito",
			},
			"claims": map[string]any{
				"type":        "array",
				"items":       claimSchema(),
				"description": "Um item por pedido adjudicado, na ordem em que aparecem na sentença",
			},
			"custas":              moneySchema("Custas processuais fixadas na decisão, ou null se não fixadas"),
			"gratuidade": map[string]any{
				"type":        []string{"string", "null"},
				"enum":        enumWithNull(taxonomy.Gratuidades),
				"description": "Concessão de justiça gratuita, ou null se a decisão não trata do tema",
			},
			"valor_total_decisao": moneySchema("Valor total atribuído à decisão/condenação, ou null se não informado"),
		},
	}
}

func claimSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"claim_type", "requested_value", "outcome", "awarded_value", "reflexos"},
		"properties": map[string]any{
			"claim_type": map[string]any{
				"type":        "integer",
				"enum":        taxonomy.Codes(),
				"description": "Código TST do assunto do pedido; use exatamente um código da tabela",
			},
			"requested_value": moneySchema("Valor pedido pela parte para este item, ou null se não informado"),
			"outcome": map[string]any{
				"type":        "string",
				"enum":        stringsOf(taxonomy.DecisionOutcomes),
				"description": "Resultado do pedido",
			},
			"awarded_value": moneySchema("Valor deferido para este pedido, ou null quando o resultado não comporta valor"),
			"reflexos": map[string]any{
				"type":        []string{"string", "null"},
				"enum":        enumWithNull(taxonomy.ReflexosValues),
				"description": "Se o deferimento gera reflexos em outras verbas, ou null se não discutido",
			},
		},
	}
}

func moneySchema(description string) map[string]any {
	return map[string]any{
		"type":                 []string{"object", "null"},
		"additionalProperties": false,
		"required":             []string{"amount", "currency", "is_liquidacao"},
		"description":          description,
		"properties": map[string]any{
			"amount":   map[string]any{"type": "number", "description": "Valor numérico"},
			"currency": map[string]any{"type": "string", "description": "Moeda, normalmente BRL"},
			"is_liquidacao": map[string]any{
				"type":        []string{"boolean", "null"},
				"description": "true se o valor depende de liquidação posterior",
			},
		},
	}
}

// JSON returns the canonical schema marshaled once, in the form the OpenAI
// compatible response_format field expects.
func JSON() json.RawMessage {
	data, err := json.Marshal(Definition())
	if err != nil {
		// The definition is a static literal; failing to marshal it is a
		// programming error.
		panic(fmt.Sprintf("schema: marshal definition: %v", err))
	}
	return data
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// enumWithNull builds the enum for a nullable field: the values plus null,
// so an explicit null is a conforming answer rather than a violation.
func enumWithNull[T ~string](values []T) []any {
	out := make([]any, 0, len(values)+1)
	for _, v := range values {
		out = append(out, string(v))
	}
	return append(out, nil)
}
